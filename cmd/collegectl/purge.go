package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/collegegpt/backend/internal/app"
)

var purgeCacheCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Delete cached answers older than a cutoff from the SQLite store",
	RunE:  runPurgeCache,
}

func init() {
	purgeCacheCmd.Flags().Duration("older-than", 24*time.Hour, "delete answers created before now minus this duration")
	rootCmd.AddCommand(purgeCacheCmd)
}

func runPurgeCache(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	db, ok := a.SQLite()
	if !ok {
		return eris.New("purge-cache requires the sqlite storage driver")
	}

	age, _ := cmd.Flags().GetDuration("older-than")
	n, err := db.PurgeAnswersBefore(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d cached answers\n", n)
	return nil
}
