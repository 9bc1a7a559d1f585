package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/collegegpt/backend/internal/app"
	"github.com/collegegpt/backend/internal/topic"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List routed topics with their keywords and resolved pages",
	RunE:  runTopics,
}

var seedTopicsCmd = &cobra.Command{
	Use:   "seed-topics",
	Short: "Write the built-in topic URL table into the configured topic store",
	RunE:  runSeedTopics,
}

func init() {
	topicsCmd.Flags().String("match", "", "show only the topic a question routes to")
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(seedTopicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if q, _ := cmd.Flags().GetString("match"); q != "" {
		t := topic.Match(q)
		if t == topic.None {
			fmt.Fprintln(out, "no topic")
			return nil
		}
		fmt.Fprintln(out, t.String())
		for _, u := range a.Resolver.Resolve(cmd.Context(), t) {
			fmt.Fprintf(out, "  %s\n", u)
		}
		return nil
	}

	for _, e := range topic.Entries() {
		fmt.Fprintf(out, "%s [%s]\n", e.Topic.String(), strings.Join(e.Keywords, ", "))
		for _, u := range a.Resolver.Resolve(cmd.Context(), e.Topic) {
			fmt.Fprintf(out, "  %s\n", u)
		}
	}
	return nil
}

func runSeedTopics(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	seeded, err := a.SeedTopics(cmd.Context())
	if err != nil {
		return err
	}

	total := 0
	for _, urls := range seeded {
		total += len(urls)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d topics (%d urls) into %s store\n", len(seeded), total, cfg.Storage.Topics)
	return nil
}
