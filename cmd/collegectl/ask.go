package main

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/collegegpt/backend/internal/app"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the response envelope as JSON",
	Example: `  collegectl ask "which companies visited for placements"
  collegectl ask --answer-only what is the fee structure`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("answer-only", false, "print only the answer text")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if len(question) < cfg.Validation.MinQuestionLength {
		return eris.Errorf("question must be at least %d characters", cfg.Validation.MinQuestionLength)
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	env := a.Engine.Ask(cmd.Context(), question)

	out := cmd.OutOrStdout()
	if answerOnly, _ := cmd.Flags().GetBool("answer-only"); answerOnly {
		_, err := out.Write([]byte(env.Answer + "\n"))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
