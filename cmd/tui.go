package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/app"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Set up and start a new quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.RunOptions{NewQuiz: true})
	},
}

var playCmd = &cobra.Command{
	Use:   "play <quiz-id>",
	Short: "Take or resume a generated quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.RunOptions{QuizID: args[0]})
	},
}

// runTUI opens the services and launches the terminal client. A missing
// LLM provider is not fatal: the home screen shows a warning instead.
func runTUI(cmd *cobra.Command, opts app.RunOptions) error {
	svc, done, err := openServices(cmd, false, nil)
	if err != nil {
		return err
	}
	defer done()

	if _, err := svc.SeedSubjects(cmd.Context()); err != nil {
		return err
	}
	return app.Run(cmd.Context(), svc, opts)
}
