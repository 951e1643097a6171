package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/assembly"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz without starting it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		count, _ := cmd.Flags().GetInt("count")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, done, err := openServices(cmd, true, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		ctx := cmd.Context()
		if _, err := svc.SeedSubjects(ctx); err != nil {
			return err
		}
		subj, err := svc.ResolveSubject(ctx, subject)
		if err != nil {
			return err
		}

		res, err := svc.Assembly.Generate(ctx, assembly.Request{
			UserID:        svc.Config.UserID,
			SubjectID:     subj.ID,
			Difficulty:    difficulty,
			QuestionCount: count,
		})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		q := res.Quiz
		fmt.Printf("Quiz:       %s\n", q.ID)
		fmt.Printf("Title:      %s\n", q.Title)
		fmt.Printf("Questions:  %d\n", res.QuestionsGenerated)
		fmt.Printf("Time limit: %s (%ds per question, %s)\n",
			clock(q.TimeLimit), res.TimerInfo.PerQuestion, res.TimerInfo.Source)
		fmt.Printf("\nStart it with: quizforge play %s\n", q.ID)
		return nil
	},
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func init() {
	generateCmd.Flags().StringP("subject", "s", "", "Subject id or short name (e.g. DSA)")
	generateCmd.Flags().StringP("difficulty", "d", "Medium", "Easy, Medium or Hard")
	generateCmd.Flags().IntP("count", "n", 10, "Number of questions (1-24)")
	generateCmd.Flags().Bool("json", false, "Print the generated quiz as JSON")
	_ = generateCmd.MarkFlagRequired("subject")
}
