package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List your recent quiz results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		results, err := svc.Grading.Results(context.Background(), svc.Config.UserID, limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results yet.")
			return nil
		}

		fmt.Printf("%-16s  %-36s  %7s  %5s  %6s\n", "Date", "Quiz", "Score", "%", "Time")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range results {
			fmt.Printf("%-16s  %-36s  %3d/%-3d  %4d%%  %6s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.QuizID, r.Score, len(r.Answers), r.Percentage, clock(r.TimeTaken))
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your overall and per-subject progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		ctx := context.Background()
		dash, err := svc.Grading.Dashboard(ctx, svc.Config.UserID)
		if err != nil {
			return err
		}
		p := dash.Progress
		if p == nil {
			fmt.Println("No quizzes taken yet.")
			return nil
		}

		fmt.Printf("Quizzes taken:  %d\n", p.TotalQuizzes)
		fmt.Printf("Total score:    %d\n", p.TotalScore)
		fmt.Printf("Average:        %.2f%%\n", p.AverageScore)
		fmt.Printf("Last quiz:      %s\n", p.LastQuizDate.Local().Format("2006-01-02 15:04"))

		if len(p.Subjects) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Printf("%-8s  %7s  %6s  %8s\n", "Subject", "Quizzes", "Best", "Average")
		fmt.Println(strings.Repeat("─", 36))
		repo := svc.Store.SubjectRepo()
		for _, sp := range p.Subjects {
			name := sp.SubjectID
			if subj, err := repo.Get(ctx, sp.SubjectID); err == nil {
				name = subj.Name
			}
			fmt.Printf("%-8s  %7d  %5d%%  %7.2f%%\n", name, sp.QuizzesTaken, sp.BestScore, sp.AverageScore)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().IntP("limit", "n", 20, "Number of results to show (0 = all)")
}
