package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/quiz"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage the subject catalogue",
}

var subjectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active subjects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		subjects, err := svc.Store.SubjectRepo().ListActive(context.Background())
		if err != nil {
			return err
		}
		if len(subjects) == 0 {
			fmt.Println("No subjects. Run `quizforge subjects seed` to add the defaults.")
			return nil
		}

		fmt.Printf("%-36s  %-6s  %s\n", "ID", "Name", "Full name")
		fmt.Println(strings.Repeat("─", 80))
		for _, s := range subjects {
			fmt.Printf("%-36s  %-6s  %s\n", s.ID, s.Name, s.FullName)
		}
		return nil
	},
}

var subjectsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fullName, _ := cmd.Flags().GetString("full-name")
		description, _ := cmd.Flags().GetString("description")
		icon, _ := cmd.Flags().GetString("icon")

		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		subj := &quiz.Subject{
			Name:        args[0],
			FullName:    fullName,
			Description: description,
			Icon:        icon,
			IsActive:    true,
		}
		if err := svc.Store.SubjectRepo().Create(context.Background(), subj); err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", subj.Name, subj.ID)
		return nil
	},
}

var subjectsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default subjects into an empty catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		n, err := svc.SeedSubjects(context.Background())
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Catalogue already has subjects, nothing to do.")
			return nil
		}
		fmt.Printf("Inserted %d subjects.\n", n)
		return nil
	},
}

func init() {
	subjectsAddCmd.Flags().String("full-name", "", "Full subject name")
	subjectsAddCmd.Flags().String("description", "", "Short description")
	subjectsAddCmd.Flags().String("icon", "", "Icon shown next to the subject")
	_ = subjectsAddCmd.MarkFlagRequired("full-name")
	_ = subjectsAddCmd.MarkFlagRequired("description")

	subjectsCmd.AddCommand(subjectsListCmd)
	subjectsCmd.AddCommand(subjectsAddCmd)
	subjectsCmd.AddCommand(subjectsSeedCmd)
}
