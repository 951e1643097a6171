package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/app"
	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizforge",
	Short: "AI generated technical quizzes",
	Long:  "QuizForge generates timed multiple-choice quizzes on computer science subjects, grades them and tracks your progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.RunOptions{})
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite file or postgres:// URL (overrides QUIZFORGE_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QUIZFORGE_CONFIG)")
	rootCmd.PersistentFlags().String("user", "", "User id (overrides QUIZFORGE_USER)")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration and applies the persistent flags,
// which take priority over the file and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
		if !store.IsPostgresDSN(p) {
			if err := store.EnsureDir(p); err != nil {
				return nil, err
			}
		}
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}
	return cfg, nil
}

// openServices loads the configuration and builds the services. Logs go to
// w; nil sends them to the log file in the data directory.
func openServices(cmd *cobra.Command, requireLLM bool, w io.Writer) (*app.Services, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	closeLog := func() {}
	if w == nil {
		f, err := openLogFile()
		if err != nil {
			return nil, nil, err
		}
		w, closeLog = f, func() { f.Close() }
	}

	svc, err := app.Open(cmd.Context(), cfg, app.OpenOptions{RequireLLM: requireLLM, LogOutput: w})
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return svc, func() {
		svc.Close()
		closeLog()
	}, nil
}

func openLogFile() (*os.File, error) {
	dir, err := store.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "quizforge.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
