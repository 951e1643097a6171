package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, done, err := openServices(cmd, false, os.Stderr)
		if err != nil {
			return err
		}
		defer done()

		if svc.LLMErr != nil {
			svc.Logger.Warn("LLM provider not configured, generation endpoints will fail", "error", svc.LLMErr)
		}
		if _, err := svc.SeedSubjects(ctx); err != nil {
			return err
		}

		srv, err := svc.APIServer()
		if err != nil {
			return err
		}
		opts := svc.ServeOptions()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			opts.Addr = addr
		}
		return srv.Serve(ctx, opts)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
