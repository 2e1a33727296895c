package root

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"goalquest/internal/server"
	"goalquest/internal/ui"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cfg.HTTPAddr
			}
			srv := server.New(svc, log.New(os.Stderr, "gq: ", log.LstdFlags))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Listening on http://%s\n", ui.IconInfo, addr)
			return server.ListenAndServe(ctx, addr, srv.Handler(os.Stdout))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides GQ_HTTP_ADDR)")
	return cmd
}
