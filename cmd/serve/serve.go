package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/menumaker/menumaker/internal/api"
	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/logger"
)

// logFlushInterval is how often buffered log output is flushed while serving.
const logFlushInterval = 5 * time.Second

// Command creates the command that starts the web server.
func Command(ctx *app.Context) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Serve the JSON API, the printable menu views and the metrics endpoint until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				ctx.Settings.WebServer.Port = port
			}
			return run(cmd.Context(), ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides webserver.port)")

	return cmd
}

func run(parent context.Context, actx *app.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := actx.Open(ctx, app.WithNotifications(), app.WithMetrics())
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := api.NewServer(api.ConfigFromSettings(a.Settings), api.Dependencies{
		Generation:  a.Generation,
		History:     a.History,
		Credentials: a.Credentials,
		Prefs:       a.Prefs,
		Registry:    a.Registry,
		Renderer:    a.Renderer,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	})
	if err != nil {
		return err
	}

	log := a.Logger.Module("serve")
	fmt.Printf("menumaker listening on http://localhost:%s\n", a.Settings.WebServer.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(logFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := log.Flush(); err != nil {
					log.Warn("log flush failed", logger.Error(err))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
