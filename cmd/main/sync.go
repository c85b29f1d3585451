package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"bricklink/cattree/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSyncCmd(), newWorkCmd())
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Scrape every catalog tree and rebuild the cached trees",
		Long: `The sync command queues one sync task per catalog type and runs the
workers until every queued task, including retries and tree builds, is done.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueued(cmd.Context(), func(ctx context.Context, app *container.Container) error {
				return app.Run(ctx)
			})
		},
	}
}

func newWorkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "work",
		Short: "Process queued tasks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueued(cmd.Context(), func(ctx context.Context, app *container.Container) error {
				return app.Work(ctx)
			})
		},
	}
}

func runQueued(parent context.Context, fn func(context.Context, *container.Container) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info("Starting BrickLink category sync...")

	return withContainer(ctx, cfg, func(app *container.Container) error {
		err := fn(ctx, app)
		if errors.Is(err, context.Canceled) {
			log.Info("🛑 Interrupted")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("Application finished successfully")
		return nil
	})
}
