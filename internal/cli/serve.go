package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tandemgrid/tandemgrid/internal/config"
	"github.com/tandemgrid/tandemgrid/internal/feed"
	"github.com/tandemgrid/tandemgrid/internal/localstore"
	"github.com/tandemgrid/tandemgrid/internal/session"
	"github.com/tandemgrid/tandemgrid/internal/store"
	"github.com/tandemgrid/tandemgrid/internal/syncer"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the grid engine and change-feed server",
		Long: `Open the shared store and the local snapshot store, start the sync
coordinator and the websocket change feed, and run until interrupted.

Example:
  gridd serve --config grid.yaml
  gridd serve --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config (defaults apply when omitted)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	slog.Info("opening shared store", "path", cfg.DatabasePath)
	remote, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open shared store", err)
	}
	defer func() {
		if closeErr := remote.Close(); closeErr != nil {
			slog.Error("error closing shared store", "error", closeErr)
		}
	}()

	slog.Info("opening local snapshot store", "path", cfg.LocalPath)
	local, err := localstore.Open(localstore.Config{
		Path:       cfg.LocalPath,
		SyncWrites: true,
	}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open local store", err)
	}
	defer func() {
		if closeErr := local.Close(); closeErr != nil {
			slog.Error("error closing local store", "error", closeErr)
		}
	}()

	sess, err := session.New(session.Config{
		SheetID: cfg.SheetID,
		Local:   local,
		Logger:  logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	coord := syncer.New(syncer.Config{
		Store:   remote,
		Source:  remote.Notifier(),
		SheetID: cfg.SheetID,
		Applier: sess,
		Window:  cfg.SuppressionWindow(),
		Logger:  logger,
	})
	if err := coord.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to start sync coordinator", err)
	}
	defer coord.Dispose()
	sess.AttachForwarder(coord)

	feedServer := feed.NewServer(remote.Notifier(), logger)
	httpServer := &http.Server{Addr: cfg.Listen, Handler: feedServer.Handler()}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("change feed listening", "addr", cfg.Listen, "sheet", cfg.SheetID)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		slog.Error("feed server failed", "error", err)
	case <-ctx.Done():
	}

	if err := httpServer.Shutdown(context.Background()); err != nil {
		slog.Error("feed server shutdown failed", "error", err)
	}
	return nil
}
