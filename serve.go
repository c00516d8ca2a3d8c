package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveops"
	"github.com/tonimelisma/datalake-api/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM. The config file is watched
and reloaded on change; server.listen, server.read_header_timeout and
network.request_timeout need a restart to take effect.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "listen address (overrides server.listen)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	holder := config.NewHolder(resolvedCfg, resolvedCfgPath)
	env := config.ReadEnvOverrides()
	cli := cliOverrides(cmd)

	reload := func() (*config.Config, error) {
		cfg, err := config.Resolve(env, cli)
		if err != nil {
			return nil, err
		}

		logLevel.Set(levelFor(cfg))

		return cfg, nil
	}

	return serve(ctx, holder, reload, logger)
}

// serve runs the HTTP server and the config watcher until ctx is canceled
// or either of them fails.
func serve(ctx context.Context, holder *config.Holder, reload config.ReloadFunc, logger *slog.Logger) error {
	cfg := holder.Config()

	sessions := driveops.NewSessionProvider(holder, defaultHTTPClient(cfg), logger)
	svc := driveops.NewService(sessions, holder, logger)
	srv := server.New(svc, holder, logger)

	logger.Info("starting datalake-api",
		slog.String("version", version),
		slog.String("drive_id", cfg.Drive.DriveID.String()),
		slog.String("config", holder.Path()),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Listen)
	})

	g.Go(func() error {
		return config.Watch(gctx, holder, reload, logger)
	})

	return g.Wait()
}
