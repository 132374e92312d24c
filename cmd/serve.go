package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/observability"
	"github.com/epimaps/broadstreet/internal/server"
	"github.com/epimaps/broadstreet/internal/tiles"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var metrics *observability.Metrics
		var loaderOpts []geodata.LoaderOption
		if cfg.Metrics.Enabled {
			metrics = observability.NewMetrics()
			loaderOpts = append(loaderOpts, geodata.WithObserver(metrics))
		}

		loader := geodata.NewLoader(configuredSources(), geodata.NewCache(), loaderOpts...)
		composer, err := newComposer()
		if err != nil {
			return err
		}

		tileCache := tiles.NewCache(cfg.Tiles.CacheSize, time.Duration(cfg.Tiles.CacheTTLMins)*time.Minute)
		proxy := tiles.NewProxy(tileCache, cfg.Tiles.UpstreamRPS)

		// Warm the dataset before accepting traffic; a broken source
		// should fail the start, not the first request.
		ds, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("dataset ready",
			zap.Int("deaths", ds.DeathCount()),
			zap.Int("pumps", ds.PumpCount()),
			zap.Int("areas", len(ds.Areas)),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(loader, composer, proxy, metrics, server.Options{
			Port:           port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			DefaultBasemap: cfg.Map.DefaultBasemap,
			MetricsEnabled: cfg.Metrics.Enabled,
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
