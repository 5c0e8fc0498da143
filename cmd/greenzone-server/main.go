package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/ta346/greenzone-web/internal/anomaly"
	"github.com/ta346/greenzone-web/internal/bootstrap"
	"github.com/ta346/greenzone-web/internal/cache"
	"github.com/ta346/greenzone-web/internal/config"
	"github.com/ta346/greenzone-web/internal/logger"
	"github.com/ta346/greenzone-web/internal/region"
	"github.com/ta346/greenzone-web/internal/server"
	"github.com/ta346/greenzone-web/internal/store"
	"github.com/ta346/greenzone-web/internal/telemetry"
)

func main() {
	log := logger.New("greenzone-server")

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.New(ctx, "greenzone-server")
	if err != nil {
		log.Error("init telemetry", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background())

	regions := region.MustLoad()

	sampleStore, cleanup, err := buildStore(ctx, cfg, regions, log)
	if err != nil {
		log.Error("init store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	anomalyCache := buildCache(cfg, log)

	svc := anomaly.NewService(sampleStore, anomalyCache, anomaly.Config{CacheTTL: cfg.Anomaly.CacheTTL}, log)
	svc.SetTracer(tel.Tracer())

	handler := server.NewHandler(svc, log)
	httpServer := server.NewRouter(cfg, handler, log)

	app := bootstrap.NewApp(cfg, log, httpServer)
	if err := app.Run(ctx); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildStore picks Postgres when a DSN is configured and falls back to the
// in-memory store, seeded from a dataset file or synthetic data.
func buildStore(ctx context.Context, cfg *config.Config, regions *region.Index, log *slog.Logger) (anomaly.SampleStore, func(), error) {
	if dsn := cfg.Anomaly.Postgres.DSN; dsn != "" {
		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Anomaly.Postgres.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Anomaly.Postgres.MaxConns
		}
		if cfg.Anomaly.Postgres.MinConns > 0 {
			poolCfg.MinConns = cfg.Anomaly.Postgres.MinConns
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using postgres sample store")
		return store.NewPostgres(pool), pool.Close, nil
	}

	mem := store.NewMemory()
	if path := cfg.Anomaly.DatasetPath; path != "" {
		n, err := mem.LoadDataset(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("loaded dataset", "path", path, "rows", n)
		return mem, func() {}, nil
	}

	log.Info("using synthetic sample store")
	return store.NewSynthetic(regions), func() {}, nil
}

// buildCache prefers valkey when enabled; any dial problem surfaces on first
// use and the service treats cache errors as misses.
func buildCache(cfg *config.Config, log *slog.Logger) anomaly.Cache {
	if cfg.Anomaly.Valkey.Enabled {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.Anomaly.Valkey.Addr},
		})
		if err != nil {
			log.Warn("valkey unavailable, using in-memory cache", "error", err)
			return cache.NewMemory()
		}
		log.Info("using valkey cache", "addr", cfg.Anomaly.Valkey.Addr)
		return cache.NewValkey(client, "greenzone")
	}
	return cache.NewMemory()
}
