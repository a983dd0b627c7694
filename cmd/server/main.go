package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tagdex/internal/engine"
	"tagdex/internal/handler"
	"tagdex/internal/ownerlock"
	"tagdex/internal/platform/config"
	"tagdex/internal/platform/httpserver"
	"tagdex/internal/platform/logger"
	"tagdex/internal/platform/metrics"
	"tagdex/internal/platform/middleware"
	platformredis "tagdex/internal/platform/redis"
	"tagdex/internal/store"
	"tagdex/pkg/platform/audit"
	auditkafka "tagdex/pkg/platform/audit/kafka"
	auditworker "tagdex/pkg/platform/audit/worker"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Consistency logic lives in internal/engine.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entityStore, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	locker, lockerCleanup, err := buildLocker(cfg, log)
	if err != nil {
		return err
	}
	defer lockerCleanup()

	auditStore, auditCleanup, err := buildAuditStore(cfg, log)
	if err != nil {
		return err
	}
	defer auditCleanup()

	inbox := make(chan audit.Event, 256)
	publisher := audit.NewChannelPublisher(inbox, log)
	worker := auditworker.NewWorker(auditStore, inbox, log)

	eng := engine.New(entityStore, locker,
		engine.WithLogger(log),
		engine.WithMetrics(metrics.New()),
		engine.WithAuditPublisher(publisher),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwnerScope)
		handler.New(eng, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting tagdex", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStore picks the entity store: Postgres when a database URL is
// configured, in-memory otherwise.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.EntityStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory entity store")
		return store.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("using postgres entity store")
	return store.NewPostgres(db), func() { db.Close() }, nil
}

// buildLocker picks the owner locker: Redis-backed when Redis is configured
// so multiple replicas serialize per owner, in-process otherwise.
func buildLocker(cfg config.Server, log *slog.Logger) (ownerlock.Locker, func(), error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("using in-process owner locker")
		return ownerlock.NewTable(cfg.LockWait), func() {}, nil
	}
	log.Info("using redis owner locker")
	return ownerlock.NewRedisLocker(client.Client, cfg.LockWait), func() { client.Close() }, nil
}

// buildAuditStore picks the audit sink: Kafka when seed brokers are
// configured, in-memory otherwise.
func buildAuditStore(cfg config.Server, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Kafka.Seeds) == 0 {
		log.Info("using in-memory audit store")
		return audit.NewInMemoryStore(), func() {}, nil
	}

	sink, err := auditkafka.New(cfg.Kafka.Seeds, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	return sink, func() { sink.Close() }, nil
}
