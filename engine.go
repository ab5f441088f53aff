// Package orderq is the embeddable FIFO work-queue engine. A host (typically
// a chat bot) constructs one Engine per process and drives it from its own
// command surface: enqueue and query through Queue, tenant lifecycle through
// Group, category management through Categories, admin checks through
// Authority, delayed deletion through Retention, and confirmation flows
// through Sessions. The engine owns persistence and state; it exposes no wire
// protocol of its own.
package orderq

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-order-backend/internal/config"
	"github.com/tbourn/go-order-backend/internal/observability"
	"github.com/tbourn/go-order-backend/internal/services"
	"github.com/tbourn/go-order-backend/internal/session"
	"github.com/tbourn/go-order-backend/internal/store"
	"github.com/tbourn/go-order-backend/internal/sysutil"
	"github.com/tbourn/go-order-backend/internal/undo"
)

// Version is reported as the service version on exported traces.
const Version = "1.0.0"

// Engine bundles the queue services over one shared database handle.
type Engine struct {
	Queue      *services.QueueService
	Categories *services.CategoryService
	Group      *services.GroupService
	Authority  *services.AuthorityService
	Retention  *services.RetentionService
	Sessions   *session.Manager
	Undo       *undo.Stack

	shutdownOTel func(context.Context) error
	closeDB      func() error
}

// New loads configuration from the environment and opens the engine.
func New(ctx context.Context) (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg)
}

// Open constructs an Engine from an explicit configuration: logging first,
// then tracing, then the database and schema, then the services on top.
func Open(ctx context.Context, cfg config.Config) (*Engine, error) {
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := store.EnableTracing(db); err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
	}
	if err := store.AutoMigrate(db); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	st := undo.NewStack(cfg.UndoDepth)
	retention := services.NewRetentionService(db)
	retention.Grace = cfg.GracePeriod

	e := &Engine{
		Queue:        services.NewQueueService(db, st),
		Categories:   services.NewCategoryService(db),
		Group:        services.NewGroupService(db),
		Authority:    services.NewAuthorityService(db),
		Retention:    retention,
		Sessions:     session.NewManager(cfg.SessionTTL),
		Undo:         st,
		shutdownOTel: shutdown,
	}
	e.closeDB = func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	log.Info().Str("db", cfg.DBPath).Int("undo_depth", cfg.UndoDepth).
		Dur("grace_period", cfg.GracePeriod).Msg("order queue engine ready")
	return e, nil
}

// Tick is the host's periodic maintenance hook: it expires stale confirmation
// sessions and runs the retention sweep. stillMember reports whether a tenant
// is still present in its external context.
func (e *Engine) Tick(ctx context.Context, stillMember func(tenantID string) bool) error {
	if n := e.Sessions.Expire(time.Now()); n > 0 {
		log.Debug().Int("expired", n).Msg("confirmation sessions expired")
	}
	return e.Retention.RunSweep(ctx, stillMember)
}

// Close flushes traces and releases the database handle.
func (e *Engine) Close(ctx context.Context) error {
	var first error
	if e.shutdownOTel != nil {
		first = e.shutdownOTel(ctx)
	}
	if e.closeDB != nil {
		if err := e.closeDB(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
