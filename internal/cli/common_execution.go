package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rshade/ghgledger/internal/calc"
	"github.com/rshade/ghgledger/internal/config"
	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/engine"
	"github.com/rshade/ghgledger/internal/engine/cache"
	"github.com/rshade/ghgledger/internal/factors"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/notify"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/store"
)

// auditContext holds common context for audit logging within a command.
type auditContext struct {
	logger  *logging.AuditLogger
	traceID string
	params  map[string]string
	start   time.Time
	command string
}

// newAuditContext creates a new audit context.
func newAuditContext(ctx context.Context, command string, params map[string]string) *auditContext {
	return &auditContext{
		logger:  logging.AuditLoggerFromContext(ctx),
		traceID: logging.TraceIDFromContext(ctx),
		params:  params,
		start:   time.Now(),
		command: command,
	}
}

// logFailure logs an audit entry for a failed operation.
func (a *auditContext) logFailure(ctx context.Context, err error) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithError(err.Error()).
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// logSuccess logs an audit entry for a successful operation.
func (a *auditContext) logSuccess(ctx context.Context, records int, totalCO2e float64) {
	entry := logging.NewAuditEntry(a.command, a.traceID).
		WithParameters(a.params).
		WithSuccess(records, totalCO2e).
		WithDuration(a.start)
	a.logger.Log(ctx, *entry)
}

// currentConfig returns the configuration resolved by the root command.
func currentConfig() *config.Config {
	return config.GetGlobalConfig()
}

// openStore opens the configured record store.
func openStore(ctx context.Context, cfg *config.Config, audit *auditContext) (store.RecordStore, error) {
	log := logging.FromContext(ctx)

	var (
		s   store.RecordStore
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err = store.OpenSQLite(cfg.Store.Path, logging.ComponentLogger(log, "store"))
	default:
		s, err = store.OpenYAML(cfg.Store.Path)
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).
			Str("driver", cfg.Store.Driver).
			Str("path", cfg.Store.Path).
			Msg("failed to open record store")
		audit.logFailure(ctx, err)
		return nil, fmt.Errorf("opening record store: %w", err)
	}
	log.Debug().Ctx(ctx).Str("driver", cfg.Store.Driver).Str("path", cfg.Store.Path).Msg("record store opened")
	return s, nil
}

// loadFactorTable returns the configured factor table, or the built-in one.
func loadFactorTable(ctx context.Context, cfg *config.Config, audit *auditContext) (*factors.Table, error) {
	if cfg.Factors.Path == "" {
		return factors.Default(), nil
	}
	t, err := factors.Load(cfg.Factors.Path)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Error().Ctx(ctx).Err(err).
			Str("factors_path", cfg.Factors.Path).
			Msg("failed to load factor table")
		audit.logFailure(ctx, err)
		return nil, err
	}
	return t, nil
}

// newEngine builds a projection engine over t, memoised in the file cache
// when caching is enabled. A cache that cannot be opened is skipped.
func newEngine(ctx context.Context, cfg *config.Config, t *factors.Table) *engine.Engine {
	opts := []engine.Option{engine.WithFactorTable(t)}
	if cfg.Cache.Enabled {
		memo, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds)
		if err != nil {
			logger := logging.FromContext(ctx)
			logger.Warn().Ctx(ctx).Err(err).
				Str("cache_dir", cfg.Cache.Directory).
				Msg("projection cache unavailable, computing without it")
		} else {
			opts = append(opts, engine.WithMemo(memo))
		}
	}
	return engine.New(calc.New(factors.NewResolver(t)), opts...)
}

// ledger bundles the store and engine a reporting command works against.
type ledger struct {
	cfg    *config.Config
	store  store.RecordStore
	engine *engine.Engine
}

// openLedger opens the configured store and builds the engine. The returned
// cleanup closes the store.
func openLedger(ctx context.Context, audit *auditContext) (*ledger, func(), error) {
	cfg := currentConfig()
	t, err := loadFactorTable(ctx, cfg, audit)
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore(ctx, cfg, audit)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if cerr := s.Close(); cerr != nil {
			logger := logging.FromContext(ctx)
			logger.Warn().Ctx(ctx).Err(cerr).Msg("closing record store")
		}
	}
	return &ledger{cfg: cfg, store: s, engine: newEngine(ctx, cfg, t)}, cleanup, nil
}

// computeAll fetches every category concurrently and computes each group.
// Emissions are grouped under the category they were fetched as.
func (l *ledger) computeAll(ctx context.Context) (rollup.Categorised, []emissions.ComputedEmission, error) {
	groups, err := store.FetchByCategory(ctx, l.store, l.cfg.Store.Company)
	if err != nil {
		return nil, nil, err
	}

	c := rollup.Categorised{}
	for cat, records := range groups {
		c[cat] = l.engine.ComputeEmissions(ctx, records, emissions.MethodUnknown).Computed
	}
	all := c.All()
	if all == nil {
		all = []emissions.ComputedEmission{}
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Ctx(ctx).
		Int("emissions", len(all)).
		Int("categories", len(groups)).
		Msg("emissions computed")
	return c, all, nil
}

// parseFields converts repeated key=value flags into a field map. Keys are
// lowercased; values keep their spelling and are decoded per field.
func parseFields(pairs []string) (emissions.Fields, error) {
	f := emissions.Fields{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q (want key=value)", p)
		}
		f[k] = strings.TrimSpace(v)
	}
	return f, nil
}

// watchNotifications subscribes to bus and returns a function that prints
// every event received so far to w and unsubscribes.
func watchNotifications(bus *notify.Bus, w io.Writer) func() {
	events, unsubscribe := bus.Subscribe(notificationBuffer)
	return func() {
		defer unsubscribe()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				printEvent(w, ev)
			default:
				return
			}
		}
	}
}

const notificationBuffer = 256

func printEvent(w io.Writer, ev notify.Event) {
	prefix := "ok"
	switch ev.Severity {
	case notify.SeverityError:
		prefix = "error"
	case notify.SeverityInfo:
		prefix = "info"
	case notify.SeveritySuccess:
	}
	_, _ = fmt.Fprintf(w, "[%s] %s\n", prefix, ev.Message)
}
