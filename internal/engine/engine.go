package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/ghgledger/internal/calc"
	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/engine/cache"
	"github.com/rshade/ghgledger/internal/factors"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// Memo kinds.
const (
	KindEmissions = "emissions"
	KindTrend     = "trend"
)

// Memo stores projection results by content fingerprint.
// *cache.FileStore satisfies it.
type Memo interface {
	Get(key string) (*cache.Entry, error)
	Set(key, kind string, data json.RawMessage) error
}

// Engine computes projections against a calculator with optional memoisation.
type Engine struct {
	calc      *calc.Calculator
	memo      Memo
	factorsID string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMemo enables memoisation in m.
func WithMemo(m Memo) Option {
	return func(e *Engine) { e.memo = m }
}

// WithFactorTable records the identity of the table behind the calculator.
// Emission results are memoised only when the table identity is known.
func WithFactorTable(t *factors.Table) Option {
	return func(e *Engine) {
		if t == nil {
			return
		}
		if id, err := cache.Fingerprint(t); err == nil {
			e.factorsID = id
		}
	}
}

// New returns an Engine over c.
func New(c *calc.Calculator, opts ...Option) *Engine {
	e := &Engine{calc: c}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefault returns an Engine over the built-in factor table.
func NewDefault(opts ...Option) *Engine {
	t := factors.Default()
	return New(calc.New(factors.NewResolver(t)), append([]Option{WithFactorTable(t)}, opts...)...)
}

// ComputeEmissions computes every record of the given method; MethodUnknown
// computes all records. A nil record slice means the fetch has not
// completed and yields an empty, loading view.
func (e *Engine) ComputeEmissions(
	ctx context.Context,
	records []emissions.ActivityRecord,
	method emissions.Method,
) EmissionsView {
	log := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "ComputeEmissions").
		Logger()

	if records == nil {
		return EmissionsView{IsLoading: true}
	}
	selected, skipped := selectMethod(records, method)
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Stringer("method", method).Msg("records of other methods skipped")
	}

	var key string
	if e.memo != nil && e.factorsID != "" {
		key = e.emissionsKey(log, selected, method)
		var cached []emissions.ComputedEmission
		if e.recall(log, key, &cached) {
			return EmissionsView{Computed: cached}
		}
	}

	computed := e.calc.ComputeAll(selected)
	if computed == nil {
		computed = []emissions.ComputedEmission{}
	}
	for _, c := range computed {
		if !c.Computable {
			log.Debug().
				Str("record_id", c.RecordID).
				Stringer("method", c.Method).
				Err(c.Reason).
				Msg("record not computable")
		}
	}

	e.remember(log, key, KindEmissions, computed)
	return EmissionsView{Computed: computed}
}

// Trend is the memoised form of the package-level Trend.
func (e *Engine) Trend(
	ctx context.Context,
	computed []emissions.ComputedEmission,
	w timeseries.Window,
	now time.Time,
) TrendView {
	log := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Trend").
		Stringer("window", w).
		Logger()

	var key string
	if e.memo != nil {
		key = trendKey(log, computed, w, now)
		var cached []timeseries.Bucket
		if e.recall(log, key, &cached) {
			return TrendView{Buckets: cached, Window: w}
		}
	}

	view := Trend(computed, w, now)
	e.remember(log, key, KindTrend, view.Buckets)
	return view
}

// Stats summarises categorised emissions. Stats are cheap to derive and
// carry reason values, so they are never memoised.
func (e *Engine) Stats(
	ctx context.Context,
	c rollup.Categorised,
	now time.Time,
	previous *rollup.PeriodTotals,
) rollup.Stats {
	s := Stats(c, now, previous)
	if !s.Change.Available {
		log := logging.FromContext(ctx)
		log.Debug().Str("component", "engine").Err(s.Change.Reason).Msg("month-over-month change unavailable")
	}
	return s
}

func (e *Engine) emissionsKey(log zerolog.Logger, records []emissions.ActivityRecord, method emissions.Method) string {
	encoded := make([]emissions.Fields, 0, len(records))
	for _, r := range records {
		f, err := emissions.EncodeRecord(r)
		if err != nil {
			log.Debug().Err(err).Str("record_id", r.ID).Msg("record not fingerprintable, memo bypassed")
			return ""
		}
		f["_date"] = r.Date
		f["_input_method"] = recordMethod(r).String()
		encoded = append(encoded, f)
	}
	key, err := cache.NewKey(KindEmissions).
		With("factors", e.factorsID).
		With("method", method.String()).
		With("records", encoded).
		Build()
	if err != nil {
		log.Debug().Err(err).Msg("emissions key failed, memo bypassed")
		return ""
	}
	return key
}

type trendInput struct {
	Date      time.Time       `json:"d"`
	Scope     emissions.Scope `json:"s"`
	TotalCO2e float64         `json:"t"`
}

// trendKey fingerprints only what the buckets depend on: the resolved
// range, the location, and the in-range records.
func trendKey(log zerolog.Logger, computed []emissions.ComputedEmission, w timeseries.Window, now time.Time) string {
	start, end := w.Range(now)
	inputs := make([]trendInput, 0, len(computed))
	for _, c := range computed {
		if w.Contains(c.Date, now) {
			inputs = append(inputs, trendInput{Date: c.Date, Scope: c.Scope(), TotalCO2e: c.TotalCO2e})
		}
	}
	key, err := cache.NewKey(KindTrend).
		With("granularity", w.Granularity.String()).
		With("start", start.Format(time.RFC3339Nano)).
		With("last", timeseries.KeyOf(w.Granularity, end).String()).
		With("location", now.Location().String()).
		With("records", inputs).
		Build()
	if err != nil {
		log.Debug().Err(err).Msg("trend key failed, memo bypassed")
		return ""
	}
	return key
}

func (e *Engine) recall(log zerolog.Logger, key string, v any) bool {
	if key == "" {
		return false
	}
	entry, err := e.memo.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheDisabled) {
			log.Debug().Err(err).Msg("memo read failed")
		}
		return false
	}
	if err = entry.Decode(v); err != nil {
		log.Debug().Err(err).Msg("memo entry undecodable")
		return false
	}
	log.Debug().Str("key", key[:12]).Msg("memo hit")
	return true
}

func (e *Engine) remember(log zerolog.Logger, key, kind string, v any) {
	if key == "" || e.memo == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Debug().Err(err).Msg("memo encode failed")
		return
	}
	if err = e.memo.Set(key, kind, data); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		log.Debug().Err(err).Msg("memo write failed")
	}
}
