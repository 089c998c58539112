package pricing

import (
	"go.uber.org/zap"

	"github.com/Simplici0/supportquote/internal/refdata"
)

// Options tunes behavior that differs between historical rate sheets.
type Options struct {
	DurationPolicy DurationPolicy
	// LaborFallbackToAll retries a labor lookup against the ALL scope when
	// the country scope has no row.
	LaborFallbackToAll bool
}

// DefaultOptions returns the calendar duration policy with labor fallback on.
func DefaultOptions() Options {
	return Options{DurationPolicy: PolicyCalendar, LaborFallbackToAll: true}
}

// Calculator prices quotes against a reference data store. It holds no
// per-quote state; every Calculate call is a full recomputation.
type Calculator struct {
	store *refdata.Store
	opts  Options
	log   *zap.Logger
}

// NewCalculator returns a Calculator. A nil logger discards issue logs.
func NewCalculator(store *refdata.Store, opts Options, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DurationPolicy == "" {
		opts.DurationPolicy = PolicyCalendar
	}
	return &Calculator{store: store, opts: opts, log: log}
}

// Store returns the reference data the calculator reads.
func (c *Calculator) Store() *refdata.Store {
	return c.store
}

// Options returns the calculator configuration.
func (c *Calculator) Options() Options {
	return c.opts
}
