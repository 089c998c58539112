package pricing

import (
	"math"
	"testing"

	"github.com/Simplici0/supportquote/internal/refdata"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func defaultStore(t *testing.T) *refdata.Store {
	t.Helper()
	ds, err := refdata.Defaults()
	if err != nil {
		t.Fatalf("load default reference data: %v", err)
	}
	return refdata.NewStore(ds)
}

func newTestCalculator(t *testing.T, opts Options) *Calculator {
	t.Helper()
	return NewCalculator(defaultStore(t), opts, nil)
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
