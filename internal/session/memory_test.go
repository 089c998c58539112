package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Simplici0/supportquote/internal/pricing"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = clock.now
	return s, clock
}

func testQuote() *pricing.Quote {
	return pricing.NewQuote(pricing.Defaults{Country: "Colombia", RiskLevel: "Low", Margin: 0.64}, pricing.NewDate(2026, time.October, 18))
}

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)
	id := NewID()

	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	if err := s.Save(ctx, id, testQuote()); err != nil {
		t.Fatalf("save: %v", err)
	}
	q, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Country != "Colombia" || len(q.Services) != 1 {
		t.Fatalf("unexpected quote: %+v", q)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_ReturnsIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)

	original := testQuote()
	if err := s.Save(ctx, "a", original); err != nil {
		t.Fatalf("save: %v", err)
	}
	original.Services[0].Quantity = 50

	got, _ := s.Get(ctx, "a")
	got.AddLabor(pricing.LaborLineItem{Code: "A"})

	again, _ := s.Get(ctx, "a")
	if again.Services[0].Quantity != 1 || len(again.Labor) != 0 {
		t.Fatalf("stored quote was mutated: %+v", again)
	}

	if err := s.Save(ctx, "b", testQuote()); err != nil {
		t.Fatalf("save: %v", err)
	}
	other, _ := s.Get(ctx, "b")
	if len(other.Labor) != 0 {
		t.Fatalf("sessions share state")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(time.Hour)

	if err := s.Save(ctx, "a", testQuote()); err != nil {
		t.Fatalf("save: %v", err)
	}

	clock.t = clock.t.Add(50 * time.Minute)
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	// The read above slid the expiry forward.
	clock.t = clock.t.Add(50 * time.Minute)
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("expected sliding expiry, got %v", err)
	}

	clock.t = clock.t.Add(time.Hour)
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(time.Minute)

	_ = s.Save(ctx, "a", testQuote())
	_ = s.Save(ctx, "b", testQuote())
	clock.t = clock.t.Add(2 * time.Minute)
	_ = s.Save(ctx, "c", testQuote())

	if removed := s.Sweep(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := s.Get(ctx, "c"); err != nil {
		t.Fatalf("expected c to survive, got %v", err)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(NewID()) {
		t.Fatalf("expected generated id to be valid")
	}
	if ValidID("not-a-session") {
		t.Fatalf("expected garbage id to be invalid")
	}
}
