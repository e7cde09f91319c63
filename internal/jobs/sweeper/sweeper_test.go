package sweeper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivankudzin/muji/internal/domain/enums"
	"github.com/ivankudzin/muji/internal/domain/model"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	"github.com/ivankudzin/muji/internal/store"
)

func TestRunOnceRemovesExpiredOrders(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.Update(func(doc *model.Document) error {
		doc.Orders = []model.Order{
			{ID: 1, ProfileID: 1, Status: enums.OrderStatusUnpaid, ExpiresAt: now.Add(-time.Minute)},
			{ID: 2, ProfileID: 1, Status: enums.OrderStatusUnpaid, ExpiresAt: now.Add(time.Minute)},
			{ID: 3, ProfileID: 1, Status: enums.OrderStatusBooked, ExpiresAt: now.Add(-time.Hour)},
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	job := New(st, ordersvc.NewService(nil), time.Minute, nil)
	job.now = func() time.Time { return now }

	removed, err := job.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	doc := st.Load()
	if len(doc.Orders) != 2 {
		t.Fatalf("unexpected orders after sweep: %+v", doc.Orders)
	}
	for _, o := range doc.Orders {
		if o.ID == 1 {
			t.Fatal("expired order survived the sweep")
		}
	}
}

func TestRunOnceSkipsSaveWhenNothingExpired(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.Update(func(doc *model.Document) error {
		doc.Orders = []model.Order{
			{ID: 1, ProfileID: 1, Status: enums.OrderStatusUnpaid, ExpiresAt: now.Add(time.Hour)},
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	versionBefore := st.Load().Version

	job := New(st, ordersvc.NewService(nil), time.Minute, nil)
	job.now = func() time.Time { return now }

	removed, err := job.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	if got := st.Load().Version; got != versionBefore {
		t.Fatalf("empty sweep must not write: version %d -> %d", versionBefore, got)
	}
}

func TestRunSweepsBeforeFirstTick(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.Update(func(doc *model.Document) error {
		doc.Orders = []model.Order{
			{ID: 1, ProfileID: 1, Status: enums.OrderStatusUnpaid, ExpiresAt: now.Add(-time.Minute)},
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// Interval far beyond the test timeout: only the immediate pass can
	// remove the order.
	job := New(st, ordersvc.NewService(nil), time.Hour, nil)
	job.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for len(st.Load().Orders) != 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("expired order not removed by the startup pass")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	job := New(st, ordersvc.NewService(nil), 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
