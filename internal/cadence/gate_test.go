package cadence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/storage"
)

func clockAt(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 9, 0, 0, 0, time.UTC) }
}

func fileStore(t *testing.T) (storage.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "last_monthly.json")
	store, err := storage.NewStore(storage.TypeFile, path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, path
}

func TestShouldFetchMonthly(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		clock func() time.Time
		want  bool
	}{
		{name: "new month", clock: clockAt(2024, time.June, 3), want: true},
		{name: "same month", clock: clockAt(2024, time.May, 27), want: false},
		{name: "same month next year", clock: clockAt(2025, time.May, 1), want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := fileStore(t)
			if err := store.SaveMarker(ctx, domain.Marker{Year: 2024, Month: 5}); err != nil {
				t.Fatalf("seed marker: %v", err)
			}
			gate := NewGate(store, nil, WithClock(tc.clock))
			if got := gate.ShouldFetchMonthly(ctx); got != tc.want {
				t.Fatalf("ShouldFetchMonthly = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShouldFetchMonthlyWithoutMarker(t *testing.T) {
	for _, clock := range []func() time.Time{clockAt(2024, time.May, 1), clockAt(1999, time.December, 31)} {
		store, _ := fileStore(t)
		if !NewGate(store, nil, WithClock(clock)).ShouldFetchMonthly(context.Background()) {
			t.Fatalf("expected true without marker")
		}
	}
}

func TestShouldFetchMonthlyFailsOpenOnMalformedMarker(t *testing.T) {
	store, path := fileStore(t)
	if err := os.WriteFile(path, []byte("{garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gate := NewGate(store, nil, WithClock(clockAt(2024, time.May, 1)))
	if !gate.ShouldFetchMonthly(context.Background()) {
		t.Fatalf("expected malformed marker to be treated as missing")
	}
}

type failingStore struct{ storage.Store }

func (failingStore) LoadMarker(context.Context) (domain.Marker, bool, error) {
	return domain.Marker{}, false, errors.New("disk on fire")
}

func (failingStore) SaveMarker(context.Context, domain.Marker) error {
	return errors.New("read-only")
}

func TestShouldFetchMonthlyFailsOpenOnStoreError(t *testing.T) {
	gate := NewGate(failingStore{}, nil)
	if !gate.ShouldFetchMonthly(context.Background()) {
		t.Fatalf("expected true when the store fails")
	}
	if err := gate.RecordMonthlyRun(context.Background(), 2024, time.June); err == nil {
		t.Fatalf("expected record error to surface")
	}
}

func TestRecordMonthlyRunThenGateCloses(t *testing.T) {
	ctx := context.Background()
	store, _ := fileStore(t)
	gate := NewGate(store, nil, WithClock(clockAt(2024, time.June, 10)))

	if err := gate.RecordMonthlyRun(ctx, 2024, time.June); err != nil {
		t.Fatalf("RecordMonthlyRun: %v", err)
	}
	if gate.ShouldFetchMonthly(ctx) {
		t.Fatalf("expected monthly group to be skipped after recording")
	}
}
