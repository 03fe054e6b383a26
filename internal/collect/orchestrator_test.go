package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/norwind/bingwall/internal/model"
	"github.com/norwind/bingwall/internal/store"
)

// memStore is an in-memory write-once store for orchestrator tests.
type memStore struct {
	mu      sync.Mutex
	records map[model.CollectionKey]*model.Wallpaper
}

func newMemStore() *memStore {
	return &memStore{records: make(map[model.CollectionKey]*model.Wallpaper)}
}

func (s *memStore) Exists(ctx context.Context, key model.CollectionKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	return ok, nil
}

func (s *memStore) WriteIfAbsent(ctx context.Context, wp *model.Wallpaper) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[wp.Key()]; ok {
		return false, nil
	}
	s.records[wp.Key()] = wp
	return true, nil
}

func (s *memStore) Read(ctx context.Context, key model.CollectionKey) (*model.Wallpaper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wp, ok := s.records[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return wp, nil
}

func (s *memStore) ListByMarket(ctx context.Context, market model.MarketCode, page, pageSize int) ([]*model.Wallpaper, int64, error) {
	return nil, 0, nil
}

func (s *memStore) ListLatest(ctx context.Context, market model.MarketCode, n int) ([]*model.Wallpaper, error) {
	return nil, nil
}

// fakeFetcher builds synthetic records and tracks its in-flight peak.
type fakeFetcher struct {
	inFlight atomic.Int64
	peak     atomic.Int64
	delay    time.Duration

	failMarket    model.MarketCode
	invalidMarket model.MarketCode
}

func (f *fakeFetcher) Fetch(ctx context.Context, market model.Market, dayIndex int) (*model.Wallpaper, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if market.Code == f.failMarket {
		return nil, fmt.Errorf("synthetic fetch failure")
	}
	if market.Code == f.invalidMarket {
		return nil, fmt.Errorf("fetch: %w", &model.ValidationError{Reason: "missing title"})
	}

	date := time.Now().AddDate(0, 0, -dayIndex)
	return &model.Wallpaper{
		Date:            date.Format(model.DateLayout),
		Country:         market.Name,
		MarketCode:      market.Code,
		Title:           fmt.Sprintf("%s day %d", market.Name, dayIndex),
		OriginalURLBase: "/th?id=OHR.Fake",
		TimeInfo:        model.TimeInfo{StartDate: date.Format("20060102")},
	}, nil
}

func pickMarkets(t *testing.T, n int) []model.Market {
	t.Helper()
	all := model.AllMarkets()
	if n > len(all) {
		t.Fatalf("want %d markets, catalog has %d", n, len(all))
	}
	return all[:n]
}

func TestRunCollectsFreshTuples(t *testing.T) {
	st := newMemStore()
	fetcher := &fakeFetcher{}
	orch := NewOrchestrator(fetcher, st, zap.NewNop(), pickMarkets(t, 2), 2, 3)

	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Collected != 4 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("summary = %s", summary)
	}
	if len(summary.Records) != 4 {
		t.Errorf("got %d records, want 4", len(summary.Records))
	}
	if len(summary.Markets) != 2 {
		t.Fatalf("got %d market results", len(summary.Markets))
	}
	for _, mr := range summary.Markets {
		if mr.Collected != 2 {
			t.Errorf("market %s collected %d, want 2", mr.Market, mr.Collected)
		}
	}
}

func TestRunSkipsStoredTuples(t *testing.T) {
	st := newMemStore()
	orch := NewOrchestrator(&fakeFetcher{}, st, zap.NewNop(), pickMarkets(t, 2), 2, 3)

	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Collected != 0 || summary.Skipped != 4 {
		t.Errorf("second run summary = %s", summary)
	}
	if len(summary.Records) != 0 {
		t.Errorf("second run returned %d new records", len(summary.Records))
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	orch := NewOrchestrator(fetcher, newMemStore(), zap.NewNop(), pickMarkets(t, 5), 8, 2)

	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Outer bound 2 markets at a time, inner bound 3 days each.
	if peak := fetcher.peak.Load(); peak > 6 {
		t.Errorf("peak in-flight fetches = %d, want <= 6", peak)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	markets := pickMarkets(t, 3)
	fetcher := &fakeFetcher{failMarket: markets[1].Code}
	orch := NewOrchestrator(fetcher, newMemStore(), zap.NewNop(), markets, 2, 3)

	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, failures must not abort the sweep", err)
	}
	if summary.Failed != 2 {
		t.Errorf("failed = %d, want 2", summary.Failed)
	}
	if summary.Collected != 4 {
		t.Errorf("collected = %d, want 4", summary.Collected)
	}
}

func TestRunCountsInvalidRecordsSeparately(t *testing.T) {
	markets := pickMarkets(t, 2)
	fetcher := &fakeFetcher{invalidMarket: markets[0].Code}
	st := newMemStore()
	orch := NewOrchestrator(fetcher, st, zap.NewNop(), markets, 2, 3)

	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Invalid != 2 {
		t.Errorf("invalid = %d, want 2", summary.Invalid)
	}
	if summary.Failed != 0 {
		t.Errorf("failed = %d, want 0; invalid records are their own bucket", summary.Failed)
	}
	if summary.Collected != 2 {
		t.Errorf("collected = %d, want 2", summary.Collected)
	}
	if len(st.records) != 2 {
		t.Errorf("store holds %d records, want 2; invalid records must not be stored", len(st.records))
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	fetcher := &fakeFetcher{delay: 50 * time.Millisecond}
	orch := NewOrchestrator(fetcher, newMemStore(), zap.NewNop(), pickMarkets(t, 5), 8, 2)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := orch.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
