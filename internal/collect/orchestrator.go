package collect

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/norwind/bingwall/internal/config"
	"github.com/norwind/bingwall/internal/model"
	"github.com/norwind/bingwall/internal/store"
)

// dayConcurrency bounds the per-market fan-out over day offsets. The
// outer market bound is configurable; the day bound is fixed, so total
// in-flight fetches never exceed outer * dayConcurrency.
const dayConcurrency = 3

// Fetcher retrieves one wallpaper record for a (market, day offset)
// tuple. *bing.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, market model.Market, dayIndex int) (*model.Wallpaper, error)
}

// Orchestrator runs a metadata collection sweep: every configured market
// crossed with every requested day offset, under bounded nested
// concurrency.
//
// A failure of one tuple never aborts the sweep; it is logged, counted,
// and the remaining tuples proceed. Only caller cancellation stops a run
// early.
//
// Example:
//
//	orch := collect.NewOrchestrator(client, st, logger, markets, 8, 3)
//	summary, err := orch.Run(ctx)
type Orchestrator struct {
	fetcher Fetcher
	store   store.Store
	log     *zap.Logger

	markets     []model.Market
	days        int
	concurrency int
}

// NewOrchestrator creates an orchestrator over the given markets. days is
// clamped to [1, MaxHistoryDays] and concurrency to at least 1.
func NewOrchestrator(fetcher Fetcher, st store.Store, logger *zap.Logger, markets []model.Market, days, concurrency int) *Orchestrator {
	if days < 1 {
		days = 1
	}
	if days > config.MaxHistoryDays {
		days = config.MaxHistoryDays
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		fetcher:     fetcher,
		store:       st,
		log:         logger,
		markets:     markets,
		days:        days,
		concurrency: concurrency,
	}
}

// Run executes the sweep and reports per-market and total counts.
//
// Returns an error only when the context is cancelled; per-tuple failures
// are absorbed into the summary.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	var mu sync.Mutex
	results := make(map[model.MarketCode]*MarketResult, len(o.markets))
	var records []*model.Wallpaper
	for _, m := range o.markets {
		results[m.Code] = &MarketResult{Market: m.Code, Country: m.Name}
	}

	outer, ctx := errgroup.WithContext(ctx)
	outer.SetLimit(o.concurrency)

	for _, market := range o.markets {
		market := market
		outer.Go(func() error {
			inner, ctx := errgroup.WithContext(ctx)
			inner.SetLimit(dayConcurrency)

			for day := 0; day < o.days; day++ {
				day := day
				inner.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					res, wp := o.collectOne(ctx, market, day)

					mu.Lock()
					r := results[market.Code]
					switch res {
					case outcomeCollected:
						r.Collected++
						records = append(records, wp)
					case outcomeSkipped:
						r.Skipped++
					case outcomeFailed:
						r.Failed++
					case outcomeInvalid:
						r.Invalid++
					}
					mu.Unlock()
					return ctx.Err()
				})
			}
			if err := inner.Wait(); err != nil {
				return err
			}

			mu.Lock()
			r := *results[market.Code]
			mu.Unlock()
			o.log.Info("market finished",
				zap.String("market", string(market.Code)),
				zap.String("country", market.Name),
				zap.Int("collected", r.Collected),
				zap.Int("skipped", r.Skipped),
				zap.Int("failed", r.Failed),
				zap.Int("invalid", r.Invalid),
			)
			return nil
		})
	}

	err := outer.Wait()

	summary := &Summary{Duration: time.Since(started), Records: records}
	codes := make([]model.MarketCode, 0, len(results))
	for code := range results {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		r := results[code]
		summary.Markets = append(summary.Markets, *r)
		summary.Collected += r.Collected
		summary.Skipped += r.Skipped
		summary.Failed += r.Failed
		summary.Invalid += r.Invalid
	}

	if err != nil {
		return summary, err
	}

	o.log.Info("collection finished",
		zap.Int("collected", summary.Collected),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("invalid", summary.Invalid),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

type outcome int

const (
	outcomeCollected outcome = iota
	outcomeSkipped
	outcomeFailed
	outcomeInvalid
)

// collectOne handles a single (market, day) tuple: skip when the key is
// already stored, otherwise fetch and push it through the write gate.
func (o *Orchestrator) collectOne(ctx context.Context, market model.Market, day int) (outcome, *model.Wallpaper) {
	date := time.Now().AddDate(0, 0, -day).Format(model.DateLayout)
	key := model.CollectionKey{Market: market.Code, Date: date}

	exists, err := o.store.Exists(ctx, key)
	if err != nil {
		o.log.Warn("existence check failed",
			zap.String("key", key.String()), zap.Error(err))
		return outcomeFailed, nil
	}
	if exists {
		o.log.Debug("already collected", zap.String("key", key.String()))
		return outcomeSkipped, nil
	}

	wp, err := o.fetcher.Fetch(ctx, market, day)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			o.log.Warn("invalid record discarded",
				zap.String("market", string(market.Code)),
				zap.Int("day", day),
				zap.Error(err))
			return outcomeInvalid, nil
		}
		o.log.Warn("fetch failed",
			zap.String("market", string(market.Code)),
			zap.Int("day", day),
			zap.Error(err))
		return outcomeFailed, nil
	}
	// Records are keyed by the requested calendar day, not the archive's
	// own start date, so the pre-fetch existence check stays aligned with
	// what gets stored.
	wp.Date = date

	wrote, err := o.store.WriteIfAbsent(ctx, wp)
	if err != nil {
		o.log.Warn("store write failed",
			zap.String("key", wp.Key().String()), zap.Error(err))
		return outcomeFailed, nil
	}
	if !wrote {
		// Another worker (or an earlier run) stored this key first.
		o.log.Debug("write gate skip", zap.String("key", wp.Key().String()))
		return outcomeSkipped, nil
	}

	o.log.Info("collected",
		zap.String("key", wp.Key().String()),
		zap.String("title", wp.Title))
	return outcomeCollected, wp
}
