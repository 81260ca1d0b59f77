package correlate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/openquants/tradelens/internal/session"
	"github.com/openquants/tradelens/pkg/models"
)

// EventQuerier is the slice of the event store the correlator needs:
// candidate events for a UTC range, pre-filtered by currency and impact.
type EventQuerier interface {
	EventsBetween(ctx context.Context, start, end time.Time, currencies, impacts []string) ([]models.Event, error)
}

// TradeSource supplies the trade contexts to enrich. The trade store
// itself is an external collaborator; the batch correlator only reads
// (trade_id, date, session) tuples and hands back matches per trade.
type TradeSource interface {
	Trades(ctx context.Context) ([]models.TradeSessionContext, error)
}

// TradeResult pairs a trade with its correlated events, or with the
// error that kept it from being enriched. Failures stay isolated to the
// single trade; the batch always completes.
type TradeResult struct {
	TradeID string                      `json:"trade_id"`
	Events  []models.TradeEconomicEvent `json:"events"`
	Err     error                       `json:"-"`
}

// BatchCorrelator enriches many trades concurrently. Correlation itself
// is pure and has no natural concurrency limit; the worker bound exists
// to pace the per-trade candidate queries against the store.
type BatchCorrelator struct {
	store      EventQuerier
	currencies []string
	workers    int
}

// NewBatchCorrelator creates a batch correlator reading candidates from
// store, restricted to the given currencies. workers <= 0 means 4.
func NewBatchCorrelator(store EventQuerier, currencies []string, workers int) *BatchCorrelator {
	if workers <= 0 {
		workers = 4
	}
	return &BatchCorrelator{
		store:      store,
		currencies: currencies,
		workers:    workers,
	}
}

// Run correlates every trade from src. The result slice preserves the
// source order of trades regardless of completion order.
func (b *BatchCorrelator) Run(ctx context.Context, src TradeSource) ([]TradeResult, error) {
	trades, err := src.Trades(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	results := make([]TradeResult, len(trades))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, trade := range trades {
		g.Go(func() error {
			results[i] = b.correlateOne(ctx, trade)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// correlateOne builds the candidate pool for one trade's window and runs
// the pure correlation over it.
func (b *BatchCorrelator) correlateOne(ctx context.Context, trade models.TradeSessionContext) TradeResult {
	res := TradeResult{TradeID: trade.TradeID}

	var window models.SessionWindow
	if trade.Session == "" {
		window = session.FullDay(trade.Date)
	} else {
		window = session.Window(trade.Session, trade.Date)
	}

	candidates, err := b.store.EventsBetween(ctx, window.Start, window.End,
		b.currencies, []string{models.ImpactHigh, models.ImpactMedium})
	if err != nil {
		log.Warn().Err(err).Str("trade", trade.TradeID).Msg("candidate query failed, trade left unenriched")
		res.Err = err
		return res
	}

	res.Events = Correlate(trade.Date, trade.Session, candidates)
	return res
}

// --- File-backed trade source ---

// FileTradeSource reads trade contexts from a JSON file: an array of
// {"trade_id", "date" (YYYY-MM-DD), "session"} objects. It exists for
// the CLI; a journal database would implement TradeSource directly.
type FileTradeSource struct {
	Path string

	once   sync.Once
	trades []models.TradeSessionContext
	err    error
}

type fileTrade struct {
	TradeID string `json:"trade_id"`
	Date    string `json:"date"`
	Session string `json:"session"`
}

// Trades loads and parses the file on first call.
func (f *FileTradeSource) Trades(_ context.Context) ([]models.TradeSessionContext, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			f.err = fmt.Errorf("read trades file: %w", err)
			return
		}
		var raw []fileTrade
		if err := json.Unmarshal(data, &raw); err != nil {
			f.err = fmt.Errorf("parse trades file: %w", err)
			return
		}
		for _, t := range raw {
			date, err := time.Parse("2006-01-02", t.Date)
			if err != nil {
				log.Warn().Str("trade", t.TradeID).Str("date", t.Date).Msg("bad trade date, skipped")
				continue
			}
			f.trades = append(f.trades, models.TradeSessionContext{
				TradeID: t.TradeID,
				Date:    date,
				Session: t.Session,
			})
		}
	})
	return f.trades, f.err
}
