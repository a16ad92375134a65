package services

import (
	"context"
	"fmt"
	"sync"

	"estate-browser/models"
	"estate-browser/utils"
)

// ListingFetcher retrieves the listings for one category query.
type ListingFetcher interface {
	Fetch(ctx context.Context, q models.CategoryQuery) ([]models.ListingSummary, error)
}

// Aggregator fetches the three home-page categories concurrently and folds
// their outcomes into a single AggregateViewState.
//
// Each call to Activate starts a new activation identified by a token. Only
// the outcome of the latest activation is ever applied; outcomes of earlier
// activations that settle late are dropped.
type Aggregator struct {
	fetcher ListingFetcher
	queries []models.CategoryQuery
	logger  *utils.Logger

	mu          sync.Mutex
	notifyMu    sync.Mutex // held while subscribers run; orders notifications
	activation  uint64
	cancel      context.CancelFunc
	state       models.AggregateViewState
	subscribers []func(models.AggregateViewState)
}

// NewAggregator creates an Aggregator for the given queries, which must be
// the three home queries (offer, rent, sale) in that order.
func NewAggregator(fetcher ListingFetcher, queries []models.CategoryQuery, logger *utils.Logger) (*Aggregator, error) {
	if len(queries) != 3 {
		return nil, fmt.Errorf("aggregator: expected 3 category queries, got %d", len(queries))
	}
	want := []models.Category{models.CategoryOffer, models.CategoryRent, models.CategorySale}
	for i, q := range queries {
		if q.Category != want[i] {
			return nil, fmt.Errorf("aggregator: query %d is %q, want %q", i, q.Category, want[i])
		}
		if q.Limit <= 0 {
			return nil, fmt.Errorf("aggregator: query %q has non-positive limit %d", q.Category, q.Limit)
		}
	}
	return &Aggregator{
		fetcher: fetcher,
		queries: queries,
		logger:  logger,
		state:   models.PendingState(0),
	}, nil
}

// Subscribe registers fn to be called after every state transition the
// aggregator applies: the reset to pending and the terminal status of the
// current activation. fn runs synchronously with a private copy of the state
// and must not call back into the Aggregator.
func (a *Aggregator) Subscribe(fn func(models.AggregateViewState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// State returns a snapshot of the current view state.
func (a *Aggregator) State() models.AggregateViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Activate starts a new activation and blocks until its three queries have
// settled. It returns the state current after the attempt and whether this
// activation's outcome was the one applied. A false result means a newer
// activation started in the meantime and this outcome was discarded.
func (a *Aggregator) Activate(ctx context.Context) (models.AggregateViewState, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	token := a.begin(cancel)
	a.logger.Info("[aggregator] Activation %d: fetching %d categories", token, len(a.queries))

	results, err := utils.All(ctx, 0,
		a.task(a.queries[0]),
		a.task(a.queries[1]),
		a.task(a.queries[2]),
	)

	next := models.PendingState(token)
	if err != nil {
		next.Status = models.StatusFailed
		next.Error = err.Error()
	} else {
		next.Status = models.StatusSuccess
		next.Offer = results[0]
		next.Rent = results[1]
		next.Sale = results[2]
	}

	return a.settle(token, next)
}

func (a *Aggregator) task(q models.CategoryQuery) utils.Task[[]models.ListingSummary] {
	return func(ctx context.Context) ([]models.ListingSummary, error) {
		listings, err := a.fetcher.Fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		if listings == nil {
			listings = []models.ListingSummary{}
		}
		return listings, nil
	}
}

// begin opens a new activation: it invalidates the previous one, resets
// the state to pending and notifies subscribers.
func (a *Aggregator) begin(cancel context.CancelFunc) uint64 {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.activation++
	token := a.activation
	a.cancel = cancel
	a.state = models.PendingState(token)
	snapshot, subs := a.state.Clone(), a.subscribersLocked()
	a.notifyMu.Lock()
	a.mu.Unlock()

	notify(subs, snapshot)
	a.notifyMu.Unlock()
	return token
}

// settle applies next if token still names the current activation.
func (a *Aggregator) settle(token uint64, next models.AggregateViewState) (models.AggregateViewState, bool) {
	a.mu.Lock()
	if token != a.activation {
		current := a.state.Clone()
		a.mu.Unlock()
		a.logger.Debug("[aggregator] Activation %d superseded by %d; discarding %s outcome",
			token, current.Activation, next.Status)
		return current, false
	}
	a.state = next
	a.cancel = nil
	snapshot, subs := a.state.Clone(), a.subscribersLocked()
	a.notifyMu.Lock()
	a.mu.Unlock()
	defer a.notifyMu.Unlock()

	if next.Status == models.StatusFailed {
		a.logger.Error("[aggregator] Activation %d failed: %s", token, next.Error)
	} else {
		a.logger.Info("[aggregator] Activation %d settled: offers=%d rent=%d sale=%d",
			token, len(next.Offer), len(next.Rent), len(next.Sale))
	}

	notify(subs, snapshot)
	return snapshot, true
}

func (a *Aggregator) subscribersLocked() []func(models.AggregateViewState) {
	return append([]func(models.AggregateViewState){}, a.subscribers...)
}

func notify(subs []func(models.AggregateViewState), s models.AggregateViewState) {
	for _, fn := range subs {
		fn(s.Clone())
	}
}
