package tcgclient

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/sample"
)

const (
	DefaultFeaturedLimit = 8
	setCardsPageSize     = 250
)

// Loader serves one cached value with stale-while-revalidate semantics.
//
// A fresh cached value is returned without touching the network. A stale one
// is returned immediately while a background refresh runs under the caller's
// context. With nothing cached, Load blocks on the network.
//
// Only the latest Load may commit. An older in-flight fetch is cancelled and
// its caller gets ErrSuperseded.
type Loader[T any] struct {
	cached func() (T, bool)
	stale  func() bool
	fetch  func(ctx context.Context) (T, error)
	save   func(T)
	onFail func(ctx context.Context, err error)

	mu     sync.Mutex
	value  T
	state  State
	err    error
	gen    uint64
	cancel context.CancelFunc

	refreshes sync.WaitGroup
}

func (l *Loader[T]) Load(ctx context.Context) (T, error) {
	if cached, ok := l.cached(); ok {
		l.mu.Lock()
		l.value, l.state, l.err = cached, StateSuccess, nil
		l.mu.Unlock()
		if !l.stale() {
			return cached, nil
		}

		ctx, gen, prev := l.begin(ctx, false)
		l.refreshes.Add(1)
		go func() {
			defer l.refreshes.Done()
			_, _ = l.run(ctx, gen, prev)
		}()
		return cached, nil
	}

	ctx, gen, prev := l.begin(ctx, true)
	return l.run(ctx, gen, prev)
}

func (l *Loader[T]) begin(parent context.Context, blocking bool) (context.Context, uint64, State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.gen++
	prev := l.state
	if blocking {
		l.state = StateLoading
	}
	return ctx, l.gen, prev
}

func (l *Loader[T]) run(ctx context.Context, gen uint64, prev State) (T, error) {
	value, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if gen != l.gen {
		return zero, ErrSuperseded
	}
	// ctx.Err must still reflect only the caller when the error is classified.
	defer func() {
		l.cancel()
		l.cancel = nil
	}()

	if err != nil {
		if ctx.Err() != nil {
			l.state = prev
			return zero, ctx.Err()
		}
		if l.onFail != nil {
			l.onFail(ctx, err)
		}
		l.state, l.err = StateError, err
		return zero, err
	}

	l.save(value)
	l.value, l.state, l.err = value, StateSuccess, nil
	return value, nil
}

// Value is the last committed value. It survives a failed refresh.
func (l *Loader[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

func (l *Loader[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Wait blocks until background refreshes started by Load have finished.
func (l *Loader[T]) Wait() {
	l.refreshes.Wait()
}

// Cancel aborts the in-flight fetch, if any.
func (l *Loader[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
}

// DefaultMeta is what MetaLoader reports before anything was loaded.
func DefaultMeta() models.Meta {
	return models.Meta{Types: sample.Types(), Rarities: sample.Rarities(), Subtypes: []string{}}
}

func (c *Client) SetsLoader() *Loader[[]models.Set] {
	return &Loader[[]models.Set]{
		cached: func() ([]models.Set, bool) {
			sets, ok := c.store.Sets()
			return sets, ok && len(sets) > 0
		},
		stale: c.store.SetsStale,
		fetch: func(ctx context.Context) ([]models.Set, error) {
			var resp struct {
				Sets []models.Set `json:"sets"`
			}
			if err := c.getJSON(ctx, "/sets", nil, &resp); err != nil {
				return nil, err
			}
			return resp.Sets, nil
		},
		save: c.store.PutSets,
		onFail: func(ctx context.Context, err error) {
			c.logFailure(ctx, err, "Catalog client: sets fetch failed")
		},
		value: []models.Set{},
	}
}

func (c *Client) MetaLoader() *Loader[models.Meta] {
	return &Loader[models.Meta]{
		cached: c.store.Meta,
		stale:  c.store.MetaStale,
		fetch: func(ctx context.Context) (models.Meta, error) {
			var meta models.Meta
			err := c.getJSON(ctx, "/meta", nil, &meta)
			return meta, err
		},
		save: c.store.PutMeta,
		onFail: func(ctx context.Context, err error) {
			c.logFailure(ctx, err, "Catalog client: meta fetch failed")
		},
		value: DefaultMeta(),
	}
}

// SetCards loads a whole set ordered by card number.
func (c *Client) SetCards(setID string) *Loader[models.SetCards] {
	return &Loader[models.SetCards]{
		cached: func() (models.SetCards, bool) { return c.store.SetCards(setID) },
		stale:  func() bool { return c.store.SetCardsStale(setID) },
		fetch: func(ctx context.Context) (models.SetCards, error) {
			page, err := c.cardsPage(ctx, setParams(setID, setCardsPageSize, "number"))
			if err != nil {
				return models.SetCards{}, err
			}
			return models.SetCards{Cards: page.Cards, TotalCount: page.TotalCount}, nil
		},
		save: func(data models.SetCards) {
			c.store.PutCardsAndPersist(data.Cards...)
			c.store.PutSetCards(setID, data)
		},
		onFail: func(ctx context.Context, err error) {
			c.logFailure(ctx, err, "Catalog client: set cards fetch failed for "+setID)
		},
	}
}

// FeaturedCards loads the limit highest-rarity cards of a set. limit <= 0
// uses DefaultFeaturedLimit.
func (c *Client) FeaturedCards(setID string, limit int) *Loader[[]models.Card] {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return &Loader[[]models.Card]{
		cached: func() ([]models.Card, bool) { return c.store.Featured(setID) },
		stale:  func() bool { return c.store.FeaturedStale(setID) },
		fetch: func(ctx context.Context) ([]models.Card, error) {
			page, err := c.cardsPage(ctx, setParams(setID, limit, "-rarity"))
			return page.Cards, err
		},
		save: func(cards []models.Card) {
			c.store.PutCardsAndPersist(cards...)
			c.store.PutFeatured(setID, cards)
		},
		onFail: func(ctx context.Context, err error) {
			c.logFailure(ctx, err, "Catalog client: featured fetch failed for "+setID)
		},
		value: []models.Card{},
	}
}

func setParams(setID string, pageSize int, orderBy string) url.Values {
	params := url.Values{}
	params.Set("q", `set.id:"`+setID+`"`)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("orderBy", orderBy)
	return params
}
