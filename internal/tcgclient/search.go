package tcgclient

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/sample"
)

const (
	DefaultPageSize = 20
	maxPageSize     = 250
)

// BuildQuery turns free text and facet filters into the catalog query
// grammar. Facets are OR-groups joined by spaces; an empty result means no
// constraint.
func BuildQuery(text string, filters models.CardFilters) string {
	var parts []string
	if text = strings.TrimSpace(text); text != "" {
		parts = append(parts, `name:"`+text+`*"`)
	}
	facets := []struct {
		field  string
		values []string
	}{
		{"set.name", filters.Set},
		{"types", filters.Type},
		{"rarity", filters.Rarity},
		{"artist", filters.Artist},
	}
	for _, f := range facets {
		if len(f.values) == 0 {
			continue
		}
		quoted := make([]string, len(f.values))
		for i, v := range f.values {
			quoted[i] = `"` + v + `"`
		}
		parts = append(parts, f.field+":("+strings.Join(quoted, " OR ")+")")
	}
	return strings.Join(parts, " ")
}

// Accumulator collects pages of results, dropping ids it has already seen.
type Accumulator struct {
	cards []models.Card
	seen  map[string]struct{}
	done  bool
}

// Add appends the unseen cards of page and returns how many were new. A page
// shorter than pageSize marks the end of the results.
func (a *Accumulator) Add(page []models.Card, pageSize int) int {
	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	added := 0
	for _, card := range page {
		if _, dup := a.seen[card.ID]; dup {
			continue
		}
		a.seen[card.ID] = struct{}{}
		a.cards = append(a.cards, card)
		added++
	}
	if len(page) < pageSize {
		a.done = true
	}
	return added
}

func (a *Accumulator) Cards() []models.Card {
	out := make([]models.Card, len(a.cards))
	copy(out, a.cards)
	return out
}

func (a *Accumulator) Len() int   { return len(a.cards) }
func (a *Accumulator) Done() bool { return a.done }

func (a *Accumulator) Reset() {
	a.cards = nil
	a.seen = nil
	a.done = false
}

// Query is the shape of a search. Raw, when set, is sent as-is and Text and
// Filters are ignored.
type Query struct {
	Text     string
	Filters  models.CardFilters
	Raw      string
	OrderBy  string
	PageSize int
}

func (q Query) q() string {
	if q.Raw != "" {
		return q.Raw
	}
	return BuildQuery(q.Text, q.Filters)
}

func (q Query) pageSize() int {
	switch {
	case q.PageSize <= 0:
		return DefaultPageSize
	case q.PageSize > maxPageSize:
		return maxPageSize
	default:
		return q.PageSize
	}
}

// shape identifies queries that page through the same result list.
func (q Query) shape() string {
	return q.q() + "\x00" + q.OrderBy + "\x00" + strconv.Itoa(q.pageSize())
}

func (q Query) params(page int) url.Values {
	params := url.Values{}
	if s := q.q(); s != "" {
		params.Set("q", s)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(q.pageSize()))
	if q.OrderBy != "" {
		params.Set("orderBy", q.OrderBy)
	}
	return params
}

type SearchResult struct {
	Cards      []models.Card
	TotalCount int
	Page       int
	PageSize   int
	Done       bool
	Stale      bool
	State      State
}

// Search pages through one query at a time. At most one page request is in
// flight, so pages are applied in request order.
type Search struct {
	client *Client

	mu      sync.Mutex
	query   Query
	acc     Accumulator
	page    int
	total   int
	stale   bool
	state   State
	err     error
	loading bool
	gen     uint64
	cancel  context.CancelFunc
}

func (c *Client) NewSearch(q Query) *Search {
	return &Search{client: c, query: q}
}

// SetQuery switches to q. When the shape changed, the in-flight request is
// cancelled, the cursor goes back to page 1 and the accumulator is cleared.
func (s *Search) SetQuery(q Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.shape() == s.query.shape() {
		return false
	}
	s.query = q
	s.resetLocked()
	return true
}

func (s *Search) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.acc.Reset()
	s.page, s.total, s.stale = 0, 0, false
	s.state, s.err, s.loading = StateIdle, nil, false
}

// Load fetches the first page, replacing anything accumulated.
func (s *Search) Load(ctx context.Context) (SearchResult, error) {
	return s.fetch(ctx, true)
}

// LoadMore fetches the next page. It does nothing while a page is loading or
// once the end of the results was reached.
func (s *Search) LoadMore(ctx context.Context) (SearchResult, error) {
	return s.fetch(ctx, false)
}

func (s *Search) fetch(parent context.Context, reset bool) (SearchResult, error) {
	s.mu.Lock()
	if reset {
		s.resetLocked()
	} else if s.loading || s.acc.Done() {
		res := s.resultLocked()
		s.mu.Unlock()
		return res, nil
	}
	page := s.page + 1
	query := s.query
	prev := s.state
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.loading = true
	s.state = StateLoading
	s.mu.Unlock()
	defer cancel()

	resp, err := s.client.cardsPage(ctx, query.params(page))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return SearchResult{}, ErrSuperseded
	}
	s.loading = false
	s.cancel = nil

	if err != nil {
		if ctx.Err() != nil {
			s.state = prev
			return SearchResult{}, ctx.Err()
		}
		s.client.logFailure(ctx, err, "Catalog client: search failed, serving sample cards")
		s.state, s.err = StateFallbackServed, err
		return s.resultLocked(), err
	}

	s.client.store.PutCardsAndPersist(resp.Cards...)
	s.acc.Add(resp.Cards, query.pageSize())
	s.page = page
	s.total = resp.TotalCount
	s.stale = resp.Stale
	s.state, s.err = StateSuccess, nil
	return s.resultLocked(), nil
}

func (s *Search) resultLocked() SearchResult {
	if s.state == StateFallbackServed {
		cards := sample.Cards()
		return SearchResult{
			Cards:      cards,
			TotalCount: len(cards),
			Page:       1,
			PageSize:   len(cards),
			Done:       true,
			State:      StateFallbackServed,
		}
	}
	return SearchResult{
		Cards:      s.acc.Cards(),
		TotalCount: s.total,
		Page:       s.page,
		PageSize:   s.query.pageSize(),
		Done:       s.acc.Done(),
		Stale:      s.stale,
		State:      s.state,
	}
}

// Result is the current view without touching the network.
func (s *Search) Result() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked()
}

func (s *Search) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel aborts the in-flight page request, if any.
func (s *Search) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
