package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/tcg-binder/internal/cache"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/metrics"
	"github.com/codyseavey/tcg-binder/internal/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 250
	DefaultOrderBy  = "-set.releaseDate"

	setsPath = "/sets?orderBy=-releaseDate&pageSize=250"
)

// Catalog API wire types.
type apiCard struct {
	Set    apiSet    `json:"set"`
	Images apiImages `json:"images"`
	Types  []string  `json:"types"`
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Number string    `json:"number"`
	Rarity string    `json:"rarity"`
	Artist string    `json:"artist"`
}

type apiSet struct {
	Images       apiSetImages `json:"images"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Series       string       `json:"series"`
	ReleaseDate  string       `json:"releaseDate"`
	Total        int          `json:"total"`
	PrintedTotal int          `json:"printedTotal"`
}

type apiImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type apiSetImages struct {
	Symbol string `json:"symbol"`
	Logo   string `json:"logo"`
}

type apiCardsResponse struct {
	Data       []apiCard `json:"data"`
	TotalCount int       `json:"totalCount"`
}

type apiCardResponse struct {
	Data apiCard `json:"data"`
}

type apiSetsResponse struct {
	Data []apiSet `json:"data"`
}

type apiStringsResponse struct {
	Data []string `json:"data"`
}

func convertCard(raw apiCard) models.Card {
	card := models.Card{
		ID:           raw.ID,
		Name:         raw.Name,
		Set:          raw.Set.Name,
		SetID:        raw.Set.ID,
		Number:       raw.Number,
		PrintedTotal: raw.Set.PrintedTotal,
		Rarity:       raw.Rarity,
		Artist:       raw.Artist,
		ImageURL:     raw.Images.Small,
		Status:       models.StatusNone,
	}
	if card.Rarity == "" {
		card.Rarity = "Unknown"
	}
	if len(raw.Types) > 0 {
		card.Type = raw.Types[0]
	} else {
		card.Type = "Colorless"
	}
	if card.Artist == "" {
		card.Artist = "Unknown"
	}
	return card
}

func convertSet(raw apiSet) models.Set {
	return models.Set{
		ID:           raw.ID,
		Name:         raw.Name,
		Series:       raw.Series,
		Total:        raw.Total,
		PrintedTotal: raw.PrintedTotal,
		ReleaseDate:  raw.ReleaseDate,
		SymbolURL:    raw.Images.Symbol,
		LogoURL:      raw.Images.Logo,
	}
}

// CardQuery is one card search request.
type CardQuery struct {
	Q        string
	Page     int
	PageSize int
	OrderBy  string
}

// Normalize fills defaults and clamps paging.
func (q CardQuery) Normalize() CardQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.OrderBy == "" {
		q.OrderBy = DefaultOrderBy
	}
	return q
}

// Values is the upstream query string for a normalized query.
func (q CardQuery) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("orderBy", q.OrderBy)
	return v
}

// CatalogService serves sets, meta and card searches through the result cache.
// Identical concurrent misses share one upstream call.
type CatalogService struct {
	upstream Upstream
	cache    *cache.ResultCache
	flight   flightGroup
	logger   *logrus.Logger
}

func NewCatalogService(upstream Upstream, resultCache *cache.ResultCache, logger *logrus.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CatalogService{
		upstream: upstream,
		cache:    resultCache,
		logger:   logger,
	}
}

// FetchSets returns every set, newest release first. Failures propagate.
func (s *CatalogService) FetchSets(ctx context.Context) ([]models.Set, error) {
	const key = "sets"
	if sets, ok := cache.Lookup[[]models.Set](s.cache, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("sets", "hit").Inc()
		return sets, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("sets", "miss").Inc()

	v, err := s.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		var resp apiSetsResponse
		if err := s.upstream.GetJSON(ctx, setsPath, &resp); err != nil {
			return nil, err
		}
		sets := make([]models.Set, len(resp.Data))
		for i, raw := range resp.Data {
			sets[i] = convertSet(raw)
		}
		s.cache.Set(key, sets, cache.TTLSets)
		return sets, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sets: %w", err)
	}
	return v.([]models.Set), nil
}

// FetchMeta loads types, rarities and subtypes concurrently. Any failure
// fails the whole bundle.
func (s *CatalogService) FetchMeta(ctx context.Context) (*models.Meta, error) {
	const key = "meta"
	if meta, ok := cache.Lookup[models.Meta](s.cache, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("meta", "hit").Inc()
		return &meta, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("meta", "miss").Inc()

	v, err := s.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		var types, rarities, subtypes apiStringsResponse
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.upstream.GetJSON(gctx, "/types", &types) })
		g.Go(func() error { return s.upstream.GetJSON(gctx, "/rarities", &rarities) })
		g.Go(func() error { return s.upstream.GetJSON(gctx, "/subtypes", &subtypes) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
		meta := models.Meta{Types: types.Data, Rarities: rarities.Data, Subtypes: subtypes.Data}
		s.cache.Set(key, meta, cache.TTLMeta)
		return meta, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meta: %w", err)
	}
	meta := v.(models.Meta)
	return &meta, nil
}

// FetchCards returns one search page. When the upstream fails and an expired
// entry exists for the same request, that entry is served with Stale set.
func (s *CatalogService) FetchCards(ctx context.Context, q CardQuery) (*models.CardsPage, error) {
	q = q.Normalize()
	params := q.Values()
	key := cache.Key("cards", params)

	if page, ok := cache.Lookup[models.CardsPage](s.cache, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("cards", "hit").Inc()
		return &page, nil
	}

	v, err := s.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		var resp apiCardsResponse
		if err := s.upstream.GetJSON(ctx, "/cards?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		cards := make([]models.Card, len(resp.Data))
		for i, raw := range resp.Data {
			cards[i] = convertCard(raw)
		}
		page := models.CardsPage{
			Cards:      cards,
			TotalCount: resp.TotalCount,
			Page:       q.Page,
			PageSize:   q.PageSize,
		}
		s.cache.Set(key, page, cache.TTLCards)
		return page, nil
	})
	if err == nil {
		metrics.CacheLookupsTotal.WithLabelValues("cards", "miss").Inc()
		page := v.(models.CardsPage)
		return &page, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if page, ok := cache.LookupStale[models.CardsPage](s.cache, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("cards", "stale").Inc()
		s.logger.WithError(err).WithField("key", key).Warn("Catalog: serving stale card page")
		page.Stale = true
		return &page, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("cards", "miss").Inc()
	return nil, fmt.Errorf("failed to fetch cards: %w", err)
}

// FetchCardByID returns nil, nil when the catalog does not know the id (any
// final 4xx). Transport failures and exhausted retries return an error.
func (s *CatalogService) FetchCardByID(ctx context.Context, id string) (*models.Card, error) {
	key := "card:" + id
	if card, ok := cache.Lookup[models.Card](s.cache, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("card", "hit").Inc()
		return &card, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("card", "miss").Inc()

	v, err := s.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		var resp apiCardResponse
		if err := s.upstream.GetJSON(ctx, "/cards/"+url.PathEscape(id), &resp); err != nil {
			return nil, err
		}
		card := convertCard(resp.Data)
		s.cache.Set(key, card, cache.TTLCards)
		return card, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isMissing(err) {
			s.logger.WithError(err).WithField("card_id", id).Debug("Catalog: card lookup returned no data")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch card %s: %w", id, err)
	}
	card := v.(models.Card)
	return &card, nil
}

// isMissing is a final client error from the catalog, such as 404 or 400 for
// a malformed id.
func isMissing(err error) bool {
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		return false
	}
	return upstreamErr.Status >= 400 && upstreamErr.Status < 500 && !retryableStatuses[upstreamErr.Status]
}

// flightGroup coalesces concurrent calls for one key. The shared call runs
// detached from any single caller's cancellation; a cancelled caller stops
// waiting and gets its context error.
type flightGroup struct {
	g singleflight.Group
}

func (f *flightGroup) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := f.g.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
