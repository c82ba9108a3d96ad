package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/tcg-binder/internal/cache"
	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/config"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/metrics"
	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/seeded"
)

// ErrCuratedUnavailable means no curated list could be built and nothing was
// cached to fall back on.
var ErrCuratedUnavailable = errors.New("curated cards are temporarily unavailable")

const curatedLatestKey = "curated:latest"

// Curator builds the rotating editor's picks list. Every window of
// conf.Window gets its own seed, so output is stable inside a window.
type Curator struct {
	catalog *CatalogService
	cache   *cache.ResultCache
	conf    config.Curation
	scores  map[string]int
	clock   clock.Clock
	flight  flightGroup
	logger  *logrus.Logger
}

func NewCurator(catalog *CatalogService, resultCache *cache.ResultCache, conf config.Curation, clk clock.Clock, logger *logrus.Logger) *Curator {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	table := conf.RarityScores
	if len(table) == 0 {
		table = config.DefaultRarityScores()
	}
	return &Curator{
		catalog: catalog,
		cache:   resultCache,
		conf:    conf,
		scores:  NormalizeScores(table),
		clock:   clk,
		logger:  logger,
	}
}

// NormalizeScores lowercases rarity labels for case-insensitive lookup.
func NormalizeScores(table map[string]int) map[string]int {
	out := make(map[string]int, len(table))
	for k, v := range table {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// ScoreCard is the desirability of a card: its rarity score, plus bonus when
// the card is numbered past printedTotal. scores must be normalized.
func ScoreCard(card models.Card, printedTotal int, scores map[string]int, bonus int) int {
	score := scores[strings.ToLower(card.Rarity)]
	if card.IsSecret(printedTotal) {
		score += bonus
	}
	return score
}

// WindowKey is the index of the curation window containing t.
func (c *Curator) WindowKey(t time.Time) int64 {
	return t.UnixMilli() / c.conf.Window.Milliseconds()
}

func windowCacheKey(windowKey int64) string {
	return fmt.Sprintf("curated:%d", windowKey)
}

// Curated returns the picks for the current window. A failed build falls back
// to the latest successful result; without one it returns
// ErrCuratedUnavailable. The build runs detached from ctx, so a caller that
// gives up still leaves the result cached for the next one.
func (c *Curator) Curated(ctx context.Context) (*models.CuratedResult, error) {
	windowKey := c.WindowKey(c.clock.Now())
	key := windowCacheKey(windowKey)

	if result, ok := cache.Lookup[models.CuratedResult](c.cache, key); ok {
		metrics.CuratedBuildsTotal.WithLabelValues("cached").Inc()
		return &result, nil
	}

	v, err := c.flight.Do(ctx, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		result, err := c.build(ctx, windowKey)
		if err != nil {
			return nil, err
		}
		metrics.CuratedBuildDuration.Observe(time.Since(start).Seconds())
		c.cache.Set(key, *result, c.conf.Window)
		c.cache.Set(curatedLatestKey, *result, 4*c.conf.Window)
		return *result, nil
	})
	if err == nil {
		metrics.CuratedBuildsTotal.WithLabelValues("built").Inc()
		result := v.(models.CuratedResult)
		return &result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// The window entry outlives its window, so a miss above means this window
	// never built and only the latest result can stand in.
	log := c.logger.WithError(err).WithField("window_key", windowKey)
	if result, ok := cache.LookupStale[models.CuratedResult](c.cache, curatedLatestKey); ok {
		metrics.CuratedBuildsTotal.WithLabelValues("stale_latest").Inc()
		log.Warnf("Curator: build failed, serving latest result from window %d", result.WindowKey)
		return &result, nil
	}
	metrics.CuratedBuildsTotal.WithLabelValues("unavailable").Inc()
	log.Error("Curator: build failed with no cached fallback")
	return nil, fmt.Errorf("%w: %v", ErrCuratedUnavailable, err)
}

func (c *Curator) build(ctx context.Context, windowKey int64) (*models.CuratedResult, error) {
	sets, err := c.catalog.FetchSets(ctx)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, errors.New("no sets available")
	}

	order := seeded.Shuffled(seeded.NewMulberry32(uint32(windowKey)), sets)

	picks := make([]models.Card, 0, c.conf.Target)
	seen := make(map[string]bool)
	consulted, usable := 0, 0
	batchSize := c.conf.FirstBatch

	for consulted < len(order) && consulted < c.conf.MaxSets && len(picks) < c.conf.Target {
		n := min(batchSize, c.conf.MaxSets-consulted, len(order)-consulted)
		batch := order[consulted : consulted+n]
		consulted += n
		batchSize = c.conf.NextBatch

		for i, cards := range c.fetchBatch(ctx, batch) {
			if len(cards) == 0 {
				continue
			}
			usable++
			for _, card := range c.topPicks(cards, batch[i]) {
				if seen[card.ID] {
					continue
				}
				seen[card.ID] = true
				picks = append(picks, card)
			}
		}
	}
	metrics.CuratedSetsConsulted.Observe(float64(consulted))

	if usable == 0 {
		return nil, fmt.Errorf("none of %d consulted sets returned cards", consulted)
	}
	if len(picks) > c.conf.Target {
		picks = picks[:c.conf.Target]
	}
	c.logger.WithFields(logrus.Fields{
		"window_key": windowKey,
		"sets":       consulted,
		"cards":      len(picks),
	}).Info("Curator: built curated list")
	return &models.CuratedResult{Cards: picks, WindowKey: windowKey}, nil
}

// fetchBatch searches each set in parallel. A failed set yields nil in its
// slot and never aborts the others.
func (c *Curator) fetchBatch(ctx context.Context, sets []models.Set) [][]models.Card {
	results := make([][]models.Card, len(sets))

	var g errgroup.Group
	if c.conf.Parallelism > 0 {
		g.SetLimit(c.conf.Parallelism)
	}
	for i, set := range sets {
		g.Go(func() error {
			page, err := c.catalog.FetchCards(ctx, CardQuery{
				Q:        fmt.Sprintf(`set.id:"%s"`, set.ID),
				Page:     1,
				PageSize: c.conf.PerSetFetch,
				OrderBy:  "number",
			})
			if err != nil {
				c.logger.WithError(err).WithField("set_id", set.ID).Warn("Curator: set search failed")
				return nil
			}
			results[i] = page.Cards
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// topPicks returns up to PerSetPicks cards by descending score. Ties keep the
// number order the search returned.
func (c *Curator) topPicks(cards []models.Card, set models.Set) []models.Card {
	type scored struct {
		card  models.Card
		score int
	}
	ranked := make([]scored, len(cards))
	for i, card := range cards {
		printed := set.CountedTotal()
		if printed == 0 {
			printed = card.PrintedTotal
		}
		ranked[i] = scored{card: card, score: ScoreCard(card, printed, c.scores, c.conf.SecretBonus)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	n := min(c.conf.PerSetPicks, len(ranked))
	out := make([]models.Card, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].card
	}
	return out
}
