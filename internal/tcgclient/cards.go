package tcgclient

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/tcg-binder/internal/models"
)

// CardsByID resolves ids from the card table and fetches the rest one request
// per id. Ids that cannot be resolved are absent from the result. The only
// error is the context's.
func (c *Client) CardsByID(ctx context.Context, ids []string) (map[string]models.Card, error) {
	found, missing := c.store.Cards(dedupe(ids))
	if len(missing) == 0 {
		return found, nil
	}

	var (
		mu      sync.Mutex
		fetched []models.Card
	)
	var g errgroup.Group
	g.SetLimit(c.parallelism)
	for _, id := range missing {
		g.Go(func() error {
			card, err := c.Card(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					c.logFailure(ctx, err, "Catalog client: card fetch failed for "+id)
				}
				return nil
			}
			mu.Lock()
			fetched = append(fetched, card)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return found, err
	}
	if len(fetched) > 0 {
		c.store.PutCardsAndPersist(fetched...)
	}
	for _, card := range fetched {
		found[card.ID] = card
	}
	return found, nil
}

// UserCards returns the cards whose viewer status is want, with the status
// overlaid, ordered by id. Unresolvable ids are skipped.
func (c *Client) UserCards(ctx context.Context, statuses map[string]models.CardStatus, want models.CardStatus) ([]models.Card, error) {
	var ids []string
	for id, status := range statuses {
		if status == want {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	resolved, err := c.CardsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]models.Card, 0, len(resolved))
	for _, id := range ids {
		if card, ok := resolved[id]; ok {
			cards = append(cards, card.WithStatus(want))
		}
	}
	return cards, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
