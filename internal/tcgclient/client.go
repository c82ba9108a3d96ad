// Package tcgclient is the consumer side of the catalog HTTP surface. Each
// loader serves from the persistent card cache when it can and only goes to
// the network on a miss or a stale entry.
package tcgclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/cardcache"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/models"
)

const (
	apiPrefix          = "/api/tcg"
	defaultParallelism = 6
)

var (
	ErrNotFound   = errors.New("card not found")
	ErrSuperseded = errors.New("request superseded by a newer one")
)

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog server returned %d", e.Status)
}

type Options struct {
	HTTPClient *http.Client
	Logger     *logrus.Logger
	// Parallelism bounds concurrent per-card requests in CardsByID.
	Parallelism int
}

type Client struct {
	baseURL     string
	http        *http.Client
	store       *cardcache.Store
	logger      *logrus.Logger
	parallelism int
}

// New returns a client for the server at baseURL. The store is hydrated from
// its storage before the client is handed out.
func New(baseURL string, store *cardcache.Store, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}
	store.Hydrate()
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        opts.HTTPClient,
		store:       store,
		logger:      opts.Logger,
		parallelism: opts.Parallelism,
	}
}

func (c *Client) Store() *cardcache.Store {
	return c.store
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + apiPrefix + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return &StatusError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Card fetches a single card. A missing card is ErrNotFound.
func (c *Client) Card(ctx context.Context, id string) (models.Card, error) {
	var resp struct {
		Card *models.Card `json:"card"`
	}
	if err := c.getJSON(ctx, "/cards/"+url.PathEscape(id), nil, &resp); err != nil {
		return models.Card{}, err
	}
	if resp.Card == nil {
		return models.Card{}, ErrNotFound
	}
	return resp.Card.WithStatus(models.StatusNone), nil
}

func (c *Client) cardsPage(ctx context.Context, params url.Values) (models.CardsPage, error) {
	var page models.CardsPage
	if err := c.getJSON(ctx, "/cards", params, &page); err != nil {
		return models.CardsPage{}, err
	}
	page.Cards = withoutStatus(page.Cards)
	return page, nil
}

func withoutStatus(cards []models.Card) []models.Card {
	for i := range cards {
		cards[i].Status = models.StatusNone
	}
	return cards
}

// logFailure keeps cancellation out of the warning log.
func (c *Client) logFailure(ctx context.Context, err error, msg string) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		c.logger.WithError(err).Debug(msg)
		return
	}
	c.logger.WithError(err).Warn(msg)
}
