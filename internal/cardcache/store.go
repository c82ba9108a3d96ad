// Package cardcache is the client side persistent cache: sets, meta, per-set
// card lists and a card-by-id table, each under its own storage key with an
// independent last-write timestamp.
//
// Storage failures never reach callers. A failed read is a cache miss and a
// failed write is dropped.
package cardcache

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/sample"
)

const (
	KeySets       = "tcg_sets"
	KeyMeta       = "tcg_meta"
	KeyCardCache  = "tcg_card_cache"
	KeyTimestamps = "tcg_cache_timestamps"

	StaleSets     = 24 * time.Hour
	StaleMeta     = 24 * time.Hour
	StaleSetCards = time.Hour
	StaleFeatured = time.Hour

	DefaultMaxCards   = 500
	DefaultFlushDelay = 2 * time.Second
)

func SetCardsKey(setID string) string {
	return "tcg_set_cards_" + setID
}

func FeaturedKey(setID string) string {
	return "tcg_set_featured_" + setID
}

type Options struct {
	Clock  clock.Clock
	Logger *logrus.Logger
	// FlushDelay is the trailing delay of ScheduleFlush.
	FlushDelay time.Duration
	// MaxCards caps the persisted card table.
	MaxCards int
}

// Store is safe for concurrent use. Writers to different keys never
// conflict; writers to the same key are last-write-wins.
type Store struct {
	storage    Storage
	clock      clock.Clock
	logger     *logrus.Logger
	flushDelay time.Duration

	mu     sync.RWMutex
	cards  map[string]models.Card
	recent *lru.Cache[string, struct{}] // non-sample ids, oldest first

	tsMu sync.Mutex

	timerMu sync.Mutex
	timer   *time.Timer
	flushMu sync.Mutex

	hydrateOnce sync.Once
}

func New(storage Storage, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = DefaultFlushDelay
	}
	if opts.MaxCards <= 0 {
		opts.MaxCards = DefaultMaxCards
	}
	recent, err := lru.New[string, struct{}](opts.MaxCards)
	if err != nil {
		panic(fmt.Sprintf("cardcache: %v", err))
	}

	s := &Store{
		storage:    storage,
		clock:      opts.Clock,
		logger:     opts.Logger,
		flushDelay: opts.FlushDelay,
		cards:      make(map[string]models.Card),
		recent:     recent,
	}
	for _, card := range sample.Cards() {
		s.cards[card.ID] = card
	}
	return s
}

func (s *Store) Card(id string) (models.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	return card, ok
}

// Cards splits ids into resolved cards and ids missing from the table.
func (s *Store) Cards(ids []string) (map[string]models.Card, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]models.Card, len(ids))
	var missing []string
	for _, id := range ids {
		if card, ok := s.cards[id]; ok {
			found[id] = card
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// PutCards adds cards to the in-memory table without persisting.
func (s *Store) PutCards(cards ...models.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range cards {
		card.Status = models.StatusNone
		s.cards[card.ID] = card
		if !sample.IsSampleID(card.ID) {
			s.recent.Add(card.ID, struct{}{})
		}
	}
}

// PutCardsAndPersist adds cards and schedules a debounced flush.
func (s *Store) PutCardsAndPersist(cards ...models.Card) {
	s.PutCards(cards...)
	s.ScheduleFlush()
}

func (s *Store) AllCards() []models.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Card, 0, len(s.cards))
	for _, card := range s.cards {
		out = append(out, card)
	}
	return out
}

// ScheduleFlush flushes the card table after FlushDelay. Calls inside the
// delay push the flush back, so a burst of writes costs one storage write.
func (s *Store) ScheduleFlush() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.flushDelay, s.Flush)
}

// Flush writes the most recent MaxCards non-sample cards now, replacing
// whatever was persisted before.
func (s *Store) Flush() {
	s.timerMu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerMu.Unlock()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	ids := s.recent.Keys()
	pairs := make([][2]any, 0, len(ids))
	for _, id := range ids {
		if card, ok := s.cards[id]; ok {
			pairs = append(pairs, [2]any{id, card})
		}
	}
	s.mu.RUnlock()

	data, err := json.Marshal(pairs)
	if err != nil {
		s.logger.WithError(err).Debug("Card cache: failed to encode card table")
		return
	}
	if err := s.storage.Set(KeyCardCache, data); err != nil {
		s.logger.WithError(err).Debug("Card cache: failed to persist card table")
	}
}

// Close cancels any pending flush and flushes synchronously.
func (s *Store) Close() {
	s.Flush()
}

// Hydrate merges the persisted card table into memory once per Store.
// Entries already in memory win. Later calls do nothing.
func (s *Store) Hydrate() {
	s.hydrateOnce.Do(s.hydrate)
}

func (s *Store) hydrate() {
	raw, ok := s.read(KeyCardCache)
	if !ok {
		return
	}
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		s.logger.WithError(err).Debug("Card cache: discarding unreadable card table")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Persisted entries are older than anything added this session.
	current := s.recent.Keys()
	s.recent.Purge()
	for _, pair := range pairs {
		var id string
		var card models.Card
		if json.Unmarshal(pair[0], &id) != nil || json.Unmarshal(pair[1], &card) != nil {
			continue
		}
		if _, exists := s.cards[id]; exists || sample.IsSampleID(id) {
			continue
		}
		card.Status = models.StatusNone
		s.cards[id] = card
		s.recent.Add(id, struct{}{})
	}
	for _, id := range current {
		s.recent.Add(id, struct{}{})
	}
}

func (s *Store) Sets() ([]models.Set, bool) {
	return readJSON[[]models.Set](s, KeySets)
}

func (s *Store) PutSets(sets []models.Set) {
	s.writeJSON(KeySets, sets)
}

func (s *Store) SetsStale() bool {
	return s.IsStale(KeySets, StaleSets)
}

func (s *Store) Meta() (models.Meta, bool) {
	return readJSON[models.Meta](s, KeyMeta)
}

func (s *Store) PutMeta(meta models.Meta) {
	s.writeJSON(KeyMeta, meta)
}

func (s *Store) MetaStale() bool {
	return s.IsStale(KeyMeta, StaleMeta)
}

func (s *Store) SetCards(setID string) (models.SetCards, bool) {
	return readJSON[models.SetCards](s, SetCardsKey(setID))
}

func (s *Store) PutSetCards(setID string, data models.SetCards) {
	s.writeJSON(SetCardsKey(setID), data)
}

func (s *Store) SetCardsStale(setID string) bool {
	return s.IsStale(SetCardsKey(setID), StaleSetCards)
}

func (s *Store) Featured(setID string) ([]models.Card, bool) {
	return readJSON[[]models.Card](s, FeaturedKey(setID))
}

func (s *Store) PutFeatured(setID string, cards []models.Card) {
	s.writeJSON(FeaturedKey(setID), cards)
}

func (s *Store) FeaturedStale(setID string) bool {
	return s.IsStale(FeaturedKey(setID), StaleFeatured)
}

// IsStale reports whether key was last written more than threshold ago.
// A key with no timestamp is stale.
func (s *Store) IsStale(key string, threshold time.Duration) bool {
	ts, ok := s.timestamps()[key]
	if !ok {
		return true
	}
	return s.clock.Now().UnixMilli()-ts > threshold.Milliseconds()
}

func (s *Store) timestamps() map[string]int64 {
	out := map[string]int64{}
	raw, ok := s.read(KeyTimestamps)
	if !ok {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]int64{}
	}
	return out
}

func (s *Store) stamp(key string) {
	s.tsMu.Lock()
	defer s.tsMu.Unlock()
	ts := s.timestamps()
	ts[key] = s.clock.Now().UnixMilli()
	data, err := json.Marshal(ts)
	if err != nil {
		return
	}
	if err := s.storage.Set(KeyTimestamps, data); err != nil {
		s.logger.WithError(err).Debug("Card cache: failed to write timestamps")
	}
}

func (s *Store) read(key string) ([]byte, bool) {
	raw, ok, err := s.storage.Get(key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Debug("Card cache: read failed")
		return nil, false
	}
	return raw, ok
}

func readJSON[T any](s *Store, key string) (T, bool) {
	var out T
	raw, ok := s.read(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.WithError(err).WithField("key", key).Debug("Card cache: unreadable value")
		var zero T
		return zero, false
	}
	return out, true
}

// writeJSON stores v and stamps key. The timestamp is only moved when the
// value was written.
func (s *Store) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Debug("Card cache: encode failed")
		return
	}
	if err := s.storage.Set(key, data); err != nil {
		s.logger.WithError(err).WithField("key", key).Debug("Card cache: write failed")
		return
	}
	s.stamp(key)
}
