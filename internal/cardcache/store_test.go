package cardcache

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/sample"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(storage Storage) (*Store, *clock.Fake) {
	clk := clock.NewFake(epoch)
	return New(storage, Options{Clock: clk, FlushDelay: 50 * time.Millisecond}), clk
}

func fetchedCard(n int) models.Card {
	return models.Card{
		ID:     fmt.Sprintf("sv1-%d", n),
		Name:   fmt.Sprintf("Card %d", n),
		Set:    "Scarlet & Violet",
		SetID:  "sv1",
		Rarity: "Common",
		Status: models.StatusNone,
	}
}

func persistedIDs(t *testing.T, storage Storage) []string {
	t.Helper()
	raw, ok, err := storage.Get(KeyCardCache)
	require.NoError(t, err)
	require.True(t, ok)
	var pairs [][2]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &pairs))
	ids := make([]string, len(pairs))
	for i, p := range pairs {
		require.NoError(t, json.Unmarshal(p[0], &ids[i]))
	}
	return ids
}

// failingStorage fails every call.
type failingStorage struct{}

func (failingStorage) Get(string) ([]byte, bool, error) { return nil, false, errors.New("boom") }
func (failingStorage) Set(string, []byte) error         { return errors.New("boom") }
func (failingStorage) Delete(string) error              { return errors.New("boom") }

// countingStorage counts writes per key.
type countingStorage struct {
	*MemoryStorage
	writes atomic.Int32
}

func (c *countingStorage) Set(key string, value []byte) error {
	if key == KeyCardCache {
		c.writes.Add(1)
	}
	return c.MemoryStorage.Set(key, value)
}

func TestStore_SeededWithSample(t *testing.T) {
	store, _ := newTestStore(NewMemoryStorage(0))
	for _, card := range sample.Cards() {
		got, ok := store.Card(card.ID)
		require.True(t, ok, card.ID)
		assert.Equal(t, card.Name, got.Name)
	}
}

func TestStore_CapKeepsMostRecent(t *testing.T) {
	storage := NewMemoryStorage(0)
	store, _ := newTestStore(storage)

	for i := 1; i <= 600; i++ {
		store.PutCards(fetchedCard(i))
	}
	store.Flush()

	ids := persistedIDs(t, storage)
	require.Len(t, ids, DefaultMaxCards)
	assert.Equal(t, "sv1-101", ids[0])
	assert.Equal(t, "sv1-600", ids[len(ids)-1])

	// Everything stays resident in memory.
	_, ok := store.Card("sv1-1")
	assert.True(t, ok)
}

func TestStore_SampleNeverPersisted(t *testing.T) {
	storage := NewMemoryStorage(0)
	store, _ := newTestStore(storage)

	store.PutCards(sample.Cards()...)
	store.PutCards(fetchedCard(1))
	store.Flush()

	assert.Equal(t, []string{"sv1-1"}, persistedIDs(t, storage))
}

func TestStore_FlushRewritesWholeTable(t *testing.T) {
	storage := NewMemoryStorage(0)
	store, _ := newTestStore(storage)

	store.PutCards(fetchedCard(1))
	store.Flush()
	store.PutCards(fetchedCard(2))
	store.Flush()

	assert.Equal(t, []string{"sv1-1", "sv1-2"}, persistedIDs(t, storage))
}

func TestStore_HydrateDoesNotOverwrite(t *testing.T) {
	storage := NewMemoryStorage(0)
	old, _ := newTestStore(storage)
	stale := fetchedCard(1)
	stale.Name = "Persisted Name"
	old.PutCards(stale, fetchedCard(2))
	old.Flush()

	fresh, _ := newTestStore(storage)
	updated := fetchedCard(1)
	updated.Name = "Fresh Name"
	fresh.PutCards(updated)
	fresh.Hydrate()

	got, ok := fresh.Card("sv1-1")
	require.True(t, ok)
	assert.Equal(t, "Fresh Name", got.Name)

	_, ok = fresh.Card("sv1-2")
	assert.True(t, ok)

	// Hydrated entries rank older than this session's writes.
	fresh.Flush()
	assert.Equal(t, []string{"sv1-2", "sv1-1"}, persistedIDs(t, storage))
}

func TestStore_HydrateOnce(t *testing.T) {
	storage := NewMemoryStorage(0)
	seed, _ := newTestStore(storage)
	seed.PutCards(fetchedCard(1))
	seed.Flush()

	store, _ := newTestStore(storage)
	store.Hydrate()

	// A second hydrate after the table changed must not reload.
	seed.PutCards(fetchedCard(2))
	seed.Flush()
	store.Hydrate()

	_, ok := store.Card("sv1-2")
	assert.False(t, ok)
}

func TestStore_HydrateCorruptTable(t *testing.T) {
	storage := NewMemoryStorage(0)
	require.NoError(t, storage.Set(KeyCardCache, []byte("{not json")))

	store, _ := newTestStore(storage)
	store.Hydrate()
	assert.Len(t, store.AllCards(), len(sample.Cards()))
}

func TestStore_ScheduleFlushDebounces(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage(0)}
	store, _ := newTestStore(storage)

	for i := 1; i <= 5; i++ {
		store.PutCardsAndPersist(fetchedCard(i))
	}
	assert.Equal(t, int32(0), storage.writes.Load())

	require.Eventually(t, func() bool { return storage.writes.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), storage.writes.Load())
	assert.Len(t, persistedIDs(t, storage), 5)
}

func TestStore_CloseFlushesPending(t *testing.T) {
	storage := &countingStorage{MemoryStorage: NewMemoryStorage(0)}
	clk := clock.NewFake(epoch)
	store := New(storage, Options{Clock: clk, FlushDelay: time.Hour})

	store.PutCardsAndPersist(fetchedCard(1))
	store.Close()

	assert.Equal(t, int32(1), storage.writes.Load())
	assert.Equal(t, []string{"sv1-1"}, persistedIDs(t, storage))
}

func TestStore_Staleness(t *testing.T) {
	store, clk := newTestStore(NewMemoryStorage(0))

	assert.True(t, store.SetsStale(), "no timestamp is stale")
	store.PutSets([]models.Set{{ID: "base1", Name: "Base"}})
	assert.False(t, store.SetsStale())

	clk.Advance(StaleSets)
	assert.False(t, store.SetsStale(), "exactly at the threshold is fresh")
	clk.Advance(time.Millisecond)
	assert.True(t, store.SetsStale())

	// Stale data is still readable.
	sets, ok := store.Sets()
	require.True(t, ok)
	assert.Equal(t, "base1", sets[0].ID)
}

func TestStore_IndependentTimestamps(t *testing.T) {
	store, clk := newTestStore(NewMemoryStorage(0))

	store.PutSetCards("base1", models.SetCards{Cards: []models.Card{fetchedCard(1)}, TotalCount: 102})
	clk.Advance(30 * time.Minute)
	store.PutMeta(models.Meta{Types: []string{"Fire"}})
	clk.Advance(31 * time.Minute)

	assert.True(t, store.SetCardsStale("base1"))
	assert.False(t, store.MetaStale())
	assert.True(t, store.SetCardsStale("jungle"))

	data, ok := store.SetCards("base1")
	require.True(t, ok)
	assert.Equal(t, 102, data.TotalCount)
}

func TestStore_FeaturedUsesOwnKey(t *testing.T) {
	storage := NewMemoryStorage(0)
	store, _ := newTestStore(storage)

	store.PutFeatured("base1", []models.Card{fetchedCard(1)})
	_, ok := store.SetCards("base1")
	assert.False(t, ok)

	cards, ok := store.Featured("base1")
	require.True(t, ok)
	assert.Len(t, cards, 1)
	assert.False(t, store.FeaturedStale("base1"))
}

func TestStore_StorageFailuresAreMisses(t *testing.T) {
	store, _ := newTestStore(failingStorage{})

	store.PutSets([]models.Set{{ID: "base1"}})
	_, ok := store.Sets()
	assert.False(t, ok)
	assert.True(t, store.SetsStale())

	store.PutCards(fetchedCard(1))
	store.Flush()
	store.Hydrate()
	_, ok = store.Card("sv1-1")
	assert.True(t, ok, "memory table is unaffected by storage failures")
}

func TestStore_QuotaExceededKeepsOldValueAndTimestamp(t *testing.T) {
	storage := NewMemoryStorage(400)
	store, clk := newTestStore(storage)

	store.PutMeta(models.Meta{Types: []string{"Fire"}})
	clk.Advance(25 * time.Hour)

	big := make([]string, 200)
	for i := range big {
		big[i] = fmt.Sprintf("Type %d", i)
	}
	store.PutMeta(models.Meta{Types: big})

	meta, ok := store.Meta()
	require.True(t, ok)
	assert.Equal(t, []string{"Fire"}, meta.Types)
	assert.True(t, store.MetaStale())
}

func TestStore_CardsSplitsMissing(t *testing.T) {
	store, _ := newTestStore(NewMemoryStorage(0))
	store.PutCards(fetchedCard(1))

	found, missing := store.Cards([]string{"sv1-1", "sv1-2"})
	assert.Contains(t, found, "sv1-1")
	assert.Equal(t, []string{"sv1-2"}, missing)
}
