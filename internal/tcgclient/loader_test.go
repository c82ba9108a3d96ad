package tcgclient

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/tcg-binder/internal/models"
)

func TestSetsLoader_MissBlocksAndCaches(t *testing.T) {
	f := newFakeServer(0)
	client, _ := newTestClient(t, f)

	loader := client.SetsLoader()
	assert.Equal(t, StateIdle, loader.State())

	sets, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, StateSuccess, loader.State())

	cached, ok := client.Store().Sets()
	require.True(t, ok)
	assert.Equal(t, "base1", cached[0].ID)

	// A second loader is served from the fresh cache.
	again, err := client.SetsLoader().Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, f.callCount("/sets"))
}

func TestSetsLoader_StaleServesCachedThenRefreshes(t *testing.T) {
	f := newFakeServer(0)
	client, clk := newTestClient(t, f)
	client.Store().PutSets([]models.Set{{ID: "old", Name: "Old"}})
	clk.Advance(25 * time.Hour)

	loader := client.SetsLoader()
	sets, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "old", sets[0].ID)

	loader.Wait()
	assert.Len(t, loader.Value(), 2)
	assert.Equal(t, 1, f.callCount("/sets"))
	assert.False(t, client.Store().SetsStale())
}

func TestSetsLoader_EmptyCachedListIsAMiss(t *testing.T) {
	f := newFakeServer(0)
	client, _ := newTestClient(t, f)
	client.Store().PutSets([]models.Set{})

	sets, err := client.SetsLoader().Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, sets, 2)
	assert.Equal(t, 1, f.callCount("/sets"))
}

func TestSetsLoader_FailedRefreshKeepsValue(t *testing.T) {
	f := newFakeServer(0)
	f.failing.Store(true)
	client, clk := newTestClient(t, f)
	client.Store().PutSets([]models.Set{{ID: "old"}})
	clk.Advance(25 * time.Hour)

	loader := client.SetsLoader()
	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	loader.Wait()

	assert.Equal(t, StateError, loader.State())
	var statusErr *StatusError
	require.ErrorAs(t, loader.Err(), &statusErr)
	assert.Equal(t, 502, statusErr.Status)
	assert.Equal(t, "old", loader.Value()[0].ID)
}

func TestMetaLoader_DefaultsToSample(t *testing.T) {
	f := newFakeServer(0)
	f.failing.Store(true)
	client, _ := newTestClient(t, f)

	loader := client.MetaLoader()
	assert.Equal(t, DefaultMeta(), loader.Value())
	assert.NotEmpty(t, loader.Value().Types)
	assert.Empty(t, loader.Value().Subtypes)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, loader.State())
	assert.Equal(t, err, loader.Err())
	assert.Equal(t, DefaultMeta(), loader.Value())
	_, ok := client.Store().Meta()
	assert.False(t, ok)
}

func TestMetaLoader_Load(t *testing.T) {
	f := newFakeServer(0)
	client, _ := newTestClient(t, f)

	meta, err := client.MetaLoader().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic"}, meta.Subtypes)
	assert.False(t, client.Store().MetaStale())
}

func TestLoader_CancelledLeavesStateAndCache(t *testing.T) {
	f := newFakeServer(0)
	client, _ := newTestClient(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := client.MetaLoader()
	_, err := loader.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, loader.State())
	assert.NoError(t, loader.Err())
	_, ok := client.Store().Meta()
	assert.False(t, ok)
}

func TestLoader_NewerLoadSupersedes(t *testing.T) {
	f := newFakeServer(3)
	client, _ := newTestClient(t, f)
	gate, arrived := f.setGate()

	loader := client.SetCards("tst1")
	first := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background())
		first <- err
	}()
	<-arrived

	second := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background())
		second <- err
	}()

	assert.ErrorIs(t, <-first, ErrSuperseded)
	<-arrived
	close(gate)
	require.NoError(t, <-second)
	assert.Len(t, loader.Value().Cards, 3)
}

func TestSetCards_QueryAndPersistence(t *testing.T) {
	f := newFakeServer(5)
	client, _ := newTestClient(t, f)

	data, err := client.SetCards("tst1").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, data.TotalCount)
	for _, card := range data.Cards {
		assert.Equal(t, models.StatusNone, card.Status)
	}

	q := f.lastCardsQuery()
	assert.Equal(t, `set.id:"tst1"`, q.Get("q"))
	assert.Equal(t, "number", q.Get("orderBy"))
	assert.Equal(t, "250", q.Get("pageSize"))

	_, ok := client.Store().Card("tst1-3")
	assert.True(t, ok)
	assert.False(t, client.Store().SetCardsStale("tst1"))
}

func TestFeaturedCards(t *testing.T) {
	f := newFakeServer(12)
	client, clk := newTestClient(t, f)

	cards, err := client.FeaturedCards("tst1", 0).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cards, DefaultFeaturedLimit)

	q := f.lastCardsQuery()
	assert.Equal(t, "-rarity", q.Get("orderBy"))
	assert.Equal(t, "8", q.Get("pageSize"))

	featured, ok := client.Store().Featured("tst1")
	require.True(t, ok)
	assert.Len(t, featured, DefaultFeaturedLimit)
	_, ok = client.Store().Card("tst1-1")
	assert.True(t, ok)

	// Fresh within the hour, refetched after.
	_, err = client.FeaturedCards("tst1", 0).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.callCount("/cards"))

	clk.Advance(time.Hour + time.Millisecond)
	loader := client.FeaturedCards("tst1", 0)
	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	loader.Wait()
	assert.Equal(t, 2, f.callCount("/cards"))
}

func TestLoader_FailureIsReportedNotCancelled(t *testing.T) {
	f := newFakeServer(3)
	f.failing.Store(true)
	logger, hook := logtest.NewNullLogger()
	client, _ := newTestClientWithLogger(t, f, logger)

	loaders := map[string]func() (State, error){
		"sets": func() (State, error) {
			l := client.SetsLoader()
			_, err := l.Load(context.Background())
			return l.State(), err
		},
		"set cards": func() (State, error) {
			l := client.SetCards("tst1")
			_, err := l.Load(context.Background())
			return l.State(), err
		},
		"featured": func() (State, error) {
			l := client.FeaturedCards("tst1", 0)
			_, err := l.Load(context.Background())
			return l.State(), err
		},
	}
	for name, load := range loaders {
		t.Run(name, func(t *testing.T) {
			hook.Reset()
			state, err := load()

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, 502, statusErr.Status)
			assert.Equal(t, StateError, state)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.WarnLevel, entry.Level)
		})
	}
}
