package tcgclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/cardcache"
	"github.com/codyseavey/tcg-binder/internal/clock"
	"github.com/codyseavey/tcg-binder/internal/models"
)

var (
	testEpoch   = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	setIDFilter = regexp.MustCompile(`set\.id:"([^"]+)"`)
)

// fakeServer answers the /api/tcg surface from fixed data.
type fakeServer struct {
	mu       sync.Mutex
	sets     []models.Set
	meta     models.Meta
	cards    []models.Card
	calls    map[string]int
	lastCard url.Values
	// overlap makes each page after the first repeat that many cards of the
	// previous one.
	overlap int
	// gate, when set, holds /cards requests until it is closed.
	gate    chan struct{}
	arrived chan struct{}

	failing atomic.Bool
}

func newFakeServer(nCards int) *fakeServer {
	f := &fakeServer{
		sets:  []models.Set{{ID: "base1", Name: "Base", Total: 102}, {ID: "jungle", Name: "Jungle", Total: 64}},
		meta:  models.Meta{Types: []string{"Fire", "Water"}, Rarities: []string{"Common", "Rare"}, Subtypes: []string{"Basic"}},
		calls: make(map[string]int),
	}
	for i := 1; i <= nCards; i++ {
		f.cards = append(f.cards, models.Card{
			ID:     fmt.Sprintf("tst1-%d", i),
			Name:   fmt.Sprintf("Card %d", i),
			Set:    "Test Set",
			SetID:  "tst1",
			Number: strconv.Itoa(i),
			Rarity: "Common",
			Status: models.StatusOwned,
		})
	}
	return f
}

func (f *fakeServer) start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv.URL
}

func (f *fakeServer) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeServer) setGate() (gate, arrived chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.arrived = make(chan struct{}, 8)
	return f.gate, f.arrived
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	f.mu.Lock()
	f.calls[path]++
	gate, arrived := f.gate, f.arrived
	f.mu.Unlock()

	if f.failing.Load() {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch cards"}`))
		return
	}

	switch {
	case path == "/sets":
		writeJSON(w, map[string]any{"sets": f.sets})
	case path == "/meta":
		writeJSON(w, f.meta)
	case path == "/cards":
		if gate != nil {
			arrived <- struct{}{}
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		f.serveCards(w, r.URL.Query())
	case strings.HasPrefix(path, "/cards/"):
		id := strings.TrimPrefix(path, "/cards/")
		for _, card := range f.cards {
			if card.ID == id {
				writeJSON(w, map[string]any{"card": card})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Card not found"}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeServer) serveCards(w http.ResponseWriter, q url.Values) {
	f.mu.Lock()
	f.lastCard = q
	overlap := f.overlap
	f.mu.Unlock()

	matched := f.cards
	if m := setIDFilter.FindStringSubmatch(q.Get("q")); m != nil {
		matched = nil
		for _, card := range f.cards {
			if card.SetID == m[1] {
				matched = append(matched, card)
			}
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("pageSize"))
	start := (page-1)*size - overlap
	if page == 1 || start < 0 {
		start = (page - 1) * size
	}
	end := start + size
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	writeJSON(w, models.CardsPage{Cards: matched[start:end], TotalCount: len(matched), Page: page, PageSize: size})
}

func (f *fakeServer) lastCardsQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCard
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeServer) (*Client, *clock.Fake) {
	t.Helper()
	return newTestClientWithLogger(t, f, nil)
}

func newTestClientWithLogger(t *testing.T, f *fakeServer, logger *logrus.Logger) (*Client, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(testEpoch)
	store := cardcache.New(cardcache.NewMemoryStorage(0), cardcache.Options{Clock: clk, FlushDelay: time.Hour})
	return New(f.start(t), store, Options{Logger: logger}), clk
}
