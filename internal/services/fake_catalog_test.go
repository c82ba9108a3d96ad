package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/codyseavey/tcg-binder/internal/config"
)

// fakeCatalog is an in-process stand-in for the Pokemon TCG API.
type fakeCatalog struct {
	mu       sync.Mutex
	sets     []apiSet
	cards    map[string][]apiCard // by set id
	calls    map[string]int       // by path
	failing  atomic.Bool
	failWith int
}

var setIDQuery = regexp.MustCompile(`set\.id:"([^"]+)"`)

// newFakeCatalog builds nSets sets of perSet cards. Each set prints perSet-5
// cards, so the last five of every set are secret rares.
func newFakeCatalog(nSets, perSet int) *fakeCatalog {
	f := &fakeCatalog{
		cards:    make(map[string][]apiCard),
		calls:    make(map[string]int),
		failWith: http.StatusInternalServerError,
	}
	for s := 0; s < nSets; s++ {
		set := apiSet{
			ID:           fmt.Sprintf("set%02d", s),
			Name:         fmt.Sprintf("Set %02d", s),
			Series:       "Test",
			Total:        perSet,
			PrintedTotal: perSet - 5,
			ReleaseDate:  fmt.Sprintf("2020/01/%02d", s+1),
		}
		f.sets = append(f.sets, set)
		for n := 1; n <= perSet; n++ {
			rarity := "Common"
			if n%3 == 0 {
				rarity = "Rare Holo"
			}
			f.cards[set.ID] = append(f.cards[set.ID], apiCard{
				ID:     fmt.Sprintf("%s-%d", set.ID, n),
				Name:   fmt.Sprintf("Card %d", n),
				Number: strconv.Itoa(n),
				Rarity: rarity,
				Types:  []string{"Fire"},
				Artist: "Tester",
				Set:    set,
			})
		}
	}
	return f
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	if f.failing.Load() {
		w.WriteHeader(f.failWith)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/sets":
		_ = json.NewEncoder(w).Encode(apiSetsResponse{Data: f.sets})
	case r.URL.Path == "/types":
		_ = json.NewEncoder(w).Encode(apiStringsResponse{Data: []string{"Fire", "Water"}})
	case r.URL.Path == "/rarities":
		_ = json.NewEncoder(w).Encode(apiStringsResponse{Data: []string{"Common", "Rare Holo"}})
	case r.URL.Path == "/subtypes":
		_ = json.NewEncoder(w).Encode(apiStringsResponse{Data: []string{"Basic"}})
	case r.URL.Path == "/cards":
		f.serveSearch(w, r)
	case len(r.URL.Path) > len("/cards/") && r.URL.Path[:len("/cards/")] == "/cards/":
		id := r.URL.Path[len("/cards/"):]
		for _, cards := range f.cards {
			for _, c := range cards {
				if c.ID == id {
					_ = json.NewEncoder(w).Encode(apiCardResponse{Data: c})
					return
				}
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeCatalog) serveSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var matched []apiCard
	if m := setIDQuery.FindStringSubmatch(q.Get("q")); m != nil {
		matched = f.cards[m[1]]
	} else {
		for _, s := range f.sets {
			matched = append(matched, f.cards[s.ID]...)
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))
	_ = json.NewEncoder(w).Encode(apiCardsResponse{Data: matched[start:end], TotalCount: len(matched)})
}

func (f *fakeCatalog) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeCatalog) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeCatalog) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return server
}

func testUpstreamConfig(baseURL string) config.Upstream {
	return config.Upstream{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
	}
}
