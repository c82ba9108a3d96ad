// catalog is a command line client for the catalog server. Responses are kept
// in a local SQLite cache so repeated runs are served without the network
// until entries go stale.
//
// Usage: catalog [-server=<url>] [-db=<path>] <command> [args]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/codyseavey/tcg-binder/internal/cardcache"
	"github.com/codyseavey/tcg-binder/internal/config"
	"github.com/codyseavey/tcg-binder/internal/database"
	"github.com/codyseavey/tcg-binder/internal/logging"
	"github.com/codyseavey/tcg-binder/internal/models"
	"github.com/codyseavey/tcg-binder/internal/sample"
	"github.com/codyseavey/tcg-binder/internal/tcgclient"
)

func usage() {
	fmt.Println("Usage: catalog [-server=<url>] [-db=<path>] <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  sets                          List all sets")
	fmt.Println("  meta                          List types, rarities and subtypes")
	fmt.Println("  search [flags]                Search cards (-q, -set, -type, -rarity, -artist, -pages)")
	fmt.Println("  cards <id>...                 Resolve cards by id")
	fmt.Println("  featured <setId> [-limit=8]   Highest rarity cards of a set")
	fmt.Println("  set <setId>                   All cards of a set")
	fmt.Println("  user -status=owned <id=status>...")
	fmt.Println("                                Cards with the given viewer status")
	fmt.Println("  cache                         Show what the local cache holds")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  catalog search -q=char -type=Fire,Water -pages=2")
	fmt.Println("  catalog user -status=owned base1-4=owned base1-2=wishlist")
}

func main() {
	serverURL := flag.String("server", envOr("CATALOG_SERVER", "http://localhost:8080"), "catalog server base URL")
	dbPath := flag.String("db", envOr("CATALOG_CACHE_DB", "./catalog_cache.db"), "path to the local cache database")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	logger := logging.New(config.Logger{Level: *logLevel, Format: "text"})

	kv, err := database.OpenKVStore(*dbPath)
	if err != nil {
		logger.Fatalf("Failed to open cache database: %v", err)
	}
	defer kv.Close()

	store := cardcache.New(kv, cardcache.Options{Logger: logger})
	// Pending card table writes land before the database closes.
	defer store.Close()

	client := tcgclient.New(*serverURL, store, tcgclient.Options{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client, kv, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Errorf("%s: %v", flag.Arg(0), err)
		store.Close()
		kv.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, client *tcgclient.Client, kv *database.KVStore, command string, args []string) error {
	switch command {
	case "sets":
		loader := client.SetsLoader()
		sets, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		for _, set := range sets {
			fmt.Printf("%-12s %-40s %-24s %s\n", set.ID, set.Name, set.Series, set.ReleaseDate)
		}
		loader.Wait()
		return nil

	case "meta":
		loader := client.MetaLoader()
		meta, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Types:    %s\n", strings.Join(meta.Types, ", "))
		fmt.Printf("Rarities: %s\n", strings.Join(meta.Rarities, ", "))
		fmt.Printf("Subtypes: %s\n", strings.Join(meta.Subtypes, ", "))
		loader.Wait()
		return nil

	case "search":
		return runSearch(ctx, client, args)

	case "cards":
		if len(args) == 0 {
			return fmt.Errorf("at least one card id is required")
		}
		found, err := client.CardsByID(ctx, args)
		if err != nil {
			return err
		}
		for _, id := range args {
			if card, ok := found[id]; ok {
				printCard(card)
			} else {
				fmt.Printf("%-16s (not found)\n", id)
			}
		}
		return nil

	case "featured":
		fs := flag.NewFlagSet("featured", flag.ExitOnError)
		limit := fs.Int("limit", tcgclient.DefaultFeaturedLimit, "number of cards")
		if len(args) == 0 {
			return fmt.Errorf("a set id is required")
		}
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		loader := client.FeaturedCards(args[0], *limit)
		cards, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		printCards(cards)
		loader.Wait()
		return nil

	case "set":
		if len(args) != 1 {
			return fmt.Errorf("exactly one set id is required")
		}
		loader := client.SetCards(args[0])
		data, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		printCards(data.Cards)
		fmt.Printf("%d of %d cards\n", len(data.Cards), data.TotalCount)
		loader.Wait()
		return nil

	case "user":
		return runUser(ctx, client, args)

	case "cache":
		return runCache(os.Stdout, kv, client.Store())

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runSearch(ctx context.Context, client *tcgclient.Client, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	text := fs.String("q", "", "card name prefix")
	sets := fs.String("set", "", "comma separated set names")
	types := fs.String("type", "", "comma separated types")
	rarities := fs.String("rarity", "", "comma separated rarities")
	artists := fs.String("artist", "", "comma separated artists")
	orderBy := fs.String("order", "", "orderBy field, e.g. number or -rarity")
	pageSize := fs.Int("page-size", tcgclient.DefaultPageSize, "cards per page")
	pages := fs.Int("pages", 1, "number of pages to load")
	if err := fs.Parse(args); err != nil {
		return err
	}

	search := client.NewSearch(tcgclient.Query{
		Text: *text,
		Filters: models.CardFilters{
			Set:    splitCSV(*sets),
			Type:   splitCSV(*types),
			Rarity: splitCSV(*rarities),
			Artist: splitCSV(*artists),
		},
		OrderBy:  *orderBy,
		PageSize: *pageSize,
	})

	res, err := search.Load(ctx)
	for i := 1; err == nil && i < *pages && !res.Done; i++ {
		res, err = search.LoadMore(ctx)
	}
	if err != nil && res.State != tcgclient.StateFallbackServed {
		return err
	}

	printCards(res.Cards)
	switch {
	case res.State == tcgclient.StateFallbackServed:
		fmt.Printf("Search failed (%v); showing %d sample cards\n", err, len(res.Cards))
	case res.Stale:
		fmt.Printf("%d of %d cards (using cached results)\n", len(res.Cards), res.TotalCount)
	default:
		fmt.Printf("%d of %d cards\n", len(res.Cards), res.TotalCount)
	}
	return nil
}

// runUser reads id=status pairs and lists the cards matching -status.
func runUser(ctx context.Context, client *tcgclient.Client, args []string) error {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	status := fs.String("status", string(models.StatusOwned), "owned or wishlist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	statuses := make(map[string]models.CardStatus)
	for _, pair := range fs.Args() {
		id, st, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return fmt.Errorf("expected id=status, got %q", pair)
		}
		statuses[id] = models.CardStatus(st)
	}

	cards, err := client.UserCards(ctx, statuses, models.CardStatus(*status))
	if err != nil {
		return err
	}
	printCards(cards)
	return nil
}

// runCache lists the persisted keys and how many cards are resident.
func runCache(w io.Writer, kv *database.KVStore, store *cardcache.Store) error {
	keys, err := kv.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(w, key)
	}

	cards := store.AllCards()
	fetched := 0
	for _, card := range cards {
		if !sample.IsSampleID(card.ID) {
			fetched++
		}
	}
	fmt.Fprintf(w, "%d keys, %d cards resident (%d fetched, %d sample)\n", len(keys), len(cards), fetched, len(cards)-fetched)
	return nil
}

func printCards(cards []models.Card) {
	for _, card := range cards {
		printCard(card)
	}
}

func printCard(card models.Card) {
	fmt.Printf("%-16s %-32s %-24s %-6s %s\n", card.ID, card.Name, card.Rarity, card.Number, card.Set)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
