// Package sample holds the bundled fallback catalog. It is served when the
// upstream catalog is unreachable and is always resident in the client card
// cache.
package sample

import (
	"github.com/codyseavey/tcg-binder/internal/models"
)

var cards = []models.Card{
	{ID: "base1-4", Name: "Charizard", Set: "Base", SetID: "base1", Number: "4", Rarity: "Rare Holo", Type: "Fire", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/4.png"},
	{ID: "base1-2", Name: "Blastoise", Set: "Base", SetID: "base1", Number: "2", Rarity: "Rare Holo", Type: "Water", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/2.png"},
	{ID: "base1-15", Name: "Venusaur", Set: "Base", SetID: "base1", Number: "15", Rarity: "Rare Holo", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/15.png"},
	{ID: "base1-58", Name: "Pikachu", Set: "Base", SetID: "base1", Number: "58", Rarity: "Common", Type: "Lightning", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/58.png"},
	{ID: "base1-44", Name: "Bulbasaur", Set: "Base", SetID: "base1", Number: "44", Rarity: "Common", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/44.png"},
	{ID: "base1-46", Name: "Charmander", Set: "Base", SetID: "base1", Number: "46", Rarity: "Common", Type: "Fire", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/46.png"},
	{ID: "base1-63", Name: "Squirtle", Set: "Base", SetID: "base1", Number: "63", Rarity: "Common", Type: "Water", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/63.png"},
	{ID: "base1-17", Name: "Beedrill", Set: "Base", SetID: "base1", Number: "17", Rarity: "Rare", Type: "Grass", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/17.png"},
	{ID: "base1-5", Name: "Clefairy", Set: "Base", SetID: "base1", Number: "5", Rarity: "Rare Holo", Type: "Colorless", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/5.png"},
	{ID: "base1-1", Name: "Alakazam", Set: "Base", SetID: "base1", Number: "1", Rarity: "Rare Holo", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/1.png"},
	{ID: "base1-8", Name: "Machamp", Set: "Base", SetID: "base1", Number: "8", Rarity: "Rare Holo", Type: "Fighting", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/8.png"},
	{ID: "base1-10", Name: "Mewtwo", Set: "Base", SetID: "base1", Number: "10", Rarity: "Rare Holo", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/10.png"},
	{ID: "base1-3", Name: "Chansey", Set: "Base", SetID: "base1", Number: "3", Rarity: "Rare Holo", Type: "Colorless", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/3.png"},
	{ID: "base1-7", Name: "Hitmonchan", Set: "Base", SetID: "base1", Number: "7", Rarity: "Rare Holo", Type: "Fighting", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/7.png"},
	{ID: "base1-9", Name: "Magneton", Set: "Base", SetID: "base1", Number: "9", Rarity: "Rare Holo", Type: "Lightning", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/9.png"},
	{ID: "base1-11", Name: "Nidoking", Set: "Base", SetID: "base1", Number: "11", Rarity: "Rare Holo", Type: "Grass", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/11.png"},
	{ID: "base1-12", Name: "Ninetales", Set: "Base", SetID: "base1", Number: "12", Rarity: "Rare Holo", Type: "Fire", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/12.png"},
	{ID: "base1-14", Name: "Raichu", Set: "Base", SetID: "base1", Number: "14", Rarity: "Rare Holo", Type: "Lightning", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/14.png"},
	{ID: "base1-6", Name: "Gyarados", Set: "Base", SetID: "base1", Number: "6", Rarity: "Rare Holo", Type: "Water", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/6.png"},
	{ID: "base1-13", Name: "Poliwrath", Set: "Base", SetID: "base1", Number: "13", Rarity: "Rare Holo", Type: "Water", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/13.png"},
	{ID: "jungle-1", Name: "Clefable", Set: "Jungle", SetID: "jungle", Number: "1", Rarity: "Rare Holo", Type: "Colorless", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/jungle/1.png"},
	{ID: "jungle-2", Name: "Electrode", Set: "Jungle", SetID: "jungle", Number: "2", Rarity: "Rare Holo", Type: "Lightning", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/jungle/2.png"},
	{ID: "jungle-3", Name: "Flareon", Set: "Jungle", SetID: "jungle", Number: "3", Rarity: "Rare Holo", Type: "Fire", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/jungle/3.png"},
	{ID: "jungle-4", Name: "Jolteon", Set: "Jungle", SetID: "jungle", Number: "4", Rarity: "Rare Holo", Type: "Lightning", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/jungle/4.png"},
	{ID: "jungle-5", Name: "Kangaskhan", Set: "Jungle", SetID: "jungle", Number: "5", Rarity: "Rare Holo", Type: "Colorless", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/jungle/5.png"},
	{ID: "jungle-7", Name: "Nidoqueen", Set: "Jungle", SetID: "jungle", Number: "7", Rarity: "Rare Holo", Type: "Grass", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/jungle/7.png"},
	{ID: "jungle-9", Name: "Pinsir", Set: "Jungle", SetID: "jungle", Number: "9", Rarity: "Rare Holo", Type: "Grass", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/jungle/9.png"},
	{ID: "jungle-11", Name: "Snorlax", Set: "Jungle", SetID: "jungle", Number: "11", Rarity: "Rare Holo", Type: "Colorless", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/jungle/11.png"},
	{ID: "jungle-12", Name: "Vaporeon", Set: "Jungle", SetID: "jungle", Number: "12", Rarity: "Rare Holo", Type: "Water", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/jungle/12.png"},
	{ID: "jungle-16", Name: "Wigglytuff", Set: "Jungle", SetID: "jungle", Number: "16", Rarity: "Rare Holo", Type: "Colorless", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/jungle/16.png"},
	{ID: "fossil-1", Name: "Aerodactyl", Set: "Fossil", SetID: "fossil", Number: "1", Rarity: "Rare Holo", Type: "Fighting", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/fossil/1.png"},
	{ID: "fossil-2", Name: "Articuno", Set: "Fossil", SetID: "fossil", Number: "2", Rarity: "Rare Holo", Type: "Water", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/fossil/2.png"},
	{ID: "fossil-3", Name: "Ditto", Set: "Fossil", SetID: "fossil", Number: "3", Rarity: "Rare Holo", Type: "Colorless", Artist: "Keiji Kinebuchi", ImageURL: "https://images.pokemontcg.io/fossil/3.png"},
	{ID: "fossil-5", Name: "Gengar", Set: "Fossil", SetID: "fossil", Number: "5", Rarity: "Rare Holo", Type: "Psychic", Artist: "Keiji Kinebuchi", ImageURL: "https://images.pokemontcg.io/fossil/5.png"},
	{ID: "fossil-6", Name: "Haunter", Set: "Fossil", SetID: "fossil", Number: "6", Rarity: "Rare Holo", Type: "Psychic", Artist: "Keiji Kinebuchi", ImageURL: "https://images.pokemontcg.io/fossil/6.png"},
	{ID: "fossil-7", Name: "Hitmonlee", Set: "Fossil", SetID: "fossil", Number: "7", Rarity: "Rare Holo", Type: "Fighting", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/fossil/7.png"},
	{ID: "fossil-8", Name: "Hypno", Set: "Fossil", SetID: "fossil", Number: "8", Rarity: "Rare Holo", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/fossil/8.png"},
	{ID: "fossil-10", Name: "Lapras", Set: "Fossil", SetID: "fossil", Number: "10", Rarity: "Rare Holo", Type: "Water", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/fossil/10.png"},
	{ID: "fossil-12", Name: "Moltres", Set: "Fossil", SetID: "fossil", Number: "12", Rarity: "Rare Holo", Type: "Fire", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/fossil/12.png"},
	{ID: "fossil-13", Name: "Muk", Set: "Fossil", SetID: "fossil", Number: "13", Rarity: "Rare Holo", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/fossil/13.png"},
	{ID: "fossil-15", Name: "Zapdos", Set: "Fossil", SetID: "fossil", Number: "15", Rarity: "Rare Holo", Type: "Lightning", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/fossil/15.png"},
	{ID: "rocket-1", Name: "Dark Alakazam", Set: "Team Rocket", SetID: "base5", Number: "1", Rarity: "Rare Holo", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base5/1.png"},
	{ID: "rocket-2", Name: "Dark Arbok", Set: "Team Rocket", SetID: "base5", Number: "2", Rarity: "Rare Holo", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base5/2.png"},
	{ID: "rocket-3", Name: "Dark Blastoise", Set: "Team Rocket", SetID: "base5", Number: "3", Rarity: "Rare Holo", Type: "Water", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/base5/3.png"},
	{ID: "rocket-4", Name: "Dark Charizard", Set: "Team Rocket", SetID: "base5", Number: "4", Rarity: "Rare Holo", Type: "Fire", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base5/4.png"},
	{ID: "rocket-7", Name: "Dark Golbat", Set: "Team Rocket", SetID: "base5", Number: "7", Rarity: "Rare Holo", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base5/7.png"},
	{ID: "rocket-8", Name: "Dark Gyarados", Set: "Team Rocket", SetID: "base5", Number: "8", Rarity: "Rare Holo", Type: "Water", Artist: "Kagemaru Himeno", ImageURL: "https://images.pokemontcg.io/base5/8.png"},
	{ID: "rocket-9", Name: "Dark Hypno", Set: "Team Rocket", SetID: "base5", Number: "9", Rarity: "Rare Holo", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base5/9.png"},
	{ID: "rocket-10", Name: "Dark Machamp", Set: "Team Rocket", SetID: "base5", Number: "10", Rarity: "Rare Holo", Type: "Fighting", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base5/10.png"},
	{ID: "rocket-13", Name: "Dark Vileplume", Set: "Team Rocket", SetID: "base5", Number: "13", Rarity: "Rare Holo", Type: "Grass", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base5/13.png"},
	{ID: "base1-23", Name: "Arcanine", Set: "Base", SetID: "base1", Number: "23", Rarity: "Uncommon", Type: "Fire", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/23.png"},
	{ID: "base1-25", Name: "Dewgong", Set: "Base", SetID: "base1", Number: "25", Rarity: "Uncommon", Type: "Water", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/25.png"},
	{ID: "base1-26", Name: "Dratini", Set: "Base", SetID: "base1", Number: "26", Rarity: "Uncommon", Type: "Colorless", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/26.png"},
	{ID: "base1-18", Name: "Dragonair", Set: "Base", SetID: "base1", Number: "18", Rarity: "Rare", Type: "Colorless", Artist: "Mitsuhiro Arita", ImageURL: "https://images.pokemontcg.io/base1/18.png"},
	{ID: "base1-34", Name: "Machoke", Set: "Base", SetID: "base1", Number: "34", Rarity: "Uncommon", Type: "Fighting", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/34.png"},
	{ID: "base1-36", Name: "Magmar", Set: "Base", SetID: "base1", Number: "36", Rarity: "Uncommon", Type: "Fire", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/36.png"},
	{ID: "base1-41", Name: "Seel", Set: "Base", SetID: "base1", Number: "41", Rarity: "Uncommon", Type: "Water", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/41.png"},
	{ID: "base1-49", Name: "Drowzee", Set: "Base", SetID: "base1", Number: "49", Rarity: "Common", Type: "Psychic", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/49.png"},
	{ID: "base1-52", Name: "Growlithe", Set: "Base", SetID: "base1", Number: "52", Rarity: "Common", Type: "Fire", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/52.png"},
	{ID: "base1-55", Name: "Nidoran M", Set: "Base", SetID: "base1", Number: "55", Rarity: "Common", Type: "Grass", Artist: "Ken Sugimori", ImageURL: "https://images.pokemontcg.io/base1/55.png"},
}

var ids = func() map[string]struct{} {
	m := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		m[c.ID] = struct{}{}
	}
	return m
}()

// Cards returns a fresh copy of the sample dataset with status none.
func Cards() []models.Card {
	out := make([]models.Card, len(cards))
	for i, c := range cards {
		out[i] = c.WithStatus(models.StatusNone)
	}
	return out
}

// IsSampleID reports whether id belongs to the sample dataset.
func IsSampleID(id string) bool {
	_, ok := ids[id]
	return ok
}

// Types lists the distinct types in the sample, in first-seen order.
func Types() []string {
	return distinct(func(c models.Card) string { return c.Type })
}

// Rarities lists the distinct rarities in the sample, in first-seen order.
func Rarities() []string {
	return distinct(func(c models.Card) string { return c.Rarity })
}

func distinct(field func(models.Card) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range cards {
		v := field(c)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
