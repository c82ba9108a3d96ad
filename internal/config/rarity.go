package config

// DefaultRarityScores is the desirability table used by curation. It is tied
// to the Pokemon TCG rarity taxonomy; labels missing from the table score 0.
func DefaultRarityScores() map[string]int {
	return map[string]int{
		"Special Illustration Rare": 100,
		"Hyper Rare":                96,
		"Rare Secret":               94,
		"Rare Rainbow":              92,
		"Rare Holo Star":            90,
		"Illustration Rare":         88,
		"Ultra Rare":                85,
		"Rare Ultra":                84,
		"Rare Holo VMAX":            82,
		"Rare Holo VSTAR":           80,
		"Rare Shining":              78,
		"Rare Holo V":               76,
		"Double Rare":               74,
		"Rare Holo EX":              72,
		"Rare Holo GX":              70,
		"Rare Holo LV.X":            68,
		"Shiny Ultra Rare":          67,
		"Shiny Rare":                66,
		"Rare Shiny GX":             66,
		"Rare Shiny":                65,
		"ACE SPEC Rare":             64,
		"Radiant Rare":              62,
		"Amazing Rare":              60,
		"Rare Prime":                58,
		"Rare BREAK":                56,
		"LEGEND":                    55,
		"Rare Prism Star":           54,
		"Trainer Gallery Rare Holo": 52,
		"Rare Holo":                 50,
		"Promo":                     45,
		"Rare":                      40,
	}
}
