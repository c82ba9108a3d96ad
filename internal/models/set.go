package models

// Set is a release grouping of cards. Immutable once fetched.
type Set struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	Total        int    `json:"total"`
	PrintedTotal int    `json:"printedTotal,omitempty"`
	ReleaseDate  string `json:"releaseDate"`
	SymbolURL    string `json:"symbolUrl"`
	LogoURL      string `json:"logoUrl"`
}

// CountedTotal is the printed total when known, else the full total.
func (s Set) CountedTotal() int {
	if s.PrintedTotal > 0 {
		return s.PrintedTotal
	}
	return s.Total
}

// Meta holds the valid filter labels across the whole catalog.
type Meta struct {
	Types    []string `json:"types"`
	Rarities []string `json:"rarities"`
	Subtypes []string `json:"subtypes"`
}

// CardFilters are the faceted search filters. Each facet is an OR-group.
type CardFilters struct {
	Set    []string `json:"set"`
	Type   []string `json:"type"`
	Rarity []string `json:"rarity"`
	Artist []string `json:"artist"`
}
