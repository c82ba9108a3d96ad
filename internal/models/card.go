package models

import (
	"strconv"
)

// CardStatus is the viewer's relationship to a card. It is overlaid locally
// and never comes from the catalog.
type CardStatus string

const (
	StatusOwned    CardStatus = "owned"
	StatusWishlist CardStatus = "wishlist"
	StatusNone     CardStatus = "none"
)

type Card struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Set          string     `json:"set"`
	SetID        string     `json:"setId"`
	Number       string     `json:"number,omitempty"`
	PrintedTotal int        `json:"printedTotal,omitempty"` // printed set size, used to spot secret numbering
	Rarity       string     `json:"rarity"`
	Type         string     `json:"type"`
	Artist       string     `json:"artist"`
	ImageURL     string     `json:"imageUrl"`
	Status       CardStatus `json:"status"`
}

// NumberValue returns the leading integer of the card number ("123a" -> 123).
// ok is false for numbers without a numeric prefix such as "TG05".
func (c Card) NumberValue() (int, bool) {
	end := 0
	for end < len(c.Number) && c.Number[end] >= '0' && c.Number[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(c.Number[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsSecret reports whether the card is numbered past the printed set total.
func (c Card) IsSecret(printedTotal int) bool {
	if printedTotal <= 0 {
		return false
	}
	n, ok := c.NumberValue()
	return ok && n > printedTotal
}

// WithStatus returns a copy of the card carrying the given viewer status.
func (c Card) WithStatus(status CardStatus) Card {
	c.Status = status
	return c
}

// CardsPage is one page of a card search.
type CardsPage struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Stale      bool   `json:"stale,omitempty"`
}

// CuratedResult is the editor's-picks list and the time window that produced it.
type CuratedResult struct {
	Cards     []Card `json:"cards"`
	WindowKey int64  `json:"windowKey"`
}

// SetCards is a per-set card list snapshot.
type SetCards struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"totalCount"`
}
