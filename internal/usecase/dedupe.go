package usecase

import (
	"regexp"
	"strings"

	"github.com/grocerlist/usdaimport/internal/domain"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// genericKeywords name whole foods. A branded record describing one of them
// shares its key with the generic record instead of getting a brand key.
var genericKeywords = []string{
	"apple", "banana", "strawberry", "potato", "sugar", "salt", "flour",
	"rice", "chicken", "beef", "pork", "milk", "yogurt", "egg",
}

// NormalizeName lowercases s and drops every character outside [a-z0-9],
// so "Raw Apple" and "raw-apple" both become "rawapple"
func NormalizeName(s string) string {
	s = nonAlphanumericRegex.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(multipleSpacesRegex.ReplaceAllString(s, " "))
}

// IsBranded reports whether a record is tied to a manufacturer, either by
// its data type or by carrying a brand owner
func IsBranded(food *domain.RawFood) bool {
	return strings.EqualFold(food.DataType, "branded") || food.BrandOwner != ""
}

// DedupeKey returns the key under which food competes with other records
// for a place in the catalogue
func DedupeKey(food *domain.RawFood) string {
	description := strings.ToLower(food.Description)
	generic := false
	for _, keyword := range genericKeywords {
		if strings.Contains(description, keyword) {
			generic = true
			break
		}
	}

	if IsBranded(food) && !generic {
		return NormalizeName(food.BrandOwner) + "::" + NormalizeName(food.Description)
	}
	return NormalizeName(food.Description)
}

// OfferResult describes what Deduper.Offer did with an item
type OfferResult int

const (
	// Inserted means the key was new
	Inserted OfferResult = iota
	// Replaced means a branded entry gave way to a generic one
	Replaced
	// Kept means the existing entry won and the offer was dropped
	Kept
)

type dedupeEntry struct {
	key     string
	item    domain.GroceryItem
	branded bool
}

// Deduper accumulates items by dedupe key for the duration of one run. Keys
// keep the position of their first appearance. It is not safe for
// concurrent use.
type Deduper struct {
	index   map[string]int
	entries []dedupeEntry
}

// NewDeduper returns an empty Deduper
func NewDeduper() *Deduper {
	return &Deduper{index: make(map[string]int)}
}

// Offer inserts item under key, or resolves a collision: a branded entry is
// replaced by a non-branded one, and in every other case the first-seen
// entry is kept.
func (d *Deduper) Offer(key string, item domain.GroceryItem, branded bool) OfferResult {
	i, exists := d.index[key]
	if !exists {
		d.index[key] = len(d.entries)
		d.entries = append(d.entries, dedupeEntry{key: key, item: item, branded: branded})
		return Inserted
	}

	if d.entries[i].branded && !branded {
		d.entries[i].item = item
		d.entries[i].branded = false
		return Replaced
	}
	return Kept
}

// Len returns the number of distinct keys
func (d *Deduper) Len() int {
	return len(d.entries)
}

// Keys returns the keys in first-seen order
func (d *Deduper) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Items returns the surviving items in first-seen key order
func (d *Deduper) Items() []domain.GroceryItem {
	items := make([]domain.GroceryItem, len(d.entries))
	for i, e := range d.entries {
		items[i] = e.item
	}
	return items
}
