// Package seal provides the sequence tracking core for the CVJutsu hand seal
// recognition system. It converts noisy per-frame seal predictions into
// stable confirmations and matches confirmed sequences against a jutsu catalog.
package seal

import "fmt"

// Known seal labels produced by the classifier.
const (
	SealTora    = "tora"
	SealMi      = "mi"
	SealHitsuji = "hitsuji"
	SealTori    = "tori"
	SealUshi    = "ushi"
)

// SealNames lists every seal label in display order.
var SealNames = []string{SealTora, SealMi, SealHitsuji, SealTori, SealUshi}

// SealDisplay maps seal labels to their English display names.
var SealDisplay = map[string]string{
	SealTora:    "Tiger",
	SealMi:      "Snake",
	SealHitsuji: "Ram",
	SealTori:    "Bird",
	SealUshi:    "Ox",
}

// Jutsu is a named, ordered seal sequence that triggers an effect when the
// confirmed sequence ends with it.
type Jutsu struct {
	Name        string   `json:"name"`
	Display     string   `json:"display"`
	Element     string   `json:"element"`
	Seals       []string `json:"seals"`
	EffectAsset string   `json:"effect_asset,omitempty"`
}

// Catalog is an ordered, read-only list of jutsu. Order matters: when two
// matches of equal length exist, the earlier entry wins.
type Catalog struct {
	jutsu  []Jutsu
	byName map[string]int
}

// NewCatalog builds a catalog from the given entries.
// Every entry must have a name and a non-empty seal sequence.
func NewCatalog(entries []Jutsu) (Catalog, error) {
	c := Catalog{
		jutsu:  make([]Jutsu, len(entries)),
		byName: make(map[string]int, len(entries)),
	}
	copy(c.jutsu, entries)

	for i, j := range c.jutsu {
		if j.Name == "" {
			return Catalog{}, fmt.Errorf("catalog entry %d has no name", i)
		}
		if len(j.Seals) == 0 {
			return Catalog{}, fmt.Errorf("jutsu %q has an empty seal sequence", j.Name)
		}
		if _, dup := c.byName[j.Name]; dup {
			return Catalog{}, fmt.Errorf("duplicate jutsu name %q", j.Name)
		}
		c.byName[j.Name] = i
	}

	return c, nil
}

// DefaultCatalog returns the built-in jutsu list.
func DefaultCatalog() Catalog {
	c, err := NewCatalog([]Jutsu{
		{
			Name:        "katon_goukakyu",
			Display:     "Katon: Goukakyu (Fireball)",
			Element:     "Fire",
			Seals:       []string{SealMi, SealHitsuji, SealTora},
			EffectAsset: "fireball.png",
		},
		{
			Name:        "kage_bunshin",
			Display:     "Kage Bunshin (Shadow Clone)",
			Element:     "None",
			Seals:       []string{SealHitsuji},
			EffectAsset: "shadow_clone.png",
		},
		{
			Name:        "chidori",
			Display:     "Chidori",
			Element:     "Lightning",
			Seals:       []string{SealUshi, SealTori, SealHitsuji},
			EffectAsset: "chidori.png",
		},
	})
	if err != nil {
		// The built-in list is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

// Len returns the number of jutsu in the catalog.
func (c Catalog) Len() int {
	return len(c.jutsu)
}

// All returns a copy of the catalog entries in order.
func (c Catalog) All() []Jutsu {
	out := make([]Jutsu, len(c.jutsu))
	copy(out, c.jutsu)
	return out
}

// ByName looks up a jutsu by its name.
func (c Catalog) ByName(name string) (Jutsu, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Jutsu{}, false
	}
	return c.jutsu[i], true
}
