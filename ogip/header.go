package ogip

import (
	"strings"
)

// Card is a single header keyword.
type Card struct {
	Name    string
	Value   any
	Comment string
}

// Header is an ordered, immutable list of header cards. Methods that change
// a keyword return a new Header and leave the receiver untouched.
type Header struct {
	cards []Card
}

// NewHeader builds a header from cards, upper-casing keyword names.
func NewHeader(cards ...Card) Header {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.Name = normalize(c.Name)
		out[i] = c
	}
	return Header{cards: out}
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Len returns the number of cards.
func (h Header) Len() int { return len(h.cards) }

// Cards returns a copy of the cards in order.
func (h Header) Cards() []Card {
	return append([]Card(nil), h.cards...)
}

func (h Header) index(name string) int {
	name = normalize(name)
	for i, c := range h.cards {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the keyword is present.
func (h Header) Has(name string) bool { return h.index(name) >= 0 }

// Get returns the first card with the given keyword.
func (h Header) Get(name string) (Card, bool) {
	i := h.index(name)
	if i < 0 {
		return Card{}, false
	}
	return h.cards[i], true
}

// Float returns a numeric keyword as float64.
func (h Header) Float(name string) (float64, bool) {
	c, ok := h.Get(name)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// Int returns an integer keyword. Float values are truncated.
func (h Header) Int(name string) (int64, bool) {
	f, ok := h.Float(name)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Text returns a string keyword.
func (h Header) Text(name string) (string, bool) {
	c, ok := h.Get(name)
	if !ok {
		return "", false
	}
	s, ok := c.Value.(string)
	return s, ok
}

// With returns a copy of h with the keyword set to value. An existing card
// keeps its position; a comment of "" keeps the existing comment. New
// keywords are appended.
func (h Header) With(name string, value any, comment string) Header {
	name = normalize(name)
	out := h.Cards()
	if i := h.index(name); i >= 0 {
		out[i].Value = value
		if comment != "" {
			out[i].Comment = comment
		}
		return Header{cards: out}
	}
	return Header{cards: append(out, Card{Name: name, Value: value, Comment: comment})}
}

// Without returns a copy of h with every card of that keyword removed.
func (h Header) Without(name string) Header {
	name = normalize(name)
	out := make([]Card, 0, len(h.cards))
	for _, c := range h.cards {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return Header{cards: out}
}

// mjdRef returns the MJD reference epoch from MJDREF, or from the
// MJDREFI/MJDREFF pair when MJDREF is absent.
func (h Header) mjdRef() (float64, bool) {
	if v, ok := h.Float("MJDREF"); ok {
		return v, true
	}
	i, ok := h.Float("MJDREFI")
	if !ok {
		return 0, false
	}
	f, _ := h.Float("MJDREFF")
	return i + f, true
}
