package domain

// RNG abstracts random number generation for deterministic testing
// and seeded draws.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// CardType buckets cards into the arcana families a deck can contain.
type CardType string

const (
	TypeMajor  CardType = "major"
	TypeMinor  CardType = "minor"
	TypeOracle CardType = "oracle"
	TypeOther  CardType = "other"
)

// CardSuit is the minor-arcana suit, or "none" for suitless cards.
type CardSuit string

const (
	SuitWands     CardSuit = "wands"
	SuitCups      CardSuit = "cups"
	SuitSwords    CardSuit = "swords"
	SuitPentacles CardSuit = "pentacles"
	SuitNone      CardSuit = "none"
)

// CardMeta carries the semantic metadata attached to a card.
type CardMeta struct {
	Type    CardType `json:"type"`
	Suit    CardSuit `json:"suit,omitempty"`
	Number  int      `json:"number,omitempty"`
	Element string   `json:"element,omitempty"`
	Zodiac  string   `json:"zodiac,omitempty"`
}

// Card represents a single tarot card in a deck. Immutable once loaded.
type Card struct {
	ID        string   `json:"id"`
	SortIndex int      `json:"sortIndex"`
	Image     string   `json:"image"`
	Meta      CardMeta `json:"meta"`
}

// DeckGroup describes one visual/semantic bucket of a deck
// (e.g. "major", "wands") used for grouping and statistics.
type DeckGroup struct {
	Color    string `json:"color"`
	LabelKey string `json:"labelKey"`
}

// DeckInfo is the per-deck metadata, including the canonical group mapping.
type DeckInfo struct {
	ID         string               `json:"id"`
	Author     string               `json:"author,omitempty"`
	TotalCards int                  `json:"totalCards"`
	Groups     map[string]DeckGroup `json:"groups"`
}

// Deck is an ordered collection of cards plus metadata. Read-only for the
// process lifetime after loading.
type Deck struct {
	Info  DeckInfo `json:"info"`
	Cards []Card   `json:"cards"`
}

// Card returns the card with the given id, or false when the deck does not
// contain it.
func (d Deck) Card(id string) (Card, bool) {
	for _, c := range d.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// FilterType returns a copy of the deck containing only cards of the given
// type, preserving order. The info block is shared, not copied.
func (d Deck) FilterType(t CardType) Deck {
	out := Deck{Info: d.Info}
	for _, c := range d.Cards {
		if c.Meta.Type == t {
			out.Cards = append(out.Cards, c)
		}
	}
	return out
}

// Exclude returns a copy of the deck without the cards whose ids appear in
// exclude. Supports session-scoped duplicate exclusion when a spread is
// drawn incrementally.
func (d Deck) Exclude(exclude []string) Deck {
	if len(exclude) == 0 {
		return d
	}
	drop := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		drop[id] = true
	}
	out := Deck{Info: d.Info}
	for _, c := range d.Cards {
		if !drop[c.ID] {
			out.Cards = append(out.Cards, c)
		}
	}
	return out
}

// Layout is an optional fixed visual coordinate for a spread position.
// Its absence means the position falls back to list rendering.
type Layout struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation,omitempty"`
	ZIndex   int     `json:"zIndex,omitempty"`
}

// SpreadPosition is one named slot in a spread.
type SpreadPosition struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Layout *Layout `json:"layout,omitempty"`
}

// Spread is a named layout of positions that a reading fills. Slot ordering
// is stable and is the canonical card index (1-based in clients).
type Spread struct {
	ID                 string           `json:"id"`
	Slots              []SpreadPosition `json:"slots"`
	DefaultQuestionKey string           `json:"defaultQuestionKey,omitempty"`
}

// Slot returns the position with the given id, or false when the spread
// does not contain it.
func (s Spread) Slot(id string) (SpreadPosition, bool) {
	for _, p := range s.Slots {
		if p.ID == id {
			return p, true
		}
	}
	return SpreadPosition{}, false
}

// DrawnCard is a card bound to a spread slot with an orientation.
// Created exclusively by the draw engine.
type DrawnCard struct {
	CardID     string `json:"cardId"`
	DeckID     string `json:"deckId"`
	PositionID string `json:"positionId"`
	IsReversed bool   `json:"isReversed"`
}

// ChatMessage is one message of an OpenAI-compatible chat prompt.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIModelConfig is the user-supplied model configuration. The interpretation
// client treats it as a read-only parameter per call and never caches it.
type AIModelConfig struct {
	Provider string `json:"provider"`
	ModelID  string `json:"modelId"`
	APIKey   string `json:"apiKey,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}
