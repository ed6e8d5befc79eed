package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ReadingSession is a persisted, timestamped record of one spread instance.
// The engine only produces the cards and interpretation fields; persistence
// belongs to the history store.
type ReadingSession struct {
	ID               string      `json:"id"`
	Timestamp        int64       `json:"timestamp"`
	SpreadID         string      `json:"spreadId"`
	DeckID           string      `json:"deckId"`
	Cards            []DrawnCard `json:"cards"`
	CustomQuestion   string      `json:"customQuestion,omitempty"`
	AIInterpretation string      `json:"aiInterpretation,omitempty"`
	UserNotes        string      `json:"userNotes,omitempty"`
	Seed             string      `json:"seed,omitempty"`
	ModelUsed        string      `json:"modelUsed,omitempty"`
}

// ValidateComplete reports whether drawnCards fill the spread: one card per
// slot, every slot id present exactly once, no duplicate card ids, and every
// card id resolvable in the deck. Slot order is not enforced; a slot may be
// filled in any order.
func ValidateComplete(spread Spread, deck Deck, drawnCards []DrawnCard) error {
	if len(drawnCards) != len(spread.Slots) {
		return fmt.Errorf("%w: %d of %d slots filled", ErrIncompleteReading, len(drawnCards), len(spread.Slots))
	}

	seenSlot := make(map[string]bool, len(drawnCards))
	seenCard := make(map[string]bool, len(drawnCards))
	for _, dc := range drawnCards {
		if _, ok := spread.Slot(dc.PositionID); !ok {
			return fmt.Errorf("%w: unknown position %q", ErrIncompleteReading, dc.PositionID)
		}
		if seenSlot[dc.PositionID] {
			return fmt.Errorf("%w: position %q filled twice", ErrIncompleteReading, dc.PositionID)
		}
		seenSlot[dc.PositionID] = true

		if seenCard[dc.CardID] {
			return fmt.Errorf("%w: card %q drawn twice", ErrIncompleteReading, dc.CardID)
		}
		seenCard[dc.CardID] = true

		if _, ok := deck.Card(dc.CardID); !ok {
			return fmt.Errorf("%w: card %q not in deck %q", ErrIncompleteReading, dc.CardID, deck.Info.ID)
		}
	}
	return nil
}

// NewReadingSession assembles a complete session from a validated draw.
// The id is time-derived and the timestamp is Unix epoch milliseconds.
func NewReadingSession(spread Spread, deck Deck, drawnCards []DrawnCard, question string, now time.Time) (ReadingSession, error) {
	if err := ValidateComplete(spread, deck, drawnCards); err != nil {
		return ReadingSession{}, err
	}
	return ReadingSession{
		ID:             strconv.FormatInt(now.UnixNano(), 10),
		Timestamp:      now.UnixMilli(),
		SpreadID:       spread.ID,
		DeckID:         deck.Info.ID,
		Cards:          drawnCards,
		CustomQuestion: question,
	}, nil
}
