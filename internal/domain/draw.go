package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DrawResult is one drawn card before it is bound to a spread position.
type DrawResult struct {
	Card       Card
	IsReversed bool
}

// SystemRNG delegates to math/rand/v2 (auto-seeded).
type SystemRNG struct{}

func (SystemRNG) Intn(n int) int { return rand.IntN(n) }

// NewSeededRNG returns an RNG deterministically keyed from the seed string.
// The seed is hashed with SHA-256 and the digest keys a PCG generator, so
// identical seeds reproduce identical draw sequences on every platform.
func NewSeededRNG(seed string) RNG {
	sum := sha256.Sum256([]byte(seed))
	hi := binary.BigEndian.Uint64(sum[0:8])
	lo := binary.BigEndian.Uint64(sum[8:16])
	return pcgRNG{rand.New(rand.NewPCG(hi, lo))}
}

type pcgRNG struct {
	r *rand.Rand
}

func (p pcgRNG) Intn(n int) int { return p.r.IntN(n) }

// DrawCards selects n non-repeating cards from deck and assigns each an
// orientation. The deck is expected to be pre-filtered by the caller
// (major-arcana-only, already-drawn exclusion). A Fisher-Yates shuffle of
// the full card list determines draw order; the first n entries are the
// drawn set. When allowReversed is true each card independently gets a
// 50/50 orientation from the same RNG, so a seeded RNG reproduces both
// cards and orientations.
func DrawCards(deck Deck, n int, allowReversed bool, rng RNG) ([]DrawResult, error) {
	if len(deck.Cards) == 0 {
		return nil, ErrEmptyDeck
	}
	if n < 1 {
		return nil, ErrInvalidCount
	}
	if n > len(deck.Cards) {
		return nil, ErrNotEnoughCards
	}

	indices := make([]int, len(deck.Cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	out := make([]DrawResult, n)
	for i := range n {
		reversed := false
		if allowReversed {
			reversed = rng.Intn(2) == 1
		}
		out[i] = DrawResult{
			Card:       deck.Cards[indices[i]],
			IsReversed: reversed,
		}
	}
	return out, nil
}

// DailySeed returns a stable seed component for the calendar day of t in
// its location: equal values all day, a new value at local midnight. When
// user is non-empty it is mixed in so different users see different daily
// cards.
func DailySeed(t time.Time, user string) string {
	day := t.Format("2006-01-02")
	if user == "" {
		return day
	}
	return day + ":" + user
}
