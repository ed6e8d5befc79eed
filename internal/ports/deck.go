package ports

import (
	"context"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

// DeckRepository provides access to the bundled tarot decks. Decks are
// loaded once and read-only thereafter.
type DeckRepository interface {
	GetDeck(ctx context.Context, deckID string) (domain.Deck, error)
	ListDecks(ctx context.Context) ([]domain.DeckInfo, error)
}

// SpreadRepository provides access to the bundled spread layouts.
type SpreadRepository interface {
	GetSpread(ctx context.Context, spreadID string) (domain.Spread, error)
	ListSpreads(ctx context.Context) ([]domain.Spread, error)
}
