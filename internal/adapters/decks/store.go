// Package decks loads the bundled decks and spreads from embedded JSON.
package decks

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

//go:embed data/*.json
var deckFS embed.FS

// registry maps deck IDs to their JSON filenames inside data/. New decks
// are added here, mirroring the bundle manifest of the mobile app.
var registry = map[string]string{
	"rider-waite": "data/rider-waite.json",
}

// registryOrder fixes the listing order of known decks.
var registryOrder = []string{"rider-waite"}

const spreadsFile = "data/spreads.json"

// EmbeddedStore loads decks and spreads from embedded JSON files, once,
// on first access.
type EmbeddedStore struct {
	once    sync.Once
	decks   map[string]domain.Deck
	spreads map[string]domain.Spread
	order   []string // spread ids in file order
	err     error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

func (s *EmbeddedStore) init() {
	s.decks = make(map[string]domain.Deck, len(registry))
	for id, filename := range registry {
		raw, err := deckFS.ReadFile(filename)
		if err != nil {
			s.err = fmt.Errorf("read embedded deck %s: %w", id, err)
			return
		}
		var deck domain.Deck
		if err := json.Unmarshal(raw, &deck); err != nil {
			s.err = fmt.Errorf("parse embedded deck %s: %w", id, err)
			return
		}
		if deck.Info.ID != id {
			s.err = fmt.Errorf("deck %s declares id %q", id, deck.Info.ID)
			return
		}
		s.decks[id] = deck
	}

	raw, err := deckFS.ReadFile(spreadsFile)
	if err != nil {
		s.err = fmt.Errorf("read embedded spreads: %w", err)
		return
	}
	var spreads []domain.Spread
	if err := json.Unmarshal(raw, &spreads); err != nil {
		s.err = fmt.Errorf("parse embedded spreads: %w", err)
		return
	}
	s.spreads = make(map[string]domain.Spread, len(spreads))
	for _, sp := range spreads {
		s.spreads[sp.ID] = sp
		s.order = append(s.order, sp.ID)
	}
}

func (s *EmbeddedStore) GetDeck(_ context.Context, deckID string) (domain.Deck, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Deck{}, s.err
	}
	deck, ok := s.decks[deckID]
	if !ok {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	return deck, nil
}

func (s *EmbeddedStore) ListDecks(_ context.Context) ([]domain.DeckInfo, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	infos := make([]domain.DeckInfo, 0, len(registryOrder))
	for _, id := range registryOrder {
		infos = append(infos, s.decks[id].Info)
	}
	return infos, nil
}

func (s *EmbeddedStore) GetSpread(_ context.Context, spreadID string) (domain.Spread, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Spread{}, s.err
	}
	spread, ok := s.spreads[spreadID]
	if !ok {
		return domain.Spread{}, domain.ErrSpreadNotFound
	}
	return spread, nil
}

func (s *EmbeddedStore) ListSpreads(_ context.Context) ([]domain.Spread, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	spreads := make([]domain.Spread, 0, len(s.order))
	for _, id := range s.order {
		spreads = append(spreads, s.spreads[id])
	}
	return spreads, nil
}
