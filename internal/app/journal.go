package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/ports"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/prompt"
)

// dailyKeyPrefix namespaces per-day daily-card state in the history store.
const dailyKeyPrefix = "daily_card_state_"

// Deps carries the collaborators of the journal service. RNG and Now are
// optional and default to system randomness and wall-clock time.
type Deps struct {
	Decks         ports.DeckRepository
	Spreads       ports.SpreadRepository
	History       ports.HistoryStore
	Interpreter   ports.Interpreter
	Translator    ports.Translator
	DefaultDeckID string
	RNG           domain.RNG
	Now           func() time.Time
	Logger        *slog.Logger
}

// JournalService orchestrates draws, reading persistence and LLM
// interpretation.
type JournalService struct {
	decks         ports.DeckRepository
	spreads       ports.SpreadRepository
	history       ports.HistoryStore
	interpreter   ports.Interpreter
	builder       *prompt.Builder
	translator    ports.Translator
	defaultDeckID string
	rng           domain.RNG
	now           func() time.Time
	logger        *slog.Logger
}

func NewJournalService(deps Deps) *JournalService {
	if deps.RNG == nil {
		deps.RNG = domain.SystemRNG{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &JournalService{
		decks:         deps.Decks,
		spreads:       deps.Spreads,
		history:       deps.History,
		interpreter:   deps.Interpreter,
		builder:       prompt.NewBuilder(deps.Translator),
		translator:    deps.Translator,
		defaultDeckID: deps.DefaultDeckID,
		rng:           deps.RNG,
		now:           deps.Now,
		logger:        deps.Logger,
	}
}

// DefaultDeckID is the deck used when a request does not name one.
func (s *JournalService) DefaultDeckID() string { return s.defaultDeckID }

func (s *JournalService) Decks(ctx context.Context) ([]domain.DeckInfo, error) {
	return s.decks.ListDecks(ctx)
}

func (s *JournalService) Spreads(ctx context.Context) ([]domain.Spread, error) {
	return s.spreads.ListSpreads(ctx)
}

// DrawRequest is the application-level draw input (no HTTP types).
type DrawRequest struct {
	DeckID          string
	SpreadID        string
	Positions       []string // slot ids to fill; empty means all slots of the spread
	Count           int      // used only when no spread is given
	Seed            string   // deterministic draw when non-empty
	AllowReversed   bool
	OnlyMajorArcana bool
	ExcludeCardIDs  []string // session-scoped duplicate exclusion
}

// Draw selects cards from the (filtered) deck and binds them to spread
// positions when a spread is given. Determinism: a non-empty seed keys a
// reproducible RNG, otherwise the service's system RNG is used.
func (s *JournalService) Draw(ctx context.Context, req DrawRequest) ([]domain.DrawnCard, error) {
	deck, err := s.decks.GetDeck(ctx, req.DeckID)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}

	positions := req.Positions
	if req.SpreadID != "" {
		spread, err := s.spreads.GetSpread(ctx, req.SpreadID)
		if err != nil {
			return nil, fmt.Errorf("get spread: %w", err)
		}
		if len(positions) == 0 {
			for _, slot := range spread.Slots {
				positions = append(positions, slot.ID)
			}
		} else {
			for _, id := range positions {
				if _, ok := spread.Slot(id); !ok {
					return nil, fmt.Errorf("%w: unknown position %q", domain.ErrIncompleteReading, id)
				}
			}
		}
	}

	count := len(positions)
	if count == 0 {
		count = req.Count
		if count == 0 {
			count = 1
		}
	}

	pool := deck
	if req.OnlyMajorArcana {
		pool = pool.FilterType(domain.TypeMajor)
	}
	pool = pool.Exclude(req.ExcludeCardIDs)

	rng := s.rng
	if req.Seed != "" {
		rng = domain.NewSeededRNG(req.Seed)
	}

	drawn, err := domain.DrawCards(pool, count, req.AllowReversed, rng)
	if err != nil {
		return nil, fmt.Errorf("draw cards: %w", err)
	}

	out := make([]domain.DrawnCard, len(drawn))
	for i, d := range drawn {
		positionID := ""
		if i < len(positions) {
			positionID = positions[i]
		}
		out[i] = domain.DrawnCard{
			CardID:     d.Card.ID,
			DeckID:     deck.Info.ID,
			PositionID: positionID,
			IsReversed: d.IsReversed,
		}
	}
	return out, nil
}

// DailyCardRequest carries the user's daily-draw preferences.
type DailyCardRequest struct {
	DeckID          string
	User            string // optional identity component of the daily seed
	AllowReversed   bool
	OnlyMajorArcana bool
}

// DailyCard returns today's card, drawing it on first call and replaying
// the stored draw on subsequent calls the same day. The seed is derived
// from the local calendar date so the card changes at local midnight.
func (s *JournalService) DailyCard(ctx context.Context, req DailyCardRequest) (domain.DrawnCard, bool, error) {
	seed := domain.DailySeed(s.now(), req.User)
	dayKey := dailyKeyPrefix + seed

	if card, found, err := s.history.GetDailyCard(ctx, dayKey); err != nil {
		return domain.DrawnCard{}, false, fmt.Errorf("load daily card: %w", err)
	} else if found {
		return card, true, nil
	}

	drawn, err := s.Draw(ctx, DrawRequest{
		DeckID:          req.DeckID,
		Count:           1,
		Seed:            seed,
		AllowReversed:   req.AllowReversed,
		OnlyMajorArcana: req.OnlyMajorArcana,
	})
	if err != nil {
		return domain.DrawnCard{}, false, err
	}

	card := drawn[0]
	card.PositionID = "daily"
	if err := s.history.SaveDailyCard(ctx, dayKey, card); err != nil {
		return domain.DrawnCard{}, false, fmt.Errorf("save daily card: %w", err)
	}
	return card, false, nil
}

// SaveReadingRequest assembles and persists a completed spread.
type SaveReadingRequest struct {
	DeckID   string
	SpreadID string
	Cards    []domain.DrawnCard
	Question string
	Seed     string
}

func (s *JournalService) SaveReading(ctx context.Context, req SaveReadingRequest) (domain.ReadingSession, error) {
	deck, err := s.decks.GetDeck(ctx, req.DeckID)
	if err != nil {
		return domain.ReadingSession{}, fmt.Errorf("get deck: %w", err)
	}
	spread, err := s.spreads.GetSpread(ctx, req.SpreadID)
	if err != nil {
		return domain.ReadingSession{}, fmt.Errorf("get spread: %w", err)
	}

	session, err := domain.NewReadingSession(spread, deck, req.Cards, req.Question, s.now())
	if err != nil {
		return domain.ReadingSession{}, err
	}
	session.Seed = req.Seed

	if err := s.history.SaveReading(ctx, session); err != nil {
		return domain.ReadingSession{}, fmt.Errorf("save reading: %w", err)
	}
	return session, nil
}

// InterpretReading builds the localized prompt for a saved reading, calls
// the LLM and attaches the result. A failed interpretation leaves the
// session untouched.
func (s *JournalService) InterpretReading(ctx context.Context, readingID string, cfg domain.AIModelConfig) (string, error) {
	session, err := s.history.GetReading(ctx, readingID)
	if err != nil {
		return "", fmt.Errorf("get reading: %w", err)
	}
	deck, err := s.decks.GetDeck(ctx, session.DeckID)
	if err != nil {
		return "", fmt.Errorf("get deck: %w", err)
	}
	spread, err := s.spreads.GetSpread(ctx, session.SpreadID)
	if err != nil {
		return "", fmt.Errorf("get spread: %w", err)
	}

	question := session.CustomQuestion
	if question == "" && spread.DefaultQuestionKey != "" {
		question = s.translator.TDefault(spread.DefaultQuestionKey, "", nil)
	}

	messages := s.builder.Build(deck, spread, session.Cards, question)

	start := s.now()
	text, err := s.interpreter.Generate(ctx, messages, cfg)
	if err != nil {
		return "", fmt.Errorf("generate interpretation: %w", err)
	}
	s.logger.InfoContext(ctx, "interpretation generated",
		"reading_id", readingID,
		"model", cfg.ModelID,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if err := s.history.AttachInterpretation(ctx, readingID, text, cfg.ModelID); err != nil {
		return "", fmt.Errorf("attach interpretation: %w", err)
	}
	return text, nil
}

func (s *JournalService) Readings(ctx context.Context) ([]domain.ReadingSession, error) {
	return s.history.ListReadings(ctx)
}

func (s *JournalService) Reading(ctx context.Context, id string) (domain.ReadingSession, error) {
	return s.history.GetReading(ctx, id)
}

func (s *JournalService) DeleteReading(ctx context.Context, id string) error {
	return s.history.DeleteReading(ctx, id)
}

func (s *JournalService) UpdateUserNotes(ctx context.Context, id, notes string) error {
	return s.history.UpdateUserNotes(ctx, id, notes)
}
