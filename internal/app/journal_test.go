package app_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/decks"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/i18n"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/app"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

// memoryHistory is an in-memory HistoryStore for service tests.
type memoryHistory struct {
	readings map[string]domain.ReadingSession
	daily    map[string]domain.DrawnCard
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		readings: make(map[string]domain.ReadingSession),
		daily:    make(map[string]domain.DrawnCard),
	}
}

func (m *memoryHistory) SaveReading(_ context.Context, s domain.ReadingSession) error {
	m.readings[s.ID] = s
	return nil
}

func (m *memoryHistory) GetReading(_ context.Context, id string) (domain.ReadingSession, error) {
	s, ok := m.readings[id]
	if !ok {
		return domain.ReadingSession{}, domain.ErrReadingNotFound
	}
	return s, nil
}

func (m *memoryHistory) ListReadings(_ context.Context) ([]domain.ReadingSession, error) {
	out := make([]domain.ReadingSession, 0, len(m.readings))
	for _, s := range m.readings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memoryHistory) DeleteReading(_ context.Context, id string) error {
	if _, ok := m.readings[id]; !ok {
		return domain.ErrReadingNotFound
	}
	delete(m.readings, id)
	return nil
}

func (m *memoryHistory) ClearHistory(_ context.Context) error {
	m.readings = make(map[string]domain.ReadingSession)
	return nil
}

func (m *memoryHistory) AttachInterpretation(_ context.Context, id, text, model string) error {
	s, ok := m.readings[id]
	if !ok {
		return domain.ErrReadingNotFound
	}
	s.AIInterpretation = text
	s.ModelUsed = model
	m.readings[id] = s
	return nil
}

func (m *memoryHistory) UpdateUserNotes(_ context.Context, id, notes string) error {
	s, ok := m.readings[id]
	if !ok {
		return domain.ErrReadingNotFound
	}
	s.UserNotes = notes
	m.readings[id] = s
	return nil
}

func (m *memoryHistory) GetDailyCard(_ context.Context, dayKey string) (domain.DrawnCard, bool, error) {
	c, ok := m.daily[dayKey]
	return c, ok, nil
}

func (m *memoryHistory) SaveDailyCard(_ context.Context, dayKey string, card domain.DrawnCard) error {
	m.daily[dayKey] = card
	return nil
}

// stubInterpreter records calls and returns a canned result.
type stubInterpreter struct {
	messages []domain.ChatMessage
	cfg      domain.AIModelConfig
	calls    int
	text     string
	err      error
}

func (s *stubInterpreter) Generate(_ context.Context, messages []domain.ChatMessage, cfg domain.AIModelConfig) (string, error) {
	s.calls++
	s.messages = messages
	s.cfg = cfg
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type fixture struct {
	svc     *app.JournalService
	history *memoryHistory
	llm     *stubInterpreter
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		history: newMemoryHistory(),
		llm:     &stubInterpreter{text: "A calm, reflective reading."},
		now:     time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
	store := decks.NewEmbeddedStore()
	f.svc = app.NewJournalService(app.Deps{
		Decks:         store,
		Spreads:       store,
		History:       f.history,
		Interpreter:   f.llm,
		Translator:    i18n.New("en"),
		DefaultDeckID: "rider-waite",
		Now:           func() time.Time { return f.now },
	})
	return f
}

func TestDraw_SpreadBindsAllPositions(t *testing.T) {
	f := newFixture(t)

	cards, err := f.svc.Draw(context.Background(), app.DrawRequest{
		DeckID:        "rider-waite",
		SpreadID:      "three-card",
		AllowReversed: true,
	})
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, "past", cards[0].PositionID)
	assert.Equal(t, "present", cards[1].PositionID)
	assert.Equal(t, "future", cards[2].PositionID)

	seen := make(map[string]bool)
	for _, c := range cards {
		assert.False(t, seen[c.CardID], "duplicate card %s", c.CardID)
		seen[c.CardID] = true
		assert.Equal(t, "rider-waite", c.DeckID)
	}
}

// End to end: a seeded three-card draw is reproducible, and its prompt
// names every card and position.
func TestDrawAndPrompt_SeededEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := app.DrawRequest{
		DeckID:        "rider-waite",
		SpreadID:      "three-card",
		Seed:          "2025-01-01",
		AllowReversed: true,
	}

	first, err := f.svc.Draw(ctx, req)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := f.svc.Draw(ctx, req)
	require.NoError(t, err)
	require.Equal(t, first, second, "seeded draw not reproducible")

	session, err := f.svc.SaveReading(ctx, app.SaveReadingRequest{
		DeckID:   "rider-waite",
		SpreadID: "three-card",
		Cards:    first,
		Seed:     "2025-01-01",
	})
	require.NoError(t, err)

	_, err = f.svc.InterpretReading(ctx, session.ID, domain.AIModelConfig{ModelID: "m", APIKey: "k"})
	require.NoError(t, err)

	require.Len(t, f.llm.messages, 2)
	user := f.llm.messages[1].Content

	tr := i18n.New("en")
	for _, c := range first {
		name := tr.T("decks:rider-waite.cards."+c.CardID+".name", nil)
		assert.Contains(t, user, name)
	}
	for _, label := range []string{"Past", "Present", "Future"} {
		assert.Contains(t, user, label)
	}
}

func TestDraw_SessionScopedExclusion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Draw(ctx, app.DrawRequest{
		DeckID:    "rider-waite",
		SpreadID:  "three-card",
		Positions: []string{"past"},
	})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Draw the remaining slots excluding what the session already holds.
	rest, err := f.svc.Draw(ctx, app.DrawRequest{
		DeckID:         "rider-waite",
		SpreadID:       "three-card",
		Positions:      []string{"present", "future"},
		ExcludeCardIDs: []string{first[0].CardID},
	})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	for _, c := range rest {
		assert.NotEqual(t, first[0].CardID, c.CardID)
	}
}

func TestDraw_OnlyMajorArcana(t *testing.T) {
	f := newFixture(t)

	cards, err := f.svc.Draw(context.Background(), app.DrawRequest{
		DeckID:          "rider-waite",
		Count:           22,
		OnlyMajorArcana: true,
	})
	require.NoError(t, err)
	require.Len(t, cards, 22)
	for _, c := range cards {
		assert.True(t, strings.HasPrefix(c.CardID, "maj_"), "non-major card %s", c.CardID)
	}

	// The filtered pool has exactly 22 cards; asking for more must fail.
	_, err = f.svc.Draw(context.Background(), app.DrawRequest{
		DeckID:          "rider-waite",
		Count:           23,
		OnlyMajorArcana: true,
	})
	assert.ErrorIs(t, err, domain.ErrNotEnoughCards)
}

func TestDraw_UnknownPositionRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Draw(context.Background(), app.DrawRequest{
		DeckID:    "rider-waite",
		SpreadID:  "three-card",
		Positions: []string{"outcome"},
	})
	assert.ErrorIs(t, err, domain.ErrIncompleteReading)
}

func TestDailyCard_DrawnOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := app.DailyCardRequest{DeckID: "rider-waite", AllowReversed: true}

	card, already, err := f.svc.DailyCard(ctx, req)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, "daily", card.PositionID)

	again, already, err := f.svc.DailyCard(ctx, req)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, card, again)

	// Next day rolls a fresh card state.
	f.now = f.now.Add(24 * time.Hour)
	_, already, err = f.svc.DailyCard(ctx, req)
	require.NoError(t, err)
	assert.False(t, already)
}

func TestDailyCard_UserSpecificSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _, err := f.svc.DailyCard(ctx, app.DailyCardRequest{DeckID: "rider-waite", User: "ada"})
	require.NoError(t, err)
	b, _, err := f.svc.DailyCard(ctx, app.DailyCardRequest{DeckID: "rider-waite", User: "grace"})
	require.NoError(t, err)

	// Separate per-user state; the cards may rarely coincide but the
	// stored entries must not collide.
	assert.Len(t, f.history.daily, 2)
	_ = a
	_ = b
}

func TestSaveReading_IncompleteRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveReading(context.Background(), app.SaveReadingRequest{
		DeckID:   "rider-waite",
		SpreadID: "three-card",
		Cards: []domain.DrawnCard{
			{CardID: "maj_00", DeckID: "rider-waite", PositionID: "past"},
		},
	})
	assert.ErrorIs(t, err, domain.ErrIncompleteReading)
	assert.Empty(t, f.history.readings, "incomplete reading must not be persisted")
}

func TestInterpretReading_AttachesResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cards, err := f.svc.Draw(ctx, app.DrawRequest{DeckID: "rider-waite", SpreadID: "three-card"})
	require.NoError(t, err)
	session, err := f.svc.SaveReading(ctx, app.SaveReadingRequest{
		DeckID: "rider-waite", SpreadID: "three-card", Cards: cards, Question: "Career?",
	})
	require.NoError(t, err)

	cfg := domain.AIModelConfig{Provider: "openrouter", ModelID: "test-model", APIKey: "key"}
	text, err := f.svc.InterpretReading(ctx, session.ID, cfg)
	require.NoError(t, err)
	assert.Equal(t, "A calm, reflective reading.", text)
	assert.Equal(t, cfg, f.llm.cfg)

	stored, err := f.svc.Reading(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, text, stored.AIInterpretation)
	assert.Equal(t, "test-model", stored.ModelUsed)
}

func TestInterpretReading_FailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cards, err := f.svc.Draw(ctx, app.DrawRequest{DeckID: "rider-waite", SpreadID: "three-card"})
	require.NoError(t, err)
	session, err := f.svc.SaveReading(ctx, app.SaveReadingRequest{
		DeckID: "rider-waite", SpreadID: "three-card", Cards: cards,
	})
	require.NoError(t, err)

	f.llm.err = domain.ErrUpstreamLLM
	_, err = f.svc.InterpretReading(ctx, session.ID, domain.AIModelConfig{ModelID: "m", APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamLLM))

	stored, err := f.svc.Reading(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AIInterpretation)
}

func TestInterpretReading_DefaultQuestionResolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cards, err := f.svc.Draw(ctx, app.DrawRequest{DeckID: "rider-waite", SpreadID: "three-card"})
	require.NoError(t, err)
	session, err := f.svc.SaveReading(ctx, app.SaveReadingRequest{
		DeckID: "rider-waite", SpreadID: "three-card", Cards: cards,
	})
	require.NoError(t, err)

	_, err = f.svc.InterpretReading(ctx, session.ID, domain.AIModelConfig{ModelID: "m", APIKey: "k"})
	require.NoError(t, err)

	// three-card declares a default question key; with no custom question
	// the localized default must reach the prompt.
	assert.Contains(t, f.llm.messages[1].Content, "How is my current situation evolving?")
}

func TestBackup_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := range 3 {
		f.now = f.now.Add(time.Minute)
		cards, err := f.svc.Draw(ctx, app.DrawRequest{DeckID: "rider-waite", SpreadID: "three-card"})
		require.NoError(t, err)
		_, err = f.svc.SaveReading(ctx, app.SaveReadingRequest{
			DeckID: "rider-waite", SpreadID: "three-card", Cards: cards,
			Question: "q" + string(rune('0'+i)),
		})
		require.NoError(t, err)
	}

	backup, err := f.svc.ExportBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backup.Version)
	require.Len(t, backup.History, 3)
	_, err = time.Parse(time.RFC3339, backup.ExportDate)
	assert.NoError(t, err)

	// Wipe and restore into a fresh service.
	g := newFixture(t)
	require.NoError(t, g.svc.ImportBackup(ctx, backup))

	restored, err := g.svc.ExportBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, backup.History, restored.History)
}

func TestImportBackup_UnsupportedVersion(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ImportBackup(context.Background(), app.Backup{Version: 99})
	assert.Error(t, err)
}
