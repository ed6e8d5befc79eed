package ports

import (
	"context"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

// HistoryStore owns the persisted reading journal. The engine only produces
// sessions; all writes go through this port.
type HistoryStore interface {
	SaveReading(ctx context.Context, session domain.ReadingSession) error
	GetReading(ctx context.Context, id string) (domain.ReadingSession, error)
	// ListReadings returns all sessions, newest first.
	ListReadings(ctx context.Context) ([]domain.ReadingSession, error)
	DeleteReading(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	AttachInterpretation(ctx context.Context, id, text, model string) error
	UpdateUserNotes(ctx context.Context, id, notes string) error

	// Daily-card state, keyed per calendar day so a user sees the same
	// card all day.
	GetDailyCard(ctx context.Context, dayKey string) (domain.DrawnCard, bool, error)
	SaveDailyCard(ctx context.Context, dayKey string, card domain.DrawnCard) error
}
