package app

import (
	"context"
	"fmt"
	"time"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

// backupVersion is the current backup file schema version.
const backupVersion = 1

// Backup is the exchange format for history export/import. Sessions are
// carried verbatim in their persisted shape.
type Backup struct {
	History    []domain.ReadingSession `json:"history"`
	Version    int                     `json:"version"`
	ExportDate string                  `json:"exportDate"`
}

// ExportBackup snapshots the whole journal, newest first.
func (s *JournalService) ExportBackup(ctx context.Context) (Backup, error) {
	readings, err := s.history.ListReadings(ctx)
	if err != nil {
		return Backup{}, fmt.Errorf("list readings: %w", err)
	}
	if readings == nil {
		readings = []domain.ReadingSession{}
	}
	return Backup{
		History:    readings,
		Version:    backupVersion,
		ExportDate: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// ImportBackup restores sessions from a backup file. Existing sessions
// with matching ids are overwritten; others are left in place.
func (s *JournalService) ImportBackup(ctx context.Context, b Backup) error {
	if b.Version > backupVersion {
		return fmt.Errorf("unsupported backup version %d", b.Version)
	}
	for _, session := range b.History {
		if err := s.history.SaveReading(ctx, session); err != nil {
			return fmt.Errorf("restore reading %s: %w", session.ID, err)
		}
	}
	return nil
}
