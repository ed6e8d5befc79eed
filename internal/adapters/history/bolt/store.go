// Package bolt persists the reading journal in a local bbolt file,
// standing in for the mobile app's key-value storage.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

var (
	bucketReadings = []byte("readings")
	bucketDaily    = []byte("daily")
)

// Store is the bbolt-backed HistoryStore implementation.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the database file at dbPath and initializes the
// buckets.
func New(dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketReadings); err != nil {
			return fmt.Errorf("create readings bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketDaily); err != nil {
			return fmt.Errorf("create daily bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveReading(_ context.Context, session domain.ReadingSession) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal reading: %w", err)
		}
		return tx.Bucket(bucketReadings).Put([]byte(session.ID), data)
	})
}

func (s *Store) GetReading(_ context.Context, id string) (domain.ReadingSession, error) {
	var session domain.ReadingSession
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketReadings).Get([]byte(id))
		if data == nil {
			return domain.ErrReadingNotFound
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return domain.ReadingSession{}, err
	}
	return session, nil
}

// ListReadings returns all sessions, newest first.
func (s *Store) ListReadings(_ context.Context) ([]domain.ReadingSession, error) {
	var sessions []domain.ReadingSession
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketReadings).ForEach(func(_, v []byte) error {
			var session domain.ReadingSession
			if err := json.Unmarshal(v, &session); err != nil {
				return fmt.Errorf("unmarshal reading: %w", err)
			}
			sessions = append(sessions, session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Timestamp != sessions[j].Timestamp {
			return sessions[i].Timestamp > sessions[j].Timestamp
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

func (s *Store) DeleteReading(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReadings)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrReadingNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func (s *Store) ClearHistory(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketReadings); err != nil {
			return fmt.Errorf("clear readings: %w", err)
		}
		_, err := tx.CreateBucket(bucketReadings)
		return err
	})
}

func (s *Store) AttachInterpretation(_ context.Context, id, text, model string) error {
	return s.mutate(id, func(session *domain.ReadingSession) {
		session.AIInterpretation = text
		session.ModelUsed = model
	})
}

func (s *Store) UpdateUserNotes(_ context.Context, id, notes string) error {
	return s.mutate(id, func(session *domain.ReadingSession) {
		session.UserNotes = notes
	})
}

// mutate applies fn to the stored session in one read-modify-write
// transaction.
func (s *Store) mutate(id string, fn func(*domain.ReadingSession)) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketReadings)
		data := bucket.Get([]byte(id))
		if data == nil {
			return domain.ErrReadingNotFound
		}
		var session domain.ReadingSession
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("unmarshal reading: %w", err)
		}
		fn(&session)
		updated, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal reading: %w", err)
		}
		return bucket.Put([]byte(id), updated)
	})
}

func (s *Store) GetDailyCard(_ context.Context, dayKey string) (domain.DrawnCard, bool, error) {
	var card domain.DrawnCard
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDaily).Get([]byte(dayKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &card); err != nil {
			return fmt.Errorf("unmarshal daily card: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.DrawnCard{}, false, err
	}
	return card, found, nil
}

func (s *Store) SaveDailyCard(_ context.Context, dayKey string, card domain.DrawnCard) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("marshal daily card: %w", err)
		}
		return tx.Bucket(bucketDaily).Put([]byte(dayKey), data)
	})
}
