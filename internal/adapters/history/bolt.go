// Package history keeps the local save log in an embedded BoltDB file.
//
// Each quote number has its own nested bucket. Entries are keyed by the
// bucket sequence, so cursor order is save order. Recording an entry clears
// the Current mark on the older ones in the same transaction.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const rootBucket = "saves"

// Log is a ports.SaveHistory backed by BoltDB.
type Log struct {
	db *bolt.DB
}

var _ ports.SaveHistory = (*Log)(nil)

// record is the stored form of an entry.
type record struct {
	QuoteNumber string          `json:"quote_number"`
	QuoteID     string          `json:"quote_id"`
	RevisionID  string          `json:"revision_id"`
	Total       decimal.Decimal `json:"total"`
	SavedAt     time.Time       `json:"saved_at"`
	Current     bool            `json:"current"`
}

// Open opens (or creates) the log at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}

	return &Log{db: db}, nil
}

// Close releases the file lock.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record implements ports.SaveHistory. Recording the same revision and
// timestamp twice writes nothing the second time.
func (l *Log) Record(ctx context.Context, entry domain.SaveHistoryEntry) error {
	if entry.QuoteNumber == "" {
		return errors.New("history entry needs a quote number")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(rootBucket)).CreateBucketIfNotExists([]byte(entry.QuoteNumber))
		if err != nil {
			return err
		}

		if _, last := b.Cursor().Last(); last != nil {
			var prev record
			if err := json.Unmarshal(last, &prev); err != nil {
				return err
			}

			if prev.RevisionID == entry.RevisionID && prev.SavedAt.Equal(entry.SavedAt) {
				return nil
			}
		}

		if err := clearCurrent(b); err != nil {
			return err
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(record{
			QuoteNumber: entry.QuoteNumber,
			QuoteID:     entry.QuoteID,
			RevisionID:  entry.RevisionID,
			Total:       entry.Total,
			SavedAt:     entry.SavedAt.UTC(),
			Current:     true,
		})
		if err != nil {
			return err
		}

		return b.Put(seqKey(seq), data)
	})
}

// clearCurrent rewrites entries still marked current.
func clearCurrent(b *bolt.Bucket) error {
	updates := map[string][]byte{}

	err := b.ForEach(func(k, v []byte) error {
		var r record
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}

		if !r.Current {
			return nil
		}

		r.Current = false

		data, err := json.Marshal(r)
		if err != nil {
			return err
		}

		updates[string(k)] = data

		return nil
	})
	if err != nil {
		return err
	}

	for k, v := range updates {
		if err := b.Put([]byte(k), v); err != nil {
			return err
		}
	}

	return nil
}

// List implements ports.SaveHistory, newest first.
func (l *Log) List(ctx context.Context, quoteNumber string) ([]domain.SaveHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []domain.SaveHistoryEntry{}

	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(rootBucket)).Bucket([]byte(quoteNumber))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			entries = append(entries, domain.SaveHistoryEntry{
				QuoteNumber: r.QuoteNumber,
				QuoteID:     r.QuoteID,
				RevisionID:  r.RevisionID,
				Total:       r.Total,
				SavedAt:     r.SavedAt,
				Current:     r.Current,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)

	return k
}
