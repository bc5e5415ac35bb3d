// Package pgxtrack records client views with a direct PostgreSQL connection,
// bypassing the hosted API.
package pgxtrack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const trackViewSQL = `UPDATE quote_revisions
   SET view_count = view_count + 1,
       last_viewed_at = now()
 WHERE id = $1`

// Pool settings for the tracker. View tracking is low volume.
const (
	maxConns        = 10
	minConns        = 2
	maxConnIdleTime = 5 * time.Minute
)

// execer is the part of pgxpool.Pool the tracker uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Tracker is a ports.ViewTracker backed by a pgx pool.
type Tracker struct {
	db    execer
	close func()
}

var _ ports.ViewTracker = (*Tracker)(nil)

// New opens a pool for dsn.
func New(ctx context.Context, dsn string) (*Tracker, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse view tracking dsn: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open view tracking pool: %w", err)
	}

	return &Tracker{db: pool, close: pool.Close}, nil
}

// TrackView implements ports.ViewTracker.
func (t *Tracker) TrackView(ctx context.Context, revisionID string) (bool, error) {
	if revisionID == "" {
		return false, errors.New("revision id is required")
	}

	tag, err := t.db.Exec(ctx, trackViewSQL, revisionID)
	if err != nil {
		return false, domain.NewStoreError("update", "quote_revisions", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Ping checks the pool.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.db.Ping(ctx)
}

// Close releases the pool.
func (t *Tracker) Close() {
	if t.close != nil {
		t.close()
	}
}
