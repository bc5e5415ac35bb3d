package pgxtrack

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

type fakeExecer struct {
	tag  string
	err  error
	sql  string
	args []any
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args

	return pgconn.NewCommandTag(f.tag), f.err
}

func (f *fakeExecer) Ping(context.Context) error { return f.err }

func TestTracker_TrackView(t *testing.T) {
	db := &fakeExecer{tag: "UPDATE 1"}
	tr := &Tracker{db: db}

	ok, err := tr.TrackView(context.Background(), "r-1")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, trackViewSQL, db.sql)
	assert.Equal(t, []any{"r-1"}, db.args)
}

func TestTracker_TrackView_UnknownRevision(t *testing.T) {
	tr := &Tracker{db: &fakeExecer{tag: "UPDATE 0"}}

	ok, err := tr.TrackView(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_TrackView_Errors(t *testing.T) {
	tr := &Tracker{db: &fakeExecer{err: errors.New("connection reset")}}

	_, err := tr.TrackView(context.Background(), "r-1")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	_, err = tr.TrackView(context.Background(), "")
	require.ErrorContains(t, err, "revision id is required")
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz")
	require.ErrorContains(t, err, "parse view tracking dsn")
}
