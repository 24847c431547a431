package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdash/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(MemoryPath))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is harmless")
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.Record(ctx, Visit{SessionID: "s", RouteKey: "k"})
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.Recent(ctx, "s", 5)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, store.Migrate(), ErrNotOpen)
}

func TestSQLiteStore_RecordAndRecent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	visits := []struct {
		session string
		key     string
		offset  time.Duration
	}{
		{"alice", "dashboard/workplace", 0},
		{"alice", "list/card", time.Minute},
		{"alice", "dashboard/workplace", 2 * time.Minute},
		{"alice", "form/group", 3 * time.Minute},
		{"bob", "user/info", 4 * time.Minute},
	}
	for _, v := range visits {
		_, err := store.Record(ctx, Visit{SessionID: v.session, RouteKey: v.key, VisitedAt: base.Add(v.offset)})
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	keys := make([]string, len(recent))
	for i, v := range recent {
		keys[i] = v.RouteKey
	}
	assert.Equal(t, []string{"form/group", "dashboard/workplace", "list/card"}, keys)
	assert.Equal(t, base.Add(2*time.Minute), recent[1].VisitedAt)

	limited, err := store.Recent(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "form/group", limited[0].RouteKey)

	none, err := store.Recent(ctx, "carol", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLiteStore_RecordFillsDefaults(t *testing.T) {
	store := setupTestStore(t)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	v, err := store.Record(context.Background(), Visit{SessionID: "s", RouteKey: "list/card"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, fixed, v.VisitedAt)
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{cutoff.Add(-time.Hour), cutoff.Add(-time.Minute), cutoff.Add(time.Hour)} {
		_, err := store.Record(ctx, Visit{SessionID: "s", RouteKey: "k", VisitedAt: at})
		require.NoError(t, err)
	}

	removed, err := store.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		wantErr   string
	}{
		{
			name: "record insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO visits").WillReturnError(errors.New("disk full"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.Record(context.Background(), Visit{SessionID: "s", RouteKey: "k"})
				return err
			},
			wantErr: "failed to record visit: disk full",
		},
		{
			name: "recent query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT route_key").WillReturnError(errors.New("locked"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.Recent(context.Background(), "s", 3)
				return err
			},
			wantErr: "failed to query visits: locked",
		},
		{
			name: "recent scan fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"route_key", "last_visit"}).AddRow("k", "not a number")
				mock.ExpectQuery("SELECT route_key").WillReturnRows(rows)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.Recent(context.Background(), "s", 3)
				return err
			},
			wantErr: "failed to scan visit",
		},
		{
			name: "count fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("gone"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.Count(context.Background())
				return err
			},
			wantErr: "failed to count visits: gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t))

			err = tt.call(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
