// Package state persists per-browser visit history so the workplace page can
// list recently opened routes.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotOpen is returned when a store is used before Open or after Close.
var ErrNotOpen = errors.New("database not opened")

// Visit is one completed navigation.
type Visit struct {
	ID        string
	SessionID string
	RouteKey  string
	VisitedAt time.Time
}

// Store records and lists visits.
type Store interface {
	// Record stores a visit. ID and VisitedAt are filled in when empty.
	Record(ctx context.Context, v Visit) (Visit, error)
	// Recent returns the most recent visit per route for a session, newest
	// first, at most limit entries.
	Recent(ctx context.Context, sessionID string, limit int) ([]Visit, error)
	// Count returns the total number of stored visits.
	Count(ctx context.Context) (int, error)
	// Prune removes visits older than before and reports how many went.
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
