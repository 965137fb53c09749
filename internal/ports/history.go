package ports

import (
	"context"

	"gamerig/internal/domain"
)

// SessionHistoryWriter persists finished sessions
type SessionHistoryWriter interface {
	Save(ctx context.Context, result domain.SessionResult) error
}

// SessionHistoryReader reads past sessions, most recent first
type SessionHistoryReader interface {
	List(ctx context.Context, limit int) ([]domain.SessionResult, error)
}

// SessionHistory is the composite repository interface
type SessionHistory interface {
	SessionHistoryWriter
	SessionHistoryReader
	Close() error
}
