package store

import (
	"context"

	"github.com/texrev/texrev/internal/models"
)

// Store defines the persistence interface for texrev's review history.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	FinishSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*models.Session, error)

	// Decisions
	CreateDecision(ctx context.Context, d *models.Decision) error
	ListDecisions(ctx context.Context, sessionID string) ([]*models.Decision, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
