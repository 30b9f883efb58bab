package gamesessions

//go:generate mockgen -destination=mock/mock_repository.go -package=mockgamesessions -source=repository.go

import (
	"context"

	"github.com/mythgate/dungeonmind/internal/entities"
)

// Repository defines the interface for game session storage
type Repository interface {
	// Create stores a new session; fails if the ID already exists
	Create(ctx context.Context, session *entities.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*entities.Session, error)

	// Update replaces an existing session; fails if the session was deleted
	Update(ctx context.Context, session *entities.Session) error

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// List returns all active sessions
	List(ctx context.Context) ([]*entities.Session, error)
}
