package gamesessions

import (
	"context"
	"sync"

	"github.com/mythgate/dungeonmind/internal/entities"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		sessions: make(map[string]*entities.Session),
	}
}

// Create stores a new session
func (r *inMemoryRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return dmerr.InvalidArgument("session cannot be nil")
	}
	if session.ID == "" {
		return dmerr.InvalidArgument("session ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return dmerr.AlreadyExists("session already exists").
			WithMeta("session_id", session.ID)
	}

	// Store a deep copy to avoid external modifications
	r.sessions[session.ID] = session.Clone()

	return nil
}

// Get retrieves a session by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, dmerr.NotFoundf("session not found: %s", id)
	}

	// Return a copy to avoid external modifications
	return session.Clone(), nil
}

// Update replaces an existing session. Updating a deleted session is a
// not-found error; the write is dropped, never re-inserted.
func (r *inMemoryRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return dmerr.InvalidArgument("session cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return dmerr.NotFoundf("session not found: %s", session.ID)
	}

	r.sessions[session.ID] = session.Clone()

	return nil
}

// Delete removes a session
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return dmerr.NotFoundf("session not found: %s", id)
	}

	delete(r.sessions, id)
	return nil
}

// List returns all active sessions
func (r *inMemoryRepository) List(ctx context.Context) ([]*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*entities.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session.Clone())
	}

	return sessions, nil
}
