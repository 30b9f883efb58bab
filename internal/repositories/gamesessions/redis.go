package gamesessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mythgate/dungeonmind/internal/entities"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

const (
	sessionKeyPrefix = "gamesession:"
	sessionIndexKey  = "gamesessions:active"

	// Abandoned sessions age out of persistence after a week.
	defaultSessionTTL = 7 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client     redis.UniversalClient
	SessionTTL time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client     redis.UniversalClient
	sessionTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed session repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = defaultSessionTTL
	}

	return &redisRepository{
		client:     cfg.Client,
		sessionTTL: ttl,
	}
}

// NewRedis creates a Redis-backed session repository with default configuration
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{Client: client})
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Create stores a new session
func (r *redisRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return dmerr.InvalidArgument("session cannot be nil")
	}
	if session.ID == "" {
		return dmerr.InvalidArgument("session ID cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return dmerr.Wrap(err, "failed to serialize session")
	}

	created, err := r.client.SetNX(ctx, sessionKey(session.ID), data, r.sessionTTL).Result()
	if err != nil {
		return dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to store session").
			WithMeta("session_id", session.ID)
	}
	if !created {
		return dmerr.AlreadyExists("session already exists").
			WithMeta("session_id", session.ID)
	}

	if err := r.client.SAdd(ctx, sessionIndexKey, session.ID).Err(); err != nil {
		return dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to index session").
			WithMeta("session_id", session.ID)
	}

	return nil
}

// Get retrieves a session by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*entities.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, dmerr.NotFoundf("session not found: %s", id)
		}
		return nil, dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to get session").
			WithMeta("session_id", id)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, dmerr.Wrap(err, "failed to deserialize session").
			WithMeta("session_id", id)
	}

	return &session, nil
}

// Update replaces an existing session. SetXX never re-creates a deleted key,
// so a write racing a concurrent session-end is dropped.
func (r *redisRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return dmerr.InvalidArgument("session cannot be nil")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return dmerr.Wrap(err, "failed to serialize session")
	}

	updated, err := r.client.SetXX(ctx, sessionKey(session.ID), data, r.sessionTTL).Result()
	if err != nil {
		return dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to update session").
			WithMeta("session_id", session.ID)
	}
	if !updated {
		return dmerr.NotFoundf("session not found: %s", session.ID)
	}

	return nil
}

// Delete removes a session and its index entry
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, sessionIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to delete session").
			WithMeta("session_id", id)
	}

	if deleted.Val() == 0 {
		return dmerr.NotFoundf("session not found: %s", id)
	}

	return nil
}

// List returns all indexed sessions, fetching them concurrently. Index
// entries whose keys have expired are skipped.
func (r *redisRepository) List(ctx context.Context) ([]*entities.Session, error) {
	ids, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, dmerr.WrapWithCode(err, dmerr.CodeUnavailable, "failed to list sessions")
	}

	var mu sync.Mutex
	sessions := make([]*entities.Session, 0, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			session, getErr := r.Get(gctx, id)
			if getErr != nil {
				if dmerr.IsNotFound(getErr) {
					return nil
				}
				return getErr
			}

			mu.Lock()
			sessions = append(sessions, session)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sessions, nil
}
