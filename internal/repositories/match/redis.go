package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/codered/internal/models"
)

const (
	// Key prefixes for Redis
	matchKeyPrefix    = "match:"
	roomMatchesPrefix = "room_matches:"
	defaultListLimit  = 10
	defaultMatchTTL   = 7 * 24 * time.Hour
)

// Config holds configuration for the Redis match repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL is how long matches are kept; 0 uses a week
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed match repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.RedisClient == nil {
		return nil, ErrNilRedisClient
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultMatchTTL
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    ttl,
	}, nil
}

// SaveMatch stores the match and indexes it under its room, ordered by end time
func (r *redisRepository) SaveMatch(ctx context.Context, input *SaveMatchInput) error {
	if input == nil || input.Match == nil {
		return ErrNilMatch
	}
	if input.Match.ID == "" {
		return ErrEmptyMatchID
	}

	matchJSON, err := json.Marshal(input.Match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	pipe := r.client.Pipeline()

	matchKey := fmt.Sprintf("%s%s", matchKeyPrefix, input.Match.ID)
	pipe.Set(ctx, matchKey, matchJSON, r.ttl)

	if input.Match.RoomCode != "" {
		roomKey := fmt.Sprintf("%s%s", roomMatchesPrefix, input.Match.RoomCode)
		pipe.ZAdd(ctx, roomKey, redis.Z{
			Score:  float64(input.Match.EndedAt.UnixNano()),
			Member: input.Match.ID,
		})
		pipe.Expire(ctx, roomKey, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}

	return nil
}

// GetMatch retrieves a match by ID from Redis
func (r *redisRepository) GetMatch(ctx context.Context, input *GetMatchInput) (*models.Match, error) {
	if input == nil || input.MatchID == "" {
		return nil, ErrEmptyMatchID
	}

	matchKey := fmt.Sprintf("%s%s", matchKeyPrefix, input.MatchID)
	matchJSON, err := r.client.Get(ctx, matchKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	var match models.Match
	if err := json.Unmarshal([]byte(matchJSON), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

// ListRoomMatches walks the room index newest first. Index entries whose
// match has expired are pruned.
func (r *redisRepository) ListRoomMatches(ctx context.Context, input *ListRoomMatchesInput) (*ListRoomMatchesOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrEmptyRoomCode
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	roomKey := fmt.Sprintf("%s%s", roomMatchesPrefix, input.RoomCode)
	ids, err := r.client.ZRevRange(ctx, roomKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room matches: %w", err)
	}

	matches := make([]*models.Match, 0, len(ids))
	for _, id := range ids {
		match, err := r.GetMatch(ctx, &GetMatchInput{MatchID: id})
		if err != nil {
			if errors.Is(err, ErrMatchNotFound) {
				r.client.ZRem(ctx, roomKey, id)
				continue
			}
			return nil, err
		}
		matches = append(matches, match)
	}

	return &ListRoomMatchesOutput{Matches: matches}, nil
}
