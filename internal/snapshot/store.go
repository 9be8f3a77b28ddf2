// Package snapshot persists the matchmaking registry to Redis so that
// profiles, verification, and bans survive a restart. The core stays
// oblivious to the storage format: it hands over profile copies via
// SaveAll and receives them back via LoadAll.
//
//	Key:   profile:<user_id>   (hash, one field per persisted attribute)
//	Index: profiles            (set of user IDs)
//
// Transient matching state (queue slots, partners) is deliberately not
// persisted; sessions do not survive a restart.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anonkampus/matchmaker/internal/user"
)

const (
	// ProfilePrefix is the Redis key prefix for persisted profile hashes.
	ProfilePrefix = "profile:"

	// IndexKey is the Redis set holding all persisted user IDs.
	IndexKey = "profiles"
)

// record is the Redis hash layout of one persisted profile.
type record struct {
	ID           string `redis:"id"`
	Affiliation  string `redis:"affiliation"`
	Gender       string `redis:"gender"`
	Age          int    `redis:"age"`
	Verification string `redis:"verification"`
	Banned       bool   `redis:"banned"`
	CreatedAt    int64  `redis:"created_at"`
}

// Store persists profile snapshots in Redis.
type Store struct {
	client *redis.Client
}

// NewStore connects to Redis and verifies the connection.
func NewStore(redisAddr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("snapshot: redis connection failed: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing Redis client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveAll writes every profile to Redis in one pipeline. Existing records
// for the same users are overwritten; records for users absent from the
// slice are left untouched (profiles are never destroyed).
func (s *Store) SaveAll(ctx context.Context, profiles []user.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, p := range profiles {
		key := ProfilePrefix + p.ID
		pipe.HSet(ctx, key, map[string]interface{}{
			"id":           p.ID,
			"affiliation":  p.Affiliation,
			"gender":       string(p.Gender),
			"age":          p.Age,
			"verification": string(p.Verification),
			"banned":       p.Banned,
			"created_at":   p.CreatedAt.Unix(),
		})
		pipe.SAdd(ctx, IndexKey, p.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("snapshot: save %d profiles: %w", len(profiles), err)
	}
	return nil
}

// LoadAll reads every persisted profile. Records missing their hash (index
// drift) are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]user.Profile, error) {
	ids, err := s.client.SMembers(ctx, IndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot: load index: %w", err)
	}

	profiles := make([]user.Profile, 0, len(ids))
	for _, id := range ids {
		var rec record
		if err := s.client.HGetAll(ctx, ProfilePrefix+id).Scan(&rec); err != nil {
			return nil, fmt.Errorf("snapshot: load profile %s: %w", id, err)
		}
		if rec.ID == "" {
			continue
		}

		profiles = append(profiles, user.Profile{
			ID:           rec.ID,
			Affiliation:  rec.Affiliation,
			Gender:       user.Gender(rec.Gender),
			Age:          rec.Age,
			Verification: user.Verification(rec.Verification),
			Banned:       rec.Banned,
			Status:       user.StatusIdle,
			CreatedAt:    time.Unix(rec.CreatedAt, 0),
		})
	}
	return profiles, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client for use by other packages.
func (s *Store) Client() *redis.Client {
	return s.client
}
