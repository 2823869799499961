// Package snapshot persists full marketplace states between calls. The
// marketplace itself never touches storage; this store is the external
// collaborator that snapshots and restores the whole state atomically.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-marketplace/services"
	"ticket-marketplace/utils"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Envelope wraps a state with its revision tag and save time.
type Envelope struct {
	Revision string          `json:"revision"`
	SavedAt  int64           `json:"saved_at"`
	State    *services.State `json:"state"`
}

// Store writes marketplace snapshots to a single Redis key as one JSON blob,
// so a snapshot is either fully written or not written at all. Writes go
// through a circuit breaker; a flapping Redis should not stall the host's
// snapshot loop.
type Store struct {
	redis   *redis.Client
	breaker *utils.CircuitBreaker
	key     string

	now         func() time.Time
	newRevision func() (string, error)
}

func NewStore(client *redis.Client, key string) *Store {
	return &Store{
		redis:       client,
		breaker:     utils.NewCircuitBreaker("snapshot-store"),
		key:         key,
		now:         time.Now,
		newRevision: func() (string, error) { return utils.RandomHex(8) },
	}
}

// Save writes the state and returns the revision tag it was saved under.
func (s *Store) Save(ctx context.Context, state *services.State) (string, error) {
	rev, err := s.newRevision()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(Envelope{
		Revision: rev,
		SavedAt:  s.now().Unix(),
		State:    state,
	})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	err = s.breaker.Do(func() error {
		return s.redis.Set(ctx, s.key, data, 0).Err()
	})
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return rev, nil
}

// Load reads the last saved state and its revision tag.
func (s *Store) Load(ctx context.Context) (*services.State, string, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, "", ErrNoSnapshot
	}
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("decode snapshot: %w", err)
	}
	if env.State == nil {
		return nil, "", ErrNoSnapshot
	}

	return env.State, env.Revision, nil
}
