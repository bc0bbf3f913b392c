// Package redis snapshots the in-memory state into two Redis keys, one per
// collection, after every successful transaction.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"orgmatrix/internal/infra/persistence/memory"
	"orgmatrix/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	keyOrganizations = "orgmatrix:organizations"
	keyMatrix        = "orgmatrix:matrix"
)

// Client is the subset of redis.Client the store depends on. Tests substitute
// a stub; production callers pass a *redis.Client.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Store wraps the in-memory store and snapshots its state into Redis.
type Store struct {
	*memory.Store
	client Client
}

// NewStore connects to Redis at addr (host:port or redis:// URL) and hydrates
// the in-memory store from any persisted snapshot.
func NewStore(addr string, engine *domain.RulesEngine) (*Store, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return NewStoreWithClient(redis.NewClient(opts), engine)
}

// NewStoreWithClient builds the store around an existing client.
func NewStoreWithClient(client Client, engine *domain.RulesEngine) (*Store, error) {
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), client: client}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	vals, err := s.client.MGet(ctx, keyOrganizations, keyMatrix).Result()
	if err != nil {
		return fmt.Errorf("load snapshot keys: %w", err)
	}
	var snapshot memory.Snapshot
	loaded := false
	if len(vals) > 0 && vals[0] != nil {
		if err := json.Unmarshal(payloadBytes(vals[0]), &snapshot.Organizations); err != nil {
			return fmt.Errorf("decode organizations: %w", err)
		}
		loaded = true
	}
	if len(vals) > 1 && vals[1] != nil {
		if err := json.Unmarshal(payloadBytes(vals[1]), &snapshot.Matrix); err != nil {
			return fmt.Errorf("decode matrix: %w", err)
		}
		loaded = true
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

// go-redis returns MGET values as strings; accept bytes too for stub clients.
func payloadBytes(v interface{}) []byte {
	switch p := v.(type) {
	case string:
		return []byte(p)
	case []byte:
		return p
	default:
		return nil
	}
}

func (s *Store) persist(ctx context.Context) error {
	snapshot := s.ExportState()
	payloads := []struct {
		key   string
		value any
	}{
		{keyOrganizations, snapshot.Organizations},
		{keyMatrix, snapshot.Matrix},
	}
	for _, p := range payloads {
		data, err := json.Marshal(p.value)
		if err != nil {
			return err
		}
		if err := s.client.Set(ctx, p.key, data, 0).Err(); err != nil {
			return fmt.Errorf("set %s: %w", p.key, err)
		}
	}
	return nil
}

// RunInTransaction applies fn within a transaction, then snapshots the state
// to Redis if the commit succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		return res, domain.PersistError{Err: pErr}
	}
	return res, nil
}

// Close releases the client connection.
func (s *Store) Close() error { return s.client.Close() }
