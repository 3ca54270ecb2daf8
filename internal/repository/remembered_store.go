package repository

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// Keys of the remembered-session store.
const (
	KeyRememberedEmail    = "rememberedEmail"
	KeyRememberedUserType = "rememberedUserType"
)

// RememberedStore is the "remember me" key-value store. Get reports
// ok=false when nothing is remembered.
type RememberedStore interface {
	Get(ctx context.Context) (domain.RememberedSession, bool, error)
	Set(ctx context.Context, session domain.RememberedSession) error
	Clear(ctx context.Context) error
}

type memoryRememberedStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryRememberedStore keeps the remembered session in process memory.
func NewMemoryRememberedStore() RememberedStore {
	return &memoryRememberedStore{values: make(map[string]string)}
}

func (s *memoryRememberedStore) Get(_ context.Context) (domain.RememberedSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.values[KeyRememberedEmail]
	if !ok || email == "" {
		return domain.RememberedSession{}, false, nil
	}
	return domain.RememberedSession{Email: email, Role: domain.Role(s.values[KeyRememberedUserType])}, true, nil
}

func (s *memoryRememberedStore) Set(_ context.Context, session domain.RememberedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[KeyRememberedEmail] = session.Email
	s.values[KeyRememberedUserType] = string(session.Role)
	return nil
}

func (s *memoryRememberedStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, KeyRememberedEmail)
	delete(s.values, KeyRememberedUserType)
	return nil
}

type redisRememberedStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRememberedStore stores the two keys under prefix in Redis.
func NewRedisRememberedStore(client *redis.Client, prefix string) RememberedStore {
	return &redisRememberedStore{client: client, prefix: prefix}
}

func (s *redisRememberedStore) Get(ctx context.Context) (domain.RememberedSession, bool, error) {
	vals, err := s.client.MGet(ctx, s.key(KeyRememberedEmail), s.key(KeyRememberedUserType)).Result()
	if err != nil {
		return domain.RememberedSession{}, false, err
	}
	email, _ := vals[0].(string)
	if email == "" {
		return domain.RememberedSession{}, false, nil
	}
	role, _ := vals[1].(string)
	return domain.RememberedSession{Email: email, Role: domain.Role(role)}, true, nil
}

func (s *redisRememberedStore) Set(ctx context.Context, session domain.RememberedSession) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(KeyRememberedEmail), session.Email, 0)
		pipe.Set(ctx, s.key(KeyRememberedUserType), string(session.Role), 0)
		return nil
	})
	return err
}

func (s *redisRememberedStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key(KeyRememberedEmail), s.key(KeyRememberedUserType)).Err()
}

func (s *redisRememberedStore) key(name string) string {
	return s.prefix + name
}
