package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists the single authentication token across restarts.
// An empty string from Load means no token is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a mode-0600 file, the local equivalent
// of browser local storage.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a file-backed token store at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

const redisTokenKey = "tokobuku:session:token"

// RedisTokenStore keeps the token in Redis, for setups where the app state
// should survive the host machine (e.g. running in a container).
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore builds a Redis-backed token store.
func NewRedisTokenStore(addr, password string) *RedisTokenStore {
	return &RedisTokenStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *RedisTokenStore) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := s.client.Get(ctx, redisTokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisTokenStore) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, redisTokenKey, token, 0).Err()
}

func (s *RedisTokenStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, redisTokenKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
