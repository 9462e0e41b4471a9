// Package prefs persists the user's calendar preferences.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pogocal/internal/config"
	appLog "pogocal/internal/log"
)

// ErrNotFound is returned by a Backend for a key that was never set.
var ErrNotFound = errors.New("prefs: key not found")

// Backend is a flat string key/value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FileBackend keeps all keys in one JSON object on disk.
type FileBackend struct {
	path string

	mu     sync.Mutex
	values map[string]string
	loaded bool
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// load reads the file once. Callers hold b.mu.
func (b *FileBackend) load() error {
	if b.loaded {
		return nil
	}
	b.values = make(map[string]string)
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.loaded = true
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, &b.values); err != nil {
		// The next write replaces the corrupt file.
		appLog.Warn("preferences file is malformed; starting empty", "path", b.path, "err", err)
		b.values = make(map[string]string)
	}
	b.loaded = true
	return nil
}

func (b *FileBackend) flush() error {
	data, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(b.path, data, ".pogocal-prefs-*.tmp")
}

func (b *FileBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return "", err
	}
	v, ok := b.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	b.values[key] = value
	return b.flush()
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.load(); err != nil {
		return err
	}
	if _, ok := b.values[key]; !ok {
		return nil
	}
	delete(b.values, key)
	return b.flush()
}

// RedisBackend stores each key as a plain Redis string.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend parses a redis:// URL, connects, and pings before
// returning.
func NewRedisBackend(rawURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisBackend{client: client}, nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Open builds the backend selected by cfg.
func Open(cfg config.PrefsConfig) (Backend, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisBackend(cfg.RedisURL)
	default:
		return NewFileBackend(cfg.Path), nil
	}
}
