// Package storage provides small key-value backends for viewer UI state.
//
// The viewer persists a single key (the collapsed node list) and reads it
// once at startup, so every backend favours simplicity over throughput:
//
//   - [FileStorage] keeps one JSON file per key under a directory
//   - [MemoryStorage] keeps values in process memory
//   - [NullStorage] stores nothing
//   - [RedisStorage] and [MongoStorage] share state between viewers
//
// Open selects a backend from a URI.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Storage is a byte-oriented key-value store.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ErrUnknownBackend is returned by Open for unsupported specs.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Open returns a backend for uri:
//
//	""  or "memory"          MemoryStorage
//	"none"                   NullStorage
//	"file:<dir>"             FileStorage rooted at dir
//	"redis://..."            RedisStorage (go-redis URL syntax)
//	"mongodb://..." or "mongodb+srv://..."  MongoStorage
func Open(ctx context.Context, uri string) (Storage, error) {
	switch {
	case uri == "" || uri == "memory":
		return NewMemoryStorage(), nil
	case uri == "none":
		return NewNullStorage(), nil
	case strings.HasPrefix(uri, "file:"):
		s, err := NewFileStorage(strings.TrimPrefix(uri, "file:"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
		s, err := NewRedisStorageFromURL(uri)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		s, err := NewMongoStorage(ctx, uri, DefaultMongoDatabase, DefaultMongoCollection)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, uri)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
