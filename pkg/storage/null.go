package storage

import "context"

// NullStorage never stores anything; every Get misses.
type NullStorage struct{}

// NewNullStorage returns a null store.
func NewNullStorage() *NullStorage { return &NullStorage{} }

// Get always misses.
func (NullStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullStorage) Set(ctx context.Context, key string, value []byte) error { return nil }

// Delete does nothing.
func (NullStorage) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (NullStorage) Close() error { return nil }

var _ Storage = (*NullStorage)(nil)
