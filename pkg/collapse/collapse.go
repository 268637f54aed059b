// Package collapse owns the set of collapsed node ids and its persistence.
//
// The set outlives any particular drawing. It is stored under a single key
// as a JSON array of id strings in the order the ids were collapsed.
package collapse

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/btlive/pkg/storage"
)

// StorageKey is the persistence key of the collapsed set.
const StorageKey = "bt_collapsed_nodes"

// Store is the collapsed set. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	ids     []string
	members map[string]bool

	storage storage.Storage
	key     string
	logger  *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides StorageKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store backed by st. A nil st keeps state in memory.
func New(st storage.Storage, opts ...Option) *Store {
	if st == nil {
		st = storage.NewMemoryStorage()
	}
	s := &Store{
		members: make(map[string]bool),
		storage: st,
		key:     StorageKey,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Load replaces the set with the persisted one. Missing or corrupt data
// leaves an empty set; the failure is logged, never returned. Non-string
// elements are converted to strings; duplicates are dropped.
func (s *Store) Load(ctx context.Context) {
	data, ok, err := s.storage.Get(ctx, s.key)
	ids := []string{}
	switch {
	case err != nil:
		s.logger.Warn("failed to read collapsed nodes", "err", err)
	case !ok:
	default:
		parsed, perr := decode(data)
		if perr != nil {
			s.logger.Warn("ignoring corrupt collapsed nodes", "err", perr)
			break
		}
		ids = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = s.ids[:0]
	s.members = make(map[string]bool, len(ids))
	for _, id := range ids {
		if !s.members[id] {
			s.members[id] = true
			s.ids = append(s.ids, id)
		}
	}
	s.logger.Debug("loaded collapsed nodes", "count", len(s.ids))
}

func decode(data []byte) ([]string, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		switch v := v.(type) {
		case string:
			ids = append(ids, v)
		case nil:
			ids = append(ids, "null")
		default:
			b, _ := json.Marshal(v)
			ids = append(ids, string(b))
		}
	}
	return ids, nil
}

// Save persists the set. Errors are logged and returned.
func (s *Store) Save(ctx context.Context) error {
	data, err := json.Marshal(s.IDs())
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to persist collapsed nodes", "err", err)
		return err
	}
	return nil
}

// Toggle flips membership of id when hasChildren is true and persists the
// result. A childless id is never added or removed; changed is false then.
// Persistence failures are logged and do not undo the toggle.
func (s *Store) Toggle(ctx context.Context, id string, hasChildren bool) (collapsed, changed bool) {
	if !hasChildren {
		return s.Contains(id), false
	}
	s.mu.Lock()
	if s.members[id] {
		delete(s.members, id)
		s.ids = slices.DeleteFunc(s.ids, func(x string) bool { return x == id })
		collapsed = false
	} else {
		s.members[id] = true
		s.ids = append(s.ids, id)
		collapsed = true
	}
	s.mu.Unlock()

	_ = s.Save(ctx)
	return collapsed, true
}

// Contains reports membership.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[id]
}

// IDs returns the collapsed ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of collapsed ids.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
