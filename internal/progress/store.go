// internal/progress/store.go
//
// ProgressStore: load/save of the GameProgress aggregate through a
// generic key-value backend.
//
// Behavior:
//   - Load never fails. A missing key, a backend error or an unparsable
//     payload all degrade to the empty aggregate (read errors are logged).
//   - Save writes the full aggregate; partial writes are not supported.
//     Backend write errors are logged and swallowed, so a successful
//     return does not imply durability.
//   - Update is the only mutation path: load, patch, recompute
//     totalDecodedMessage, save. Updates on the same key are serialized
//     within the process; writers in other processes are last-write-wins.

package progress

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultKey is the storage key of a single-player aggregate.
const DefaultKey = "emode-progress"

// KeyFor returns the storage key for a player's aggregate.
func KeyFor(owner string) string {
	if owner == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + owner
}

// Backend is a synchronous key-value store.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value at key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store reads and writes GameProgress aggregates.
type Store struct {
	backend   Backend
	messages  Messages
	totalDays int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore returns a Store over backend. messages is used to rebuild the
// decoded message cache.
func NewStore(backend Backend, messages Messages) *Store {
	return &Store{backend: backend, messages: messages, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load returns the aggregate at key, or the empty default.
func (s *Store) Load(ctx context.Context, key string) GameProgress {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("load progress")
		return Empty()
	}
	if !ok || len(raw) == 0 {
		return Empty()
	}
	p := Empty()
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("decode progress")
		return Empty()
	}
	s.finish(&p)
	return p
}

// Save persists p at key and returns the aggregate as written.
func (s *Store) Save(ctx context.Context, key string, p GameProgress) GameProgress {
	unlock := s.lock(key)
	defer unlock()
	return s.save(ctx, key, p.Clone())
}

// Update applies fn to the current aggregate at key and persists the result.
func (s *Store) Update(ctx context.Context, key string, fn func(p *GameProgress)) GameProgress {
	unlock := s.lock(key)
	defer unlock()

	p := s.Load(ctx, key)
	fn(&p)
	return s.save(ctx, key, p)
}

// Clear deletes the aggregate at key.
func (s *Store) Clear(ctx context.Context, key string) {
	unlock := s.lock(key)
	defer unlock()
	if err := s.backend.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("clear progress")
	}
}

func (s *Store) save(ctx context.Context, key string, p GameProgress) GameProgress {
	s.finish(&p)
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("encode progress")
		return p
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		log.Error().Err(err).Str("key", key).Msg("save progress")
	}
	return p
}

// bound limits stored days to 1..totalDays.
func (s *Store) bound(totalDays int) { s.totalDays = totalDays }

func (s *Store) finish(p *GameProgress) {
	p.normalize(s.totalDays)
	p.TotalDecodedMessage = s.messages.Assemble(p.CompletedDays)
}
