package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/emode/internal/kv"
)

var (
	testLaunch = time.Date(2025, time.July, 21, 0, 0, 0, 0, time.UTC)
	testNow    = testLaunch.Add(2*24*time.Hour + 5*time.Hour)
)

func testConfig() Configuration {
	return NewConfiguration(map[int]int{1: 5, 2: 3, 3: 4, 4: 2, 5: 3})
}

func testMessages() Messages {
	return Messages{
		1: "Emode:",
		2: " we always strive for what",
		3: " we cannot have and in",
		5: " already in our grasp.",
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestEngine(t *testing.T, backend Backend) (*Engine, *clock) {
	t.Helper()
	if backend == nil {
		backend = kv.NewMemory()
	}
	c := &clock{now: testNow}
	store := NewStore(backend, testMessages())
	return NewEngine(store, testConfig(), testMessages(), testLaunch, WithClock(c.Now)), c
}

// flakyBackend wraps a backend and can be told to fail reads or writes.
type flakyBackend struct {
	Backend
	failGet bool
	failSet bool
	sets    int
}

var errBackend = errors.New("backend unavailable")

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errBackend
	}
	return f.Backend.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.failSet {
		return errBackend
	}
	return f.Backend.Set(ctx, key, value)
}
