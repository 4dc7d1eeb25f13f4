package service

import (
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/testutils"
	"github.com/stretchr/testify/require"
)

func toStores(m *testutils.MemStores) Stores {
	return Stores{Words: m.Words, States: m.States, Stats: m.Stats, Settings: m.Settings}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: testutils.FixedNow}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestProgressService(t *testing.T, mem *testutils.MemStores, c *clock) *ProgressService {
	t.Helper()
	svc, err := NewProgressService(toStores(mem), nil, nil, c.Now, nil)
	require.NoError(t, err)
	return svc
}
