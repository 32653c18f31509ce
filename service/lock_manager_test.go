package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockManager_AcquireAndRelease(t *testing.T) {
	manager := NewLockManager()

	release, err := manager.Acquire(1, 100, "buywaifu")
	require.NoError(t, err)
	require.NotNil(t, release)

	flow, held := manager.Held(1, 100)
	assert.True(t, held)
	assert.Equal(t, "buywaifu", flow)

	// Second acquire for the same member fails while the lock is held
	_, err = manager.Acquire(1, 100, "sellwaifu")
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	release()

	_, held = manager.Held(1, 100)
	assert.False(t, held)

	// Lock can be taken again after release
	release2, err := manager.Acquire(1, 100, "sellwaifu")
	require.NoError(t, err)
	release2()
}

func TestLockManager_ReleaseIsIdempotent(t *testing.T) {
	manager := NewLockManager()

	release, err := manager.Acquire(1, 100, "buywaifu")
	require.NoError(t, err)

	release()

	// A later holder must not be released by the stale release function
	_, err = manager.Acquire(1, 100, "trade")
	require.NoError(t, err)

	release()

	flow, held := manager.Held(1, 100)
	assert.True(t, held)
	assert.Equal(t, "trade", flow)
}

func TestLockManager_IndependentMembers(t *testing.T) {
	manager := NewLockManager()

	release1, err := manager.Acquire(1, 100, "buywaifu")
	require.NoError(t, err)
	defer release1()

	release2, err := manager.Acquire(1, 200, "buywaifu")
	require.NoError(t, err)
	defer release2()

	_, held := manager.Held(1, 100)
	assert.True(t, held)
	_, held = manager.Held(1, 200)
	assert.True(t, held)
}

func TestLockManager_IndependentGuilds(t *testing.T) {
	manager := NewLockManager()

	release1, err := manager.Acquire(1, 100, "buywaifu")
	require.NoError(t, err)
	defer release1()

	// The same member in another guild is not blocked
	release2, err := manager.Acquire(2, 100, "buywaifu")
	require.NoError(t, err)
	defer release2()
}

func TestLockManager_ConcurrentAcquire(t *testing.T) {
	manager := NewLockManager()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Acquire(1, 100, "roll"); err == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly one goroutine wins; the lock is never released here
	assert.Equal(t, 1, acquired)
}
