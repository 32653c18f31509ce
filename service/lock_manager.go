package service

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type lockKey struct {
	guildID  int64
	memberID int64
}

// LockManager serializes interactive command flows per guild member. A member
// who is mid-way through a confirmation prompt cannot start a second flow that
// would race against the first on the same wallet or harem.
type LockManager struct {
	mu    sync.Mutex
	locks map[lockKey]string
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{
		locks: make(map[lockKey]string),
	}
}

// Acquire takes the lock for a member in a guild. The returned release
// function is idempotent and only releases the lock this call acquired.
func (m *LockManager) Acquire(guildID, memberID int64, flow string) (release func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := lockKey{guildID: guildID, memberID: memberID}
	if held, ok := m.locks[key]; ok {
		logrus.WithFields(logrus.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
			"held_by":   held,
			"requested": flow,
		}).Debug("Command lock contention")
		return nil, ErrAlreadyLocked
	}

	m.locks[key] = flow

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.locks[key] == flow {
				delete(m.locks, key)
			}
		})
	}, nil
}

// Held reports whether the member currently holds a lock and for which flow
func (m *LockManager) Held(guildID, memberID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flow, ok := m.locks[lockKey{guildID: guildID, memberID: memberID}]
	return flow, ok
}

// HeldError builds the user-facing error for a contended lock
func (m *LockManager) HeldError(guildID, memberID int64) error {
	if flow, ok := m.Held(guildID, memberID); ok {
		return fmt.Errorf("%w: finish your pending %s first", ErrAlreadyLocked, flow)
	}
	return ErrAlreadyLocked
}
