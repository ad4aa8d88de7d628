package flow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotReturnsIdleForNewUser(t *testing.T) {
	s := NewSessions()

	sess := s.Snapshot(1)
	assert.Equal(t, StateIdle, sess.State)
	assert.False(t, s.InProgress(1))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewSessions()
	s.Commit(1, Session{State: StateUploading, ActiveCategory: "Docs"})

	sess := s.Snapshot(1)
	sess.State = StateBrowsing
	sess.ActiveCategory = "Other"

	// Mutating the snapshot must not leak back until Commit.
	assert.Equal(t, StateUploading, s.State(1))
	again := s.Snapshot(1)
	assert.Equal(t, "Docs", again.ActiveCategory)
}

func TestCommitAndClear(t *testing.T) {
	s := NewSessions()
	s.Commit(1, Session{State: StateBrowsing})
	assert.True(t, s.InProgress(1))

	s.Clear(1)
	assert.Equal(t, StateIdle, s.State(1))
}

func TestSessionsConcurrentAccess(t *testing.T) {
	s := NewSessions()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Commit(id, Session{State: StateUploading})
			_ = s.Snapshot(id)
			_ = s.InProgress(id)
		}(int64(i % 4))
	}
	wg.Wait()
}

func TestResetDropsTransientData(t *testing.T) {
	sess := Session{
		State:          StateUploading,
		ActiveCategory: "Docs",
		PendingCount:   3,
		Cursor:         &Cursor{Category: "Docs", Page: 2},
		DeleteTarget:   "Docs",
	}
	sess.Reset()
	assert.Equal(t, Session{State: StateIdle}, sess)
}
