package location

import (
	"testing"
	"time"

	"components-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(staticSearcher(amsterdam()), 2*time.Millisecond, zerolog.Nop())
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager()

	s := m.Create(models.Location{VenueCity: "Amsterdam"})
	require.NotEmpty(t, s.ID())
	assert.Equal(t, 1, m.Len())

	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, "Amsterdam", got.Location().VenueCity)

	_, ok = m.Get("no-such-session")
	assert.False(t, ok)
}

func TestManager_SessionIDsAreUnique(t *testing.T) {
	m := newTestManager()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		s := m.Create(models.Location{})
		_, dup := seen[s.ID()]
		require.False(t, dup)
		seen[s.ID()] = struct{}{}
	}
	assert.Equal(t, 50, m.Len())
}

func TestManager_Remove(t *testing.T) {
	m := newTestManager()
	s := m.Create(models.Location{})

	assert.True(t, m.Remove(s.ID()))
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get(s.ID())
	assert.False(t, ok)

	assert.False(t, m.Remove(s.ID()))
}

func TestManager_DismissOthers(t *testing.T) {
	m := newTestManager()
	a := m.Create(models.Location{})
	b := m.Create(models.Location{})
	c := m.Create(models.Location{})

	for _, s := range []*Session{a, b, c} {
		s.UpdateQuery("Amsterdam")
		waitForDropdown(t, s)
	}

	m.DismissOthers(a.ID())

	assert.True(t, a.State().DropdownOpen)
	assert.False(t, b.State().DropdownOpen)
	assert.False(t, c.State().DropdownOpen)
}

func TestManager_ScrollLockFollowsDropdowns(t *testing.T) {
	m := newTestManager()
	a := m.Create(models.Location{})
	b := m.Create(models.Location{})

	locked, depth := m.ScrollState()
	assert.False(t, locked)
	assert.Equal(t, 0, depth)

	for _, s := range []*Session{a, b} {
		s.UpdateQuery("Amsterdam")
		waitForDropdown(t, s)
	}

	locked, depth = m.ScrollState()
	assert.True(t, locked)
	assert.Equal(t, 2, depth)

	a.Dismiss()
	locked, depth = m.ScrollState()
	assert.True(t, locked)
	assert.Equal(t, 1, depth)

	// Repeated dismissals must not over-release.
	a.Dismiss()
	_, depth = m.ScrollState()
	assert.Equal(t, 1, depth)

	// Removing a session with an open dropdown releases its hold.
	m.Remove(b.ID())
	locked, depth = m.ScrollState()
	assert.False(t, locked)
	assert.Equal(t, 0, depth)
}

func TestManager_RemovedSessionLeavesRegistry(t *testing.T) {
	m := newTestManager()
	a := m.Create(models.Location{})
	b := m.Create(models.Location{})

	b.UpdateQuery("Amsterdam")
	waitForDropdown(t, b)

	m.Remove(a.ID())

	// A dismissal broadcast after removal must not touch the dead session.
	m.DismissOthers("unrelated")
	assert.False(t, b.State().DropdownOpen)
}
