package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerFires(t *testing.T) {
	m := NewTimerManager(5 * time.Millisecond)
	m.Start()
	defer m.Stop()

	fired := make(chan int64, 1)
	id := m.AddTimer(10*time.Millisecond, func() { fired <- 1 })
	assert.Positive(t, id)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Zero(t, m.Pending())
}

func TestRemoveTimer(t *testing.T) {
	m := NewTimerManager(5 * time.Millisecond)
	m.Start()
	defer m.Stop()

	var fired atomic.Int32
	id := m.AddTimer(30*time.Millisecond, func() { fired.Add(1) })
	other := m.AddTimer(time.Hour, func() {})
	require.True(t, m.RemoveTimer(id))
	assert.False(t, m.RemoveTimer(id))

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.Equal(t, 1, m.Pending())
	assert.True(t, m.RemoveTimer(other))
}

func TestOrdering(t *testing.T) {
	m := NewTimerManager(time.Millisecond)
	base := time.Unix(0, 0)
	m.now = func() time.Time { return base }

	m.AddTimer(3*time.Second, func() {})
	late := m.AddTimer(5*time.Second, func() {})
	early := m.AddTimer(time.Second, func() {})

	m.now = func() time.Time { return base.Add(4 * time.Second) }
	due := m.popDue()
	require.Len(t, due, 2)
	assert.Equal(t, early, due[0].Id)
	assert.Equal(t, 1, m.Pending())
	assert.True(t, m.RemoveTimer(late))
}

func TestStopDropsPendingAndRestarts(t *testing.T) {
	m := NewTimerManager(5 * time.Millisecond)
	m.Start()
	m.Start()
	assert.True(t, m.Running())

	m.AddTimer(time.Hour, func() {})
	m.Stop()
	m.Stop()
	assert.False(t, m.Running())
	assert.Zero(t, m.Pending())

	m.Start()
	defer m.Stop()
	fired := make(chan struct{})
	m.AddTimer(0, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("restarted manager did not fire")
	}
}
