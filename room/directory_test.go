package room

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(grace time.Duration) (*Directory, *MockBroadcaster) {
	cfg := DefaultConfig()
	cfg.GracePeriod = grace
	cfg.TimerResolution = 5 * time.Millisecond
	b := newMockBroadcaster()
	return NewDirectory(cfg, Dependencies{Broadcaster: b}), b
}

func TestDirectoryCreateGetRemove(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)
	defer d.Close()

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	assert.Len(t, r.ID, 8)
	assert.True(t, d.timers.Running())

	got, err := d.Get(r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = d.Get("nope")
	require.ErrorIs(t, err, ErrRoomNotFound)

	bad := DefaultSettings()
	bad.MaxPlayers = 99
	_, err = d.Create(bad)
	require.Error(t, err)
	assert.Equal(t, 1, d.Count())

	d.Remove(r.ID)
	assert.Equal(t, 0, d.Count())
	assert.True(t, r.Closed())
	assert.False(t, d.timers.Running())
}

func TestDirectoryLookupIgnoresCase(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)
	defer d.Close()

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	got, err := d.Get(strings.ToLower(r.ID))
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestQuickPlaySkipsUnavailableRooms(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)
	defer d.Close()

	private := DefaultSettings()
	private.IsPrivate = true
	_, err := d.Create(private)
	require.NoError(t, err)

	small := DefaultSettings()
	small.MaxPlayers = 2
	full, err := d.Create(small)
	require.NoError(t, err)
	join(t, full, "f1", "a")
	join(t, full, "f2", "b")

	started, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	join(t, started, "s1", "a")
	join(t, started, "s2", "b")
	require.NoError(t, started.StartGame("s1"))

	open, err := d.QuickPlay(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 4, d.Count(), "a fresh public room is created")
	assert.False(t, open.Info().IsPrivate)

	again, err := d.QuickPlay(DefaultSettings())
	require.NoError(t, err)
	assert.Same(t, open, again)
}

func TestDirectoryListAndStats(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)
	defer d.Close()

	first, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := d.Create(DefaultSettings())
	require.NoError(t, err)

	join(t, first, "a1", "a")
	join(t, first, "a2", "b")
	join(t, second, "b1", "c")
	require.NoError(t, first.StartGame("a1"))

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].RoomID)
	assert.Equal(t, second.ID, list[1].RoomID)

	assert.Equal(t, Stats{Rooms: 2, StartedRooms: 1, Players: 3}, d.Stats())
}

func TestLeavingLastPlayerRemovesRoom(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)
	defer d.Close()

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	join(t, r, "c1", "a")
	require.NoError(t, r.Leave("c1"))

	assert.Equal(t, 0, d.Count())
	assert.False(t, d.timers.Running())
	_, err = d.Get(r.ID)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGraceExpiryRemovesRoom(t *testing.T) {
	d, _ := newTestDirectory(20 * time.Millisecond)
	defer d.Close()

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	join(t, r, "c1", "a")
	r.Disconnect("c1")
	assert.Equal(t, 1, d.Count(), "seat is held during the grace period")

	require.Eventually(t, func() bool { return d.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, r.Closed())
}

func TestReconnectWithinGraceKeepsRoom(t *testing.T) {
	d, _ := newTestDirectory(50 * time.Millisecond)
	defer d.Close()

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	seat := join(t, r, "c1", "a")
	r.Disconnect("c1")
	_, err = r.ReconnectPlayer("c2", seat.Token)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 1, r.Info().PlayerCount)
}

func TestDirectoryClose(t *testing.T) {
	d, _ := newTestDirectory(time.Minute)

	r, err := d.Create(DefaultSettings())
	require.NoError(t, err)
	join(t, r, "c1", "a")
	d.Close()

	assert.Equal(t, 0, d.Count())
	assert.True(t, r.Closed())
	assert.False(t, d.timers.Running())
}
