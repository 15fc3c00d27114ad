package room

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/monopoly/game"
	"github.com/wfunc/monopoly/network"
	"github.com/wfunc/monopoly/state"
)

type frame struct {
	msgID uint16
	data  []byte
}

// MockBroadcaster records every frame per connection.
type MockBroadcaster struct {
	mu     sync.Mutex
	frames map[string][]frame
	panics bool
}

func newMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{frames: make(map[string][]frame)}
}

func (m *MockBroadcaster) Send(connID string, msgID uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[connID] = append(m.frames[connID], frame{msgID, data})
	return nil
}

func (m *MockBroadcaster) Broadcast(connIDs []string, msgID uint16, data []byte) error {
	if m.panics {
		panic("broadcaster exploded")
	}
	for _, id := range connIDs {
		m.Send(id, msgID, data)
	}
	return nil
}

func (m *MockBroadcaster) count(connID string, msgID uint16) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range m.frames[connID] {
		if f.msgID == msgID {
			n++
		}
	}
	return n
}

func (m *MockBroadcaster) last(t *testing.T, connID string, msgID uint16, v any) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	frames := m.frames[connID]
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].msgID == msgID {
			require.NoError(t, json.Unmarshal(frames[i].data, v))
			return
		}
	}
	t.Fatalf("no frame %d sent to %s", msgID, connID)
}

// MockScheduler keeps callbacks until the test fires them.
type MockScheduler struct {
	mu    sync.Mutex
	next  int64
	tasks map[int64]func()
}

func newMockScheduler() *MockScheduler {
	return &MockScheduler{tasks: make(map[int64]func())}
}

func (s *MockScheduler) AddTimer(delay time.Duration, callback func()) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.tasks[s.next] = callback
	return s.next
}

func (s *MockScheduler) RemoveTimer(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

func (s *MockScheduler) pending() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []func()
	for _, cb := range s.tasks {
		out = append(out, cb)
	}
	return out
}

// fireAll runs every pending callback as if its delay had passed.
func (s *MockScheduler) fireAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[int64]func())
	s.mu.Unlock()
	for _, cb := range tasks {
		cb()
	}
}

// MockRecorder captures archived results.
type MockRecorder struct {
	results chan GameResult
}

func (m *MockRecorder) RecordGame(ctx context.Context, result GameResult) error {
	m.results <- result
	return nil
}

// gatedBroadcaster holds every write until release is closed.
type gatedBroadcaster struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBroadcaster) Send(connID string, msgID uint16, data []byte) error {
	return g.Broadcast([]string{connID}, msgID, data)
}

func (g *gatedBroadcaster) Broadcast(connIDs []string, msgID uint16, data []byte) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return nil
}

type explodingDice struct{}

func (explodingDice) Roll() int { panic("dice fell off the table") }

type fixedDice struct{ faces []int }

func (d *fixedDice) Roll() int {
	f := d.faces[0]
	d.faces = append(d.faces[1:], f)
	return f
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.GracePeriod = time.Minute
	return cfg
}

func newTestRoom(t *testing.T, settings Settings, opts ...game.Option) (*Room, *MockBroadcaster, *MockScheduler) {
	t.Helper()
	b := newMockBroadcaster()
	s := newMockScheduler()
	r := NewRoom("ROOM1", settings, testConfig(), Dependencies{Broadcaster: b}, s, opts...)
	return r, b, s
}

func join(t *testing.T, r *Room, connID, name string) Seat {
	t.Helper()
	seat, err := r.Join(connID, name, "")
	require.NoError(t, err)
	return seat
}

func TestJoinElectsFirstPlayerHost(t *testing.T) {
	r, b, _ := newTestRoom(t, DefaultSettings())

	alice := join(t, r, "c1", "Alice")
	bob := join(t, r, "c2", "  ")
	assert.NotEmpty(t, alice.Token)
	assert.NotEqual(t, alice.PlayerID, bob.PlayerID)

	info := r.Info()
	assert.Equal(t, "Alice", info.HostName)
	assert.Equal(t, 2, info.PlayerCount)
	assert.False(t, info.Started)

	var st State
	b.last(t, "c1", network.MsgTypeRoomState, &st)
	require.Len(t, st.Game.Players, 2)
	assert.Equal(t, "Player 2", st.Game.Players[1].Name)
	assert.Equal(t, alice.PlayerID, st.Game.HostID)
}

func TestJoinSameConnectionIsIdempotent(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings())
	first := join(t, r, "c1", "Alice")
	again := join(t, r, "c1", "Alice")
	assert.Equal(t, first.PlayerID, again.PlayerID)
	assert.Equal(t, 1, r.Info().PlayerCount)
}

func TestRoomFullAndStarted(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxPlayers = 2
	r, _, _ := newTestRoom(t, settings)

	join(t, r, "c1", "a")
	join(t, r, "c2", "b")
	_, err := r.Join("c3", "c", "")
	require.ErrorIs(t, err, ErrRoomFull)

	require.NoError(t, r.StartGame("c1"))
	_, err = r.Join("c3", "c", "")
	require.ErrorIs(t, err, ErrGameStarted)
	require.ErrorIs(t, r.StartGame("c1"), ErrGameStarted)
}

func TestStartGameChecks(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "a")
	require.ErrorIs(t, r.StartGame("c1"), ErrNotEnoughPlayers)

	join(t, r, "c2", "b")
	require.ErrorIs(t, r.StartGame("c2"), ErrNotHost)
	require.ErrorIs(t, r.StartGame("nobody"), ErrUnknownSession)
	require.NoError(t, r.StartGame("c1"))
	assert.True(t, r.Info().Started)
	assert.Equal(t, state.PhaseRolling, r.State().Game.Phase)
}

func TestUpdateSettings(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "a")
	join(t, r, "c2", "b")

	s := DefaultSettings()
	s.MaxPlayers = 4
	s.IsPrivate = true
	require.ErrorIs(t, r.UpdateSettings("c2", s), ErrNotHost)
	require.NoError(t, r.UpdateSettings("c1", s))

	info := r.Info()
	assert.Equal(t, 4, info.MaxPlayers)
	assert.True(t, info.IsPrivate)

	s.MaxPlayers = 1
	require.ErrorIs(t, r.UpdateSettings("c1", s), game.ErrInvalidSettings)

	require.NoError(t, r.StartGame("c1"))
	require.ErrorIs(t, r.UpdateSettings("c1", DefaultSettings()), ErrGameStarted)
}

func TestKickPlayer(t *testing.T) {
	r, b, _ := newTestRoom(t, DefaultSettings())
	host := join(t, r, "c1", "a")
	guest := join(t, r, "c2", "b")

	require.ErrorIs(t, r.KickPlayer("c2", host.PlayerID), ErrNotHost)
	require.ErrorIs(t, r.KickPlayer("c1", host.PlayerID), ErrKickSelf)
	require.ErrorIs(t, r.KickPlayer("c1", "ghost"), ErrNotInRoom)

	require.NoError(t, r.KickPlayer("c1", guest.PlayerID))
	assert.Equal(t, 1, b.count("c2", network.MsgTypeKicked))
	assert.Equal(t, 1, r.Info().PlayerCount)

	_, err := r.ProcessAction("c2", game.RollDice{})
	require.ErrorIs(t, err, ErrUnknownSession)

	join(t, r, "c3", "c")
	require.NoError(t, r.StartGame("c1"))
	p, _ := r.PlayerForConn("c3")
	require.ErrorIs(t, r.KickPlayer("c1", p), ErrGameStarted)
}

func TestReconnectCancelsGrace(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	alice := join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")

	r.Disconnect("c1")
	require.Len(t, sched.pending(), 1)
	assert.False(t, r.State().Game.Players[0].Connected)

	seat, err := r.Join("c9", "", alice.Token)
	require.NoError(t, err)
	assert.True(t, seat.Reconnected)
	assert.Equal(t, alice.PlayerID, seat.PlayerID)
	assert.Empty(t, sched.pending())

	info := r.Info()
	assert.Equal(t, "Alice", info.HostName)
	assert.Equal(t, 2, info.PlayerCount)
	assert.True(t, r.State().Game.Players[0].Connected)

	_, err = r.ReconnectPlayer("c10", "bogus")
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestStaleGraceFiringIsIgnored(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	alice := join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")

	r.Disconnect("c1")
	stale := sched.pending()
	require.Len(t, stale, 1)

	_, err := r.ReconnectPlayer("c3", alice.Token)
	require.NoError(t, err)

	// the callback was already dequeued when the player came back
	stale[0]()
	assert.Equal(t, 2, r.Info().PlayerCount)
	p, ok := r.PlayerForConn("c3")
	require.True(t, ok)
	assert.Equal(t, alice.PlayerID, p)
}

func TestGraceExpiryInLobbyReassignsHost(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	join(t, r, "c3", "Carol")

	r.Disconnect("c1")
	sched.fireAll()

	info := r.Info()
	assert.Equal(t, 2, info.PlayerCount)
	assert.Equal(t, "Bob", info.HostName)
	require.NoError(t, r.StartGame("c2"))
}

func TestLastLobbyPlayerClosesRoom(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	closed := make(chan string, 1)
	r.onClose = func(r *Room) { closed <- r.ID }

	join(t, r, "c1", "Alice")
	r.Disconnect("c1")
	sched.fireAll()

	assert.True(t, r.Closed())
	assert.Equal(t, "ROOM1", <-closed)
	_, err := r.Join("c2", "late", "")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveInGameHoldsSeatUntilGraceExpiry(t *testing.T) {
	b := newMockBroadcaster()
	rec := &MockRecorder{results: make(chan GameResult, 1)}
	sched := newMockScheduler()
	r := NewRoom("ROOM1", DefaultSettings(), testConfig(), Dependencies{Broadcaster: b, Recorder: rec}, sched)

	join(t, r, "c1", "Alice")
	bob := join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	require.NoError(t, r.Leave("c1"))
	require.ErrorIs(t, r.Leave("c1"), ErrUnknownSession)

	st := r.State()
	assert.Equal(t, state.PhaseRolling, st.Game.Phase)
	assert.False(t, st.Game.Players[0].Bankrupt)
	assert.False(t, st.Game.Players[0].Connected)
	assert.Equal(t, "Alice", st.Info.HostName)
	require.Len(t, sched.pending(), 1)

	sched.fireAll()
	st = r.State()
	assert.Equal(t, state.PhaseEnded, st.Game.Phase)
	assert.Equal(t, bob.PlayerID, st.Game.WinnerID)
	assert.True(t, st.Game.Players[0].Bankrupt)
	assert.Equal(t, "Bob", st.Info.HostName)

	select {
	case res := <-rec.results:
		assert.Equal(t, bob.PlayerID, res.WinnerID)
		assert.Equal(t, "Bob", res.WinnerName)
		assert.Len(t, res.Players, 2)
	case <-time.After(time.Second):
		t.Fatal("result was not recorded")
	}
}

func TestLeaveInGameThenRejoinKeepsEstate(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings(), game.WithDice(&fixedDice{faces: []int{1, 2}}))
	alice := join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	join(t, r, "c3", "Carol")
	require.NoError(t, r.StartGame("c1"))

	_, err := r.ProcessAction("c1", game.RollDice{})
	require.NoError(t, err)
	_, err = r.ProcessAction("c1", game.BuyProperty{PropertyID: 3})
	require.NoError(t, err)
	before := r.State().Game.Players[0]

	require.NoError(t, r.Leave("c1"))
	// a second departure through the player id keeps the same timer
	require.NoError(t, r.RemovePlayer(alice.PlayerID))
	require.Len(t, sched.pending(), 1)

	seat, err := r.Join("c9", "", alice.Token)
	require.NoError(t, err)
	assert.True(t, seat.Reconnected)
	assert.Empty(t, sched.pending())

	after := r.State().Game.Players[0]
	assert.False(t, after.Bankrupt)
	assert.True(t, after.Connected)
	assert.Equal(t, before.Cash, after.Cash)
	assert.Equal(t, []int{3}, after.Properties)
	assert.Equal(t, before.Position, after.Position)

	_, err = r.ProcessAction("c9", game.EndTurn{})
	require.NoError(t, err)
}

func TestDisconnectedCurrentPlayerForfeitsAtExpiry(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	join(t, r, "c3", "Carol")
	require.NoError(t, r.StartGame("c1"))

	r.Disconnect("c1")
	st := r.State()
	assert.Equal(t, st.Game.Players[0].ID, st.Game.Players[st.Game.CurrentPlayerIndex].ID, "turn waits for the grace period")

	sched.fireAll()
	st = r.State()
	assert.True(t, st.Game.Players[0].Bankrupt)
	assert.Equal(t, 1, st.Game.CurrentPlayerIndex)
	assert.False(t, r.Closed())
}

func TestAbandonedGameCloses(t *testing.T) {
	r, _, sched := newTestRoom(t, DefaultSettings())
	closed := make(chan struct{}, 1)
	r.onClose = func(*Room) { closed <- struct{}{} }

	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	r.Disconnect("c1")
	r.Disconnect("c2")
	sched.fireAll()

	assert.True(t, r.Closed())
	<-closed
}

func TestProcessAction(t *testing.T) {
	r, b, _ := newTestRoom(t, DefaultSettings(), game.WithDice(&fixedDice{faces: []int{1, 2}}))
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	_, err := r.ProcessAction("c2", game.RollDice{})
	require.ErrorIs(t, err, game.ErrNotYourTurn)
	_, err = r.ProcessAction("zz", game.RollDice{})
	require.ErrorIs(t, err, ErrUnknownSession)

	before := b.count("c2", network.MsgTypeRoomState)
	snap, err := r.ProcessAction("c1", game.RollDice{})
	require.NoError(t, err)
	assert.Equal(t, state.PhaseBuying, snap.Phase)
	assert.Equal(t, 3, snap.Players[0].Position)
	assert.Equal(t, before+1, b.count("c2", network.MsgTypeRoomState))

	snap, err = r.ProcessAction("c1", game.BuyProperty{PropertyID: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, snap.Players[0].Properties)
}

func TestProcessActionRecoversPanics(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings(), game.WithDice(explodingDice{}))
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	_, err := r.ProcessAction("c1", game.RollDice{})
	require.ErrorIs(t, err, ErrInternal)

	_, err = r.ProcessAction("c2", game.EndTurn{})
	require.ErrorIs(t, err, game.ErrNotYourTurn, "room stays usable")
}

func TestBroadcasterPanicStaysInsideTheRoom(t *testing.T) {
	r, b, _ := newTestRoom(t, DefaultSettings(), game.WithDice(&fixedDice{faces: []int{1, 2}}))
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	b.panics = true
	snap, err := r.ProcessAction("c1", game.RollDice{})
	require.NoError(t, err)
	assert.Equal(t, state.PhaseBuying, snap.Phase)

	b.panics = false
	_, err = r.ProcessAction("c1", game.BuyProperty{PropertyID: 3})
	require.NoError(t, err)
}

func TestSlowPeerDoesNotHoldTheRoom(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")

	gate := &gatedBroadcaster{entered: make(chan struct{}, 1), release: make(chan struct{})}
	r.broadcaster = gate
	done := make(chan error, 1)
	go func() {
		_, err := r.Chat("c1", "hello")
		done <- err
	}()
	<-gate.entered

	infos := make(chan Info, 1)
	go func() { infos <- r.Info() }()
	select {
	case info := <-infos:
		assert.Equal(t, 2, info.PlayerCount)
	case <-time.After(time.Second):
		t.Fatal("room stayed locked while a frame was being written")
	}
	assert.Len(t, r.ChatHistory(), 1)

	close(gate.release)
	require.NoError(t, <-done)
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	r, _, _ := newTestRoom(t, DefaultSettings())
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")
	require.NoError(t, r.StartGame("c1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := r.ProcessAction("c1", game.RollDice{})
			assert.NotErrorIs(t, err, ErrInternal)
		}()
		go func() {
			defer wg.Done()
			_, err := r.Chat("c2", "hi")
			if err != nil {
				assert.ErrorIs(t, err, ErrRateLimited)
			}
		}()
	}
	wg.Wait()
	assert.NotEmpty(t, r.ChatHistory())
	assert.False(t, r.Closed())
}

func TestChat(t *testing.T) {
	settings := DefaultSettings()
	cfg := testConfig()
	cfg.ChatHistory = 3
	cfg.ChatBurst = 2
	cfg.ChatRate = 0
	b := newMockBroadcaster()
	r := NewRoom("ROOM1", settings, cfg, Dependencies{Broadcaster: b}, newMockScheduler())
	join(t, r, "c1", "Alice")
	join(t, r, "c2", "Bob")

	_, err := r.Chat("c1", "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	_, err = r.Chat("c1", strings.Repeat("é", MaxChatLength+1))
	require.ErrorIs(t, err, ErrMessageTooLong)
	_, err = r.Chat("zz", "hello")
	require.ErrorIs(t, err, ErrUnknownSession)

	msg, err := r.Chat("c1", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "Alice", msg.Name)
	assert.Equal(t, 1, b.count("c2", network.MsgTypeChatPush))

	_, err = r.Chat("c1", strings.Repeat("x", MaxChatLength))
	require.NoError(t, err)
	_, err = r.Chat("c1", "third")
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = r.Chat("c2", "one")
	require.NoError(t, err)
	_, err = r.Chat("c2", "two")
	require.NoError(t, err)

	history := r.ChatHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "two", history[2].Text)
	assert.Equal(t, "Bob", history[1].Name)
}

func TestChatLogRing(t *testing.T) {
	c := newChatLog(2)
	assert.Empty(t, c.list())
	c.push(ChatMessage{Text: "1"})
	c.push(ChatMessage{Text: "2"})
	c.push(ChatMessage{Text: "3"})
	got := c.list()
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].Text)
	assert.Equal(t, "3", got[1].Text)
}
