// room/room.go
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/wfunc/monopoly/game"
	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/monitor"
	"github.com/wfunc/monopoly/network"
)

const (
	maxNameLength = 24
	recordTimeout = 10 * time.Second
)

// Settings are the lobby options of a room: the house rules plus privacy.
type Settings struct {
	game.Settings
	IsPrivate bool `json:"isPrivate"`
}

func DefaultSettings() Settings {
	return Settings{Settings: game.DefaultSettings()}
}

// Config carries the server wide knobs every room shares.
type Config struct {
	GracePeriod     time.Duration
	TimerResolution time.Duration
	ChatHistory     int
	ChatRate        rate.Limit
	ChatBurst       int
	LogTail         int
}

func DefaultConfig() Config {
	return Config{
		GracePeriod:     60 * time.Second,
		TimerResolution: 100 * time.Millisecond,
		ChatHistory:     100,
		ChatRate:        rate.Limit(1),
		ChatBurst:       5,
		LogTail:         50,
	}
}

// Dependencies are the collaborators injected into every room. All of them
// are optional.
type Dependencies struct {
	Broadcaster Broadcaster
	Recorder    Recorder
	Monitor     *monitor.Monitor
}

// Info is the lobby listing entry of a room.
type Info struct {
	RoomID      string `json:"roomId"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPrivate   bool   `json:"isPrivate"`
	Started     bool   `json:"started"`
}

// State is what every bound connection receives after a change.
type State struct {
	RoomID string        `json:"roomId"`
	Info   Info          `json:"info"`
	Game   game.Snapshot `json:"game"`
}

// Seat identifies a player to the connection holding it. The token lets a
// new connection resume the seat after a drop.
type Seat struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	Token       string `json:"token"`
	Reconnected bool   `json:"reconnected"`
}

type PlayerResult struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Cash       int    `json:"cash"`
	Properties int    `json:"properties"`
	Bankrupt   bool   `json:"bankrupt"`
}

// GameResult is handed to the Recorder once a game has a winner.
type GameResult struct {
	RoomID     string
	WinnerID   string
	WinnerName string
	Turns      int
	StartedAt  time.Time
	EndedAt    time.Time
	Players    []PlayerResult
}

type member struct {
	playerID string
	name     string
	token    string
	connID   string
	// left marks a player forfeited during a running game; the seat stays
	// so the final state remains visible.
	left    bool
	limiter *rate.Limiter
}

type pendingGrace struct {
	seq     int64
	timerID int64
}

// outgoing is a frame queued under mu and written once mu is released.
type outgoing struct {
	connIDs []string
	to      string
	msgID   uint16
	data    []byte
}

// Room is one table. Every exported method takes mu, so commands for one
// room are applied strictly one after another. Frames produced by a command
// are written after mu is released; sendMu keeps them in command order.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	sendMu    sync.Mutex
	outbox    []outgoing
	engine    *game.Engine
	settings  Settings
	cfg       Config
	members   []*member
	byID      map[string]*member
	conns     map[string]*member
	tokens    map[string]*member
	hostID    string
	chat      *chatLog
	grace     map[string]pendingGrace
	graceSeq  int64
	closed    bool
	recorded  bool
	startedAt time.Time

	broadcaster Broadcaster
	scheduler   Scheduler
	recorder    Recorder
	monitor     *monitor.Monitor
	onClose     func(*Room)
}

// NewRoom 创建一个新房间, 未指定定时器时使用 time.AfterFunc
func NewRoom(id string, settings Settings, cfg Config, deps Dependencies, scheduler Scheduler, opts ...game.Option) *Room {
	if scheduler == nil {
		scheduler = newAfterFuncScheduler()
	}
	return &Room{
		ID:          id,
		CreatedAt:   time.Now(),
		engine:      game.New(settings.Settings, opts...),
		settings:    settings,
		cfg:         cfg,
		byID:        make(map[string]*member),
		conns:       make(map[string]*member),
		tokens:      make(map[string]*member),
		chat:        newChatLog(cfg.ChatHistory),
		grace:       make(map[string]pendingGrace),
		broadcaster: deps.Broadcaster,
		scheduler:   scheduler,
		recorder:    deps.Recorder,
		monitor:     deps.Monitor,
	}
}

// --- membership ---

// Join seats connID. A known token resumes that seat, anything else takes a
// new one.
func (r *Room) Join(connID, name, token string) (Seat, error) {
	r.mu.Lock()
	defer r.unlock()

	if token != "" {
		if m, ok := r.tokens[token]; ok {
			return r.reconnectLocked(connID, m)
		}
	}
	return r.addPlayerLocked(connID, name)
}

// AddPlayer 添加一个玩家到房间
func (r *Room) AddPlayer(connID, name string) (Seat, error) {
	r.mu.Lock()
	defer r.unlock()
	return r.addPlayerLocked(connID, name)
}

// ReconnectPlayer binds connID to the seat owned by token, cancelling the
// pending grace timer. Game state and host status are kept.
func (r *Room) ReconnectPlayer(connID, token string) (Seat, error) {
	r.mu.Lock()
	defer r.unlock()

	m, ok := r.tokens[token]
	if !ok {
		return Seat{}, ErrUnknownSession
	}
	return r.reconnectLocked(connID, m)
}

func (r *Room) addPlayerLocked(connID, name string) (Seat, error) {
	if r.closed {
		return Seat{}, ErrRoomNotFound
	}
	if m, ok := r.conns[connID]; ok {
		return r.seatOf(m, false), nil
	}
	if r.engine.Started() {
		return Seat{}, ErrGameStarted
	}
	if len(r.members) >= r.settings.MaxPlayers {
		return Seat{}, ErrRoomFull
	}

	name = cleanName(name, len(r.members)+1)
	m := &member{
		playerID: uuid.NewString(),
		name:     name,
		token:    uuid.NewString(),
		connID:   connID,
		limiter:  rate.NewLimiter(r.cfg.ChatRate, r.cfg.ChatBurst),
	}
	if _, err := r.engine.AddPlayer(m.playerID, name); err != nil {
		return Seat{}, err
	}
	r.members = append(r.members, m)
	r.byID[m.playerID] = m
	r.tokens[m.token] = m
	r.conns[connID] = m
	if r.hostID == "" {
		r.setHostLocked(m.playerID)
	}

	logger.Log.Infof("room %s: %s joined as %s", r.ID, name, m.playerID)
	r.broadcastStateLocked()
	return r.seatOf(m, false), nil
}

func (r *Room) reconnectLocked(connID string, m *member) (Seat, error) {
	if r.closed {
		return Seat{}, ErrRoomNotFound
	}
	if m.connID != "" && m.connID != connID {
		delete(r.conns, m.connID)
	}
	r.cancelGraceLocked(m.playerID)
	m.connID = connID
	r.conns[connID] = m
	r.engine.SetConnected(m.playerID, true)
	r.monitor.IncReconnects()

	logger.Log.Infof("room %s: %s reconnected", r.ID, m.playerID)
	r.broadcastStateLocked()
	return r.seatOf(m, true), nil
}

// Disconnect unbinds connID and starts the grace period of its player.
// Unknown connections are ignored.
func (r *Room) Disconnect(connID string) {
	r.mu.Lock()
	m, ok := r.conns[connID]
	if !ok || r.closed {
		r.mu.Unlock()
		return
	}
	r.unbindLocked(m)

	closed := false
	if m.left {
		// a forfeited player was only watching
		if r.abandonedLocked() {
			closed = r.closeLocked("abandoned")
		}
	} else {
		r.engine.SetConnected(m.playerID, false)
		r.scheduleGraceLocked(m)
		logger.Log.Infof("room %s: %s disconnected, holding the seat for %s", r.ID, m.playerID, r.cfg.GracePeriod)
		r.broadcastStateLocked()
	}
	r.unlock()

	if closed {
		r.notifyClosed()
	}
}

// Leave is an explicit departure of the player bound to connID. During a
// game the seat is held for the grace period like a dropped connection.
func (r *Room) Leave(connID string) error {
	r.mu.Lock()
	m, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	closed := r.removeLocked(m)
	r.unlock()

	if closed {
		r.notifyClosed()
	}
	return nil
}

// RemovePlayer frees the seat of playerID in the lobby. During a game the
// player is only marked disconnected and forfeits when the grace period runs
// out without a reconnect.
func (r *Room) RemovePlayer(playerID string) error {
	r.mu.Lock()
	m, ok := r.byID[playerID]
	if !ok {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	closed := r.removeLocked(m)
	r.unlock()

	if closed {
		r.notifyClosed()
	}
	return nil
}

// removeLocked reports whether the room closed as a result.
func (r *Room) removeLocked(m *member) bool {
	if r.engine.Started() {
		r.unbindLocked(m)
		if m.left || r.engine.Ended() {
			return r.forfeitLocked(m)
		}
		r.engine.SetConnected(m.playerID, false)
		if _, pending := r.grace[m.playerID]; !pending {
			r.scheduleGraceLocked(m)
		}
		logger.Log.Infof("room %s: %s stepped away, holding the seat for %s", r.ID, m.playerID, r.cfg.GracePeriod)
		r.broadcastStateLocked()
		return false
	}

	r.cancelGraceLocked(m.playerID)
	r.unbindLocked(m)
	if err := r.engine.RemovePlayer(m.playerID); err != nil {
		logger.Log.Warnf("room %s: removing %s: %v", r.ID, m.playerID, err)
	}
	delete(r.byID, m.playerID)
	delete(r.tokens, m.token)
	for i, other := range r.members {
		if other == m {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	logger.Log.Infof("room %s: %s left the lobby", r.ID, m.playerID)
	if r.hostID == m.playerID {
		r.electHostLocked()
	}
	if len(r.members) == 0 {
		return r.closeLocked("empty")
	}
	r.broadcastStateLocked()
	return false
}

// forfeitLocked takes an unbound player out of a running game for good. The
// seat stays so the final state remains visible.
func (r *Room) forfeitLocked(m *member) bool {
	r.cancelGraceLocked(m.playerID)
	if !m.left {
		m.left = true
		r.engine.SetConnected(m.playerID, false)
		if err := r.engine.Forfeit(m.playerID); err != nil && !errors.Is(err, game.ErrGameOver) {
			logger.Log.Warnf("room %s: forfeiting %s: %v", r.ID, m.playerID, err)
		}
		logger.Log.Infof("room %s: %s forfeited", r.ID, m.playerID)
		if r.hostID == m.playerID {
			r.electHostLocked()
		}
		r.afterChangeLocked()
	}
	if r.abandonedLocked() {
		return r.closeLocked("abandoned")
	}
	r.broadcastStateLocked()
	return false
}

func (r *Room) unbindLocked(m *member) {
	if m.connID != "" {
		delete(r.conns, m.connID)
		m.connID = ""
	}
}

// KickPlayer lets the host remove another player before the game starts.
func (r *Room) KickPlayer(connID, targetID string) error {
	r.mu.Lock()
	m, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownSession
	}
	if m.playerID != r.hostID {
		r.mu.Unlock()
		return ErrNotHost
	}
	if r.engine.Started() {
		r.mu.Unlock()
		return ErrGameStarted
	}
	target, ok := r.byID[targetID]
	if !ok {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	if target == m {
		r.mu.Unlock()
		return ErrKickSelf
	}
	if target.connID != "" {
		r.sendLocked(target.connID, network.MsgTypeKicked, map[string]string{"roomId": r.ID, "playerId": target.playerID})
	}
	logger.Log.Infof("room %s: host kicked %s", r.ID, target.playerID)
	closed := r.removeLocked(target)
	r.unlock()

	if closed {
		r.notifyClosed()
	}
	return nil
}

// --- lobby ---

func (r *Room) UpdateSettings(connID string, s Settings) error {
	r.mu.Lock()
	defer r.unlock()

	if err := r.hostCheckLocked(connID); err != nil {
		return err
	}
	if r.engine.Started() {
		return ErrGameStarted
	}
	if err := r.engine.UpdateSettings(s.Settings); err != nil {
		return err
	}
	r.settings = s
	r.broadcastStateLocked()
	return nil
}

func (r *Room) StartGame(connID string) error {
	r.mu.Lock()
	defer r.unlock()

	if err := r.hostCheckLocked(connID); err != nil {
		return err
	}
	if r.engine.Started() {
		return ErrGameStarted
	}
	if len(r.members) < game.MinPlayers {
		return ErrNotEnoughPlayers
	}
	if err := r.engine.Start(); err != nil {
		return err
	}
	r.startedAt = time.Now()
	logger.Log.Infof("room %s: game started with %d players", r.ID, len(r.members))
	r.broadcastStateLocked()
	return nil
}

func (r *Room) hostCheckLocked(connID string) error {
	m, ok := r.conns[connID]
	if !ok {
		return ErrUnknownSession
	}
	if m.playerID != r.hostID {
		return ErrNotHost
	}
	return nil
}

// --- game ---

// ProcessAction applies cmd for the player bound to connID and broadcasts
// the new state. A failed command changes nothing and is reported only to
// the caller.
func (r *Room) ProcessAction(connID string, cmd game.Command) (snap game.Snapshot, err error) {
	start := time.Now()
	action := "unknown"
	if cmd != nil {
		action = cmd.Name()
	}

	r.mu.Lock()
	defer r.unlock()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("room %s: %s panicked: %v\n%s", r.ID, action, rec, debug.Stack())
			snap, err = game.Snapshot{}, ErrInternal
		}
		r.monitor.ObserveCommand(action, err, time.Since(start))
	}()

	m, ok := r.conns[connID]
	if !ok {
		return game.Snapshot{}, ErrUnknownSession
	}
	if err := r.engine.Apply(m.playerID, cmd); err != nil {
		logger.Log.Debugf("room %s: %s rejected %s: %v", r.ID, m.playerID, action, err)
		return game.Snapshot{}, err
	}
	r.afterChangeLocked()
	r.broadcastStateLocked()
	return r.engine.Snapshot(r.cfg.LogTail), nil
}

// afterChangeLocked archives the game the first time it is seen finished.
func (r *Room) afterChangeLocked() {
	if !r.engine.Ended() || r.recorded {
		return
	}
	r.recorded = true
	r.monitor.IncGamesFinished()
	result := r.resultLocked()
	logger.Log.Infof("room %s: game over, %s wins after %d turns", r.ID, result.WinnerName, result.Turns)
	if r.recorder != nil {
		go r.record(result)
	}
}

func (r *Room) record(result GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.recorder.RecordGame(ctx, result); err != nil {
		logger.Log.Warnf("room %s: archiving result: %v", r.ID, err)
	}
}

func (r *Room) resultLocked() GameResult {
	snap := r.engine.Snapshot(0)
	result := GameResult{
		RoomID:    r.ID,
		WinnerID:  snap.WinnerID,
		Turns:     r.engine.Turns(),
		StartedAt: r.startedAt,
		EndedAt:   time.Now(),
	}
	for _, p := range snap.Players {
		if p.ID == snap.WinnerID {
			result.WinnerName = p.Name
		}
		result.Players = append(result.Players, PlayerResult{
			PlayerID:   p.ID,
			Name:       p.Name,
			Cash:       p.Cash,
			Properties: len(p.Properties),
			Bankrupt:   p.Bankrupt,
		})
	}
	return result
}

// --- chat ---

func (r *Room) Chat(connID, text string) (ChatMessage, error) {
	r.mu.Lock()
	defer r.unlock()

	m, ok := r.conns[connID]
	if !ok {
		return ChatMessage{}, ErrUnknownSession
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return ChatMessage{}, fmt.Errorf("%w: at most %d characters", ErrMessageTooLong, MaxChatLength)
	}
	if !m.limiter.Allow() {
		return ChatMessage{}, ErrRateLimited
	}

	msg := ChatMessage{
		PlayerID:  m.playerID,
		Name:      m.name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	r.chat.push(msg)
	r.monitor.IncChatMessages()
	r.broadcastLocked(network.MsgTypeChatPush, msg)
	return msg, nil
}

func (r *Room) ChatHistory() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chat.list()
}

// --- views ---

func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.infoLocked()
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// PlayerForConn returns the player bound to connID.
func (r *Room) PlayerForConn(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	return m.playerID, true
}

func (r *Room) infoLocked() Info {
	info := Info{
		RoomID:      r.ID,
		PlayerCount: len(r.members),
		MaxPlayers:  r.settings.MaxPlayers,
		IsPrivate:   r.settings.IsPrivate,
		Started:     r.engine.Started(),
	}
	if host, ok := r.byID[r.hostID]; ok {
		info.HostName = host.name
	}
	return info
}

func (r *Room) stateLocked() State {
	return State{
		RoomID: r.ID,
		Info:   r.infoLocked(),
		Game:   r.engine.Snapshot(r.cfg.LogTail),
	}
}

// --- internals ---

func (r *Room) seatOf(m *member, reconnected bool) Seat {
	return Seat{RoomID: r.ID, PlayerID: m.playerID, Token: m.token, Reconnected: reconnected}
}

func (r *Room) setHostLocked(playerID string) {
	r.hostID = playerID
	r.engine.SetHost(playerID)
}

// electHostLocked hands the host role to the earliest joiner still seated.
func (r *Room) electHostLocked() {
	for _, m := range r.members {
		if !m.left {
			r.setHostLocked(m.playerID)
			logger.Log.Infof("room %s: %s is the new host", r.ID, m.playerID)
			return
		}
	}
	r.hostID = ""
}

func (r *Room) scheduleGraceLocked(m *member) {
	r.cancelGraceLocked(m.playerID)
	r.graceSeq++
	seq, playerID := r.graceSeq, m.playerID
	timerID := r.scheduler.AddTimer(r.cfg.GracePeriod, func() { r.expireGrace(playerID, seq) })
	r.grace[playerID] = pendingGrace{seq: seq, timerID: timerID}
}

func (r *Room) cancelGraceLocked(playerID string) {
	if g, ok := r.grace[playerID]; ok {
		r.scheduler.RemoveTimer(g.timerID)
		delete(r.grace, playerID)
	}
}

// expireGrace runs on the timer goroutine. A firing whose sequence number is
// no longer the pending one was cancelled after it had been dequeued and is
// ignored.
func (r *Room) expireGrace(playerID string, seq int64) {
	r.mu.Lock()
	g, ok := r.grace[playerID]
	if !ok || g.seq != seq || r.closed {
		r.mu.Unlock()
		return
	}
	delete(r.grace, playerID)
	m, ok := r.byID[playerID]
	if !ok || m.connID != "" {
		r.mu.Unlock()
		return
	}
	logger.Log.Infof("room %s: grace period of %s expired", r.ID, playerID)
	r.monitor.IncGraceExpiries()
	var closed bool
	if r.engine.Started() {
		closed = r.forfeitLocked(m)
	} else {
		closed = r.removeLocked(m)
	}
	r.unlock()

	if closed {
		r.notifyClosed()
	}
}

// abandonedLocked reports a running or finished game nobody can return to.
func (r *Room) abandonedLocked() bool {
	for _, m := range r.members {
		if m.connID != "" {
			return false
		}
	}
	return len(r.grace) == 0
}

func (r *Room) closeLocked(reason string) bool {
	for playerID := range r.grace {
		r.cancelGraceLocked(playerID)
	}
	r.broadcastLocked(network.MsgTypeRoomClosed, map[string]string{"roomId": r.ID, "reason": reason})
	r.closed = true
	logger.Log.Infof("room %s: closed (%s)", r.ID, reason)
	return true
}

// markClosed is used by the directory when it drops the room.
func (r *Room) markClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for playerID := range r.grace {
		r.cancelGraceLocked(playerID)
	}
	r.closed = true
}

func (r *Room) notifyClosed() {
	if r.onClose != nil {
		r.onClose(r)
	}
}

func (r *Room) connIDsLocked() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) broadcastStateLocked() {
	r.broadcastLocked(network.MsgTypeRoomState, r.stateLocked())
}

func (r *Room) broadcastLocked(msgID uint16, v any) {
	if r.broadcaster == nil || len(r.conns) == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("room %s: encoding message %d: %v", r.ID, msgID, err)
		return
	}
	r.outbox = append(r.outbox, outgoing{connIDs: r.connIDsLocked(), msgID: msgID, data: data})
}

func (r *Room) sendLocked(connID string, msgID uint16, v any) {
	if r.broadcaster == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("room %s: encoding message %d: %v", r.ID, msgID, err)
		return
	}
	r.outbox = append(r.outbox, outgoing{to: connID, msgID: msgID, data: data})
}

// unlock releases mu and then writes the frames queued while it was held,
// so a slow peer never stalls the room.
func (r *Room) unlock() {
	out := r.outbox
	r.outbox = nil
	if len(out) == 0 {
		r.mu.Unlock()
		return
	}
	r.sendMu.Lock()
	r.mu.Unlock()
	defer r.sendMu.Unlock()
	r.deliver(out)
}

func (r *Room) deliver(out []outgoing) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("room %s: broadcaster panicked: %v\n%s", r.ID, rec, debug.Stack())
		}
	}()
	for _, o := range out {
		if o.to != "" {
			if err := r.broadcaster.Send(o.to, o.msgID, o.data); err != nil {
				logger.Log.Debugf("room %s: send %d to %s: %v", r.ID, o.msgID, o.to, err)
			}
			continue
		}
		if err := r.broadcaster.Broadcast(o.connIDs, o.msgID, o.data); err != nil {
			logger.Log.Debugf("room %s: broadcast %d: %v", r.ID, o.msgID, err)
		}
	}
}

func cleanName(name string, seat int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", seat)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}

// afterFuncScheduler backs rooms created without a shared timer manager.
type afterFuncScheduler struct {
	mu     sync.Mutex
	next   int64
	timers map[int64]*time.Timer
}

func newAfterFuncScheduler() *afterFuncScheduler {
	return &afterFuncScheduler{timers: make(map[int64]*time.Timer)}
}

func (s *afterFuncScheduler) AddTimer(delay time.Duration, callback func()) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		callback()
	})
	return id
}

func (s *afterFuncScheduler) RemoveTimer(timerID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[timerID]
	if !ok {
		return false
	}
	delete(s.timers, timerID)
	return t.Stop()
}
