package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/monopoly/broadcast"
	"github.com/wfunc/monopoly/game"
	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/monitor"
	"github.com/wfunc/monopoly/network"
	"github.com/wfunc/monopoly/room"
	"github.com/wfunc/monopoly/session"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrBadRequest     = errors.New("malformed request")
	ErrAlreadyInRoom  = errors.New("already in a room, leave it first")
)

type Options struct {
	Addr      string
	Heartbeat time.Duration
	// IdleTimeout closes sessions that have sent nothing for that long.
	// Zero disables the sweep.
	IdleTimeout time.Duration
	// Defaults seed the settings of rooms created without explicit ones.
	Defaults room.Settings
	Monitor  *monitor.Monitor
}

type handlerFunc func(sess *session.Session, data []byte) (any, error)

type GameServer struct {
	opts         Options
	upgrader     websocket.Upgrader
	rooms        *room.Directory
	sessions     *session.Manager
	broadcaster  broadcast.Broadcaster
	handlers     map[uint16]handlerFunc
	httpServer   *http.Server
	mutex        sync.Mutex
	shutdownChan chan struct{}
	closeOnce    sync.Once
}

// JoinResponse is the result data of join, create and quick play.
// SessionToken is what the client presents to take the seat back later.
type JoinResponse struct {
	Seat         room.Seat          `json:"seat"`
	Player       game.Player        `json:"player"`
	IsHost       bool               `json:"isHost"`
	SessionToken string             `json:"sessionToken"`
	State        room.State         `json:"state"`
	Chat         []room.ChatMessage `json:"chat"`
}

func NewGameServer(opts Options, rooms *room.Directory, sessions *session.Manager, b broadcast.Broadcaster) *GameServer {
	s := &GameServer{
		opts:         opts,
		rooms:        rooms,
		sessions:     sessions,
		broadcaster:  b,
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	s.handlers = map[uint16]handlerFunc{
		network.MsgTypeJoinRoom:       s.handleJoinRoom,
		network.MsgTypeLeaveRoom:      s.handleLeaveRoom,
		network.MsgTypeCreateRoom:     s.handleCreateRoom,
		network.MsgTypeQuickPlay:      s.handleQuickPlay,
		network.MsgTypeListRooms:      s.handleListRooms,
		network.MsgTypeUpdateSettings: s.handleUpdateSettings,
		network.MsgTypeStartGame:      s.handleStartGame,
		network.MsgTypeKickPlayer:     s.handleKickPlayer,
		network.MsgTypeChat:           s.handleChat,
		network.MsgTypeGameAction:     s.handleGameAction,
	}
	return s
}

func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *GameServer) Start() error {
	s.mutex.Lock()
	s.httpServer = &http.Server{Addr: s.opts.Addr, Handler: s.Handler()}
	srv := s.httpServer
	s.mutex.Unlock()

	if s.opts.IdleTimeout > 0 {
		go s.reapIdle()
	}
	logger.Log.Infof("Game server listening on %s", s.opts.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown tells every client the server is going away, drops all rooms and
// closes the listener.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)

		data, _ := json.Marshal(map[string]string{"reason": "shutdown"})
		if berr := s.broadcaster.BroadcastToAll(network.MsgTypeRoomClosed, data); berr != nil {
			logger.Log.Debugf("shutdown notice: %v", berr)
		}
		for _, sess := range s.sessions.All() {
			sess.Close()
		}
		s.rooms.Close()

		s.mutex.Lock()
		srv := s.httpServer
		s.mutex.Unlock()
		if srv != nil {
			err = srv.Shutdown(ctx)
		}
	})
	return err
}

func (s *GameServer) reapIdle() {
	ticker := time.NewTicker(s.opts.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdownChan:
			return
		case now := <-ticker.C:
			s.closeIdle(now)
		}
	}
}

// closeIdle drops sessions silent for longer than IdleTimeout. Their reader
// loop then reports the drop to the room like any other disconnect.
func (s *GameServer) closeIdle(now time.Time) int {
	closed := 0
	for _, sess := range s.sessions.All() {
		if idle := now.Sub(sess.LastActive()); idle > s.opts.IdleTimeout {
			logger.Log.Infof("Session %s idle for %s, closing", sess.GetID(), idle.Round(time.Second))
			sess.Close()
			closed++
		}
	}
	return closed
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	wsConn := network.NewWSConnection(conn)
	if s.opts.Heartbeat > 0 {
		wsConn.SetHeartbeat(s.opts.Heartbeat)
	}
	s.handleConnection(wsConn)
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.NewString(), conn)
	s.sessions.Add(sess)
	s.opts.Monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.sessions.Remove(sess.GetID())
		s.opts.Monitor.DecOnlinePlayers()
		if roomID := sess.RoomID(); roomID != "" {
			if r, err := s.rooms.Get(roomID); err == nil {
				r.Disconnect(sess.GetID())
			}
		}
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()
	if packet.MsgID == network.MsgTypeHeartbeat {
		sess.Send(network.MsgTypeHeartbeat, packet.Data)
		return
	}

	var req network.Request
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			s.reply(sess, "", nil, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
	}

	h, ok := s.handlers[packet.MsgID]
	if !ok {
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		s.reply(sess, req.RequestID, nil, fmt.Errorf("%w: %d", ErrUnknownMessage, packet.MsgID))
		return
	}
	data, err := h(sess, packet.Data)
	s.reply(sess, req.RequestID, data, err)
}

func (s *GameServer) reply(sess *session.Session, requestID string, data any, err error) {
	result := network.Success(requestID, data)
	if err != nil {
		result = network.Failure(requestID, err)
	}
	payload, merr := json.Marshal(result)
	if merr != nil {
		logger.Log.Errorf("encoding result for %s: %v", sess.GetID(), merr)
		return
	}
	if serr := sess.Send(network.MsgTypeResult, payload); serr != nil {
		logger.Log.Debugf("sending result to %s: %v", sess.GetID(), serr)
	}
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// currentRoom returns the room the session still holds a seat in. A binding
// left behind by a kick or a closed room is cleared.
func (s *GameServer) currentRoom(sess *session.Session) (*room.Room, error) {
	roomID := sess.RoomID()
	if roomID == "" {
		return nil, room.ErrNotInRoom
	}
	r, err := s.rooms.Get(roomID)
	if err != nil {
		sess.Unbind()
		return nil, room.ErrNotInRoom
	}
	if _, ok := r.PlayerForConn(sess.GetID()); !ok {
		sess.Unbind()
		return nil, room.ErrNotInRoom
	}
	return r, nil
}

func (s *GameServer) checkFree(sess *session.Session) error {
	if sess.RoomID() == "" {
		return nil
	}
	if _, err := s.currentRoom(sess); err == nil {
		return ErrAlreadyInRoom
	}
	return nil
}

func (s *GameServer) seat(sess *session.Session, r *room.Room, name, token string) (any, error) {
	seat, err := r.Join(sess.GetID(), name, token)
	if err != nil {
		return nil, err
	}
	sess.Bind(r.ID, seat.PlayerID)
	logger.Log.Infof("Session %s seated in room %s as %s", sess.GetID(), r.ID, seat.PlayerID)

	st := r.State()
	resp := JoinResponse{
		Seat:         seat,
		IsHost:       st.Game.HostID == seat.PlayerID,
		SessionToken: seat.Token,
		State:        st,
		Chat:         r.ChatHistory(),
	}
	for _, p := range st.Game.Players {
		if p.ID == seat.PlayerID {
			resp.Player = p
			break
		}
	}
	return resp, nil
}

func (s *GameServer) handleJoinRoom(sess *session.Session, data []byte) (any, error) {
	var req network.JoinRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if err := s.checkFree(sess); err != nil {
		return nil, err
	}
	r, err := s.rooms.Get(req.RoomID)
	if err != nil {
		return nil, err
	}
	return s.seat(sess, r, req.Name, req.Token)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, data []byte) (any, error) {
	var req network.CreateRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if err := s.checkFree(sess); err != nil {
		return nil, err
	}
	settings := s.opts.Defaults
	if len(req.Settings) > 0 {
		if err := decode(req.Settings, &settings); err != nil {
			return nil, err
		}
	}
	r, err := s.rooms.Create(settings)
	if err != nil {
		return nil, err
	}
	return s.seat(sess, r, req.Name, "")
}

// handleQuickPlay seats the client in the oldest open public room. The
// request settings only shape a room created because none was open.
func (s *GameServer) handleQuickPlay(sess *session.Session, data []byte) (any, error) {
	var req network.QuickPlayRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if err := s.checkFree(sess); err != nil {
		return nil, err
	}
	settings := s.opts.Defaults
	if len(req.Settings) > 0 {
		if err := decode(req.Settings, &settings); err != nil {
			return nil, err
		}
	}
	r, err := s.rooms.QuickPlay(settings)
	if err != nil {
		return nil, err
	}
	return s.seat(sess, r, req.Name, "")
}

func (s *GameServer) handleListRooms(sess *session.Session, data []byte) (any, error) {
	return s.rooms.List(), nil
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, data []byte) (any, error) {
	r, err := s.currentRoom(sess)
	if err != nil {
		return nil, err
	}
	if err := r.Leave(sess.GetID()); err != nil {
		return nil, err
	}
	sess.Unbind()
	return nil, nil
}

// handleUpdateSettings overlays the given fields on the current settings.
func (s *GameServer) handleUpdateSettings(sess *session.Session, data []byte) (any, error) {
	var req network.SettingsRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	r, err := s.currentRoom(sess)
	if err != nil {
		return nil, err
	}
	settings := r.Settings()
	if len(req.Settings) > 0 {
		if err := decode(req.Settings, &settings); err != nil {
			return nil, err
		}
	}
	if err := r.UpdateSettings(sess.GetID(), settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *GameServer) handleStartGame(sess *session.Session, data []byte) (any, error) {
	r, err := s.currentRoom(sess)
	if err != nil {
		return nil, err
	}
	if err := r.StartGame(sess.GetID()); err != nil {
		return nil, err
	}
	return r.State(), nil
}

func (s *GameServer) handleKickPlayer(sess *session.Session, data []byte) (any, error) {
	var req network.KickRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	r, err := s.currentRoom(sess)
	if err != nil {
		return nil, err
	}
	if err := r.KickPlayer(sess.GetID(), req.PlayerID); err != nil {
		return nil, err
	}
	for _, other := range s.sessions.InRoom(r.ID) {
		if other.PlayerID() == req.PlayerID {
			other.Unbind()
		}
	}
	return nil, nil
}

func (s *GameServer) handleChat(sess *session.Session, data []byte) (any, error) {
	var req network.ChatRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	r, err := s.currentRoom(sess)
	if err != nil {
		return nil, err
	}
	return r.Chat(sess.GetID(), req.Text)
}

func (s *GameServer) handleGameAction(sess *session.Session, data []byte) (any, error) {
	var req network.ActionRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	r, err := s.currentRoom(sess)
	if err != nil {
		logger.Log.Warnf("Session %s sent game action but is not in a room", sess.GetID())
		return nil, err
	}
	cmd, err := game.DecodeCommand(req.Action, req.Payload)
	if err != nil {
		return nil, err
	}
	return r.ProcessAction(sess.GetID(), cmd)
}
