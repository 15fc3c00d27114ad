package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/models"
	"github.com/wfunc/monopoly/room"
)

const historyTimeout = 5 * time.Second

// History is the match archive; services.RecordService implements it.
type History interface {
	RecentGames(ctx context.Context, limit int) ([]models.MatchSummary, error)
	PlayerGames(ctx context.Context, playerID string) ([]models.MatchSummary, error)
}

var ErrNoHistory = errors.New("match history is not configured")

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers the admin service.
// history may be nil.
func NewServer(addr string, rooms *room.Directory, history History) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("AdminService", NewAdminService(rooms, history)); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

func (s *Server) Addr() string {
	return s.address
}

// Start serves connections until Stop closes the listener.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only room information to operators.
type AdminService struct {
	rooms   *room.Directory
	history History
}

func NewAdminService(rooms *room.Directory, history History) *AdminService {
	return &AdminService{rooms: rooms, history: history}
}

// Filter selects the rooms an admin call looks at.
type Filter struct {
	// IncludePrivate also covers rooms hidden from quick play.
	IncludePrivate bool
}

type ListRoomsReply struct {
	Rooms []room.Info
}

func (a *AdminService) list(f *Filter) []room.Info {
	var out []room.Info
	for _, info := range a.rooms.List() {
		if info.IsPrivate && !f.IncludePrivate {
			continue
		}
		out = append(out, info)
	}
	return out
}

func (a *AdminService) ListRooms(args *Filter, reply *ListRoomsReply) error {
	reply.Rooms = a.list(args)
	return nil
}

// Stats summarizes the rooms matching args.
func (a *AdminService) Stats(args *Filter, reply *room.Stats) error {
	var s room.Stats
	for _, info := range a.list(args) {
		s.Rooms++
		s.Players += info.PlayerCount
		if info.Started {
			s.StartedRooms++
		}
	}
	*reply = s
	return nil
}

type HistoryArgs struct {
	Limit    int
	PlayerID string
}

type HistoryReply struct {
	Games []models.MatchSummary
}

// RecentGames lists archived games, or those of PlayerID when it is set.
func (a *AdminService) RecentGames(args *HistoryArgs, reply *HistoryReply) error {
	if a.history == nil {
		return ErrNoHistory
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	var (
		games []models.MatchSummary
		err   error
	)
	if args.PlayerID != "" {
		games, err = a.history.PlayerGames(ctx, args.PlayerID)
	} else {
		games, err = a.history.RecentGames(ctx, args.Limit)
	}
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}
