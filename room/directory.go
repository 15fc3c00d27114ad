package room

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/monopoly/game"
	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/timer"
)

// Directory tracks every room. It owns the timer manager shared by the
// rooms: the manager runs while at least one room exists.
type Directory struct {
	rooms      map[string]*Room
	mutex      sync.RWMutex
	timers     *timer.TimerManager
	cfg        Config
	deps       Dependencies
	engineOpts []game.Option
}

// Stats is a point in time summary for the admin endpoint.
type Stats struct {
	Rooms        int `json:"rooms"`
	StartedRooms int `json:"startedRooms"`
	Players      int `json:"players"`
}

func NewDirectory(cfg Config, deps Dependencies, engineOpts ...game.Option) *Directory {
	return &Directory{
		rooms:      make(map[string]*Room),
		timers:     timer.NewTimerManager(cfg.TimerResolution),
		cfg:        cfg,
		deps:       deps,
		engineOpts: engineOpts,
	}
}

// Create opens a new room with the given lobby settings.
func (d *Directory) Create(settings Settings) (*Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	id := d.newIDLocked()
	if len(d.rooms) == 0 {
		d.timers.Start()
	}
	r := NewRoom(id, settings, d.cfg, d.deps, d.timers, d.engineOpts...)
	r.onClose = func(r *Room) { d.Remove(r.ID) }
	d.rooms[id] = r
	d.deps.Monitor.SetActiveRooms(len(d.rooms))

	logger.Log.Infof("room %s created (private=%t, max=%d)", id, settings.IsPrivate, settings.MaxPlayers)
	return r, nil
}

// Get 从管理器中获取一个房间
func (d *Directory) Get(id string) (*Room, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	r, ok := d.rooms[strings.ToUpper(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Remove drops a room. The timer manager stops with the last room.
func (d *Directory) Remove(id string) {
	d.mutex.Lock()
	r, ok := d.rooms[id]
	if ok {
		delete(d.rooms, id)
		if len(d.rooms) == 0 {
			d.timers.Stop()
		}
		d.deps.Monitor.SetActiveRooms(len(d.rooms))
	}
	d.mutex.Unlock()

	if ok {
		r.markClosed()
		logger.Log.Infof("room %s removed", id)
	}
}

// QuickPlay returns the oldest public lobby with a free seat, or creates one.
func (d *Directory) QuickPlay(settings Settings) (*Room, error) {
	for _, r := range d.sorted() {
		info := r.Info()
		if !info.IsPrivate && !info.Started && info.PlayerCount < info.MaxPlayers && !r.Closed() {
			return r, nil
		}
	}
	settings.IsPrivate = false
	return d.Create(settings)
}

// List returns every room, oldest first. Private rooms are included and
// flagged; clients decide whether to show them.
func (d *Directory) List() []Info {
	rooms := d.sorted()
	out := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	return out
}

func (d *Directory) Count() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.rooms)
}

func (d *Directory) Stats() Stats {
	var s Stats
	for _, info := range d.List() {
		s.Rooms++
		s.Players += info.PlayerCount
		if info.Started {
			s.StartedRooms++
		}
	}
	return s
}

// Close drops every room and stops the timer manager.
func (d *Directory) Close() {
	for _, r := range d.sorted() {
		d.Remove(r.ID)
	}
	d.timers.Stop()
}

func (d *Directory) sorted() []*Room {
	d.mutex.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mutex.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// newIDLocked returns a short room code that is not in use.
func (d *Directory) newIDLocked() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		if _, taken := d.rooms[id]; !taken {
			return id
		}
	}
}
