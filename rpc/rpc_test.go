package rpc

import (
	"context"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/monopoly/models"
	"github.com/wfunc/monopoly/room"
)

type MockHistory struct {
	lastLimit int
}

func (m *MockHistory) RecentGames(ctx context.Context, limit int) ([]models.MatchSummary, error) {
	m.lastLimit = limit
	return []models.MatchSummary{{RoomID: "OLD1", WinnerName: "Dana"}}, nil
}

func (m *MockHistory) PlayerGames(ctx context.Context, playerID string) ([]models.MatchSummary, error) {
	return []models.MatchSummary{{RoomID: "OLD2", WinnerName: playerID}}, nil
}

func newDirectory(t *testing.T) *room.Directory {
	t.Helper()
	d := room.NewDirectory(room.DefaultConfig(), room.Dependencies{})
	t.Cleanup(d.Close)

	public, err := d.Create(room.DefaultSettings())
	require.NoError(t, err)
	_, err = public.Join("c1", "Alice", "")
	require.NoError(t, err)
	_, err = public.Join("c2", "Bob", "")
	require.NoError(t, err)
	require.NoError(t, public.StartGame("c1"))

	private := room.DefaultSettings()
	private.IsPrivate = true
	hidden, err := d.Create(private)
	require.NoError(t, err)
	_, err = hidden.Join("c3", "Carol", "")
	require.NoError(t, err)
	return d
}

func TestAdminServiceDirect(t *testing.T) {
	svc := NewAdminService(newDirectory(t), nil)

	var rooms ListRoomsReply
	require.NoError(t, svc.ListRooms(&Filter{}, &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, "Alice", rooms.Rooms[0].HostName)

	require.NoError(t, svc.ListRooms(&Filter{IncludePrivate: true}, &rooms))
	assert.Len(t, rooms.Rooms, 2)

	var stats room.Stats
	require.NoError(t, svc.Stats(&Filter{}, &stats))
	assert.Equal(t, room.Stats{Rooms: 1, StartedRooms: 1, Players: 2}, stats)
	require.NoError(t, svc.Stats(&Filter{IncludePrivate: true}, &stats))
	assert.Equal(t, room.Stats{Rooms: 2, StartedRooms: 1, Players: 3}, stats)

	var games HistoryReply
	require.ErrorIs(t, svc.RecentGames(&HistoryArgs{}, &games), ErrNoHistory)
}

func TestAdminServiceHistory(t *testing.T) {
	h := &MockHistory{}
	svc := NewAdminService(newDirectory(t), h)

	var games HistoryReply
	require.NoError(t, svc.RecentGames(&HistoryArgs{Limit: 7}, &games))
	assert.Equal(t, 7, h.lastLimit)
	require.Len(t, games.Games, 1)
	assert.Equal(t, "OLD1", games.Games[0].RoomID)

	require.NoError(t, svc.RecentGames(&HistoryArgs{PlayerID: "p9"}, &games))
	require.Len(t, games.Games, 1)
	assert.Equal(t, "p9", games.Games[0].WinnerName)
}

func TestAdminServiceOverTCP(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", newDirectory(t), &MockHistory{})
	require.NoError(t, err)
	go srv.Start()
	defer srv.Stop()

	client, err := rpc.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	var stats room.Stats
	require.NoError(t, client.Call("AdminService.Stats", &Filter{IncludePrivate: true}, &stats))
	assert.Equal(t, 2, stats.Rooms)

	var rooms ListRoomsReply
	require.NoError(t, client.Call("AdminService.ListRooms", &Filter{IncludePrivate: true}, &rooms))
	assert.Len(t, rooms.Rooms, 2)

	var games HistoryReply
	require.NoError(t, client.Call("AdminService.RecentGames", &HistoryArgs{Limit: 3}, &games))
	require.Len(t, games.Games, 1)
	assert.Equal(t, "Dana", games.Games[0].WinnerName)
}
