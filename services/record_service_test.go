package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/monopoly/models"
	"github.com/wfunc/monopoly/persistence"
	"github.com/wfunc/monopoly/room"
)

// MockDatabase keeps records in memory.
type MockDatabase struct {
	records []models.GameRecord
	err     error
	limit   int
}

func (m *MockDatabase) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if m.err != nil {
		return m.err
	}
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, *record)
	return nil
}

func (m *MockDatabase) RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	m.limit = limit
	out := make([]models.GameRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, m.err
}

func (m *MockDatabase) PlayerGames(ctx context.Context, playerID string) ([]models.GameRecord, error) {
	var out []models.GameRecord
	for _, r := range m.records {
		for _, p := range r.Players {
			if p.PlayerID == playerID {
				out = append(out, r)
			}
		}
	}
	if len(out) == 0 {
		return nil, persistence.ErrRecordNotFound
	}
	return out, nil
}

func (m *MockDatabase) Close() error { return nil }

func sampleResult(roomID string) room.GameResult {
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	return room.GameResult{
		RoomID:     roomID,
		WinnerID:   "p2",
		WinnerName: "Bob",
		Turns:      42,
		StartedAt:  start,
		EndedAt:    start.Add(95 * time.Second),
		Players: []room.PlayerResult{
			{PlayerID: "p1", Name: "Alice", Bankrupt: true},
			{PlayerID: "p2", Name: "Bob", Cash: 3100, Properties: 12},
		},
	}
}

var _ room.Recorder = (*RecordService)(nil)

func TestNewRecord(t *testing.T) {
	rec := NewRecord(sampleResult("ROOM1"))
	assert.Equal(t, "ROOM1", rec.RoomID)
	assert.Equal(t, 95, rec.Duration)
	require.Len(t, rec.Players, 2)
	assert.False(t, rec.Players[0].Winner)
	assert.True(t, rec.Players[1].Winner)
	assert.Equal(t, 1, rec.Players[1].Seat)

	s := rec.Summary()
	assert.Equal(t, 95*time.Second, s.Duration)
	assert.Equal(t, "lose", s.Players[0].Outcome)
	assert.Equal(t, "win", s.Players[1].Outcome)
}

func TestRecordAndQuery(t *testing.T) {
	db := &MockDatabase{}
	svc := NewRecordService(db)
	ctx := context.Background()

	require.NoError(t, svc.RecordGame(ctx, sampleResult("A")))
	require.NoError(t, svc.RecordGame(ctx, sampleResult("B")))

	recent, err := svc.RecentGames(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, maxRecentGames, db.limit)
	require.Len(t, recent, 2)
	assert.Equal(t, "B", recent[0].RoomID)

	games, err := svc.PlayerGames(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, games, 2)

	games, err = svc.PlayerGames(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestRecordErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewRecordService(&MockDatabase{err: boom})
	require.ErrorIs(t, svc.RecordGame(context.Background(), sampleResult("A")), boom)

	var disabled *RecordService
	require.ErrorIs(t, disabled.RecordGame(context.Background(), sampleResult("A")), ErrHistoryDisabled)
	_, err := disabled.RecentGames(context.Background(), 5)
	require.ErrorIs(t, err, ErrHistoryDisabled)
}
