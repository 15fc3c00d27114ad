// services/record_service.go
package services

import (
	"context"
	"errors"

	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/models"
	"github.com/wfunc/monopoly/persistence"
	"github.com/wfunc/monopoly/room"
)

const maxRecentGames = 100

var ErrHistoryDisabled = errors.New("match history is disabled")

// RecordService archives finished games. It implements room.Recorder.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// NewRecord converts a room result into its stored form.
func NewRecord(result room.GameResult) *models.GameRecord {
	record := &models.GameRecord{
		RoomID:     result.RoomID,
		WinnerID:   result.WinnerID,
		WinnerName: result.WinnerName,
		Turns:      result.Turns,
		StartedAt:  result.StartedAt,
		EndedAt:    result.EndedAt,
	}
	if !result.StartedAt.IsZero() && result.EndedAt.After(result.StartedAt) {
		record.Duration = int(result.EndedAt.Sub(result.StartedAt).Seconds())
	}
	for i, p := range result.Players {
		record.Players = append(record.Players, models.PlayerRecord{
			PlayerID:   p.PlayerID,
			Name:       p.Name,
			Seat:       i,
			Cash:       p.Cash,
			Properties: p.Properties,
			Bankrupt:   p.Bankrupt,
			Winner:     p.PlayerID == result.WinnerID,
		})
	}
	return record
}

func (s *RecordService) RecordGame(ctx context.Context, result room.GameResult) error {
	if s == nil || s.db == nil {
		return ErrHistoryDisabled
	}
	record := NewRecord(result)
	if err := s.db.SaveGameRecord(ctx, record); err != nil {
		return err
	}
	logger.Log.Infof("archived game of room %s as record %d", result.RoomID, record.ID)
	return nil
}

// RecentGames returns at most limit summaries, newest first.
func (s *RecordService) RecentGames(ctx context.Context, limit int) ([]models.MatchSummary, error) {
	if s == nil || s.db == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > maxRecentGames {
		limit = maxRecentGames
	}
	records, err := s.db.RecentGames(ctx, limit)
	if err != nil {
		return nil, err
	}
	return summarize(records), nil
}

// PlayerGames returns the games a player id appeared in. A player with no
// archived games gets an empty list.
func (s *RecordService) PlayerGames(ctx context.Context, playerID string) ([]models.MatchSummary, error) {
	if s == nil || s.db == nil {
		return nil, ErrHistoryDisabled
	}
	records, err := s.db.PlayerGames(ctx, playerID)
	if persistence.IsNotFound(err) {
		return []models.MatchSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	return summarize(records), nil
}

func summarize(records []models.GameRecord) []models.MatchSummary {
	out := make([]models.MatchSummary, 0, len(records))
	for i := range records {
		out = append(out, records[i].Summary())
	}
	return out
}
