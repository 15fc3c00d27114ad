// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/monopoly/models"
)

// Database is the match archive. Only finished games are stored; running
// games never leave memory.
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error)
	PlayerGames(ctx context.Context, playerID string) ([]models.GameRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
