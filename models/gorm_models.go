// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GameRecord is one row per finished game.
type GameRecord struct {
	gorm.Model
	RoomID     string         `gorm:"index;not null"`
	WinnerID   string         `gorm:"index"`
	WinnerName string
	Turns      int            `gorm:"default:0"`
	Duration   int            `gorm:"default:0"` // 游戏时长(秒)
	StartedAt  time.Time
	EndedAt    time.Time      `gorm:"index"`
	Players    []PlayerRecord `gorm:"foreignKey:GameRecordID;constraint:OnDelete:CASCADE"`
}

// PlayerRecord is the final standing of one seat.
type PlayerRecord struct {
	gorm.Model
	GameRecordID uint   `gorm:"index;not null"`
	PlayerID     string `gorm:"index;not null"`
	Name         string `gorm:"not null"`
	Seat         int
	Cash         int
	Properties   int
	Bankrupt     bool
	Winner       bool
}

// AllModels lists every table the archive migrates.
func AllModels() []any {
	return []any{&GameRecord{}, &PlayerRecord{}}
}
