// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// DSN builds a keyword/value connection string for the pgx driver.
func DSN(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// zapWriter routes gorm's log lines into the server logger.
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Log.Debugf(format, args...)
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{}, gormlogger.Config{
		SlowThreshold:             time.Second, // 慢SQL阈值
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	db, err := gorm.Open(postgres.Open(DSN(host, port, user, password, dbname)), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord stores a finished game and its player rows in one
// transaction, so the archive never holds a game without its seats.
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	return p.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			return err
		}
		if len(record.Players) == 0 {
			return nil
		}
		for i := range record.Players {
			record.Players[i].GameRecordID = record.ID
		}
		return tx.Create(&record.Players).Error
	})
}

// RecentGames returns the latest finished games, newest first.
func (p *GormPostgreSQL) RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	var records []models.GameRecord
	err := p.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Order("ended_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// PlayerGames returns every archived game a player took part in.
func (p *GormPostgreSQL) PlayerGames(ctx context.Context, playerID string) ([]models.GameRecord, error) {
	var records []models.GameRecord
	err := p.db.WithContext(ctx).
		Joins("JOIN player_records ON player_records.game_record_id = game_records.id AND player_records.deleted_at IS NULL").
		Where("player_records.player_id = ?", playerID).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Order("game_records.ended_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}
	return records, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// 添加事务支持
func (p *GormPostgreSQL) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// IsNotFound reports errors that mean "nothing stored".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
