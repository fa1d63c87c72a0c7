package repository

import (
	"errors"
	"fmt"

	"github.com/user/garybot/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// InitDB 初始化数据库连接，gorm 日志写入 log
func InitDB(databaseURL string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取连接池失败: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 创建或补齐表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Episode{}, &model.ChatMessage{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Repositories 仓库集合
type Repositories struct {
	DB          *gorm.DB
	Episode     *EpisodeRepository
	ChatHistory *ChatHistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Episode:     NewEpisodeRepository(db),
		ChatHistory: NewChatHistoryRepository(db),
	}
}
