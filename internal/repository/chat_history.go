package repository

import (
	"context"

	"github.com/user/garybot/internal/model"
	"gorm.io/gorm"
)

type ChatHistoryRepository struct {
	db *gorm.DB
}

func NewChatHistoryRepository(db *gorm.DB) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

// Append 追加一条消息
func (r *ChatHistoryRepository) Append(ctx context.Context, sessionID string, role model.Role, content string) error {
	return r.db.WithContext(ctx).Create(&model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}).Error
}

// Recent 最近 limit 条消息，按时间正序返回
func (r *ChatHistoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}

	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteSession 删除会话的全部消息
func (r *ChatHistoryRepository) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.ChatMessage{})
	return result.RowsAffected, result.Error
}
