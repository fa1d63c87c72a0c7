package model

import "time"

// Role 消息角色
type Role string

const (
	RoleUser           Role = "user"
	RoleAssistant      Role = "assistant"
	RoleAssistantImage Role = "assistant_image"
)

// ChatMessage 聊天历史（只追加，按会话整体删除）
type ChatMessage struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"not null;index"`
	Role      Role      `json:"role" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName 表名
func (ChatMessage) TableName() string {
	return "chat_history"
}

// Intent 用户意图
type Intent string

const (
	IntentChat  Intent = "chat"
	IntentImage Intent = "image"
)

// ParseIntent 只接受 chat / image，其它一律视为 chat
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentChat, IntentImage:
		return Intent(s), true
	default:
		return IntentChat, false
	}
}

// ReplyType 回复类型
type ReplyType string

const (
	ReplyText  ReplyType = "text"
	ReplyImage ReplyType = "image"
)

// Reply /ask 的统一响应
type Reply struct {
	Type    ReplyType `json:"type"`
	Content string    `json:"content"`
}

// DatabaseStatus 剧集库状态
type DatabaseStatus struct {
	TotalEpisodes    int64   `json:"total_episodes"`
	EnrichedEpisodes int64   `json:"enriched_episodes"`
	Pending          int64   `json:"pending_episodes"`
	Percentage       float64 `json:"percentage"`
}
