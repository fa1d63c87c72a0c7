package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/service"
)

// ChatAPI 对话接口
type ChatAPI interface {
	Ask(ctx context.Context, req service.AskRequest) (model.Reply, error)
	Reset(ctx context.Context, sessionID string) (int64, error)
}

// EpisodeSearchAPI 剧集检索接口
type EpisodeSearchAPI interface {
	Search(ctx context.Context, query string, limit int) ([]model.Episode, error)
}

// StatusAPI 剧集库状态接口
type StatusAPI interface {
	Status(ctx context.Context) (*model.DatabaseStatus, error)
}

// Handler HTTP 处理器
type Handler struct {
	Chat     ChatAPI
	Episodes EpisodeSearchAPI
	Status   StatusAPI
	log      *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(chat ChatAPI, episodes EpisodeSearchAPI, status StatusAPI, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Chat:     chat,
		Episodes: episodes,
		Status:   status,
		log:      log.Named("handler"),
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
