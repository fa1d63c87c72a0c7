package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
	"github.com/user/garybot/internal/utils"
)

const maxSearchLimit = 50

// EpisodeHit 检索结果
type EpisodeHit struct {
	Episode  model.Episode `json:"episode"`
	Citation string        `json:"citation"`
}

// SearchEpisodes GET /api/episodes/search?q=&limit=
func (h *Handler) SearchEpisodes(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.BadRequest(c, "El parámetro q es obligatorio")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(retrieval.DefaultLimit)))
	if err != nil || limit < 0 {
		utils.BadRequest(c, "El parámetro limit debe ser un entero no negativo")
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	episodes, err := h.Episodes.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.log.Error("episode search failed", zap.String("q", query), zap.Error(err))
		utils.InternalServerError(c, "")
		return
	}

	items := make([]EpisodeHit, 0, len(episodes))
	for i := range episodes {
		items = append(items, EpisodeHit{Episode: episodes[i], Citation: retrieval.FormatCitation(&episodes[i])})
	}
	utils.Success(c, gin.H{"items": items})
}

// DatabaseStatus GET /api/status
func (h *Handler) DatabaseStatus(c *gin.Context) {
	status, err := h.Status.Status(c.Request.Context())
	if err != nil {
		h.log.Error("status failed", zap.Error(err))
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, status)
}
