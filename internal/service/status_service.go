package service

import (
	"context"
	"fmt"
	"math"

	"github.com/user/garybot/internal/model"
)

// EpisodeCounter 剧集计数
type EpisodeCounter interface {
	Count(ctx context.Context) (int64, error)
	CountEnriched(ctx context.Context) (int64, error)
}

// StatusService 剧集库状态
type StatusService struct {
	episodes EpisodeCounter
}

// NewStatusService 创建状态服务
func NewStatusService(episodes EpisodeCounter) *StatusService {
	return &StatusService{episodes: episodes}
}

// Status 统计总数、已标注数与标注比例
func (s *StatusService) Status(ctx context.Context) (*model.DatabaseStatus, error) {
	total, err := s.episodes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count episodes: %w", err)
	}
	enriched, err := s.episodes.CountEnriched(ctx)
	if err != nil {
		return nil, fmt.Errorf("count enriched episodes: %w", err)
	}

	status := &model.DatabaseStatus{
		TotalEpisodes:    total,
		EnrichedEpisodes: enriched,
		Pending:          total - enriched,
	}
	if total > 0 {
		status.Percentage = math.Round(float64(enriched)/float64(total)*10000) / 100
	}
	return status, nil
}
