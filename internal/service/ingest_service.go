package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/user/garybot/internal/model"
)

// EpisodeWriter 整表替换剧集
type EpisodeWriter interface {
	ReplaceAll(ctx context.Context, episodes []model.Episode) error
}

// IngestService 从 CSV 导入剧集
type IngestService struct {
	store EpisodeWriter
	log   *zap.Logger
}

// NewIngestService 创建导入服务
func NewIngestService(store EpisodeWriter, log *zap.Logger) *IngestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestService{store: store, log: log.Named("IngestService")}
}

// IngestCSV 清空剧集表并导入 CSV 中的全部剧集，id 从 1 重新分配
func (s *IngestService) IngestCSV(ctx context.Context, r io.Reader) (int, error) {
	episodes, err := ReadEpisodesCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAll(ctx, episodes); err != nil {
		return 0, fmt.Errorf("replace episodes: %w", err)
	}
	s.log.Info("episodes ingested", zap.Int("count", len(episodes)))
	return len(episodes), nil
}
