package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/garybot/internal/model"
)

// EnrichmentStore 待标注剧集的读取与回写
type EnrichmentStore interface {
	ListUnenriched(ctx context.Context, character string) ([]model.Episode, error)
	UpdateEnrichment(ctx context.Context, id int, e model.Enrichment) error
}

// Enricher 从标题与简介中抽取视觉信息
type Enricher interface {
	Enrich(ctx context.Context, title, summary string) (model.Enrichment, error)
}

// EnrichResult 一轮标注的统计
type EnrichResult struct {
	Found   int `json:"found"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// EnrichmentService 为指定角色出场的剧集补全视觉信息
type EnrichmentService struct {
	store     EnrichmentStore
	enricher  Enricher
	character string
	log       *zap.Logger
}

// NewEnrichmentService 创建标注服务
func NewEnrichmentService(store EnrichmentStore, enricher Enricher, character string, log *zap.Logger) *EnrichmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnrichmentService{
		store:     store,
		enricher:  enricher,
		character: character,
		log:       log.Named("EnrichmentService"),
	}
}

// RunOnce 处理所有尚未标注的剧集，单集失败不影响其它剧集
func (s *EnrichmentService) RunOnce(ctx context.Context) (EnrichResult, error) {
	episodes, err := s.store.ListUnenriched(ctx, s.character)
	if err != nil {
		return EnrichResult{}, err
	}

	result := EnrichResult{Found: len(episodes)}
	if len(episodes) == 0 {
		s.log.Info("nothing to enrich", zap.String("character", s.character))
		return result, nil
	}
	s.log.Info("enriching episodes", zap.String("character", s.character), zap.Int("count", len(episodes)))

	for i := range episodes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		ep := &episodes[i]

		enrichment, err := s.enricher.Enrich(ctx, model.Str(ep.Title), model.Str(ep.Summary))
		if err != nil || enrichment.Empty() {
			result.Failed++
			s.log.Warn("enrich failed", zap.Int("episode_id", ep.ID), zap.String("title", ep.Label()), zap.Error(err))
			continue
		}
		if err := s.store.UpdateEnrichment(ctx, ep.ID, enrichment); err != nil {
			result.Failed++
			s.log.Warn("save enrichment failed", zap.Int("episode_id", ep.ID), zap.Error(err))
			continue
		}
		result.Updated++
		s.log.Info("episode enriched", zap.Int("episode_id", ep.ID), zap.String("title", ep.Label()))
	}
	return result, nil
}

// Start 启动定时标注任务，ctx 取消后退出
func (s *EnrichmentService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		// 启动时先运行一次
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *EnrichmentService) run(ctx context.Context) {
	result, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("enrichment run failed", zap.Error(err))
		return
	}
	s.log.Info("enrichment run finished",
		zap.Int("found", result.Found), zap.Int("updated", result.Updated), zap.Int("failed", result.Failed))
}
