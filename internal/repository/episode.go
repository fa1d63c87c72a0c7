package repository

import (
	"context"
	"strings"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
	"gorm.io/gorm"
)

const insertBatchSize = 100

type EpisodeRepository struct {
	db *gorm.DB
}

func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// Search 关键词 OR 匹配，按存储顺序（id）返回前 limit 条
func (r *EpisodeRepository) Search(ctx context.Context, tokens []string, limit int) ([]model.Episode, error) {
	where, args := retrieval.BuildPredicate(tokens)
	if where == "" || limit <= 0 {
		return nil, nil
	}

	var episodes []model.Episode
	err := r.db.WithContext(ctx).
		Where(where, args...).
		Order("id").
		Limit(limit).
		Find(&episodes).Error
	return episodes, err
}

// ReplaceAll 清空剧集表并批量导入（同一事务内，自增 id 重置）
func (r *EpisodeRepository) ReplaceAll(ctx context.Context, episodes []model.Episode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("TRUNCATE TABLE episodes RESTART IDENTITY").Error; err != nil {
			return err
		}
		if len(episodes) == 0 {
			return nil
		}
		return tx.CreateInBatches(&episodes, insertBatchSize).Error
	})
}

// Count 剧集总数
func (r *EpisodeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Episode{}).Count(&count).Error
	return count, err
}

// CountEnriched 已有视觉摘要的剧集数
func (r *EpisodeRepository) CountEnriched(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Episode{}).
		Where("visual_summary IS NOT NULL AND visual_summary <> ''").
		Count(&count).Error
	return count, err
}

// ListUnenriched 指定角色出场且尚未标注的剧集
func (r *EpisodeRepository) ListUnenriched(ctx context.Context, character string) ([]model.Episode, error) {
	var episodes []model.Episode
	err := r.db.WithContext(ctx).
		Where("(visual_summary IS NULL OR visual_summary = '') AND characters ILIKE ?", "%"+character+"%").
		Order("id").
		Find(&episodes).Error
	return episodes, err
}

// UpdateEnrichment 只更新三个标注字段
func (r *EpisodeRepository) UpdateEnrichment(ctx context.Context, id int, e model.Enrichment) error {
	result := r.db.WithContext(ctx).Model(&model.Episode{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"visual_summary":        e.VisualSummary,
			"key_characters":        strings.Join(e.KeyCharacters, ", "),
			"key_objects_locations": strings.Join(e.KeyObjectsLocations, ", "),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
