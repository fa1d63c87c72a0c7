package retrieval

import (
	"context"
	"fmt"

	"github.com/user/garybot/internal/model"
)

// DefaultLimit 调用方未指定数量时使用的上限
const DefaultLimit = 5

// EpisodeStore 后端存储，按关键词执行 OR 子串匹配
type EpisodeStore interface {
	Search(ctx context.Context, tokens []string, limit int) ([]model.Episode, error)
}

// Searcher 关键词检索入口
type Searcher struct {
	store EpisodeStore
}

// NewSearcher 创建检索器
func NewSearcher(store EpisodeStore) *Searcher {
	return &Searcher{store: store}
}

// Search 分词后查询存储，最多返回 limit 条
// 无有效关键词或 limit <= 0 时直接返回空结果，不访问存储
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]model.Episode, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil, nil
	}

	episodes, err := s.store.Search(ctx, tokens, limit)
	if err != nil {
		return nil, fmt.Errorf("search episodes: %w", err)
	}
	return episodes, nil
}

// MemoryStore 内存实现，构造后只读
type MemoryStore struct {
	episodes []model.Episode
}

// NewMemoryStore 以给定顺序作为存储顺序
func NewMemoryStore(episodes ...model.Episode) *MemoryStore {
	cp := make([]model.Episode, len(episodes))
	copy(cp, episodes)
	return &MemoryStore{episodes: cp}
}

// Search 按存储顺序返回前 limit 条匹配记录
func (m *MemoryStore) Search(_ context.Context, tokens []string, limit int) ([]model.Episode, error) {
	var out []model.Episode
	for i := range m.episodes {
		if len(out) >= limit {
			break
		}
		if Matches(&m.episodes[i], tokens) {
			out = append(out, m.episodes[i])
		}
	}
	return out, nil
}
