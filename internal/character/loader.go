package character

import (
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Loader 按路径缓存设定卡，并合并并发加载
// 返回的 Sheet 为共享只读对象
type Loader struct {
	cache *cache.Cache
	sf    singleflight.Group
}

// NewLoader ttl 为设定卡缓存时长
func NewLoader(ttl time.Duration) *Loader {
	return &Loader{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Load 读取设定卡（带缓存）
func (l *Loader) Load(path string) (*Sheet, error) {
	key := filepath.Clean(path)
	if cached, found := l.cache.Get(key); found {
		if sheet, ok := cached.(*Sheet); ok {
			return sheet, nil
		}
	}

	val, err, _ := l.sf.Do(key, func() (interface{}, error) {
		sheet, err := Load(key)
		if err != nil {
			return nil, err
		}
		l.cache.SetDefault(key, sheet)
		return sheet, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Sheet), nil
}

// Invalidate 清除某个路径的缓存
func (l *Loader) Invalidate(path string) {
	l.cache.Delete(filepath.Clean(path))
}
