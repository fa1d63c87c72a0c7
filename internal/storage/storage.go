// Package storage 保存生成的图片并返回可访问的地址
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore 图片存储
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

// LocalStore 保存到本地目录，由路由以 /images 静态暴露
type LocalStore struct {
	dir     string
	urlPath string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir, urlPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}
	if urlPath == "" {
		urlPath = "/images"
	}
	return &LocalStore{dir: dir, urlPath: strings.TrimRight(urlPath, "/")}, nil
}

// Dir 存储目录
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save 写入 <uuid><ext>，返回 /images/<name>
func (s *LocalStore) Save(_ context.Context, data []byte, ext string) (string, error) {
	name := newObjectName(ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.urlPath + "/" + name, nil
}

func newObjectName(ext string) string {
	if ext == "" {
		ext = ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.NewString() + ext
}

func contentType(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
