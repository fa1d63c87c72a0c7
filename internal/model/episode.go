package model

import (
	"strconv"
	"strings"
)

// Episode 剧集记录
// 可选字段使用指针表示 NULL，enrichment 字段由离线标注任务补全
type Episode struct {
	ID                  int     `json:"id" gorm:"primaryKey"`
	Season              *int    `json:"season"`
	Number              *int    `json:"episode" gorm:"column:episode"`
	Code                *string `json:"code"`
	Title               *string `json:"title"`
	Summary             *string `json:"summary"`
	Quotes              *string `json:"quotes"`
	Characters          *string `json:"characters"`
	VisualSummary       *string `json:"visual_summary,omitempty"`
	KeyCharacters       *string `json:"key_characters,omitempty"`
	KeyObjectsLocations *string `json:"key_objects_locations,omitempty"`
}

// TableName 表名
func (Episode) TableName() string {
	return "episodes"
}

// Enriched 是否已有视觉摘要
func (e *Episode) Enriched() bool {
	return strings.TrimSpace(Str(e.VisualSummary)) != ""
}

// Enrichment 标注任务产出的结构化字段
type Enrichment struct {
	VisualSummary       string   `json:"visual_summary"`
	KeyCharacters       []string `json:"key_characters"`
	KeyObjectsLocations []string `json:"key_objects_locations"`
}

// Empty 标注结果是否为空
func (e Enrichment) Empty() bool {
	return e.VisualSummary == "" && len(e.KeyCharacters) == 0 && len(e.KeyObjectsLocations) == 0
}

// Str 安全解引用
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Int 安全解引用，nil 视为 0
func Int(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// StrPtr 空字符串返回 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr 返回指针
func IntPtr(i int) *int {
	return &i
}

// Label 日志中使用的简短标识
func (e *Episode) Label() string {
	if t := strings.TrimSpace(Str(e.Title)); t != "" {
		return t
	}
	return "#" + strconv.Itoa(e.ID)
}
