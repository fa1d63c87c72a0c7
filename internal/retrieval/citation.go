package retrieval

import (
	"fmt"
	"strings"

	"github.com/user/garybot/internal/model"
)

const (
	summaryLimit = 140
	ellipsis     = "…"
	// UntitledPlaceholder 缺失标题时的占位
	UntitledPlaceholder = "Sin título"
)

// EpisodeCode 优先使用制作编号，缺失时生成 SxxEyy
func EpisodeCode(ep *model.Episode) string {
	if code := strings.TrimSpace(model.Str(ep.Code)); code != "" {
		return code
	}
	return fmt.Sprintf("S%02dE%02d", model.Int(ep.Season), model.Int(ep.Number))
}

// ShortSummary 超过 140 个字符时截断并追加省略号
func ShortSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit]) + ellipsis
	}
	return summary
}

// FormatCitation 单行引用：[code] title — short summary
func FormatCitation(ep *model.Episode) string {
	if ep == nil {
		ep = &model.Episode{}
	}
	title := strings.TrimSpace(model.Str(ep.Title))
	if title == "" {
		title = UntitledPlaceholder
	}
	return fmt.Sprintf("[%s] %s — %s", EpisodeCode(ep), title, ShortSummary(model.Str(ep.Summary)))
}

// Citations 多条引用按行拼接，用作提示词里的剧集上下文
func Citations(episodes []model.Episode) string {
	lines := make([]string, 0, len(episodes))
	for i := range episodes {
		lines = append(lines, FormatCitation(&episodes[i]))
	}
	return strings.Join(lines, "\n")
}
