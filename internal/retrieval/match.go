package retrieval

import (
	"strings"

	"github.com/lib/pq"
	"github.com/user/garybot/internal/model"
)

// SearchFields 参与匹配的列，顺序与 searchableText 一致
var SearchFields = []string{"title", "summary", "quotes", "characters", "key_objects_locations"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchableText(ep *model.Episode) []string {
	return []string{
		model.Str(ep.Title),
		model.Str(ep.Summary),
		model.Str(ep.Quotes),
		model.Str(ep.Characters),
		model.Str(ep.KeyObjectsLocations),
	}
}

// Matches 任一关键词命中任一字段（忽略大小写的子串匹配）即视为匹配
func Matches(ep *model.Episode, tokens []string) bool {
	if ep == nil || len(tokens) == 0 {
		return false
	}
	fields := searchableText(ep)
	for i := range fields {
		fields[i] = strings.ToLower(fields[i])
	}
	for _, token := range tokens {
		needle := strings.ToLower(token)
		for _, field := range fields {
			if strings.Contains(field, needle) {
				return true
			}
		}
	}
	return false
}

// BuildPredicate 构造与 Matches 等价的 SQL 条件
// 形如 ("title" ILIKE ? OR "summary" ILIKE ? ...) OR (...)，每个关键词一组
func BuildPredicate(tokens []string) (string, []any) {
	if len(tokens) == 0 {
		return "", nil
	}

	groups := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens)*len(SearchFields))
	for _, token := range tokens {
		pattern := "%" + likeEscaper.Replace(token) + "%"
		parts := make([]string, len(SearchFields))
		for i, col := range SearchFields {
			parts[i] = pq.QuoteIdentifier(col) + " ILIKE ?"
			args = append(args, pattern)
		}
		groups = append(groups, "("+strings.Join(parts, " OR ")+")")
	}
	return strings.Join(groups, " OR "), args
}
