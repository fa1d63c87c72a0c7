package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/user/garybot/internal/model"
)

// episodeColumns 导入导出的基础列，enrichment 列可选
var episodeColumns = []string{"season", "episode", "code", "title", "summary", "quotes", "characters"}

var enrichmentColumns = []string{"visual_summary", "key_characters", "key_objects_locations"}

// ReadEpisodesCSV 读取剧集 CSV，按表头名取列；空单元格视为 NULL
func ReadEpisodesCSV(r io.Reader) ([]model.Episode, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range episodeColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", col)
		}
	}

	var episodes []model.Episode
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		episodes = append(episodes, model.Episode{
			Season:              parseNumber(cell("season")),
			Number:              parseNumber(cell("episode")),
			Code:                model.StrPtr(cell("code")),
			Title:               model.StrPtr(cell("title")),
			Summary:             model.StrPtr(cell("summary")),
			Quotes:              model.StrPtr(cell("quotes")),
			Characters:          model.StrPtr(cell("characters")),
			VisualSummary:       model.StrPtr(cell("visual_summary")),
			KeyCharacters:       model.StrPtr(cell("key_characters")),
			KeyObjectsLocations: model.StrPtr(cell("key_objects_locations")),
		})
	}
	return episodes, nil
}

// WriteEpisodesCSV 写出剧集 CSV；withEnrichment 为 true 时附带 enrichment 列
func WriteEpisodesCSV(w io.Writer, episodes []model.Episode, withEnrichment bool) error {
	writer := csv.NewWriter(w)

	header := append([]string{}, episodeColumns...)
	if withEnrichment {
		header = append(header, enrichmentColumns...)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := range episodes {
		ep := &episodes[i]
		row := []string{
			formatNumber(ep.Season),
			formatNumber(ep.Number),
			model.Str(ep.Code),
			model.Str(ep.Title),
			model.Str(ep.Summary),
			model.Str(ep.Quotes),
			model.Str(ep.Characters),
		}
		if withEnrichment {
			row = append(row, model.Str(ep.VisualSummary), model.Str(ep.KeyCharacters), model.Str(ep.KeyObjectsLocations))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// parseNumber 兼容 "3" 与 "3.0"，无法解析时返回 nil
func parseNumber(s string) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func formatNumber(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
