package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v2"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/utils"
)

// maxPageRunes 单页正文发送给模型的最大字符数
const maxPageRunes = 15000

// FlexText 兼容模型返回的字符串、数字或字符串数组
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexText(strings.TrimSpace(s))
	case '[':
		var items []FlexText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s := string(it); s != "" {
				parts = append(parts, s)
			}
		}
		*f = FlexText(strings.Join(parts, "; "))
	default:
		*f = FlexText(string(data))
	}
	return nil
}

// FlexInt 兼容数字与数字字符串，无法解析时为 0
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int(n))
		return nil
	}
	*f = 0
	return nil
}

// FlexList 兼容字符串数组与逗号分隔的字符串
type FlexList []string

func (f *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []FlexText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := string(it); s != "" {
				out = append(out, s)
			}
		}
		*f = out
		return nil
	}
	var s FlexText
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, part := range strings.Split(string(s), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*f = out
	return nil
}

// EpisodeDraft 模型抽取或生成的剧集数据
type EpisodeDraft struct {
	Season     FlexInt  `json:"season"`
	Episode    FlexInt  `json:"episode"`
	Code       FlexText `json:"code"`
	Title      FlexText `json:"title"`
	Summary    FlexText `json:"summary"`
	Quotes     FlexText `json:"quotes"`
	Characters FlexText `json:"characters"`
}

// ToEpisode 转换为剧集记录，0 与空串视为缺失
func (d EpisodeDraft) ToEpisode() model.Episode {
	ep := model.Episode{
		Code:       model.StrPtr(string(d.Code)),
		Title:      model.StrPtr(string(d.Title)),
		Summary:    model.StrPtr(string(d.Summary)),
		Quotes:     model.StrPtr(string(d.Quotes)),
		Characters: model.StrPtr(string(d.Characters)),
	}
	if d.Season > 0 {
		ep.Season = model.IntPtr(int(d.Season))
	}
	if d.Episode > 0 {
		ep.Number = model.IntPtr(int(d.Episode))
	}
	return ep
}

type enrichResponse struct {
	VisualSummary       FlexText `json:"visual_summary"`
	KeyCharacters       FlexList `json:"key_characters"`
	KeyObjectsLocations FlexList `json:"key_objects_locations"`
}

// completeJSON 让模型只返回 JSON 并解析到 out
func (c *Client) completeJSON(ctx context.Context, system, user string, out any) error {
	answer, err := c.complete(ctx, completion{
		model: c.cfg.VisionModel,
		messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(utils.StripCodeFence(answer)), out); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}

// Enrich 从标题和简介中抽取视觉描述、关键角色、关键物品与地点
func (c *Client) Enrich(ctx context.Context, title, summary string) (model.Enrichment, error) {
	var resp enrichResponse
	user := fmt.Sprintf("Título: %s\nResumen: %s", title, summary)
	if err := c.completeJSON(ctx, enrichSystemPrompt, user, &resp); err != nil {
		return model.Enrichment{}, fmt.Errorf("enrich %q: %w", title, err)
	}
	return model.Enrichment{
		VisualSummary:       string(resp.VisualSummary),
		KeyCharacters:       resp.KeyCharacters,
		KeyObjectsLocations: resp.KeyObjectsLocations,
	}, nil
}

// ExtractEpisode 从 wiki 页面正文中抽取一集的数据
func (c *Client) ExtractEpisode(ctx context.Context, url, page string) (EpisodeDraft, error) {
	var draft EpisodeDraft
	user := fmt.Sprintf("URL de referencia: %s\n\nContenido de la página:\n%s", url, utils.TruncateRunes(page, maxPageRunes))
	if err := c.completeJSON(ctx, extractSystemPrompt, user, &draft); err != nil {
		return EpisodeDraft{}, fmt.Errorf("extract %s: %w", url, err)
	}
	return draft, nil
}

// GenerateEpisodes 让模型直接生成 [from, to] 范围内的剧集数据
func (c *Client) GenerateEpisodes(ctx context.Context, from, to int) ([]EpisodeDraft, error) {
	var raw any
	user := fmt.Sprintf("Por favor, genera los datos para los episodios de Bob Esponja desde el número %d hasta el %d.", from, to)
	if err := c.completeJSON(ctx, generateSystemPrompt, user, &raw); err != nil {
		return nil, fmt.Errorf("generate episodes %d-%d: %w", from, to, err)
	}

	list := findList(raw)
	if list == nil {
		return nil, fmt.Errorf("generate episodes %d-%d: no episode list in response", from, to)
	}

	drafts := make([]EpisodeDraft, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		data, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		var d EpisodeDraft
		if err := json.Unmarshal(data, &d); err != nil {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// findList 优先取 "episodes" 键，否则按键名顺序递归查找第一个数组
func findList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if list, ok := t["episodes"].([]any); ok {
			return list
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if list := findList(t[k]); list != nil {
				return list
			}
		}
	}
	return nil
}

type sheetResponse struct {
	Name                   FlexText `json:"name"`
	Series                 FlexText `json:"series"`
	Description            FlexText `json:"description"`
	VisualDescriptionForAI FlexText `json:"visual_description_for_ai"`
	PersonalityTraits      FlexList `json:"personality_traits"`
	Catchphrases           FlexList `json:"catchphrases"`
}

// ResearchCharacter 根据抓取到的资料生成角色设定卡
func (c *Client) ResearchCharacter(ctx context.Context, name string, sources []string) (*character.Sheet, error) {
	var resp sheetResponse
	user := fmt.Sprintf("Aquí están los resultados de la búsqueda para '%s':\n\n%s", name, strings.Join(sources, "\n\n"))
	if err := c.completeJSON(ctx, fmt.Sprintf(researchSystemPrompt, name), user, &resp); err != nil {
		return nil, fmt.Errorf("research %q: %w", name, err)
	}

	sheet := &character.Sheet{
		Name:                   string(resp.Name),
		Series:                 string(resp.Series),
		Description:            string(resp.Description),
		VisualDescriptionForAI: string(resp.VisualDescriptionForAI),
		PersonalityTraits:      resp.PersonalityTraits,
		Catchphrases:           resp.Catchphrases,
	}
	if sheet.Name == "" {
		sheet.Name = name
	}
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return sheet, nil
}
