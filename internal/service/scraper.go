package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/ai"
	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/utils"
)

// maxSourceRunes 每个资料页发送给模型的最大字符数
const maxSourceRunes = 5000

// PageFetcher 抓取网页
type PageFetcher interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// EpisodeExtractor 从页面正文中抽取剧集
type EpisodeExtractor interface {
	ExtractEpisode(ctx context.Context, url, page string) (ai.EpisodeDraft, error)
}

// EpisodeScraper 从 wiki 剧集列表页抓取每一集并交给模型结构化
type EpisodeScraper struct {
	fetcher   PageFetcher
	extractor EpisodeExtractor
	log       *zap.Logger
}

// NewEpisodeScraper 创建剧集爬虫
func NewEpisodeScraper(fetcher PageFetcher, extractor EpisodeExtractor, log *zap.Logger) *EpisodeScraper {
	if log == nil {
		log = zap.NewNop()
	}
	return &EpisodeScraper{fetcher: fetcher, extractor: extractor, log: log.Named("EpisodeScraper")}
}

// EpisodeLinks 列表页中 wikitable 内的剧集链接（去重，保持页面顺序）
func (s *EpisodeScraper) EpisodeLinks(ctx context.Context, listURL string) ([]string, error) {
	base, err := url.Parse(listURL)
	if err != nil {
		return nil, fmt.Errorf("parse list url: %w", err)
	}
	doc, err := s.fetcher.GetDocument(ctx, listURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("table.wikitable a[title]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" || strings.Contains(href, "Episode") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref).String()
		if !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
	})
	return links, nil
}

// PageText 页面主体文字（空白已合并）
func (s *EpisodeScraper) PageText(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.fetcher.GetDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return mainText(doc), nil
}

// Scrape 抓取列表页上的剧集，limit > 0 时只处理前 limit 个链接
// 单集失败只记录日志
func (s *EpisodeScraper) Scrape(ctx context.Context, listURL string, limit int) ([]model.Episode, error) {
	links, err := s.EpisodeLinks(ctx, listURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, errors.New("no episode links found")
	}
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	s.log.Info("episode links found", zap.Int("count", len(links)))

	var episodes []model.Episode
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return episodes, err
		}

		text, err := s.PageText(ctx, link)
		if err != nil || text == "" {
			s.log.Warn("scrape page failed", zap.String("url", link), zap.Error(err))
			continue
		}
		draft, err := s.extractor.ExtractEpisode(ctx, link, text)
		if err != nil || draft.Title == "" {
			s.log.Warn("extract episode failed", zap.String("url", link), zap.Error(err))
			continue
		}
		episodes = append(episodes, draft.ToEpisode())
		s.log.Debug("episode extracted", zap.Int("n", i+1), zap.String("title", string(draft.Title)))
	}
	return episodes, nil
}

func mainText(doc *goquery.Document) string {
	content := doc.Find("div.mw-parser-output").First()
	if content.Length() == 0 {
		return ""
	}
	return utils.CollapseSpaces(content.Text())
}

// EpisodeBatchGenerator 按编号区间生成剧集
type EpisodeBatchGenerator interface {
	GenerateEpisodes(ctx context.Context, from, to int) ([]ai.EpisodeDraft, error)
}

// EpisodeGenerator 分批让模型生成剧集数据
type EpisodeGenerator struct {
	generator EpisodeBatchGenerator
	log       *zap.Logger
}

// NewEpisodeGenerator 创建生成器
func NewEpisodeGenerator(generator EpisodeBatchGenerator, log *zap.Logger) *EpisodeGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &EpisodeGenerator{generator: generator, log: log.Named("EpisodeGenerator")}
}

// Generate 生成 1..total 号剧集，按 batch 分批；没有有效编号的剧集被丢弃，结果按编号排序
func (g *EpisodeGenerator) Generate(ctx context.Context, total, batch int) ([]model.Episode, error) {
	if total <= 0 {
		return nil, nil
	}
	if batch <= 0 {
		batch = 10
	}

	var drafts []ai.EpisodeDraft
	for start := 1; start <= total; start += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + batch - 1
		if end > total {
			end = total
		}

		got, err := g.generator.GenerateEpisodes(ctx, start, end)
		if err != nil {
			g.log.Warn("batch failed, skipping", zap.Int("from", start), zap.Int("to", end), zap.Error(err))
			continue
		}
		for _, d := range got {
			if d.Episode > 0 {
				drafts = append(drafts, d)
			}
		}
		g.log.Info("batch generated", zap.Int("from", start), zap.Int("to", end), zap.Int("received", len(got)))
	}

	if len(drafts) == 0 {
		return nil, errors.New("no episodes generated")
	}

	sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].Episode < drafts[j].Episode })
	episodes := make([]model.Episode, 0, len(drafts))
	for _, d := range drafts {
		episodes = append(episodes, d.ToEpisode())
	}
	return episodes, nil
}

// CharacterAnalyst 根据资料生成设定卡
type CharacterAnalyst interface {
	ResearchCharacter(ctx context.Context, name string, sources []string) (*character.Sheet, error)
}

// CharacterResearcher 抓取资料页并生成角色设定卡
type CharacterResearcher struct {
	fetcher PageFetcher
	analyst CharacterAnalyst
	log     *zap.Logger
}

// NewCharacterResearcher 创建角色调研服务
func NewCharacterResearcher(fetcher PageFetcher, analyst CharacterAnalyst, log *zap.Logger) *CharacterResearcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &CharacterResearcher{fetcher: fetcher, analyst: analyst, log: log.Named("CharacterResearcher")}
}

// Research 抓取失败的页面只提供 URL 本身
func (r *CharacterResearcher) Research(ctx context.Context, name string, urls []string) (*character.Sheet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("character name is required")
	}
	if len(urls) == 0 {
		return nil, errors.New("at least one source url is required")
	}

	sources := make([]string, 0, len(urls))
	for _, u := range urls {
		source := "URL: " + u
		doc, err := r.fetcher.GetDocument(ctx, u)
		if err != nil {
			r.log.Warn("fetch source failed", zap.String("url", u), zap.Error(err))
		} else {
			text := mainText(doc)
			if text == "" {
				text = utils.CollapseSpaces(doc.Find("body").Text())
			}
			if text != "" {
				source += "\n" + utils.TruncateRunes(text, maxSourceRunes)
			}
		}
		sources = append(sources, source)
	}

	return r.analyst.ResearchCharacter(ctx, name, sources)
}
