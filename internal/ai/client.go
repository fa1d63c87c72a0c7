// Package ai 封装对 OpenAI 兼容接口的调用：意图分类、角色回复、看图写提示词、画图以及离线标注任务
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"go.uber.org/zap"
)

// ErrNotConfigured 未配置 API Key
var ErrNotConfigured = errors.New("ai client is not configured")

// Config 模型与连接配置
type Config struct {
	APIKey  string
	BaseURL string
	// ChatModel 分类与角色回复
	ChatModel string
	// VisionModel 看图以及离线结构化抽取
	VisionModel string
	ImageModel  string
	Timeout     time.Duration
}

// Client AI 客户端
type Client struct {
	api *openai.Client
	cfg Config
	log *zap.Logger
}

// NewClient APIKey 为空时返回的客户端所有调用都会得到 ErrNotConfigured
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = "gpt-4o"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{cfg: cfg, log: log.Named("ai")}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts := []option.RequestOption{
			option.WithAPIKey(key),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(cfg.Timeout),
		}
		if base := strings.TrimSpace(cfg.BaseURL); base != "" {
			opts = append(opts, option.WithBaseURL(base))
		}
		api := openai.NewClient(opts...)
		c.api = &api
	}
	return c
}

// Configured 是否可用
func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

type completion struct {
	model       string
	messages    []openai.ChatCompletionMessageParamUnion
	temperature *float64
	maxTokens   int64
}

// complete 调用 chat completions，返回第一条回复的文本
func (c *Client) complete(ctx context.Context, req completion) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.model),
		Messages: req.messages,
	}
	if req.temperature != nil {
		params.Temperature = openai.Float(*req.temperature)
	}
	if req.maxTokens > 0 {
		params.MaxTokens = openai.Int(req.maxTokens)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", req.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): empty choices", req.model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func temperature(t float64) *float64 {
	return &t
}
