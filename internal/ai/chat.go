package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/utils"
)

// ClassifyIntent 判断用户意图，调用失败时返回错误
// 无法识别的标签按 chat 处理，不视为失败
func (c *Client) ClassifyIntent(ctx context.Context, question string) (model.Intent, error) {
	if !c.Configured() {
		return model.IntentChat, ErrNotConfigured
	}

	answer, err := c.complete(ctx, completion{
		model: c.cfg.ChatModel,
		messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifySystemPrompt),
			openai.UserMessage(question),
		},
		temperature: temperature(0),
		maxTokens:   5,
	})
	if err != nil {
		return model.IntentChat, err
	}

	intent, ok := model.ParseIntent(strings.ToLower(strings.TrimSpace(answer)))
	if !ok {
		c.log.Debug("unexpected intent label", zap.String("answer", answer))
	}
	return intent, nil
}

// Classify 任何异常都按 chat 处理
func (c *Client) Classify(ctx context.Context, question string) model.Intent {
	intent, err := c.ClassifyIntent(ctx, question)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		c.log.Warn("classify intent failed", zap.Error(err))
	}
	return intent
}

// Respond 以角色身份回答
// history 按时间正序，assistant_image 记录作为 assistant 消息发送
func (c *Client) Respond(ctx context.Context, persona string, history []model.ChatMessage, episodeContext, question string) (string, error) {
	if episodeContext == "" {
		episodeContext = "N/A"
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(persona+respondInstruction+episodeContext))
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case model.RoleAssistant, model.RoleAssistantImage:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(question))

	return c.complete(ctx, completion{
		model:       c.cfg.ChatModel,
		messages:    messages,
		temperature: temperature(0.7),
		maxTokens:   200,
	})
}

// IntentClassifier 意图分类器
type IntentClassifier interface {
	Classify(ctx context.Context, question string) model.Intent
}

// IntentSource 能报告失败的分类器
type IntentSource interface {
	ClassifyIntent(ctx context.Context, question string) (model.Intent, error)
}

// CachedClassifier 按归一化问题缓存分类结果，只缓存成功的分类
type CachedClassifier struct {
	next  IntentSource
	cache *utils.TTLCache[model.Intent]
	log   *zap.Logger
}

// NewCachedClassifier size 为最大缓存条数
func NewCachedClassifier(next IntentSource, size int, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{
		next:  next,
		cache: utils.NewTTLCache[model.Intent](size, ttl),
		log:   zap.NewNop(),
	}
}

// WithLogger 设置日志
func (c *CachedClassifier) WithLogger(log *zap.Logger) *CachedClassifier {
	if log != nil {
		c.log = log.Named("CachedClassifier")
	}
	return c
}

// Classify 命中缓存直接返回；分类失败时按 chat 处理且不写入缓存
func (c *CachedClassifier) Classify(ctx context.Context, question string) model.Intent {
	key := strings.ToLower(utils.CollapseSpaces(question))
	if intent, ok := c.cache.Get(key); ok {
		return intent
	}
	intent, err := c.next.ClassifyIntent(ctx, question)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			c.log.Warn("classify intent failed", zap.Error(err))
		}
		return model.IntentChat
	}
	c.cache.Set(key, intent)
	return intent
}
