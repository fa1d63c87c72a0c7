package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v2"
	"go.uber.org/zap"
)

// PromptFromImage 看图并结合用户文字生成详细的绘图提示词
func (c *Client) PromptFromImage(ctx context.Context, text string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", imageMIME(image), base64.StdEncoding.EncodeToString(image))
	prompt, err := c.complete(ctx, completion{
		model: c.cfg.VisionModel,
		messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(visionSystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(text),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		maxTokens: 500,
	})
	if err != nil {
		return "", err
	}
	c.log.Debug("vision prompt", zap.String("prompt", prompt))
	return prompt, nil
}

// GenerateImage 生成 1024x1024 图片，返回 PNG 字节
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	c.log.Info("generating image", zap.String("model", c.cfg.ImageModel))
	resp, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.cfg.ImageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		Quality:        openai.ImageGenerateParamsQualityStandard,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("generate image: empty response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

func imageMIME(data []byte) string {
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg", "image/gif", "image/webp", "image/png":
		return ct
	default:
		return "image/png"
	}
}
