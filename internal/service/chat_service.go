package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/user/garybot/internal/ai"
	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
)

const (
	// 回退回复
	thinkingFallback    = "Miau... (Tuve un problema para pensar)."
	notConfiguredReply  = "Miau... (Error: el cliente de IA no está configurado)."
	drawingFallback     = "Miau... (Lo siento, no pude dibujar eso. Revisa el log para más detalles)."
	defaultVisual       = "Un caracol de dibujos animados."
	noEpisodeContext    = "No hay contexto de episodio específico."
	synthesisSystem     = "Eres un director de escena para una serie de animación. Tu tarea es sintetizar la información proporcionada para crear un único y detallado prompt visual para un artista de IA (DALL-E). Combina la descripción base del personaje, el contexto del episodio y la acción solicitada por el usuario. El resultado debe ser un párrafo descriptivo que pinte una imagen vívida de la escena completa."
	selfPortraitHeading = "\n\nDescripción física detallada de ti mismo para tu referencia interna:\n"
)

// 这些短语表示用户想要角色本身的图片，不需要剧集上下文
var genericImagePhrases = []string{"de ti", "tuya", "una imagen de gary", "una foto tuya"}

// ErrInvalidSheetPath 请求的设定卡路径不在允许的目录内
var ErrInvalidSheetPath = errors.New("character sheet path outside of sheet directory")

// HistoryStore 聊天历史
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, role model.Role, content string) error
	Recent(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
}

// EpisodeSearcher 剧集检索
type EpisodeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.Episode, error)
}

// Generator 文本与图片生成
type Generator interface {
	Respond(ctx context.Context, persona string, history []model.ChatMessage, episodeContext, question string) (string, error)
	PromptFromImage(ctx context.Context, text string, image []byte) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageStore 生成图片的存储
type ImageStore interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

// SheetLoader 设定卡加载
type SheetLoader interface {
	Load(path string) (*character.Sheet, error)
}

// ChatOptions ChatService 的依赖
type ChatOptions struct {
	History      HistoryStore
	Searcher     EpisodeSearcher
	Generator    Generator
	Classifier   ai.IntentClassifier
	Images       ImageStore
	Sheets       SheetLoader
	DefaultSheet string
	HistoryLimit int
	Logger       *zap.Logger
}

// ChatService 对话编排：意图判断、检索上下文、生成回复并记录历史
type ChatService struct {
	history      HistoryStore
	searcher     EpisodeSearcher
	generator    Generator
	classifier   ai.IntentClassifier
	images       ImageStore
	sheets       SheetLoader
	defaultSheet string
	historyLimit int
	log          *zap.Logger
}

// NewChatService 创建对话服务
func NewChatService(opts ChatOptions) *ChatService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		history:      opts.History,
		searcher:     opts.Searcher,
		generator:    opts.Generator,
		classifier:   opts.Classifier,
		images:       opts.Images,
		sheets:       opts.Sheets,
		defaultSheet: opts.DefaultSheet,
		historyLimit: opts.HistoryLimit,
		log:          log.Named("ChatService"),
	}
}

// AskRequest 一次提问
type AskRequest struct {
	Question  string
	SessionID string
	// Image 上传的参考图，可为空
	Image     []byte
	SheetPath string
}

// Ask 处理一次提问
// 1. 带图片：看图生成绘图提示词，失败时使用角色外观描述
// 2. 无图片：先判断意图，image 走绘图流程，chat 走角色对话
// 3. 对话与绘图结果都会写入会话历史
func (s *ChatService) Ask(ctx context.Context, req AskRequest) (model.Reply, error) {
	sheet, err := s.loadSheet(req.SheetPath)
	if err != nil {
		return model.Reply{}, err
	}
	visual := sheet.VisualDescription(defaultVisual)

	var prompt string
	if len(req.Image) > 0 {
		prompt, err = s.generator.PromptFromImage(ctx, req.Question, req.Image)
		if err != nil || strings.Contains(prompt, "VISION_REJECTED") || strings.Contains(prompt, "VISION_ERROR") {
			s.log.Warn("vision prompt unavailable, using visual description", zap.Error(err))
			prompt = fmt.Sprintf("%s. %s.", visual, req.Question)
		}
	} else {
		intent := s.classifier.Classify(ctx, req.Question)
		if intent != model.IntentImage {
			return s.chat(ctx, sheet, req)
		}

		prompt, err = s.scenePrompt(ctx, visual, req.Question)
		if err != nil {
			s.log.Warn("scene prompt failed", zap.Error(err))
			return model.Reply{Type: model.ReplyText, Content: fallbackFor(err)}, nil
		}
	}

	return s.draw(ctx, req, prompt)
}

// chat 角色对话
func (s *ChatService) chat(ctx context.Context, sheet *character.Sheet, req AskRequest) (model.Reply, error) {
	persona := sheet.PersonaPrompt() + selfPortraitHeading + sheet.VisualDescriptionForAI

	hits, err := s.searcher.Search(ctx, req.Question, 2)
	if err != nil {
		return model.Reply{}, err
	}
	history, err := s.history.Recent(ctx, req.SessionID, s.historyLimit)
	if err != nil {
		return model.Reply{}, err
	}

	answer, err := s.generator.Respond(ctx, persona, history, retrieval.Citations(hits), req.Question)
	if err != nil {
		s.log.Warn("respond failed", zap.String("session_id", req.SessionID), zap.Error(err))
		answer = fallbackFor(err)
	}

	if err := s.record(ctx, req.SessionID, req.Question, model.RoleAssistant, answer); err != nil {
		return model.Reply{}, err
	}
	return model.Reply{Type: model.ReplyText, Content: answer}, nil
}

// scenePrompt 结合角色外观与剧集场景生成绘图提示词
func (s *ChatService) scenePrompt(ctx context.Context, visual, question string) (string, error) {
	episodeContext := noEpisodeContext
	if len(strings.Fields(question)) > 4 && !isGenericImageRequest(question) {
		hits, err := s.searcher.Search(ctx, question, 1)
		if err != nil {
			return "", err
		}
		if len(hits) > 0 && hits[0].Enriched() {
			ep := hits[0]
			episodeContext = fmt.Sprintf("Título del Episodio: %s\nDescripción Visual de la Escena: %s\nPersonajes Clave: %s\nObjetos/Lugares Clave: %s",
				model.Str(ep.Title), model.Str(ep.VisualSummary), model.Str(ep.KeyCharacters), model.Str(ep.KeyObjectsLocations))
			s.log.Debug("scene context from episode", zap.Int("episode_id", ep.ID))
		}
	}

	user := fmt.Sprintf("Descripción Base del Personaje: %s\nContexto del Episodio: %s\nAcción Solicitada por el Usuario: %s",
		visual, episodeContext, question)
	return s.generator.Respond(ctx, synthesisSystem, nil, "", user)
}

// draw 生成并保存图片
func (s *ChatService) draw(ctx context.Context, req AskRequest, prompt string) (model.Reply, error) {
	url, err := s.generateAndStore(ctx, prompt)
	if err != nil {
		s.log.Error("image generation failed", zap.String("session_id", req.SessionID), zap.Error(err))
		content := drawingFallback
		if errors.Is(err, ai.ErrNotConfigured) {
			content = notConfiguredReply
		}
		if err := s.record(ctx, req.SessionID, req.Question, model.RoleAssistant, content); err != nil {
			return model.Reply{}, err
		}
		return model.Reply{Type: model.ReplyText, Content: content}, nil
	}

	if err := s.record(ctx, req.SessionID, req.Question, model.RoleAssistantImage, url); err != nil {
		return model.Reply{}, err
	}
	return model.Reply{Type: model.ReplyImage, Content: url}, nil
}

func (s *ChatService) generateAndStore(ctx context.Context, prompt string) (string, error) {
	data, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return s.images.Save(ctx, data, ".png")
}

// record 依次写入用户问题与助手回复
func (s *ChatService) record(ctx context.Context, sessionID, question string, role model.Role, content string) error {
	if err := s.history.Append(ctx, sessionID, model.RoleUser, question); err != nil {
		return err
	}
	return s.history.Append(ctx, sessionID, role, content)
}

// Reset 删除会话的全部历史
func (s *ChatService) Reset(ctx context.Context, sessionID string) (int64, error) {
	n, err := s.history.DeleteSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.log.Info("session reset", zap.String("session_id", sessionID), zap.Int64("deleted", n))
	return n, nil
}

// loadSheet 只允许加载默认设定卡所在目录内的文件
func (s *ChatService) loadSheet(path string) (*character.Sheet, error) {
	if path == "" || path == s.defaultSheet {
		return s.sheets.Load(s.defaultSheet)
	}

	base, err := filepath.Abs(filepath.Dir(s.defaultSheet))
	if err != nil {
		return nil, err
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSheetPath, path)
	}
	return s.sheets.Load(target)
}

func isGenericImageRequest(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range genericImagePhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

func fallbackFor(err error) string {
	if errors.Is(err, ai.ErrNotConfigured) {
		return notConfiguredReply
	}
	return thinkingFallback
}
