package handler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/service"
	"github.com/user/garybot/internal/utils"
)

// maxImageBytes 上传图片大小上限
const maxImageBytes = 20 << 20

// AskForm /ask 表单
type AskForm struct {
	Question  string `form:"question" binding:"required"`
	SessionID string `form:"session_id" binding:"required"`
	SheetPath string `form:"character_sheet_path"`
}

// ResetRequest /reset 请求体
type ResetRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Ask 提问，可附带参考图
func (h *Handler) Ask(c *gin.Context) {
	var form AskForm
	if err := c.ShouldBind(&form); err != nil {
		utils.Error(c, http.StatusUnprocessableEntity, "Faltan campos obligatorios: question, session_id")
		return
	}

	image, err := readImage(c)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	reply, err := h.Chat.Ask(c.Request.Context(), service.AskRequest{
		Question:  form.Question,
		SessionID: form.SessionID,
		Image:     image,
		SheetPath: form.SheetPath,
	})
	if err != nil {
		_ = c.Error(err)
		if isSheetError(err) {
			utils.BadRequest(c, "Ficha de personaje no válida")
			return
		}
		h.log.Error("ask failed", zap.String("session_id", form.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.Reply{Type: model.ReplyText, Content: "Miau... (Tuve un problema para pensar)."})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Reset 清空会话历史
func (h *Handler) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusUnprocessableEntity, "session_id es obligatorio")
		return
	}

	if _, err := h.Chat.Reset(c.Request.Context(), req.SessionID); err != nil {
		h.log.Error("reset failed", zap.String("session_id", req.SessionID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": "Error al reiniciar el historial."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Historial para la sesión %s ha sido reiniciado.", req.SessionID)})
}

// readImage 读取可选的 image 文件字段
func readImage(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("imagen no válida: %w", err)
	}
	if file.Size > maxImageBytes {
		return nil, errors.New("la imagen supera el tamaño máximo de 20 MB")
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("imagen no válida: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}

func isSheetError(err error) bool {
	return errors.Is(err, service.ErrInvalidSheetPath) ||
		errors.Is(err, character.ErrUnsupportedFormat) ||
		errors.Is(err, fs.ErrNotExist)
}
