package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response JSON 接口的统一外层
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Data:    data,
		Success: status < http.StatusBadRequest,
	})
}

// Success 200 + data
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, "success", data)
}

// Error 任意错误状态码，data 为 null
func Error(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// InternalServerError 500，message 为空时使用通用提示
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "Error interno del servidor"
	}
	Error(c, http.StatusInternalServerError, message)
}
