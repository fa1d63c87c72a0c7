package router

import (
	"github.com/gin-gonic/gin"

	"github.com/user/garybot/internal/handler"
)

// Options 路由选项
type Options struct {
	// ImageDir 本地图片目录，非空时以 /images 静态暴露
	ImageDir string
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, opts Options) {
	r.GET("/health", h.Health)

	r.POST("/ask", h.Ask)
	r.POST("/reset", h.Reset)

	if opts.ImageDir != "" {
		r.Static("/images", opts.ImageDir)
	}

	api := r.Group("/api")
	{
		api.GET("/episodes/search", h.SearchEpisodes)
		api.GET("/status", h.DatabaseStatus)
	}
}
