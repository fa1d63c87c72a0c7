package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/garybot/internal/ai"
	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/config"
	"github.com/user/garybot/internal/handler"
	"github.com/user/garybot/internal/logger"
	"github.com/user/garybot/internal/middleware"
	"github.com/user/garybot/internal/repository"
	"github.com/user/garybot/internal/retrieval"
	"github.com/user/garybot/internal/router"
	"github.com/user/garybot/internal/service"
	"github.com/user/garybot/internal/storage"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		zlog.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 初始化仓库
	repos := repository.NewRepositories(db)

	aiClient := ai.NewClient(ai.Config{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		ChatModel:   cfg.ChatModel,
		VisionModel: cfg.VisionModel,
		ImageModel:  cfg.ImageModel,
	}, zlog)
	if !aiClient.Configured() {
		zlog.Warn("OPENAI_API_KEY 未设置，对话将返回固定回复")
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	images, imageDir, err := newImageStore(rootCtx, cfg)
	if err != nil {
		zlog.Fatal("初始化图片存储失败", zap.Error(err))
	}

	chatSvc := service.NewChatService(service.ChatOptions{
		History:      repos.ChatHistory,
		Searcher:     retrieval.NewSearcher(repos.Episode),
		Generator:    aiClient,
		Classifier:   ai.NewCachedClassifier(aiClient, 1000, time.Hour).WithLogger(zlog),
		Images:       images,
		Sheets:       character.NewLoader(5 * time.Minute),
		DefaultSheet: cfg.CharacterSheet,
		HistoryLimit: cfg.HistoryLimit,
		Logger:       zlog,
	})
	statusSvc := service.NewStatusService(repos.Episode)

	// 启动定时标注任务
	if cfg.EnrichInterval > 0 && aiClient.Configured() {
		enrichSvc := service.NewEnrichmentService(repos.Episode, aiClient, cfg.EnrichCharacter, zlog)
		enrichSvc.Start(rootCtx, cfg.EnrichInterval)
	}

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(zlog))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	h := handler.NewHandler(chatSvc, retrieval.NewSearcher(repos.Episode), statusSvc, zlog)
	router.RegisterRoutes(r, h, router.Options{ImageDir: imageDir})

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   3 * time.Minute, // 图片生成较慢
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		zlog.Info("服务器启动", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("正在关闭服务器...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("服务器强制关闭", zap.Error(err))
	}

	zlog.Info("服务器已退出")
}

// newImageStore 按配置选择图片存储；本地存储时返回需要静态暴露的目录
func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, string, error) {
	if cfg.ImageStore == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
			Prefix:    "generated",
		})
		return store, "", err
	}

	store, err := storage.NewLocalStore(cfg.ImageDir, "/images")
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
