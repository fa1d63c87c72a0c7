// Package cli garyctl 命令行：剧集库维护、离线问答与数据生成
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/user/garybot/internal/ai"
	"github.com/user/garybot/internal/config"
	"github.com/user/garybot/internal/logger"
	"github.com/user/garybot/internal/repository"
)

var (
	// Version 构建时注入
	Version = "0.1.0"

	verbose bool

	cfg  *config.Config
	zlog *zap.Logger

	// 按需初始化
	db       *gorm.DB
	repos    *repository.Repositories
	aiClient *ai.Client
)

var rootCmd = &cobra.Command{
	Use:   "garyctl",
	Short: "Herramientas de GaryBot",
	Long: `garyctl mantiene la base de episodios y la ficha del personaje de GaryBot.

Permite importar y enriquecer episodios, buscarlos por palabras clave,
responder preguntas sin conexión al modelo y generar datos nuevos con IA.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		zlog, err = logger.New(cfg.Env, level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Aviso: no se pudo cerrar la base de datos: %v\n", err)
				}
			}
			db, repos = nil, nil
		}
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
}

// getRepos 首次调用时连接数据库并建表
func getRepos() (*repository.Repositories, error) {
	if repos != nil {
		return repos, nil
	}
	conn, err := repository.InitDB(cfg.DatabaseURL, zlog)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(conn); err != nil {
		return nil, err
	}
	db = conn
	repos = repository.NewRepositories(conn)
	return repos, nil
}

// getAI 需要模型的命令使用，未配置密钥时报错
func getAI() (*ai.Client, error) {
	if aiClient == nil {
		aiClient = ai.NewClient(ai.Config{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			ChatModel:   cfg.ChatModel,
			VisionModel: cfg.VisionModel,
			ImageModel:  cfg.ImageModel,
		}, zlog)
	}
	if !aiClient.Configured() {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", ai.ErrNotConfigured)
	}
	return aiClient, nil
}

// Execute 执行根命令，Ctrl+C 会取消正在运行的任务
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "registro detallado")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(researchCmd)
}
