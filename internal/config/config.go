package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用配置
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	LogLevel    string

	// OpenAI
	OpenAIKey     string
	OpenAIBaseURL string
	ChatModel     string
	VisionModel   string
	ImageModel    string

	// 角色与对话
	CharacterSheet string
	HistoryLimit   int
	AllowedOrigins []string

	// 生成图片存储
	ImageStore  string
	ImageDir    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// 离线任务
	EnrichInterval  time.Duration
	EnrichCharacter string
	EpisodeListURL  string
	ExportDir       string
}

// Load 加载配置
func Load() *Config {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("DB_USER", "garyuser"),
			getEnv("DB_PASSWORD", "garypass"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "garybotdb"),
			getEnv("DB_SSLMODE", "disable"))
	}

	historyLimit, err := strconv.Atoi(getEnv("HISTORY_LIMIT", "10"))
	if err != nil || historyLimit < 0 {
		historyLimit = 10
	}

	enrichInterval, err := time.ParseDuration(getEnv("ENRICH_INTERVAL", "0"))
	if err != nil {
		enrichInterval = 0
	}

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: dbURL,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ChatModel:     getEnv("CHAT_MODEL", "gpt-4o-mini"),
		VisionModel:   getEnv("VISION_MODEL", "gpt-4o"),
		ImageModel:    getEnv("IMAGE_MODEL", "dall-e-3"),

		CharacterSheet: getEnv("CHARACTER_SHEET", "data/ficha/gary.json"),
		HistoryLimit:   historyLimit,
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		ImageStore:  getEnv("IMAGE_STORE", "local"),
		ImageDir:    getEnv("IMAGE_DIR", "generated_images"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		EnrichInterval:  enrichInterval,
		EnrichCharacter: getEnv("ENRICH_CHARACTER", "Gary"),
		EpisodeListURL:  getEnv("EPISODE_LIST_URL", "https://spongebob.fandom.com/wiki/List_of_episodes"),
		ExportDir:       getEnv("EXPORT_DIR", "data/out"),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
