package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server      ServerConfig
	AI          AIConfig
	Session     SessionConfig
	Recipes     RecipeConfig
	ProfilePath string
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:      server,
		AI:          loadAIConfig(),
		Session:     session,
		Recipes:     RecipeConfig{DBPath: strings.TrimSpace(os.Getenv("RECIPE_DB_PATH"))},
		ProfilePath: getEnvOrDefault("CHAT_PROFILE_PATH", "craftchat.toml"),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// SessionConfig 描述会话保留策略。
type SessionConfig struct {
	TTL time.Duration
}

// loadSessionConfig 解析会话空闲过期时间（秒）。
func loadSessionConfig() (SessionConfig, error) {
	ttlSeconds := 300
	if override, err := parseOptionalIntEnv("CHAT_SESSION_TTL"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("CHAT_SESSION_TTL must be positive, got %d", *override)
		}
		ttlSeconds = *override
	}

	return SessionConfig{TTL: time.Duration(ttlSeconds) * time.Second}, nil
}

// RecipeConfig 描述配方数据库配置，路径为空表示禁用配方工具。
type RecipeConfig struct {
	DBPath string
}

// Enabled 表示是否提供了配方数据库。
func (c RecipeConfig) Enabled() bool {
	return c.DBPath != ""
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用凭证与生成参数配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context, profile Profile) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if profile.Temperature != nil {
		val := float32(*profile.Temperature)
		temperature = &val
	}

	var topP *float32
	if profile.TopP != nil {
		val := float32(*profile.TopP)
		topP = &val
	}

	var maxTokens *int
	if profile.MaxOutputTokens != nil {
		val := *profile.MaxOutputTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() AIConfig {
	return AIConfig{
		APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:     strings.TrimSpace(os.Getenv("MODEL")),
		BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
