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

	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// Config aggregates all service configuration
type Config struct {
	Redis    RedisConfig
	AI       AIConfig
	Narrator NarratorConfig
	Voice    VoiceConfig
}

// RedisConfig describes the optional session store backend. An empty Addr
// means sessions live in memory only.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AIConfig describes the narrative model backend
type AIConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// NarratorConfig tunes the decision engine
type NarratorConfig struct {
	Timeout time.Duration
}

// VoiceConfig controls speech synthesis
type VoiceConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	timeoutSeconds, err := parseIntEnv("NARRATOR_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	voiceEnabled, err := parseBoolEnv("VOICE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		},
		AI: AIConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
		Narrator: NarratorConfig{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		Voice: VoiceConfig{
			Enabled: voiceEnabled,
		},
	}, nil
}

// Enabled reports whether the required model credentials are present
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a chat model instance from the configuration
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, dmerr.Unauthenticated("narrative model credentials missing: set ARK_MODEL plus ARK_API_KEY or the ARK_ACCESS_KEY/ARK_SECRET_KEY pair")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return value, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return value, nil
}
