package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"productif-agent/internal/completion"
	"productif-agent/internal/transport/whatsapp"
	"productif-agent/pkg/config"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Server     config.ServerConfig `yaml:"server"`
	Redis      config.RedisConfig  `yaml:"redis"`
	MQ         config.MQConfig     `yaml:"mq"`
	Otel       config.OtelConfig   `yaml:"otel"`
	WhatsApp   whatsapp.Config     `yaml:"whatsapp"`
	Productif  ProductifConfig     `yaml:"productif"`
	Completion completion.Config   `yaml:"completion"`
	Agent      AgentConfig         `yaml:"agent"`
}

// ProductifConfig Domain API 配置
type ProductifConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AgentConfig 消息处理相关配置
type AgentConfig struct {
	Timezone        string        `yaml:"timezone"`
	DayRatingHabit  string        `yaml:"day_rating_habit"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"`
	SessionBackend  string        `yaml:"session_backend"` // memory / redis
	SessionTTL      time.Duration `yaml:"session_ttl"`     // 0 表示不过期
	DedupTTL        time.Duration `yaml:"dedup_ttl"`
	LogLevel        string        `yaml:"log_level"`
}

// Location 用于解析“今天”“昨天”的时区
func (a AgentConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

func Load() *Config {
	// 使用统一配置中心
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfg, err := LoadFrom(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LoadFrom 读取 configDir 下的 base.yaml 与 <env>.yaml，环境变量优先级最高
func LoadFrom(env, configDir string) (*Config, error) {
	var cfg Config
	if err := config.LoadConfig(env, configDir, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOtelFromEnv(&cfg.Otel)
	overrideWhatsAppFromEnv(&cfg.WhatsApp)
	overrideProductifFromEnv(&cfg.Productif)
	overrideCompletionFromEnv(&cfg.Completion)
	overrideAgentFromEnv(&cfg.Agent)

	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Productif.Timeout <= 0 {
		cfg.Productif.Timeout = 10 * time.Second
	}
	if cfg.Agent.Timezone == "" {
		cfg.Agent.Timezone = "Europe/Paris"
	}
	if cfg.Agent.PipelineTimeout <= 0 {
		cfg.Agent.PipelineTimeout = 30 * time.Second
	}
	if cfg.Agent.SessionBackend == "" {
		cfg.Agent.SessionBackend = SessionBackendMemory
	}
	if cfg.Agent.DedupTTL <= 0 {
		cfg.Agent.DedupTTL = 24 * time.Hour
	}
	if cfg.Agent.LogLevel == "" {
		cfg.Agent.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Productif.BaseURL == "" {
		return fmt.Errorf("productif.base_url is required")
	}
	switch c.Agent.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("agent.session_backend=redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown agent.session_backend %q", c.Agent.SessionBackend)
	}
	if _, err := c.Agent.Location(); err != nil {
		return fmt.Errorf("invalid agent.timezone %q: %w", c.Agent.Timezone, err)
	}
	return nil
}

func overrideWhatsAppFromEnv(cfg *whatsapp.Config) {
	if token := os.Getenv("WHATSAPP_ACCESS_TOKEN"); token != "" {
		cfg.AccessToken = token
	}
	if token := os.Getenv("WHATSAPP_VERIFY_TOKEN"); token != "" {
		cfg.VerifyToken = token
	}
	if id := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); id != "" {
		cfg.PhoneNumberID = id
	}
}

func overrideProductifFromEnv(cfg *ProductifConfig) {
	if url := os.Getenv("PRODUCTIF_API_URL"); url != "" {
		cfg.BaseURL = url
	}
}

func overrideCompletionFromEnv(cfg *completion.Config) {
	if provider := os.Getenv("COMPLETION_PROVIDER"); provider != "" {
		cfg.Provider = provider
	}
	if key := os.Getenv("COMPLETION_API_KEY"); key != "" {
		cfg.APIKey = key
	}
}

func overrideAgentFromEnv(cfg *AgentConfig) {
	if tz := os.Getenv("AGENT_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if backend := os.Getenv("AGENT_SESSION_BACKEND"); backend != "" {
		cfg.SessionBackend = backend
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}
