package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultThresholdDays = 365
	MaxVerbosity         = 3
)

type Config struct {
	ThresholdDays int           `yaml:"thresholdDays"`
	Verbosity     int           `yaml:"verbosity"`
	Threads       bool          `yaml:"threads"`
	PoolSize      int           `yaml:"poolSize"`
	Wait          int           `yaml:"wait"`
	CacheFile     string        `yaml:"cacheFile"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`
	RateLimit     float64       `yaml:"rateLimit"`
	MetricsAddr   string        `yaml:"metricsAddr"`

	Telegram           Telegram             `yaml:"telegram"`
	CloudflareAccounts []CF                 `yaml:"cloudflareAccounts"`
	AWSTargets         map[string]AWSTarget `yaml:"awsTargets"`
}

type Telegram struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatID"`
}

type CF struct {
	Label    string `yaml:"label"`
	APIToken string `yaml:"apiToken"`
}

type AWSCreds struct {
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	SessionToken    string `yaml:"sessionToken"`
}

type AWSTarget struct {
	Region string   `yaml:"region"`
	Creds  AWSCreds `yaml:"creds"`
}

// DefaultPoolSize 与常见线程池默认值一致：min(32, CPU+4)。
func DefaultPoolSize() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

func Default() Config {
	return Config{
		ThresholdDays: DefaultThresholdDays,
		PoolSize:      DefaultPoolSize(),
	}
}

// Load 读取 YAML 配置；文件不存在时返回默认值。随后用 .env / 环境变量覆盖密钥类字段。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("解析配置失败: %w", err)
			}
		}
	}

	// .env 可选，不存在不报错
	_ = godotenv.Load()
	applyEnv(&cfg)

	err := cfg.Validate()
	return cfg, err
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := strings.TrimSpace(os.Getenv("CF_API_TOKEN")); v != "" {
		if len(cfg.CloudflareAccounts) == 0 {
			cfg.CloudflareAccounts = []CF{{Label: "env"}}
		}
		for i := range cfg.CloudflareAccounts {
			if cfg.CloudflareAccounts[i].APIToken == "" {
				cfg.CloudflareAccounts[i].APIToken = v
			}
		}
	}
}

func (c *Config) Validate() error {
	if c.ThresholdDays < 0 {
		return fmt.Errorf("thresholdDays 不能为负数: %d", c.ThresholdDays)
	}
	if c.Verbosity < 0 || c.Verbosity > MaxVerbosity {
		return fmt.Errorf("verbosity 必须在 0-%d 之间: %d", MaxVerbosity, c.Verbosity)
	}
	if c.Wait < 0 {
		return fmt.Errorf("wait 不能为负数: %d", c.Wait)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit 不能为负数: %v", c.RateLimit)
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize()
	}
	return nil
}

func (c Config) Delay() time.Duration {
	return time.Duration(c.Wait) * time.Second
}
