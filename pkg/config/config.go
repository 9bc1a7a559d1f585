package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	College    CollegeConfig
	LLM        LLMConfig
	Fetcher    FetcherConfig
	Storage    StorageConfig
	SQLite     SQLiteConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	IsDevelopment  bool
}

type CollegeConfig struct {
	Name    string
	BaseURL string
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type FetcherConfig struct {
	TimeoutSec   int
	MaxRedirects int
	Renderer     string
	MaxBodyBytes int64
	Concurrency  int
}

// StorageConfig picks the backend for each store: memory, sqlite, mongo or redis.
type StorageConfig struct {
	Topics     string
	Cache      string
	TimeoutSec int
}

type SQLiteConfig struct {
	Path string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled             bool
	SimilarityThreshold float64
	WindowMinutes       int
	RecentLimit         int
	BypassKeywords      []string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type ValidationConfig struct {
	MinQuestionLength int
	MaxQuestionLength int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func (c FetcherConfig) Timeout() time.Duration {
	sec := c.TimeoutSec
	if sec < 8 {
		sec = 8
	}
	if sec > 15 {
		sec = 15
	}
	return time.Duration(sec) * time.Second
}

func (c StorageConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c CacheConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/collegegpt")

	v.SetEnvPrefix("COLLEGEGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return unmarshal(v)
}

// Default returns the built-in configuration without reading files or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if !strings.HasSuffix(config.College.BaseURL, "/") {
		config.College.BaseURL += "/"
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 90)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.isDevelopment", false)

	v.SetDefault("college.name", "CMR Technical Campus")
	v.SetDefault("college.baseURL", "https://cmrtc.ac.in/")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.maxTokens", 1024)
	v.SetDefault("llm.timeoutSec", 45)

	v.SetDefault("fetcher.timeoutSec", 12)
	v.SetDefault("fetcher.maxRedirects", 5)
	v.SetDefault("fetcher.renderer", "http")
	v.SetDefault("fetcher.maxBodyBytes", 5*1024*1024)
	v.SetDefault("fetcher.concurrency", 8)

	v.SetDefault("storage.topics", "sqlite")
	v.SetDefault("storage.cache", "sqlite")
	v.SetDefault("storage.timeoutSec", 3)

	v.SetDefault("sqlite.path", "./data/collegegpt.db")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "collegegpt")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.similarityThreshold", 0.95)
	v.SetDefault("cache.windowMinutes", 30)
	v.SetDefault("cache.recentLimit", 30)
	v.SetDefault("cache.bypassKeywords", []string{"companies", "placement", "question bank", "result"})

	v.SetDefault("rateLimit.requestsPerMinute", 30)
	v.SetDefault("rateLimit.burst", 10)

	v.SetDefault("validation.minQuestionLength", 1)
	v.SetDefault("validation.maxQuestionLength", 2000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
