package config

import (
	"time"
)

// Config is the root pipeline configuration.
type Config struct {
	Corpus  CorpusConfig  `yaml:"corpus"`
	Range   RangeConfig   `yaml:"range"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// CorpusConfig points at the read-only source corpus directory.
type CorpusConfig struct {
	Dir string `yaml:"dir" env:"CORPUS_DIR" env-default:"./corpus"`
}

// RangeConfig selects the inclusive surah range to process.
type RangeConfig struct {
	StartSurah int `yaml:"start_surah" env:"RANGE_START_SURAH" env-default:"1"`
	EndSurah   int `yaml:"end_surah"   env:"RANGE_END_SURAH"   env-default:"114"`
}

// LLMConfig holds generation backend settings.
type LLMConfig struct {
	Backend     string        `yaml:"backend"      env:"LLM_BACKEND"      env-default:"anthropic"`
	Model       string        `yaml:"model"        env:"LLM_MODEL"        env-default:"claude-sonnet-4-20250514"`
	APIKey      string        `yaml:"api_key"      env:"LLM_API_KEY"`
	BaseURL     string        `yaml:"base_url"     env:"LLM_BASE_URL"`
	MaxTokens   int           `yaml:"max_tokens"   env:"LLM_MAX_TOKENS"   env-default:"4096"`
	Timeout     time.Duration `yaml:"timeout"      env:"LLM_TIMEOUT"      env-default:"120s"`
	MaxAttempts int           `yaml:"max_attempts" env:"LLM_MAX_ATTEMPTS" env-default:"1"`
	RetryWait   time.Duration `yaml:"retry_wait"   env:"LLM_RETRY_WAIT"   env-default:"2s"`
}

// StorageConfig selects and configures the artifact store backend.
type StorageConfig struct {
	Backend  string         `yaml:"backend" env:"STORAGE_BACKEND" env-default:"fs"`
	Dir      string         `yaml:"dir"     env:"STORAGE_DIR"     env-default:"./data"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig holds Redis connection settings (storage backend "redis").
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"   env-default:"0"`
}

// DatabaseConfig holds PostgreSQL connection settings (storage backend "postgres").
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
