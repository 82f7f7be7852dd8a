package config

import (
	"fmt"
	"slices"
)

// Backend selector values accepted by LLMConfig.Backend.
const (
	LLMBackendAnthropic = "anthropic"
	LLMBackendGemini    = "gemini"
	LLMBackendOpenAI    = "openai"
)

// Backend selector values accepted by StorageConfig.Backend.
const (
	StorageBackendFS       = "fs"
	StorageBackendRedis    = "redis"
	StorageBackendPostgres = "postgres"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Corpus.Dir == "" {
		return fmt.Errorf("corpus.dir must not be empty")
	}
	if err := c.Range.validate(); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (r *RangeConfig) validate() error {
	if r.StartSurah < 1 {
		return fmt.Errorf("start_surah must be >= 1 (got %d)", r.StartSurah)
	}
	if r.EndSurah < r.StartSurah {
		return fmt.Errorf("end_surah must be >= start_surah (got %d < %d)", r.EndSurah, r.StartSurah)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	backends := []string{LLMBackendAnthropic, LLMBackendGemini, LLMBackendOpenAI}
	if !slices.Contains(backends, l.Backend) {
		return fmt.Errorf("backend must be one of anthropic, gemini, openai (got %q)", l.Backend)
	}
	if l.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	switch l.Backend {
	case LLMBackendAnthropic, LLMBackendGemini:
		if l.APIKey == "" {
			return fmt.Errorf("api_key is required for backend %q", l.Backend)
		}
	case LLMBackendOpenAI:
		if l.BaseURL == "" {
			return fmt.Errorf("base_url is required for backend %q", l.Backend)
		}
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", l.MaxTokens)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", l.MaxAttempts)
	}
	if l.RetryWait < 0 {
		return fmt.Errorf("retry_wait must be >= 0 (got %v)", l.RetryWait)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case StorageBackendFS:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for backend %q", s.Backend)
		}
	case StorageBackendRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for backend %q", s.Backend)
		}
	case StorageBackendPostgres:
		if s.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for backend %q", s.Backend)
		}
	default:
		return fmt.Errorf("backend must be one of fs, redis, postgres (got %q)", s.Backend)
	}
	return nil
}
