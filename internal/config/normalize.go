package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGeneration()
	c.normalizeUpload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ContentDir) == "" {
		c.Paths.ContentDir = defaultContentDir
	}
	if c.Paths.ContentDir, err = expandPath(c.Paths.ContentDir); err != nil {
		return fmt.Errorf("paths.content_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultLLMBaseURL
		}
	case ProviderGemini:
		// The chat-completions endpoint cannot serve Gemini requests.
		if c.LLM.BaseURL == defaultLLMBaseURL {
			c.LLM.BaseURL = ""
		}
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" || (c.LLM.Provider == ProviderGemini && c.LLM.Model == defaultLLMModel) {
		if c.LLM.Provider == ProviderGemini {
			c.LLM.Model = defaultGeminiModel
		} else {
			c.LLM.Model = defaultLLMModel
		}
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.RetryDelaySeconds < 0 {
		c.LLM.RetryDelaySeconds = 0
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("STORYGEN_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv(providerKeyEnv(c.LLM.Provider)); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func providerKeyEnv(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENROUTER_API_KEY"
}

func (c *Config) normalizeGeneration() {
	if c.Generation.QuestionsPerStory <= 0 {
		c.Generation.QuestionsPerStory = defaultQuestionsPerStory
	}
	if c.Generation.BatchSize <= 0 {
		c.Generation.BatchSize = defaultBatchSize
	}
	if c.Generation.BatchDelayMillis < 0 {
		c.Generation.BatchDelayMillis = 0
	}
	if c.Generation.StoryDelaySeconds < 0 {
		c.Generation.StoryDelaySeconds = 0
	}
	if strings.TrimSpace(c.Generation.PlaceholderSentinel) == "" {
		c.Generation.PlaceholderSentinel = defaultPlaceholderSentinel
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.DatabaseURL = strings.TrimSpace(c.Upload.DatabaseURL)
	if c.Upload.DatabaseURL == "" {
		if value, ok := os.LookupEnv("STORYGEN_DATABASE_URL"); ok {
			c.Upload.DatabaseURL = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
