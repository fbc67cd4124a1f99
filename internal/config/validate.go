package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by ValidateCredentials so that offline commands keep working
// without an API key.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials reports whether the text-generation credential is present.
func (c *Config) ValidateCredentials() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/storygen/config.toml"
	}
	return fmt.Errorf("llm.api_key is required. Set STORYGEN_API_KEY (or %s) or edit %s (create with 'storygen config init')",
		providerKeyEnv(c.LLM.Provider), defaultPath)
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (use %q or %q)", c.LLM.Provider, ProviderOpenAI, ProviderGemini)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	return ensurePositiveMap(map[string]int{
		"llm.max_tokens":      c.LLM.MaxTokens,
		"llm.timeout_seconds": c.LLM.TimeoutSeconds,
		"llm.retry_attempts":  c.LLM.RetryAttempts,
	})
}

func (c *Config) validateGeneration() error {
	if c.Generation.BatchSize > c.Generation.QuestionsPerStory {
		return errors.New("generation.batch_size must not exceed generation.questions_per_story")
	}
	if strings.TrimSpace(c.Generation.PlaceholderSentinel) == "" {
		return errors.New("generation.placeholder_sentinel must be set")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.Enabled && strings.TrimSpace(c.Upload.DatabaseURL) == "" {
		return errors.New("upload.database_url must be set when upload.enabled is true (or set STORYGEN_DATABASE_URL)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
