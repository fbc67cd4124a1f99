package config

const (
	defaultContentDir          = "./src/data/questions"
	defaultLogDir              = "~/.local/share/storygen/logs"
	defaultStateDir            = "~/.local/share/storygen/state"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLLMProvider         = ProviderOpenAI
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "anthropic/claude-3.5-sonnet"
	defaultGeminiModel         = "gemini-2.0-flash"
	defaultLLMMaxTokens        = 4000
	defaultLLMTimeoutSeconds   = 120
	defaultLLMRetryAttempts    = 3
	defaultLLMRetryDelay       = 2
	defaultQuestionsPerStory   = 25
	defaultBatchSize           = 5
	defaultBatchDelayMillis    = 1000
	defaultStoryDelaySeconds   = 2
	defaultPlaceholderSentinel = "PLACEHOLDER_CONTENT"
)

// Supported text-generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ContentDir: defaultContentDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
		},
		LLM: LLM{
			Provider:          defaultLLMProvider,
			Model:             defaultLLMModel,
			MaxTokens:         defaultLLMMaxTokens,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			RetryAttempts:     defaultLLMRetryAttempts,
			RetryDelaySeconds: defaultLLMRetryDelay,
		},
		Generation: Generation{
			QuestionsPerStory:   defaultQuestionsPerStory,
			BatchSize:           defaultBatchSize,
			BatchDelayMillis:    defaultBatchDelayMillis,
			StoryDelaySeconds:   defaultStoryDelaySeconds,
			PlaceholderSentinel: defaultPlaceholderSentinel,
			ShuffleOptions:      true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
