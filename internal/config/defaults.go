package config

const (
	defaultDataDir           = "~/.local/share/gloss"
	defaultLogDir            = "~/.local/share/gloss/logs"
	defaultInboxCourse       = "Inbox"
	defaultProvider          = "anthropic"
	defaultTimeoutSeconds    = 120
	defaultMaxTokens         = 1024
	defaultFollowUpMaxTokens = 2048
	defaultAnthropicModel    = "claude-sonnet-4-5"
	defaultAnthropicBaseURL  = "https://api.anthropic.com"
	defaultOpenAIModel       = "gpt-5"
	defaultOpenAIBaseURL     = "https://api.openai.com"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultGeminiBaseURL     = "https://generativelanguage.googleapis.com"
	defaultParallelRequests  = 3
	defaultQueuePoll         = 5
	defaultErrorRetry        = 10
	defaultHeartbeatInterval = 15
	defaultHeartbeatTimeout  = 120
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 60
	defaultAPIBind           = "127.0.0.1:7533"
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Library: Library{
			InboxCourse: defaultInboxCourse,
		},
		LLM: LLM{
			Provider:          defaultProvider,
			TimeoutSeconds:    defaultTimeoutSeconds,
			MaxTokens:         defaultMaxTokens,
			FollowUpMaxTokens: defaultFollowUpMaxTokens,
			Anthropic: Provider{
				Model:   defaultAnthropicModel,
				BaseURL: defaultAnthropicBaseURL,
			},
			OpenAI: Provider{
				Model:   defaultOpenAIModel,
				BaseURL: defaultOpenAIBaseURL,
			},
			Gemini: Provider{
				Model:   defaultGeminiModel,
				BaseURL: defaultGeminiBaseURL,
			},
		},
		Review: Review{
			ParallelRequests:   defaultParallelRequests,
			QueuePollInterval:  defaultQueuePoll,
			ErrorRetryInterval: defaultErrorRetry,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}
