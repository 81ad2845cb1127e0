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
	c.normalizeLibrary()
	c.normalizeLLM()
	c.normalizeReview()
	c.normalizeLogging()
	c.normalizeAPI()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.InboxDir = strings.TrimSpace(c.Paths.InboxDir)
	if c.Paths.InboxDir != "" {
		if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
			return fmt.Errorf("paths.inbox_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	c.Library.InboxCourse = strings.TrimSpace(c.Library.InboxCourse)
	if c.Library.InboxCourse == "" {
		c.Library.InboxCourse = defaultInboxCourse
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultProvider
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultMaxTokens
	}
	if c.LLM.FollowUpMaxTokens <= 0 {
		c.LLM.FollowUpMaxTokens = defaultFollowUpMaxTokens
	}

	normalizeProvider(&c.LLM.Anthropic, defaultAnthropicModel, defaultAnthropicBaseURL, "ANTHROPIC_API_KEY")
	normalizeProvider(&c.LLM.OpenAI, defaultOpenAIModel, defaultOpenAIBaseURL, "OPENAI_API_KEY")
	normalizeProvider(&c.LLM.Gemini, defaultGeminiModel, defaultGeminiBaseURL, "GEMINI_API_KEY", "GOOGLE_API_KEY")
}

// normalizeProvider trims one vendor's settings, applying defaults and the
// first non-empty environment fallback for the API key.
func normalizeProvider(p *Provider, defaultModel, defaultBaseURL string, envKeys ...string) {
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.APIKey == "" {
		for _, env := range envKeys {
			if value, ok := os.LookupEnv(env); ok && strings.TrimSpace(value) != "" {
				p.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		p.Model = defaultModel
	}
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.BaseURL == "" {
		p.BaseURL = defaultBaseURL
	}
}

func (c *Config) normalizeReview() {
	if c.Review.ParallelRequests <= 0 {
		c.Review.ParallelRequests = defaultParallelRequests
	}
	if c.Review.QueuePollInterval <= 0 {
		c.Review.QueuePollInterval = defaultQueuePoll
	}
	if c.Review.ErrorRetryInterval <= 0 {
		c.Review.ErrorRetryInterval = defaultErrorRetry
	}
	if c.Review.HeartbeatInterval <= 0 {
		c.Review.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Review.HeartbeatTimeout <= 0 {
		c.Review.HeartbeatTimeout = defaultHeartbeatTimeout
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

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
