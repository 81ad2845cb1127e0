package testsupport

import (
	"path/filepath"
	"testing"

	"gloss/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LLM.Anthropic.APIKey = "test"
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithProvider selects the active LLM provider on the test config.
func WithProvider(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Provider = name
	}
}

// WithAPIKey sets the active provider's API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		switch b.cfg.LLM.Provider {
		case "openai":
			b.cfg.LLM.OpenAI.APIKey = key
		case "gemini":
			b.cfg.LLM.Gemini.APIKey = key
		default:
			b.cfg.LLM.Anthropic.APIKey = key
		}
	}
}

// WithInbox enables the watched inbox directory on the test config.
func WithInbox(course string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.InboxDir = filepath.Join(b.baseDir, "inbox")
		if course != "" {
			b.cfg.Library.InboxCourse = course
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
