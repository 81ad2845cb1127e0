package llm

import (
	"net/http"
	"sort"
	"sync"
)

// Provider adapts one vendor's wire format. Implementations format and parse
// only; the client owns HTTP, timeouts, and error classification.
type Provider interface {
	// Name returns the vendor identifier ("anthropic", "openai", "gemini").
	Name() string

	// AttachmentMode reports which deck form requests must carry.
	AttachmentMode() AttachmentMode

	// BuildURL constructs the full endpoint URL. An empty baseURL selects
	// the vendor's public endpoint.
	BuildURL(baseURL, model string) string

	// SetHeaders adds vendor authentication and version headers.
	SetHeaders(req *http.Request, apiKey string)

	// BuildRequestBody creates the JSON request body.
	BuildRequestBody(model string, r Request) ([]byte, error)

	// ParseResult extracts the reply text and token usage from a 200 body.
	ParseResult(body []byte) (*Result, error)
}

var (
	providerRegistry = make(map[string]Provider)
	providerMu       sync.RWMutex
)

// RegisterProvider adds a provider to the registry. Vendor packages call
// this from init.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[p.Name()] = p
}

// GetProvider retrieves a provider by name, nil when unregistered.
func GetProvider(name string) Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerRegistry[name]
}

// ListProviders returns all registered provider names, sorted.
func ListProviders() []string {
	providerMu.RLock()
	defer providerMu.RUnlock()

	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
