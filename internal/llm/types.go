package llm

// Message is one turn in a conversation thread.
type Message struct {
	Role    string
	Content string
}

// Roles used in request threads. Providers map these onto their own
// vocabulary where it differs.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AttachmentMode describes the deck form a provider accepts.
type AttachmentMode int

const (
	// InlinePDF providers take the deck as a base64 document alongside the text.
	InlinePDF AttachmentMode = iota
	// PageText providers take extracted per-page text inside the first user message.
	PageText
)

func (m AttachmentMode) String() string {
	if m == PageText {
		return "page-text"
	}
	return "inline-pdf"
}

// Request is a single review or follow-up call to the active provider.
// DeckBase64 is populated for InlinePDF providers, DeckText (already
// slide-labelled) for PageText providers; the other field stays empty.
type Request struct {
	System     string
	Messages   []Message
	DeckBase64 string
	DeckText   string
	MaxTokens  int
}

// Usage is the token consumption a provider reports for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Result is a completed provider call.
type Result struct {
	Text  string
	Model string
	Usage Usage
}
