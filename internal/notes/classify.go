package notes

import (
	"strings"
	"unicode/utf8"
)

// symbolKinds maps each recognized markup symbol to its kind.
var symbolKinds = map[rune]Kind{
	'-': KindGeneral,
	'?': KindQuestion,
	'~': KindUncertain,
	'!': KindImportant,
}

// Classify inspects the first non-whitespace character of line. A recognized
// markup symbol yields its kind with the symbol and one following space
// stripped from the returned text; anything else yields KindUntagged with the
// text merely trimmed. Classify never fails and reclassifying its own output
// yields the same kind.
func Classify(line string) (Kind, string) {
	trimmed := strings.TrimSpace(line)
	if kind, rest, ok := splitSymbol(trimmed); ok {
		return kind, rest
	}
	return KindUntagged, trimmed
}

// splitSymbol reports whether trimmed opens with a markup symbol and returns
// the kind plus the remaining text.
func splitSymbol(trimmed string) (Kind, string, bool) {
	if trimmed == "" {
		return KindUntagged, "", false
	}
	r, size := utf8.DecodeRuneInString(trimmed)
	kind, ok := symbolKinds[r]
	if !ok {
		return KindUntagged, trimmed, false
	}
	return kind, strings.TrimPrefix(trimmed[size:], " "), true
}

// ParsedNote is one block produced by ParseBlocks.
type ParsedNote struct {
	Kind Kind
	Text string
}

// ParseBlocks splits free-form markup text into note blocks. A line opening
// with a recognized symbol starts a new block; subsequent non-empty lines
// without a symbol continue the current block; a blank line closes it. Text
// before the first symbol forms an untagged block. Blocks that end up empty
// are dropped.
func ParseBlocks(raw string) []ParsedNote {
	var (
		blocks  []ParsedNote
		current *ParsedNote
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(current.Text)
		if current.Text != "" {
			blocks = append(blocks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if kind, rest, ok := splitSymbol(trimmed); ok {
			flush()
			current = &ParsedNote{Kind: kind, Text: rest}
			continue
		}
		if current == nil {
			current = &ParsedNote{Kind: KindUntagged, Text: trimmed}
			continue
		}
		current.Text += "\n" + trimmed
	}
	flush()
	return blocks
}
