package slides

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NoTextFiller stands in for pages the parser cannot read so that slide
// numbers stay aligned with page indexes.
const NoTextFiller = "(no extractable text)"

// PageCount reports the number of pages in the deck at path. A deck the
// parser cannot open counts as zero pages; callers treat zero as unknown
// and skip upper-bound slide checks.
func PageCount(path string) int {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()
	return reader.NumPage()
}

// Base64 reads the deck and returns its standard base64 encoding for
// providers that accept the document inline.
func Base64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read deck: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// PageTexts extracts plain text from every page in order. Unreadable or
// empty pages yield NoTextFiller rather than being skipped.
func PageTexts(path string) ([]string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer file.Close()

	total := reader.NumPage()
	texts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, NoTextFiller)
			continue
		}
		text, err := page.GetPlainText(nil)
		text = strings.TrimSpace(text)
		if err != nil || text == "" {
			texts = append(texts, NoTextFiller)
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
