package review

import (
	"fmt"
	"strings"

	"gloss/internal/notes"
)

// systemPrompt frames every review and follow-up request. The type labels
// match notes.Kind.Label so the model sees the same tag the student wrote.
const systemPrompt = `You are a study assistant helping a student review their lecture notes.
You will receive:
1. The full lecture slides
2. A specific slide number the student was on
3. One student note about that slide, with a type indicator

Your role depends on the note type:
- GENERAL: Check against the slide content for accuracy. If the note contains a misunderstanding, gently correct it with specifics from the slide. If correct, briefly confirm.
- QUESTION: Answer using the slide content as primary context. Be thorough but concise. If the slide doesn't contain enough info, say so and provide what you can.
- UNCERTAIN: The student is unsure. Compare their understanding against the slide. If wrong, gently correct with specifics. If right, confirm and reinforce.
- IMPORTANT: The student flagged this as high-priority. Provide a focused summary of the key concepts from this slide that relate to their note.
- NOTE: An untagged note. Treat it as GENERAL.

Keep responses focused and educational. Reference the slide content specifically when possible. You have the full lecture for broader context but focus on the specific slide referenced. Respond in plain prose without section headers.`

// reviewMessage builds the user turn for a fresh review of one note.
func reviewMessage(slide int, kind notes.Kind, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student is on SLIDE %d of this lecture.\n\n", slide)
	fmt.Fprintf(&b, "Note (%s):\n%s\n\n", kind.Label(), text)
	b.WriteString(kind.Instruction())
	return b.String()
}

// followUpOpening rebuilds the first user turn of a card's thread. It omits
// the review instruction so the thread reads as a conversation about the
// note rather than a repeated review request.
func followUpOpening(slide int, kind notes.Kind, text string) string {
	return fmt.Sprintf("The student is on SLIDE %d of this lecture.\n\nNote (%s):\n%s", slide, kind.Label(), text)
}

// joinSlideTexts collapses per-page extracted text into the single lecture
// transcript sent to page-text providers.
func joinSlideTexts(pages []string) string {
	sections := make([]string, len(pages))
	for i, text := range pages {
		sections[i] = fmt.Sprintf("[Slide %d]\n%s", i+1, text)
	}
	return strings.Join(sections, "\n\n")
}
