package notes

import "strings"

// Kind identifies the intent of a note line, derived from its markup symbol.
type Kind string

const (
	KindGeneral   Kind = "general"
	KindQuestion  Kind = "question"
	KindUncertain Kind = "uncertain"
	KindImportant Kind = "important"
	KindUntagged  Kind = "untagged"
)

var allKinds = []Kind{
	KindGeneral,
	KindQuestion,
	KindUncertain,
	KindImportant,
	KindUntagged,
}

var kindSet = func() map[Kind]struct{} {
	m := make(map[Kind]struct{}, len(allKinds))
	for _, k := range allKinds {
		m[k] = struct{}{}
	}
	return m
}()

// AllKinds returns every kind in display order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind normalizes a string into a Kind, reporting whether it matched.
func ParseKind(value string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := kindSet[kind]; !ok {
		return "", false
	}
	return kind, true
}

var kindLabels = map[Kind]string{
	KindGeneral:   "GENERAL",
	KindQuestion:  "QUESTION",
	KindUncertain: "UNCERTAIN",
	KindImportant: "IMPORTANT",
	KindUntagged:  "NOTE",
}

// Label returns the uppercase display label used in prompts and card views.
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return kindLabels[KindUntagged]
}

var kindInstructions = map[Kind]string{
	KindGeneral:   "Check this note for accuracy against the slides. Point out anything wrong, imprecise, or missing.",
	KindQuestion:  "Answer this question directly, using the slides as the primary source.",
	KindUncertain: "The student is unsure about this. Confirm the understanding if it is right, or correct it if it is not.",
	KindImportant: "The student flagged this as important. Give a short, focused summary of the concept from the slides.",
	KindUntagged:  "Check this note for accuracy against the slides. Point out anything wrong, imprecise, or missing.",
}

// Instruction returns the review instruction sent to the model for notes of
// this kind. Untagged notes get the general accuracy check.
func (k Kind) Instruction() string {
	if inst, ok := kindInstructions[k]; ok {
		return inst
	}
	return kindInstructions[KindUntagged]
}
