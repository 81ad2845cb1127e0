package library

import (
	"strings"
	"time"

	"gloss/internal/notes"
)

// Status represents the lifecycle of a lecture.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
	StatusReviewing Status = "reviewing"
	StatusReviewed  Status = "reviewed"
)

var allStatuses = []Status{
	StatusDraft,
	StatusFinalized,
	StatusReviewing,
	StatusReviewed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Course is a top-level container for lectures.
type Course struct {
	ID        int64
	Name      string
	Slug      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Group is an optional named section inside a course, such as a week or unit.
type Group struct {
	ID        int64
	CourseID  int64
	Name      string
	Slug      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Lecture holds one lecture's notes, deck reference, and review state.
type Lecture struct {
	ID              int64
	CourseID        int64
	GroupID         *int64
	Title           string
	Slug            string
	Position        int
	DeckPath        string
	DeckPages       int
	Status          Status
	ErrorMessage    string
	ProgressDone    int
	ProgressTotal   int
	ProgressMessage string
	LastHeartbeat   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Note is a single classified line of lecture notes. Notes are mutable only
// while the owning lecture is in draft.
type Note struct {
	ID        int64
	LectureID int64
	Position  int
	Slide     int
	Kind      notes.Kind
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewCard pairs a note snapshot with the provider response generated for
// it. Cards are created as placeholders in note order at dispatch time.
type ReviewCard struct {
	ID           int64
	LectureID    int64
	NoteID       int64
	Position     int
	Slide        int
	Kind         notes.Kind
	NoteText     string
	Response     string
	Failed       bool
	ErrorMessage string
	Model        string
	InputTokens  int64
	OutputTokens int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exchange is one follow-up question and answer on a card. Threads are
// append-only.
type Exchange struct {
	ID        int64
	CardID    int64
	Position  int
	Question  string
	Answer    string
	CreatedAt time.Time
}

// IsProcessing reports whether the lecture has an in-flight review run.
func (l Lecture) IsProcessing() bool {
	return l.Status == StatusReviewing
}

// HasDeck reports whether a slide deck has been attached.
func (l Lecture) HasDeck() bool {
	return strings.TrimSpace(l.DeckPath) != ""
}

// SetProgress updates the settled/total counters shown in status output.
func (l *Lecture) SetProgress(done, total int, message string) {
	l.ProgressDone = done
	l.ProgressTotal = total
	l.ProgressMessage = message
}

// SetRunFailed records a failed review run: the lecture returns to finalized
// with the error message kept for display, and the heartbeat is cleared.
func (l *Lecture) SetRunFailed(message string) {
	l.Status = StatusFinalized
	l.ErrorMessage = message
	l.ProgressMessage = message
	l.LastHeartbeat = nil
}

// HasResponse reports whether the card carries a usable provider response.
func (c ReviewCard) HasResponse() bool {
	return !c.Failed && strings.TrimSpace(c.Response) != ""
}

// DatabaseHealth captures diagnostic information about the library database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalLectures    int
	Error            string
}

// HealthSummary describes aggregated lecture counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Draft     int
	Finalized int
	Reviewing int
	Reviewed  int
}
