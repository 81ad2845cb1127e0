package api

import (
	"slices"
	"time"

	"gloss/internal/library"
	"gloss/internal/stage"
	"gloss/internal/workflow"
)

// FromCourse converts a course record to its API representation.
func FromCourse(course *library.Course) Course {
	if course == nil {
		return Course{}
	}
	return Course{
		ID:        course.ID,
		Name:      course.Name,
		Slug:      course.Slug,
		Position:  course.Position,
		CreatedAt: FormatTime(course.CreatedAt),
		UpdatedAt: FormatTime(course.UpdatedAt),
	}
}

// FromCourses converts a slice of course records into API DTOs.
func FromCourses(courses []*library.Course) []Course {
	if len(courses) == 0 {
		return nil
	}
	out := make([]Course, 0, len(courses))
	for _, course := range courses {
		out = append(out, FromCourse(course))
	}
	return out
}

// FromGroup converts a group record to its API representation.
func FromGroup(group *library.Group) Group {
	if group == nil {
		return Group{}
	}
	return Group{
		ID:        group.ID,
		CourseID:  group.CourseID,
		Name:      group.Name,
		Slug:      group.Slug,
		Position:  group.Position,
		CreatedAt: FormatTime(group.CreatedAt),
		UpdatedAt: FormatTime(group.UpdatedAt),
	}
}

// FromGroups converts a slice of group records into API DTOs.
func FromGroups(groups []*library.Group) []Group {
	if len(groups) == 0 {
		return nil
	}
	out := make([]Group, 0, len(groups))
	for _, group := range groups {
		out = append(out, FromGroup(group))
	}
	return out
}

// FromLecture converts a lecture record to its API representation.
func FromLecture(lecture *library.Lecture) Lecture {
	if lecture == nil {
		return Lecture{}
	}
	dto := Lecture{
		ID:        lecture.ID,
		CourseID:  lecture.CourseID,
		Title:     lecture.Title,
		Slug:      lecture.Slug,
		Position:  lecture.Position,
		DeckPath:  lecture.DeckPath,
		DeckPages: lecture.DeckPages,
		Status:    string(lecture.Status),
		Progress: ReviewProgress{
			Done:    lecture.ProgressDone,
			Total:   lecture.ProgressTotal,
			Message: lecture.ProgressMessage,
		},
		ErrorMessage: lecture.ErrorMessage,
		CreatedAt:    FormatTime(lecture.CreatedAt),
		UpdatedAt:    FormatTime(lecture.UpdatedAt),
	}
	if lecture.GroupID != nil {
		id := *lecture.GroupID
		dto.GroupID = &id
	}
	if lecture.LastHeartbeat != nil {
		dto.LastHeartbeat = FormatTime(*lecture.LastHeartbeat)
	}
	return dto
}

// FromLectures converts a slice of lecture records into API DTOs.
func FromLectures(lectures []*library.Lecture) []Lecture {
	if len(lectures) == 0 {
		return nil
	}
	out := make([]Lecture, 0, len(lectures))
	for _, lecture := range lectures {
		out = append(out, FromLecture(lecture))
	}
	return out
}

// FromNote converts a note record to its API representation.
func FromNote(note *library.Note) Note {
	if note == nil {
		return Note{}
	}
	return Note{
		ID:        note.ID,
		LectureID: note.LectureID,
		Position:  note.Position,
		Slide:     note.Slide,
		Kind:      string(note.Kind),
		Label:     note.Kind.Label(),
		Text:      note.Text,
		CreatedAt: FormatTime(note.CreatedAt),
		UpdatedAt: FormatTime(note.UpdatedAt),
	}
}

// FromNotes converts a slice of note records into API DTOs.
func FromNotes(lectureNotes []*library.Note) []Note {
	if len(lectureNotes) == 0 {
		return nil
	}
	out := make([]Note, 0, len(lectureNotes))
	for _, note := range lectureNotes {
		out = append(out, FromNote(note))
	}
	return out
}

// FromCard converts a review card record to its API representation.
func FromCard(card *library.ReviewCard) ReviewCard {
	if card == nil {
		return ReviewCard{}
	}
	return ReviewCard{
		ID:           card.ID,
		LectureID:    card.LectureID,
		NoteID:       card.NoteID,
		Position:     card.Position,
		Slide:        card.Slide,
		Kind:         string(card.Kind),
		Label:        card.Kind.Label(),
		NoteText:     card.NoteText,
		Response:     card.Response,
		Failed:       card.Failed,
		ErrorMessage: card.ErrorMessage,
		Model:        card.Model,
		InputTokens:  card.InputTokens,
		OutputTokens: card.OutputTokens,
		CreatedAt:    FormatTime(card.CreatedAt),
		UpdatedAt:    FormatTime(card.UpdatedAt),
	}
}

// FromCards converts a slice of review card records into API DTOs.
func FromCards(cards []*library.ReviewCard) []ReviewCard {
	if len(cards) == 0 {
		return nil
	}
	out := make([]ReviewCard, 0, len(cards))
	for _, card := range cards {
		out = append(out, FromCard(card))
	}
	return out
}

// FromExchange converts an exchange record to its API representation.
func FromExchange(exchange *library.Exchange) Exchange {
	if exchange == nil {
		return Exchange{}
	}
	return Exchange{
		ID:        exchange.ID,
		CardID:    exchange.CardID,
		Position:  exchange.Position,
		Question:  exchange.Question,
		Answer:    exchange.Answer,
		CreatedAt: FormatTime(exchange.CreatedAt),
	}
}

// FromExchanges converts a slice of exchange records into API DTOs.
func FromExchanges(exchanges []*library.Exchange) []Exchange {
	if len(exchanges) == 0 {
		return nil
	}
	out := make([]Exchange, 0, len(exchanges))
	for _, exchange := range exchanges {
		out = append(out, FromExchange(exchange))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:      summary.Running,
		LectureStats: MergeLectureStats(summary.LectureStats),
		StageHealth:  StageHealthSlice(summary.StageHealth),
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastLecture != nil {
		last := FromLecture(summary.LastLecture)
		wf.LastLecture = &last
	}
	return wf
}

// MergeLectureStats produces a string-keyed representation of lecture stats.
func MergeLectureStats(stats map[library.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FromHealthSummary converts library lecture counts to API payload.
func FromHealthSummary(summary library.HealthSummary) LibraryHealth {
	return LibraryHealth{
		Total:     summary.Total,
		Draft:     summary.Draft,
		Finalized: summary.Finalized,
		Reviewing: summary.Reviewing,
		Reviewed:  summary.Reviewed,
	}
}

// FromDatabaseHealth converts library database diagnostics to API payload.
func FromDatabaseHealth(health library.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		DBPath:           health.DBPath,
		DatabaseExists:   health.DatabaseExists,
		DatabaseReadable: health.DatabaseReadable,
		SchemaVersion:    health.SchemaVersion,
		TableExists:      health.TableExists,
		ColumnsPresent:   health.ColumnsPresent,
		MissingColumns:   health.MissingColumns,
		IntegrityCheck:   health.IntegrityCheck,
		TotalLectures:    health.TotalLectures,
		Error:            health.Error,
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
