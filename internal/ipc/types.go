package ipc

import "gloss/internal/api"

// Course mirrors the API course DTO for internal IPC callers.
type Course = api.Course

// Group mirrors the API lecture group DTO.
type Group = api.Group

// Lecture mirrors the API lecture DTO.
type Lecture = api.Lecture

// Note mirrors the API note DTO.
type Note = api.Note

// ReviewCard mirrors the API review card DTO.
type ReviewCard = api.ReviewCard

// Exchange mirrors the API follow-up exchange DTO.
type Exchange = api.Exchange

// StageHealth describes readiness of a workflow stage.
type StageHealth = api.StageHealth

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running       bool           `json:"running"`
	LectureStats  map[string]int `json:"lecture_stats"`
	LastError     string         `json:"last_error"`
	LastLecture   *Lecture       `json:"last_lecture"`
	LockPath      string         `json:"lock_path"`
	LibraryDBPath string         `json:"library_db_path"`
	LogPath       string         `json:"log_path"`
	StageHealth   []StageHealth  `json:"stage_health"`
	PID           int            `json:"pid"`
}

// CourseAddRequest creates a course.
type CourseAddRequest struct {
	Name string `json:"name"`
}

// CourseAddResponse contains the created course.
type CourseAddResponse struct {
	Course Course `json:"course"`
}

// CourseListRequest lists all courses.
type CourseListRequest struct{}

// CourseListResponse contains courses in display order.
type CourseListResponse struct {
	Courses []Course `json:"courses"`
}

// CourseRenameRequest renames a course.
type CourseRenameRequest struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

// CourseRenameResponse contains the renamed course.
type CourseRenameResponse struct {
	Course Course `json:"course"`
}

// CourseReorderRequest moves a course to a new display position.
type CourseReorderRequest struct {
	Ref      string `json:"ref"`
	Position int    `json:"position"`
}

// CourseReorderResponse contains the resulting course order.
type CourseReorderResponse struct {
	Courses []Course `json:"courses"`
}

// CourseRemoveRequest removes a course and everything under it.
type CourseRemoveRequest struct {
	Ref string `json:"ref"`
}

// CourseRemoveResponse reports removal outcome.
type CourseRemoveResponse struct {
	Removed bool `json:"removed"`
}

// GroupAddRequest creates a lecture group inside a course.
type GroupAddRequest struct {
	Course string `json:"course"`
	Name   string `json:"name"`
}

// GroupAddResponse contains the created group.
type GroupAddResponse struct {
	Group Group `json:"group"`
}

// GroupListRequest lists groups for a course.
type GroupListRequest struct {
	Course string `json:"course"`
}

// GroupListResponse contains groups in display order.
type GroupListResponse struct {
	Groups []Group `json:"groups"`
}

// GroupRenameRequest renames a group within a course.
type GroupRenameRequest struct {
	Course string `json:"course"`
	Group  string `json:"group"`
	Name   string `json:"name"`
}

// GroupRenameResponse contains the renamed group.
type GroupRenameResponse struct {
	Group Group `json:"group"`
}

// GroupRemoveRequest removes a group, lectures fall back to ungrouped.
type GroupRemoveRequest struct {
	Course string `json:"course"`
	Group  string `json:"group"`
}

// GroupRemoveResponse reports removal outcome.
type GroupRemoveResponse struct {
	Removed bool `json:"removed"`
}

// LectureAddRequest creates a lecture, optionally grouped and with a deck.
type LectureAddRequest struct {
	Course string `json:"course"`
	Title  string `json:"title"`
	Group  string `json:"group"`
	Deck   string `json:"deck"`
}

// LectureAddResponse contains the created lecture.
type LectureAddResponse struct {
	Lecture Lecture `json:"lecture"`
}

// LectureListRequest lists lectures for a course.
type LectureListRequest struct {
	Course string `json:"course"`
}

// LectureListResponse contains lectures in display order.
type LectureListResponse struct {
	Lectures []Lecture `json:"lectures"`
}

// LectureShowRequest fetches a lecture with its notes.
type LectureShowRequest struct {
	Ref string `json:"ref"`
}

// LectureShowResponse contains the lecture and its notes.
type LectureShowResponse struct {
	Lecture Lecture `json:"lecture"`
	Notes   []Note  `json:"notes"`
}

// LectureRenameRequest retitles a lecture.
type LectureRenameRequest struct {
	Ref   string `json:"ref"`
	Title string `json:"title"`
}

// LectureRenameResponse contains the renamed lecture.
type LectureRenameResponse struct {
	Lecture Lecture `json:"lecture"`
}

// LectureMoveRequest moves a lecture into a group, or ungroups it when
// the group reference is empty.
type LectureMoveRequest struct {
	Ref   string `json:"ref"`
	Group string `json:"group"`
}

// LectureMoveResponse contains the moved lecture.
type LectureMoveResponse struct {
	Lecture Lecture `json:"lecture"`
}

// LectureAttachDeckRequest attaches or replaces a lecture's slide deck.
type LectureAttachDeckRequest struct {
	Ref  string `json:"ref"`
	Deck string `json:"deck"`
}

// LectureAttachDeckResponse contains the updated lecture.
type LectureAttachDeckResponse struct {
	Lecture Lecture `json:"lecture"`
}

// LectureRemoveRequest removes a lecture and its notes, cards, and deck copy.
type LectureRemoveRequest struct {
	Ref string `json:"ref"`
}

// LectureRemoveResponse reports removal outcome.
type LectureRemoveResponse struct {
	Removed bool `json:"removed"`
}

// NoteAddRequest appends a note block to a draft lecture.
type NoteAddRequest struct {
	Lecture string `json:"lecture"`
	Slide   int    `json:"slide"`
	Text    string `json:"text"`
}

// NoteAddResponse contains the notes created from the block.
type NoteAddResponse struct {
	Notes []Note `json:"notes"`
}

// NoteListRequest lists notes for a lecture.
type NoteListRequest struct {
	Lecture string `json:"lecture"`
}

// NoteListResponse contains notes in slide order.
type NoteListResponse struct {
	Notes []Note `json:"notes"`
}

// NoteEditRequest rewrites a note's slide number and text.
type NoteEditRequest struct {
	ID    int64  `json:"id"`
	Slide int    `json:"slide"`
	Text  string `json:"text"`
}

// NoteEditResponse contains the updated note.
type NoteEditResponse struct {
	Note Note `json:"note"`
}

// NoteRemoveRequest removes a note from a draft lecture.
type NoteRemoveRequest struct {
	ID int64 `json:"id"`
}

// NoteRemoveResponse reports removal outcome.
type NoteRemoveResponse struct {
	Removed bool `json:"removed"`
}

// FinalizeRequest locks a draft lecture's notes for review.
type FinalizeRequest struct {
	Ref string `json:"ref"`
}

// FinalizeResponse contains the finalized lecture.
type FinalizeResponse struct {
	Lecture Lecture `json:"lecture"`
}

// ReviewStartRequest queues a finalized lecture for review.
type ReviewStartRequest struct {
	Ref string `json:"ref"`
}

// ReviewStartResponse contains the queued lecture.
type ReviewStartResponse struct {
	Lecture Lecture `json:"lecture"`
}

// CardsRequest lists review cards for a lecture.
type CardsRequest struct {
	Lecture string `json:"lecture"`
}

// CardsResponse contains review cards in note order.
type CardsResponse struct {
	Cards []ReviewCard `json:"cards"`
}

// CardRequest fetches a single card with its follow-up thread.
type CardRequest struct {
	ID int64 `json:"id"`
}

// CardResponse contains the card and its exchanges.
type CardResponse struct {
	Card      ReviewCard `json:"card"`
	Exchanges []Exchange `json:"exchanges"`
}

// FollowUpRequest asks a follow-up question on a reviewed card.
type FollowUpRequest struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
}

// FollowUpResponse contains the recorded question and answer.
type FollowUpResponse struct {
	Exchange Exchange `json:"exchange"`
}

// RegenerateRequest re-runs the review for a single card.
type RegenerateRequest struct {
	ID int64 `json:"id"`
}

// RegenerateResponse contains the refreshed card.
type RegenerateResponse struct {
	Card ReviewCard `json:"card"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// HealthRequest fetches aggregate lecture diagnostics.
type HealthRequest struct{}

// HealthResponse reports lecture counts per lifecycle state.
type HealthResponse struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Finalized int `json:"finalized"`
	Reviewing int `json:"reviewing"`
	Reviewed  int `json:"reviewed"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalLectures    int      `json:"total_lectures"`
	Error            string   `json:"error"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
