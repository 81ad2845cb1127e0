package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Course describes a course in a transport-friendly format.
type Course struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Position  int    `json:"position"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Group describes a named section inside a course.
type Group struct {
	ID        int64  `json:"id"`
	CourseID  int64  `json:"courseId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Position  int    `json:"position"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Lecture describes a lecture with its review state.
type Lecture struct {
	ID            int64          `json:"id"`
	CourseID      int64          `json:"courseId"`
	GroupID       *int64         `json:"groupId,omitempty"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Position      int            `json:"position"`
	DeckPath      string         `json:"deckPath,omitempty"`
	DeckPages     int            `json:"deckPages,omitempty"`
	Status        string         `json:"status"`
	Progress      ReviewProgress `json:"progress"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	LastHeartbeat string         `json:"lastHeartbeat,omitempty"`
	CreatedAt     string         `json:"createdAt,omitempty"`
	UpdatedAt     string         `json:"updatedAt,omitempty"`
}

// ReviewProgress captures settled-card progress for a lecture's review run.
type ReviewProgress struct {
	Done    int    `json:"done"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Note describes a classified note line.
type Note struct {
	ID        int64  `json:"id"`
	LectureID int64  `json:"lectureId"`
	Position  int    `json:"position"`
	Slide     int    `json:"slide"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ReviewCard pairs a note snapshot with its provider response.
type ReviewCard struct {
	ID           int64  `json:"id"`
	LectureID    int64  `json:"lectureId"`
	NoteID       int64  `json:"noteId"`
	Position     int    `json:"position"`
	Slide        int    `json:"slide"`
	Kind         string `json:"kind"`
	Label        string `json:"label"`
	NoteText     string `json:"noteText"`
	Response     string `json:"response,omitempty"`
	Failed       bool   `json:"failed"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Model        string `json:"model,omitempty"`
	InputTokens  int64  `json:"inputTokens,omitempty"`
	OutputTokens int64  `json:"outputTokens,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Exchange is one follow-up question and answer on a card.
type Exchange struct {
	ID        int64  `json:"id"`
	CardID    int64  `json:"cardId"`
	Position  int    `json:"position"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// LectureDetail bundles a lecture with its notes for show views.
type LectureDetail struct {
	Lecture Lecture `json:"lecture"`
	Notes   []Note  `json:"notes"`
}

// CardDetail bundles a card with its follow-up thread.
type CardDetail struct {
	Card      ReviewCard `json:"card"`
	Exchanges []Exchange `json:"exchanges"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running      bool           `json:"running"`
	LectureStats map[string]int `json:"lectureStats"`
	LastError    string         `json:"lastError,omitempty"`
	LastLecture  *Lecture       `json:"lastLecture,omitempty"`
	StageHealth  []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// LibraryHealth reports lecture counts per lifecycle state.
type LibraryHealth struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Finalized int `json:"finalized"`
	Reviewing int `json:"reviewing"`
	Reviewed  int `json:"reviewed"`
}

// DatabaseHealth carries library database diagnostics for health views.
type DatabaseHealth struct {
	DBPath           string   `json:"dbPath"`
	DatabaseExists   bool     `json:"databaseExists"`
	DatabaseReadable bool     `json:"databaseReadable"`
	SchemaVersion    string   `json:"schemaVersion,omitempty"`
	TableExists      bool     `json:"tableExists"`
	ColumnsPresent   []string `json:"columnsPresent,omitempty"`
	MissingColumns   []string `json:"missingColumns,omitempty"`
	IntegrityCheck   bool     `json:"integrityCheck"`
	TotalLectures    int      `json:"totalLectures"`
	Error            string   `json:"error,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	LibraryDB    string         `json:"libraryDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	LogPath      string         `json:"logPath,omitempty"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// CourseListResponse wraps a collection of courses for API responses.
type CourseListResponse struct {
	Courses []Course `json:"courses"`
}

// LectureListResponse wraps a collection of lectures for API responses.
type LectureListResponse struct {
	Lectures []Lecture `json:"lectures"`
}
