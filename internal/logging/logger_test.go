package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gloss/internal/config"
	"gloss/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func ageFile(t *testing.T, path string, days int) {
	t.Helper()
	past := time.Now().AddDate(0, 0, -days)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("age file: %v", err)
	}
}

func TestNewFromConfigWritesSharedLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon started", logging.String("socket", "/tmp/gloss.sock"))

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, "gloss.log"))
	if !strings.Contains(content, "daemon started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
	if !strings.Contains(content, "socket=/tmp/gloss.sock") {
		t.Fatalf("expected attr in log file, got %q", content)
	}
}

func TestConsoleOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("review dispatched")

	content := readLog(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("info-level console output should omit caller, got %q", content)
	}
	if !strings.Contains(content, "INFO review dispatched") {
		t.Fatalf("unexpected console line %q", content)
	}
}

func TestConsoleIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("probing provider")

	content := readLog(t, logPath)
	if !strings.Contains(content, ".go:") {
		t.Fatalf("debug-level console output should include caller, got %q", content)
	}
}

func TestConsoleRendersComponentPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-component.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	component := logging.NewComponentLogger(logger, "workflow")
	component.Info("stage started", logging.Int64("lecture_id", 7))

	content := readLog(t, logPath)
	if !strings.Contains(content, "workflow: stage started") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "lecture_id=7") {
		t.Fatalf("expected lecture_id attr, got %q", content)
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should not render as key=value, got %q", content)
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-quotes.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("lecture created", logging.String("title", "Linear Algebra II"))

	content := readLog(t, logPath)
	if !strings.Contains(content, `title="Linear Algebra II"`) {
		t.Fatalf("expected quoted attr value, got %q", content)
	}
}

func TestConsoleFlattensGroups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-groups.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("usage recorded", logging.Group("tokens",
		logging.Int("input", 1200),
		logging.Int("output", 310),
	))

	content := readLog(t, logPath)
	if !strings.Contains(content, "tokens.input=1200") {
		t.Fatalf("expected dotted group key, got %q", content)
	}
	if !strings.Contains(content, "tokens.output=310") {
		t.Fatalf("expected dotted group key, got %q", content)
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.json")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("provider slow", logging.Duration("elapsed", 0))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &entry); err != nil {
		t.Fatalf("unmarshal json log line: %v", err)
	}
	if entry["msg"] != "provider slow" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["level"] != "warn" {
		t.Fatalf("level = %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextStampsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithLectureID(context.Background(), 42)
	ctx = logging.WithStage(ctx, "review")
	ctx = logging.WithRequestID(ctx, "req-1")

	logging.WithContext(ctx, logger).Info("card generated")

	content := readLog(t, logPath)
	for _, want := range []string{"lecture_id=42", "stage=review", "correlation_id=req-1"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in output, got %q", want, content)
		}
	}
}

func TestErrorWithContextAddsHint(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "hint.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.ErrorWithContext(context.Background(), logger, "provider request failed",
		logging.Error(errors.New("connection refused")))

	content := readLog(t, logPath)
	if !strings.Contains(content, "error_hint=") {
		t.Fatalf("expected default error hint, got %q", content)
	}
	if !strings.Contains(content, "event_type=error") {
		t.Fatalf("expected default event type, got %q", content)
	}
}

func TestCleanupOldLogsPrunesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "gloss-20200101T000000.000Z.log")
	keepPath := filepath.Join(dir, "gloss.log")
	for _, path := range []string{oldPath, keepPath} {
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	ageFile(t, oldPath, 30)

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "gloss-*.log",
		Exclude: []string{keepPath},
	})

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be pruned, stat err = %v", oldPath, err)
	}
	if _, err := os.Stat(keepPath); err != nil {
		t.Fatalf("expected %s to survive, stat err = %v", keepPath, err)
	}
}

func TestCleanupOldLogsZeroRetentionDisables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gloss-20200101T000000.000Z.log")
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ageFile(t, path, 365)

	logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir, Pattern: "gloss-*.log"})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to survive with retention disabled, stat err = %v", err)
	}
}
