package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gloss/internal/api"
	"gloss/internal/logging"
	"gloss/internal/testsupport"
)

func newHandlerService(t *testing.T) *api.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	t.Cleanup(func() {
		store.Close()
	})
	return api.NewServiceWith(cfg, store, logging.NewNop(), nil, nil)
}

func TestAPIServerHandleCourses(t *testing.T) {
	svc := newHandlerService(t)
	if _, err := svc.CourseAdd(context.Background(), "Operating Systems"); err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	srv := &apiServer{svc: svc, logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	w := httptest.NewRecorder()
	srv.handleCourses(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.CourseListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(resp.Courses))
	}
	if resp.Courses[0].Name != "Operating Systems" {
		t.Fatalf("unexpected course name: %q", resp.Courses[0].Name)
	}
}

func TestAPIServerHandleLectures(t *testing.T) {
	svc := newHandlerService(t)
	ctx := context.Background()
	course, err := svc.CourseAdd(ctx, "Operating Systems")
	if err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	if _, err := svc.LectureAdd(ctx, course.Slug, "Scheduling", "", ""); err != nil {
		t.Fatalf("LectureAdd: %v", err)
	}
	srv := &apiServer{svc: svc, logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/api/lectures?course="+course.Slug, nil)
	w := httptest.NewRecorder()
	srv.handleLectures(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.LectureListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Lectures) != 1 || resp.Lectures[0].Title != "Scheduling" {
		t.Fatalf("unexpected lectures: %+v", resp.Lectures)
	}
}

func TestAPIServerHandleLecturesRequiresCourse(t *testing.T) {
	srv := &apiServer{svc: newHandlerService(t), logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/api/lectures", nil)
	w := httptest.NewRecorder()
	srv.handleLectures(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "course query parameter is required") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAPIServerHandleLectureDetail(t *testing.T) {
	svc := newHandlerService(t)
	ctx := context.Background()
	course, err := svc.CourseAdd(ctx, "Operating Systems")
	if err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	lecture, err := svc.LectureAdd(ctx, course.Slug, "Scheduling", "", "")
	if err != nil {
		t.Fatalf("LectureAdd: %v", err)
	}
	srv := &apiServer{svc: svc, logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/lectures/%d", lecture.ID), nil)
	w := httptest.NewRecorder()
	srv.handleLectureDetail(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.LectureDetail
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Lecture.Title != "Scheduling" {
		t.Fatalf("unexpected lecture title: %q", resp.Lecture.Title)
	}
}

func TestAPIServerMapsNotFound(t *testing.T) {
	srv := &apiServer{svc: newHandlerService(t), logger: logging.NewNop()}

	for _, path := range []string{"/api/lectures/999", "/api/cards/999"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		switch {
		case strings.HasPrefix(path, "/api/lectures/"):
			srv.handleLectureDetail(w, req)
		default:
			srv.handleCardDetail(w, req)
		}
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestAPIServerRejectsBadIDs(t *testing.T) {
	srv := &apiServer{svc: newHandlerService(t), logger: logging.NewNop()}

	for _, path := range []string{"/api/lectures/abc", "/api/lectures/1/notes", "/api/lectures/-4"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.handleLectureDetail(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}

	t.Run("no token configured passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		authMiddleware("", next)(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected passthrough, got %d", w.Code)
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		authMiddleware("secret", next)(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		authMiddleware("secret", next)(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("matching token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Authorization", "Bearer secret")
		w := httptest.NewRecorder()
		authMiddleware("secret", next)(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})
}
