package main

import (
	"context"

	"gloss/internal/api"
	"gloss/internal/ipc"
)

// glossAPI is the library surface shared by the IPC and direct-store paths.
// Commands code against this interface so their output logic stays identical
// whether or not a daemon is running.
type glossAPI interface {
	CourseAdd(ctx context.Context, name string) (*api.Course, error)
	CourseList(ctx context.Context) ([]api.Course, error)
	CourseRename(ctx context.Context, ref, name string) (*api.Course, error)
	CourseReorder(ctx context.Context, ref string, position int) ([]api.Course, error)
	CourseRemove(ctx context.Context, ref string) error
	GroupAdd(ctx context.Context, course, name string) (*api.Group, error)
	GroupList(ctx context.Context, course string) ([]api.Group, error)
	GroupRename(ctx context.Context, course, group, name string) (*api.Group, error)
	GroupRemove(ctx context.Context, course, group string) error
	LectureAdd(ctx context.Context, course, title, group, deck string) (*api.Lecture, error)
	LectureList(ctx context.Context, course string) ([]api.Lecture, error)
	LectureShow(ctx context.Context, ref string) (*api.LectureDetail, error)
	LectureRename(ctx context.Context, ref, title string) (*api.Lecture, error)
	LectureMove(ctx context.Context, ref, group string) (*api.Lecture, error)
	LectureAttachDeck(ctx context.Context, ref, deck string) (*api.Lecture, error)
	LectureRemove(ctx context.Context, ref string) error
	NoteAdd(ctx context.Context, lecture string, slide int, text string) ([]api.Note, error)
	NoteList(ctx context.Context, lecture string) ([]api.Note, error)
	NoteEdit(ctx context.Context, id int64, slide int, text string) (*api.Note, error)
	NoteRemove(ctx context.Context, id int64) error
	Finalize(ctx context.Context, ref string) (*api.Lecture, error)
	ReviewStart(ctx context.Context, ref string) (*api.Lecture, error)
	Cards(ctx context.Context, lecture string) ([]api.ReviewCard, error)
	Card(ctx context.Context, id int64) (*api.CardDetail, error)
	FollowUp(ctx context.Context, id int64, question string) (*api.Exchange, error)
	Regenerate(ctx context.Context, id int64) (*api.ReviewCard, error)
	Health(ctx context.Context) (api.LibraryHealth, error)
	DatabaseHealth(ctx context.Context) (api.DatabaseHealth, error)
	TestNotification(ctx context.Context) (bool, string, error)
}

// reviewRunner is implemented by the direct-store path only. When the daemon
// is down, the review command type-asserts for it and runs the review in
// process instead of leaving the lecture queued.
type reviewRunner interface {
	RunQueuedReview(ctx context.Context, ref string) (*api.Lecture, error)
}

// --- IPC adapter ---

type ipcFacade struct {
	client *ipc.Client
}

func (f *ipcFacade) CourseAdd(_ context.Context, name string) (*api.Course, error) {
	resp, err := f.client.CourseAdd(name)
	if err != nil {
		return nil, err
	}
	return &resp.Course, nil
}

func (f *ipcFacade) CourseList(_ context.Context) ([]api.Course, error) {
	resp, err := f.client.CourseList()
	if err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (f *ipcFacade) CourseRename(_ context.Context, ref, name string) (*api.Course, error) {
	resp, err := f.client.CourseRename(ref, name)
	if err != nil {
		return nil, err
	}
	return &resp.Course, nil
}

func (f *ipcFacade) CourseReorder(_ context.Context, ref string, position int) ([]api.Course, error) {
	resp, err := f.client.CourseReorder(ref, position)
	if err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

func (f *ipcFacade) CourseRemove(_ context.Context, ref string) error {
	_, err := f.client.CourseRemove(ref)
	return err
}

func (f *ipcFacade) GroupAdd(_ context.Context, course, name string) (*api.Group, error) {
	resp, err := f.client.GroupAdd(course, name)
	if err != nil {
		return nil, err
	}
	return &resp.Group, nil
}

func (f *ipcFacade) GroupList(_ context.Context, course string) ([]api.Group, error) {
	resp, err := f.client.GroupList(course)
	if err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (f *ipcFacade) GroupRename(_ context.Context, course, group, name string) (*api.Group, error) {
	resp, err := f.client.GroupRename(course, group, name)
	if err != nil {
		return nil, err
	}
	return &resp.Group, nil
}

func (f *ipcFacade) GroupRemove(_ context.Context, course, group string) error {
	_, err := f.client.GroupRemove(course, group)
	return err
}

func (f *ipcFacade) LectureAdd(_ context.Context, course, title, group, deck string) (*api.Lecture, error) {
	resp, err := f.client.LectureAdd(course, title, group, deck)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) LectureList(_ context.Context, course string) ([]api.Lecture, error) {
	resp, err := f.client.LectureList(course)
	if err != nil {
		return nil, err
	}
	return resp.Lectures, nil
}

func (f *ipcFacade) LectureShow(_ context.Context, ref string) (*api.LectureDetail, error) {
	resp, err := f.client.LectureShow(ref)
	if err != nil {
		return nil, err
	}
	return &api.LectureDetail{Lecture: resp.Lecture, Notes: resp.Notes}, nil
}

func (f *ipcFacade) LectureRename(_ context.Context, ref, title string) (*api.Lecture, error) {
	resp, err := f.client.LectureRename(ref, title)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) LectureMove(_ context.Context, ref, group string) (*api.Lecture, error) {
	resp, err := f.client.LectureMove(ref, group)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) LectureAttachDeck(_ context.Context, ref, deck string) (*api.Lecture, error) {
	resp, err := f.client.LectureAttachDeck(ref, deck)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) LectureRemove(_ context.Context, ref string) error {
	_, err := f.client.LectureRemove(ref)
	return err
}

func (f *ipcFacade) NoteAdd(_ context.Context, lecture string, slide int, text string) ([]api.Note, error) {
	resp, err := f.client.NoteAdd(lecture, slide, text)
	if err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (f *ipcFacade) NoteList(_ context.Context, lecture string) ([]api.Note, error) {
	resp, err := f.client.NoteList(lecture)
	if err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (f *ipcFacade) NoteEdit(_ context.Context, id int64, slide int, text string) (*api.Note, error) {
	resp, err := f.client.NoteEdit(id, slide, text)
	if err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (f *ipcFacade) NoteRemove(_ context.Context, id int64) error {
	_, err := f.client.NoteRemove(id)
	return err
}

func (f *ipcFacade) Finalize(_ context.Context, ref string) (*api.Lecture, error) {
	resp, err := f.client.Finalize(ref)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) ReviewStart(_ context.Context, ref string) (*api.Lecture, error) {
	resp, err := f.client.ReviewStart(ref)
	if err != nil {
		return nil, err
	}
	return &resp.Lecture, nil
}

func (f *ipcFacade) Cards(_ context.Context, lecture string) ([]api.ReviewCard, error) {
	resp, err := f.client.Cards(lecture)
	if err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func (f *ipcFacade) Card(_ context.Context, id int64) (*api.CardDetail, error) {
	resp, err := f.client.Card(id)
	if err != nil {
		return nil, err
	}
	return &api.CardDetail{Card: resp.Card, Exchanges: resp.Exchanges}, nil
}

func (f *ipcFacade) FollowUp(_ context.Context, id int64, question string) (*api.Exchange, error) {
	resp, err := f.client.FollowUp(id, question)
	if err != nil {
		return nil, err
	}
	return &resp.Exchange, nil
}

func (f *ipcFacade) Regenerate(_ context.Context, id int64) (*api.ReviewCard, error) {
	resp, err := f.client.Regenerate(id)
	if err != nil {
		return nil, err
	}
	return &resp.Card, nil
}

func (f *ipcFacade) Health(_ context.Context) (api.LibraryHealth, error) {
	resp, err := f.client.Health()
	if err != nil {
		return api.LibraryHealth{}, err
	}
	return api.LibraryHealth{
		Total:     resp.Total,
		Draft:     resp.Draft,
		Finalized: resp.Finalized,
		Reviewing: resp.Reviewing,
		Reviewed:  resp.Reviewed,
	}, nil
}

func (f *ipcFacade) DatabaseHealth(_ context.Context) (api.DatabaseHealth, error) {
	resp, err := f.client.DatabaseHealth()
	if err != nil {
		return api.DatabaseHealth{}, err
	}
	return api.DatabaseHealth{
		DBPath:           resp.DBPath,
		DatabaseExists:   resp.DatabaseExists,
		DatabaseReadable: resp.DatabaseReadable,
		SchemaVersion:    resp.SchemaVersion,
		TableExists:      resp.TableExists,
		ColumnsPresent:   resp.ColumnsPresent,
		MissingColumns:   resp.MissingColumns,
		IntegrityCheck:   resp.IntegrityCheck,
		TotalLectures:    resp.TotalLectures,
		Error:            resp.Error,
	}, nil
}

func (f *ipcFacade) TestNotification(_ context.Context) (bool, string, error) {
	resp, err := f.client.TestNotification()
	if err != nil {
		return false, "", err
	}
	return resp.Sent, resp.Message, nil
}

// --- Direct-store adapter ---

type localFacade struct {
	service *api.Service
}

func (f *localFacade) CourseAdd(ctx context.Context, name string) (*api.Course, error) {
	return f.service.CourseAdd(ctx, name)
}

func (f *localFacade) CourseList(ctx context.Context) ([]api.Course, error) {
	return f.service.CourseList(ctx)
}

func (f *localFacade) CourseRename(ctx context.Context, ref, name string) (*api.Course, error) {
	return f.service.CourseRename(ctx, ref, name)
}

func (f *localFacade) CourseReorder(ctx context.Context, ref string, position int) ([]api.Course, error) {
	return f.service.CourseReorder(ctx, ref, position)
}

func (f *localFacade) CourseRemove(ctx context.Context, ref string) error {
	return f.service.CourseRemove(ctx, ref)
}

func (f *localFacade) GroupAdd(ctx context.Context, course, name string) (*api.Group, error) {
	return f.service.GroupAdd(ctx, course, name)
}

func (f *localFacade) GroupList(ctx context.Context, course string) ([]api.Group, error) {
	return f.service.GroupList(ctx, course)
}

func (f *localFacade) GroupRename(ctx context.Context, course, group, name string) (*api.Group, error) {
	return f.service.GroupRename(ctx, course, group, name)
}

func (f *localFacade) GroupRemove(ctx context.Context, course, group string) error {
	return f.service.GroupRemove(ctx, course, group)
}

func (f *localFacade) LectureAdd(ctx context.Context, course, title, group, deck string) (*api.Lecture, error) {
	return f.service.LectureAdd(ctx, course, title, group, deck)
}

func (f *localFacade) LectureList(ctx context.Context, course string) ([]api.Lecture, error) {
	return f.service.LectureList(ctx, course)
}

func (f *localFacade) LectureShow(ctx context.Context, ref string) (*api.LectureDetail, error) {
	return f.service.LectureShow(ctx, ref)
}

func (f *localFacade) LectureRename(ctx context.Context, ref, title string) (*api.Lecture, error) {
	return f.service.LectureRename(ctx, ref, title)
}

func (f *localFacade) LectureMove(ctx context.Context, ref, group string) (*api.Lecture, error) {
	return f.service.LectureMove(ctx, ref, group)
}

func (f *localFacade) LectureAttachDeck(ctx context.Context, ref, deck string) (*api.Lecture, error) {
	return f.service.LectureAttachDeck(ctx, ref, deck)
}

func (f *localFacade) LectureRemove(ctx context.Context, ref string) error {
	return f.service.LectureRemove(ctx, ref)
}

func (f *localFacade) NoteAdd(ctx context.Context, lecture string, slide int, text string) ([]api.Note, error) {
	return f.service.NoteAdd(ctx, lecture, slide, text)
}

func (f *localFacade) NoteList(ctx context.Context, lecture string) ([]api.Note, error) {
	return f.service.NoteList(ctx, lecture)
}

func (f *localFacade) NoteEdit(ctx context.Context, id int64, slide int, text string) (*api.Note, error) {
	return f.service.NoteEdit(ctx, id, slide, text)
}

func (f *localFacade) NoteRemove(ctx context.Context, id int64) error {
	return f.service.NoteRemove(ctx, id)
}

func (f *localFacade) Finalize(ctx context.Context, ref string) (*api.Lecture, error) {
	return f.service.Finalize(ctx, ref)
}

func (f *localFacade) ReviewStart(ctx context.Context, ref string) (*api.Lecture, error) {
	return f.service.ReviewStart(ctx, ref)
}

func (f *localFacade) RunQueuedReview(ctx context.Context, ref string) (*api.Lecture, error) {
	return f.service.RunQueuedReview(ctx, ref)
}

func (f *localFacade) Cards(ctx context.Context, lecture string) ([]api.ReviewCard, error) {
	return f.service.Cards(ctx, lecture)
}

func (f *localFacade) Card(ctx context.Context, id int64) (*api.CardDetail, error) {
	return f.service.Card(ctx, id)
}

func (f *localFacade) FollowUp(ctx context.Context, id int64, question string) (*api.Exchange, error) {
	return f.service.FollowUp(ctx, id, question)
}

func (f *localFacade) Regenerate(ctx context.Context, id int64) (*api.ReviewCard, error) {
	return f.service.Regenerate(ctx, id)
}

func (f *localFacade) Health(ctx context.Context) (api.LibraryHealth, error) {
	return f.service.Health(ctx)
}

func (f *localFacade) DatabaseHealth(ctx context.Context) (api.DatabaseHealth, error) {
	return f.service.DatabaseHealth(ctx)
}

func (f *localFacade) TestNotification(ctx context.Context) (bool, string, error) {
	return f.service.TestNotification(ctx)
}
