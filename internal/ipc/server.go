package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"gloss/internal/api"
	"gloss/internal/daemon"
	"gloss/internal/logging"
	"gloss/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, api: d.API(), logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Gloss", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun gloss stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	api    *api.Service
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LibraryDBPath = status.LibraryDB
	resp.LockPath = status.LockFilePath
	resp.LogPath = status.LogPath
	resp.LectureStats = status.Workflow.LectureStats
	resp.LastError = status.Workflow.LastError
	resp.LastLecture = status.Workflow.LastLecture
	resp.StageHealth = status.Workflow.StageHealth
	return nil
}

func (s *service) CourseAdd(req CourseAddRequest, resp *CourseAddResponse) error {
	course, err := s.api.CourseAdd(s.ctx, req.Name)
	if err != nil {
		return err
	}
	resp.Course = *course
	s.log().Debug("course created", logging.Int64("course_id", course.ID))
	return nil
}

func (s *service) CourseList(_ CourseListRequest, resp *CourseListResponse) error {
	courses, err := s.api.CourseList(s.ctx)
	if err != nil {
		return err
	}
	resp.Courses = courses
	return nil
}

func (s *service) CourseRename(req CourseRenameRequest, resp *CourseRenameResponse) error {
	course, err := s.api.CourseRename(s.ctx, req.Ref, req.Name)
	if err != nil {
		return err
	}
	resp.Course = *course
	return nil
}

func (s *service) CourseReorder(req CourseReorderRequest, resp *CourseReorderResponse) error {
	courses, err := s.api.CourseReorder(s.ctx, req.Ref, req.Position)
	if err != nil {
		return err
	}
	resp.Courses = courses
	return nil
}

func (s *service) CourseRemove(req CourseRemoveRequest, resp *CourseRemoveResponse) error {
	if err := s.api.CourseRemove(s.ctx, req.Ref); err != nil {
		return err
	}
	resp.Removed = true
	s.log().Info("course removed via IPC",
		logging.String(logging.FieldEventType, "course_remove"),
		logging.String("ref", req.Ref))
	return nil
}

func (s *service) GroupAdd(req GroupAddRequest, resp *GroupAddResponse) error {
	group, err := s.api.GroupAdd(s.ctx, req.Course, req.Name)
	if err != nil {
		return err
	}
	resp.Group = *group
	return nil
}

func (s *service) GroupList(req GroupListRequest, resp *GroupListResponse) error {
	groups, err := s.api.GroupList(s.ctx, req.Course)
	if err != nil {
		return err
	}
	resp.Groups = groups
	return nil
}

func (s *service) GroupRename(req GroupRenameRequest, resp *GroupRenameResponse) error {
	group, err := s.api.GroupRename(s.ctx, req.Course, req.Group, req.Name)
	if err != nil {
		return err
	}
	resp.Group = *group
	return nil
}

func (s *service) GroupRemove(req GroupRemoveRequest, resp *GroupRemoveResponse) error {
	if err := s.api.GroupRemove(s.ctx, req.Course, req.Group); err != nil {
		return err
	}
	resp.Removed = true
	s.log().Info("group removed via IPC",
		logging.String(logging.FieldEventType, "group_remove"),
		logging.String("ref", req.Group))
	return nil
}

func (s *service) LectureAdd(req LectureAddRequest, resp *LectureAddResponse) error {
	lecture, err := s.api.LectureAdd(s.ctx, req.Course, req.Title, req.Group, req.Deck)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	s.log().Debug("lecture created", logging.Int64(logging.FieldLectureID, lecture.ID))
	return nil
}

func (s *service) LectureList(req LectureListRequest, resp *LectureListResponse) error {
	lectures, err := s.api.LectureList(s.ctx, req.Course)
	if err != nil {
		return err
	}
	resp.Lectures = lectures
	return nil
}

func (s *service) LectureShow(req LectureShowRequest, resp *LectureShowResponse) error {
	detail, err := s.api.LectureShow(s.ctx, req.Ref)
	if err != nil {
		return err
	}
	resp.Lecture = detail.Lecture
	resp.Notes = detail.Notes
	return nil
}

func (s *service) LectureRename(req LectureRenameRequest, resp *LectureRenameResponse) error {
	lecture, err := s.api.LectureRename(s.ctx, req.Ref, req.Title)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	return nil
}

func (s *service) LectureMove(req LectureMoveRequest, resp *LectureMoveResponse) error {
	lecture, err := s.api.LectureMove(s.ctx, req.Ref, req.Group)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	return nil
}

func (s *service) LectureAttachDeck(req LectureAttachDeckRequest, resp *LectureAttachDeckResponse) error {
	lecture, err := s.api.LectureAttachDeck(s.ctx, req.Ref, req.Deck)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	s.log().Debug("deck attached", logging.Int64(logging.FieldLectureID, lecture.ID))
	return nil
}

func (s *service) LectureRemove(req LectureRemoveRequest, resp *LectureRemoveResponse) error {
	if err := s.api.LectureRemove(s.ctx, req.Ref); err != nil {
		return err
	}
	resp.Removed = true
	s.log().Info("lecture removed via IPC",
		logging.String(logging.FieldEventType, "lecture_remove"),
		logging.String("ref", req.Ref))
	return nil
}

func (s *service) NoteAdd(req NoteAddRequest, resp *NoteAddResponse) error {
	notes, err := s.api.NoteAdd(s.ctx, req.Lecture, req.Slide, req.Text)
	if err != nil {
		return err
	}
	resp.Notes = notes
	return nil
}

func (s *service) NoteList(req NoteListRequest, resp *NoteListResponse) error {
	notes, err := s.api.NoteList(s.ctx, req.Lecture)
	if err != nil {
		return err
	}
	resp.Notes = notes
	return nil
}

func (s *service) NoteEdit(req NoteEditRequest, resp *NoteEditResponse) error {
	note, err := s.api.NoteEdit(s.ctx, req.ID, req.Slide, req.Text)
	if err != nil {
		return err
	}
	resp.Note = *note
	return nil
}

func (s *service) NoteRemove(req NoteRemoveRequest, resp *NoteRemoveResponse) error {
	if err := s.api.NoteRemove(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) Finalize(req FinalizeRequest, resp *FinalizeResponse) error {
	lecture, err := s.api.Finalize(s.ctx, req.Ref)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	s.log().Info("lecture finalized via IPC",
		logging.String(logging.FieldEventType, "lecture_finalized"),
		logging.Int64(logging.FieldLectureID, lecture.ID))
	return nil
}

func (s *service) ReviewStart(req ReviewStartRequest, resp *ReviewStartResponse) error {
	lecture, err := s.api.ReviewStart(s.ctx, req.Ref)
	if err != nil {
		return err
	}
	resp.Lecture = *lecture
	s.log().Info("review queued via IPC",
		logging.String(logging.FieldEventType, "review_queued"),
		logging.Int64(logging.FieldLectureID, lecture.ID))
	return nil
}

func (s *service) Cards(req CardsRequest, resp *CardsResponse) error {
	cards, err := s.api.Cards(s.ctx, req.Lecture)
	if err != nil {
		return err
	}
	resp.Cards = cards
	return nil
}

func (s *service) Card(req CardRequest, resp *CardResponse) error {
	detail, err := s.api.Card(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Card = detail.Card
	resp.Exchanges = detail.Exchanges
	return nil
}

func (s *service) FollowUp(req FollowUpRequest, resp *FollowUpResponse) error {
	exchange, err := s.api.FollowUp(s.ctx, req.ID, req.Question)
	if err != nil {
		return err
	}
	resp.Exchange = *exchange
	return nil
}

func (s *service) Regenerate(req RegenerateRequest, resp *RegenerateResponse) error {
	card, err := s.api.Regenerate(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Card = *card
	s.log().Info("card regenerated via IPC",
		logging.String(logging.FieldEventType, "card_regenerate"),
		logging.Int64("card_id", card.ID))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) Health(_ HealthRequest, resp *HealthResponse) error {
	health, err := s.api.Health(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Draft = health.Draft
	resp.Finalized = health.Finalized
	resp.Reviewing = health.Reviewing
	resp.Reviewed = health.Reviewed
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.api.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalLectures = health.TotalLectures
	resp.Error = health.Error
	if err != nil {
		return err
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.api.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
