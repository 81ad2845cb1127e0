package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Gloss.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Gloss.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Gloss.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CourseAdd creates a course.
func (c *Client) CourseAdd(name string) (*CourseAddResponse, error) {
	var resp CourseAddResponse
	if err := c.client.Call("Gloss.CourseAdd", CourseAddRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CourseList returns all courses in display order.
func (c *Client) CourseList() (*CourseListResponse, error) {
	var resp CourseListResponse
	if err := c.client.Call("Gloss.CourseList", CourseListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CourseRename renames a course.
func (c *Client) CourseRename(ref, name string) (*CourseRenameResponse, error) {
	var resp CourseRenameResponse
	if err := c.client.Call("Gloss.CourseRename", CourseRenameRequest{Ref: ref, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CourseReorder moves a course to a new display position.
func (c *Client) CourseReorder(ref string, position int) (*CourseReorderResponse, error) {
	var resp CourseReorderResponse
	if err := c.client.Call("Gloss.CourseReorder", CourseReorderRequest{Ref: ref, Position: position}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CourseRemove removes a course and everything under it.
func (c *Client) CourseRemove(ref string) (*CourseRemoveResponse, error) {
	var resp CourseRemoveResponse
	if err := c.client.Call("Gloss.CourseRemove", CourseRemoveRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GroupAdd creates a lecture group inside a course.
func (c *Client) GroupAdd(course, name string) (*GroupAddResponse, error) {
	var resp GroupAddResponse
	if err := c.client.Call("Gloss.GroupAdd", GroupAddRequest{Course: course, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GroupList returns a course's groups in display order.
func (c *Client) GroupList(course string) (*GroupListResponse, error) {
	var resp GroupListResponse
	if err := c.client.Call("Gloss.GroupList", GroupListRequest{Course: course}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GroupRename renames a group within a course.
func (c *Client) GroupRename(course, group, name string) (*GroupRenameResponse, error) {
	var resp GroupRenameResponse
	if err := c.client.Call("Gloss.GroupRename", GroupRenameRequest{Course: course, Group: group, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GroupRemove removes a group, its lectures fall back to ungrouped.
func (c *Client) GroupRemove(course, group string) (*GroupRemoveResponse, error) {
	var resp GroupRemoveResponse
	if err := c.client.Call("Gloss.GroupRemove", GroupRemoveRequest{Course: course, Group: group}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureAdd creates a lecture, optionally grouped and with a deck attached.
func (c *Client) LectureAdd(course, title, group, deck string) (*LectureAddResponse, error) {
	var resp LectureAddResponse
	req := LectureAddRequest{Course: course, Title: title, Group: group, Deck: deck}
	if err := c.client.Call("Gloss.LectureAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureList returns a course's lectures in display order.
func (c *Client) LectureList(course string) (*LectureListResponse, error) {
	var resp LectureListResponse
	if err := c.client.Call("Gloss.LectureList", LectureListRequest{Course: course}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureShow returns a lecture with its notes.
func (c *Client) LectureShow(ref string) (*LectureShowResponse, error) {
	var resp LectureShowResponse
	if err := c.client.Call("Gloss.LectureShow", LectureShowRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureRename retitles a lecture.
func (c *Client) LectureRename(ref, title string) (*LectureRenameResponse, error) {
	var resp LectureRenameResponse
	if err := c.client.Call("Gloss.LectureRename", LectureRenameRequest{Ref: ref, Title: title}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureMove moves a lecture into a group, or ungroups it when group is empty.
func (c *Client) LectureMove(ref, group string) (*LectureMoveResponse, error) {
	var resp LectureMoveResponse
	if err := c.client.Call("Gloss.LectureMove", LectureMoveRequest{Ref: ref, Group: group}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureAttachDeck attaches or replaces a lecture's slide deck.
func (c *Client) LectureAttachDeck(ref, deck string) (*LectureAttachDeckResponse, error) {
	var resp LectureAttachDeckResponse
	if err := c.client.Call("Gloss.LectureAttachDeck", LectureAttachDeckRequest{Ref: ref, Deck: deck}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LectureRemove removes a lecture with its notes, cards, and deck copy.
func (c *Client) LectureRemove(ref string) (*LectureRemoveResponse, error) {
	var resp LectureRemoveResponse
	if err := c.client.Call("Gloss.LectureRemove", LectureRemoveRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NoteAdd appends a note block to a draft lecture.
func (c *Client) NoteAdd(lecture string, slide int, text string) (*NoteAddResponse, error) {
	var resp NoteAddResponse
	req := NoteAddRequest{Lecture: lecture, Slide: slide, Text: text}
	if err := c.client.Call("Gloss.NoteAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NoteList returns a lecture's notes in slide order.
func (c *Client) NoteList(lecture string) (*NoteListResponse, error) {
	var resp NoteListResponse
	if err := c.client.Call("Gloss.NoteList", NoteListRequest{Lecture: lecture}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NoteEdit rewrites a note's slide number and text.
func (c *Client) NoteEdit(id int64, slide int, text string) (*NoteEditResponse, error) {
	var resp NoteEditResponse
	if err := c.client.Call("Gloss.NoteEdit", NoteEditRequest{ID: id, Slide: slide, Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NoteRemove removes a note from a draft lecture.
func (c *Client) NoteRemove(id int64) (*NoteRemoveResponse, error) {
	var resp NoteRemoveResponse
	if err := c.client.Call("Gloss.NoteRemove", NoteRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Finalize locks a draft lecture's notes for review.
func (c *Client) Finalize(ref string) (*FinalizeResponse, error) {
	var resp FinalizeResponse
	if err := c.client.Call("Gloss.Finalize", FinalizeRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReviewStart queues a finalized lecture for review by the daemon.
func (c *Client) ReviewStart(ref string) (*ReviewStartResponse, error) {
	var resp ReviewStartResponse
	if err := c.client.Call("Gloss.ReviewStart", ReviewStartRequest{Ref: ref}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cards returns a lecture's review cards in note order.
func (c *Client) Cards(lecture string) (*CardsResponse, error) {
	var resp CardsResponse
	if err := c.client.Call("Gloss.Cards", CardsRequest{Lecture: lecture}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Card returns a single card with its follow-up thread.
func (c *Client) Card(id int64) (*CardResponse, error) {
	var resp CardResponse
	if err := c.client.Call("Gloss.Card", CardRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FollowUp asks a follow-up question on a reviewed card.
func (c *Client) FollowUp(id int64, question string) (*FollowUpResponse, error) {
	var resp FollowUpResponse
	if err := c.client.Call("Gloss.FollowUp", FollowUpRequest{ID: id, Question: question}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Regenerate re-runs the review for a single card.
func (c *Client) Regenerate(id int64) (*RegenerateResponse, error) {
	var resp RegenerateResponse
	if err := c.client.Call("Gloss.Regenerate", RegenerateRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Gloss.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health returns lecture lifecycle diagnostics.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.client.Call("Gloss.Health", HealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Gloss.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Gloss.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
