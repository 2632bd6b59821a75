package taskapimodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"task-approval-backend/models"
	usersapimodels "task-approval-backend/models/api/users"
	dbmodels "task-approval-backend/models/db"
)

type NodeView struct {
	ID          string                    `json:"id"`
	FromUser    *usersapimodels.UserShort `json:"from_user"`
	ToUser      *usersapimodels.UserShort `json:"to_user"`
	Comment     string                    `json:"comment"`
	ForwardedAt time.Time                 `json:"forwarded_at"`
}

func NodeConvert(rec dbmodels.TaskNode) NodeView {
	return NodeView{
		ID:          rec.ID,
		FromUser:    userShortOrID(rec.FromUser, rec.FromUserID),
		ToUser:      userShortOrID(rec.ToUser, rec.ToUserID),
		Comment:     rec.Comment,
		ForwardedAt: rec.ForwardedAt,
	}
}

// LedgerView is the forwarding ledger together with the replayed hand-off path.
type LedgerView struct {
	Nodes []NodeView `json:"nodes"`
	Path  []string   `json:"path"` // user ids in hand-off order
}

type CommentData struct {
	Content string `json:"content"`
}

const maxCommentLength = 5000

func (r *CommentData) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return errors.Wrap(models.ErrValidation, "comment is empty")
	}
	if len([]rune(r.Content)) > maxCommentLength {
		return errors.Wrap(models.ErrValidation, "comment is too long")
	}
	return nil
}

type CommentView struct {
	ID        string                    `json:"id"`
	User      *usersapimodels.UserShort `json:"user"`
	Content   string                    `json:"content"`
	CreatedAt time.Time                 `json:"created_at"`
}

func CommentConvert(rec dbmodels.Comment) CommentView {
	return CommentView{
		ID:        rec.ID,
		User:      userShortOrID(rec.User, rec.UserID),
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
	}
}

type AttachmentView struct {
	ID        string                    `json:"id"`
	User      *usersapimodels.UserShort `json:"user"`
	Filename  string                    `json:"filename"`
	FileSize  int64                     `json:"file_size"`
	MimeType  string                    `json:"mime_type"`
	CreatedAt time.Time                 `json:"created_at"`
}

func AttachmentConvert(rec dbmodels.Attachment) AttachmentView {
	return AttachmentView{
		ID:        rec.ID,
		User:      userShortOrID(rec.User, rec.UserID),
		Filename:  rec.Filename,
		FileSize:  rec.FileSize,
		MimeType:  rec.MimeType,
		CreatedAt: rec.CreatedAt,
	}
}

type HistoryView struct {
	ID         string                    `json:"id"`
	Actor      *usersapimodels.UserShort `json:"actor"`
	Event      models.TaskEvent          `json:"event"`
	FromStatus models.TaskStatus         `json:"from_status"`
	ToStatus   models.TaskStatus         `json:"to_status"`
	Comment    string                    `json:"comment"`
	Changes    dbmodels.EntityChanges    `json:"changes"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func HistoryConvert(rec dbmodels.TaskHistory) HistoryView {
	return HistoryView{
		ID:         rec.ID,
		Actor:      userShortOrID(rec.Actor, rec.ActorID),
		Event:      rec.Event,
		FromStatus: rec.FromStatus,
		ToStatus:   rec.ToStatus,
		Comment:    rec.Comment,
		Changes:    rec.Changes,
		CreatedAt:  rec.CreatedAt,
	}
}

func userShortOrID(rec *dbmodels.User, id string) *usersapimodels.UserShort {
	if rec != nil {
		return usersapimodels.UserShortConvert(rec)
	}
	if id == "" {
		return nil
	}
	return &usersapimodels.UserShort{ID: id}
}
