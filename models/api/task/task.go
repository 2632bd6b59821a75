package taskapimodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/models"
	apimodels "task-approval-backend/models/api"
	usersapimodels "task-approval-backend/models/api/users"
	dbmodels "task-approval-backend/models/db"
)

const maxTitleLength = 255

type TaskData struct {
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	AssigneeType       models.AssigneeType `json:"assignee_type"` // user (default) or role
	AssigneeID         string              `json:"assignee_id"`   // for assignee_type=user, the creator when empty
	AssigneeRole       string              `json:"assignee_role"` // for assignee_type=role
	DepartmentID       string              `json:"department_id"` // the creator's department when empty
	Amount             *float64            `json:"amount"`
	DueDate            *time.Time          `json:"due_date"`
	ApprovalType       models.ApprovalType `json:"approval_type"`        // 360, specific, predefined, none
	ApprovalTemplateID string              `json:"approval_template_id"` // for predefined
	ApproverIDs        []string            `json:"approver_ids"`         // for specific, in stage order
	PeerIDs            []string            `json:"peer_ids"`             // for 360, department peers when empty
}

func (r *TaskData) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return errors.Wrap(models.ErrValidation, "title is empty")
	}
	if len([]rune(r.Title)) > maxTitleLength {
		return errors.Wrap(models.ErrValidation, "title is too long")
	}
	if r.ApprovalType == "" {
		r.ApprovalType = models.ApprovalTypeNone
	}
	if !r.ApprovalType.IsValid() {
		return errors.Wrapf(models.ErrValidation, "unknown approval type %q", r.ApprovalType)
	}
	if r.ApprovalType == models.ApprovalTypePredefined && strings.TrimSpace(r.ApprovalTemplateID) == "" {
		return errors.Wrap(models.ErrTemplateNotFound, "approval template is not set")
	}
	switch r.AssigneeType {
	case "":
		r.AssigneeType = models.AssigneeTypeUser
	case models.AssigneeTypeUser:
	case models.AssigneeTypeRole:
		if strings.TrimSpace(r.AssigneeRole) == "" {
			return errors.Wrap(models.ErrValidation, "assignee role is empty")
		}
	default:
		return errors.Wrapf(models.ErrValidation, "unknown assignee type %q", r.AssigneeType)
	}
	if r.Amount != nil && *r.Amount < 0 {
		return errors.Wrap(models.ErrValidation, "amount is negative")
	}
	return nil
}

type TaskView struct {
	ID                 string                    `json:"id"`
	Title              string                    `json:"title"`
	Description        string                    `json:"description"`
	Creator            *usersapimodels.UserShort `json:"creator"`
	Assignee           *usersapimodels.UserShort `json:"assignee"`
	AssigneeType       models.AssigneeType       `json:"assignee_type"`
	AssigneeRole       string                    `json:"assignee_role,omitempty"`
	DepartmentID       string                    `json:"department_id"`
	Amount             *float64                  `json:"amount"`
	ApprovalType       models.ApprovalType       `json:"approval_type"`
	ApprovalTemplateID string                    `json:"approval_template_id,omitempty"`
	Status             models.TaskStatus         `json:"status"`
	StatusName         string                    `json:"status_name"`
	CurrentLevel       int                       `json:"current_level"` // lowest pending approval level, 0 when none
	DueDate            *time.Time                `json:"due_date"`
	IsOverdue          bool                      `json:"is_overdue"`
	StartedAt          *time.Time                `json:"started_at"`
	CompletedAt        *time.Time                `json:"completed_at"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

func TaskConvert(rec dbmodels.Task, now time.Time) TaskView {
	return TaskView{
		ID:                 rec.ID,
		Title:              rec.Title,
		Description:        rec.Description,
		Creator:            usersapimodels.UserShortConvert(rec.Creator),
		Assignee:           usersapimodels.UserShortConvert(rec.Assignee),
		AssigneeType:       rec.AssigneeType,
		AssigneeRole:       rec.AssigneeRole,
		DepartmentID:       rec.GetDepartmentID(),
		Amount:             rec.Amount,
		ApprovalType:       rec.ApprovalType,
		ApprovalTemplateID: helpers.PtrToStr(rec.ApprovalTemplateID),
		Status:             rec.Status,
		StatusName:         rec.Status.ToHuman(),
		CurrentLevel:       rec.CurrentLevel(),
		DueDate:            rec.DueDate,
		IsOverdue:          rec.IsOverdue(now),
		StartedAt:          rec.StartedAt,
		CompletedAt:        rec.CompletedAt,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

type ApproverView struct {
	ID         string                    `json:"id"`
	LevelOrder int                       `json:"level_order"`
	Approver   *usersapimodels.UserShort `json:"approver"`
	Status     models.ApproverStatus     `json:"status"`
	Comment    string                    `json:"comment"`
	ActionAt   *time.Time                `json:"action_at"`
	IsCurrent  bool                      `json:"is_current"` // the approver can decide now
}

func ApproverConvert(rec dbmodels.TaskApprover, currentLevel int) ApproverView {
	return ApproverView{
		ID:         rec.ID,
		LevelOrder: rec.LevelOrder,
		Approver:   usersapimodels.UserShortConvert(rec.ApproverUser),
		Status:     rec.Status,
		Comment:    rec.Comment,
		ActionAt:   rec.ActionAt,
		IsCurrent:  rec.Status == models.ApproverStatusPending && rec.LevelOrder == currentLevel,
	}
}

type TaskDetailView struct {
	TaskView
	Approvers   []ApproverView   `json:"approvers"`
	Nodes       []NodeView       `json:"nodes"`
	Comments    []CommentView    `json:"comments"`
	Attachments []AttachmentView `json:"attachments"`
}

func TaskDetailConvert(rec dbmodels.Task, now time.Time) TaskDetailView {
	result := TaskDetailView{
		TaskView:    TaskConvert(rec, now),
		Approvers:   make([]ApproverView, 0, len(rec.Approvers)),
		Nodes:       make([]NodeView, 0, len(rec.Nodes)),
		Comments:    make([]CommentView, 0, len(rec.Comments)),
		Attachments: make([]AttachmentView, 0, len(rec.Attachments)),
	}
	currentLevel := 0
	if rec.Status == models.TaskStatusPendingApproval {
		currentLevel = rec.CurrentLevel()
	}
	for _, approver := range rec.Approvers {
		result.Approvers = append(result.Approvers, ApproverConvert(approver, currentLevel))
	}
	for _, node := range rec.Nodes {
		result.Nodes = append(result.Nodes, NodeConvert(node))
	}
	for _, comment := range rec.Comments {
		result.Comments = append(result.Comments, CommentConvert(comment))
	}
	for _, attachment := range rec.Attachments {
		result.Attachments = append(result.Attachments, AttachmentConvert(attachment))
	}
	return result
}

type TaskFilter struct {
	apimodels.Pagination
	Status       models.TaskStatus   `json:"status"`
	AssigneeID   string              `json:"assignee_id"`
	CreatorID    string              `json:"creator_id"`
	DepartmentID string              `json:"department_id"`
	ApprovalType models.ApprovalType `json:"approval_type"`
	OnlyOverdue  bool                `json:"only_overdue"`
	Search       string              `json:"search"`
}

func (f TaskFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return errors.Wrapf(models.ErrValidation, "unknown status %q", f.Status)
	}
	return nil
}

type ActionRequest struct {
	Comment string `json:"comment"`
}

type ForwardRequest struct {
	ToUserID string `json:"to_user_id"`
	Comment  string `json:"comment"`
}

func (r ForwardRequest) Validate() error {
	if strings.TrimSpace(r.ToUserID) == "" {
		return errors.Wrap(models.ErrValidation, "forward target is empty")
	}
	return nil
}
