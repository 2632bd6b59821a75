package dbmodels

import (
	"time"

	"github.com/lib/pq"
	"task-approval-backend/models"
)

type Task struct {
	BaseModel
	Title              string `gorm:"type:varchar(255)"`
	Description        string
	CreatorID          string              `gorm:"type:varchar(36);index"`
	Creator            *User               `gorm:"foreignKey:CreatorID"`
	AssigneeID         *string             `gorm:"type:varchar(36);index"`
	Assignee           *User               `gorm:"foreignKey:AssigneeID"`
	AssigneeType       models.AssigneeType `gorm:"type:varchar(20)"`
	AssigneeRole       string              `gorm:"type:varchar(50);index"`
	DepartmentID       *string             `gorm:"type:varchar(36);index"`
	Department         *Department         `gorm:"foreignKey:DepartmentID"`
	Amount             *float64
	ApprovalType       models.ApprovalType `gorm:"type:varchar(20)"`
	ApprovalTemplateID *string             `gorm:"type:varchar(36)"`
	PeerIDs            pq.StringArray      `gorm:"type:text[]"`
	Status             models.TaskStatus   `gorm:"type:varchar(30);index"`
	DueDate            *time.Time          `gorm:"index"`
	OverdueNotifiedAt  *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	Approvers          []TaskApprover `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Nodes              []TaskNode     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Comments           []Comment      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Attachments        []Attachment   `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	History            []TaskHistory  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Status.IsTerminal() && t.DueDate.Before(now)
}

func (t Task) IsAssignee(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

func (t Task) GetAssigneeID() string {
	if t.AssigneeID == nil {
		return ""
	}
	return *t.AssigneeID
}

func (t Task) GetDepartmentID() string {
	if t.DepartmentID == nil {
		return ""
	}
	return *t.DepartmentID
}

// CurrentLevel is the lowest level that still has pending approvers, 0 when none.
func (t Task) CurrentLevel() int {
	level := 0
	for _, approver := range t.Approvers {
		if approver.Status != models.ApproverStatusPending {
			continue
		}
		if level == 0 || approver.LevelOrder < level {
			level = approver.LevelOrder
		}
	}
	return level
}

func (t Task) MaxLevel() int {
	level := 0
	for _, approver := range t.Approvers {
		if approver.LevelOrder > level {
			level = approver.LevelOrder
		}
	}
	return level
}

// Stakeholders returns the distinct users interested in changes of the task.
func (t Task) Stakeholders(extra ...string) []string {
	ids := append([]string{t.CreatorID, t.GetAssigneeID()}, extra...)
	for _, approver := range t.Approvers {
		ids = append(ids, approver.ApproverUserID)
	}
	seen := map[string]bool{}
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
