package models

type TaskStatus string

const (
	TaskStatusOpen            TaskStatus = "open"
	TaskStatusInProgress      TaskStatus = "in_progress"
	TaskStatusPendingApproval TaskStatus = "pending_approval"
	TaskStatusApproved        TaskStatus = "approved"
	TaskStatusRejected        TaskStatus = "rejected"
	TaskStatusCompleted       TaskStatus = "completed"
)

var AllTaskStatuses = []TaskStatus{
	TaskStatusOpen,
	TaskStatusInProgress,
	TaskStatusPendingApproval,
	TaskStatusApproved,
	TaskStatusRejected,
	TaskStatusCompleted,
}

var taskStatusHumanName = map[TaskStatus]string{
	TaskStatusOpen:            "Open",
	TaskStatusInProgress:      "In progress",
	TaskStatusPendingApproval: "Pending approval",
	TaskStatusApproved:        "Approved",
	TaskStatusRejected:        "Rejected",
	TaskStatusCompleted:       "Completed",
}

func (s TaskStatus) ToHuman() string {
	if human, exist := taskStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s TaskStatus) IsValid() bool {
	_, ok := taskStatusHumanName[s]
	return ok
}

func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusApproved || s == TaskStatusRejected || s == TaskStatusCompleted
}

type TaskEvent string

const (
	TaskEventCreate      TaskEvent = "create"
	TaskEventStart       TaskEvent = "start"
	TaskEventComplete    TaskEvent = "complete"
	TaskEventForward     TaskEvent = "forward"
	TaskEventReject      TaskEvent = "reject"
	TaskEventApprove     TaskEvent = "approve"
	TaskEventRejectStage TaskEvent = "reject_stage"
)

// transitions lists the status an event may be applied from.
var transitions = map[TaskEvent]TaskStatus{
	TaskEventStart:       TaskStatusOpen,
	TaskEventComplete:    TaskStatusInProgress,
	TaskEventForward:     TaskStatusInProgress,
	TaskEventReject:      TaskStatusInProgress,
	TaskEventApprove:     TaskStatusPendingApproval,
	TaskEventRejectStage: TaskStatusPendingApproval,
}

func (s TaskStatus) Allows(event TaskEvent) bool {
	from, ok := transitions[event]
	return ok && from == s
}

type ApprovalType string

const (
	ApprovalType360        ApprovalType = "360"
	ApprovalTypeSpecific   ApprovalType = "specific"
	ApprovalTypePredefined ApprovalType = "predefined"
	ApprovalTypeNone       ApprovalType = "none"
)

func (t ApprovalType) IsValid() bool {
	switch t {
	case ApprovalType360, ApprovalTypeSpecific, ApprovalTypePredefined, ApprovalTypeNone:
		return true
	}
	return false
}

type AssigneeType string

const (
	AssigneeTypeUser AssigneeType = "user"
	AssigneeTypeRole AssigneeType = "role"
)

type ApproverStatus string

const (
	ApproverStatusPending  ApproverStatus = "pending"
	ApproverStatusApproved ApproverStatus = "approved"
	ApproverStatusRejected ApproverStatus = "rejected"
)

type ApproverType string

const (
	ApproverTypeUser        ApproverType = "user"
	ApproverTypeRole        ApproverType = "role"
	ApproverTypeDynamicRole ApproverType = "dynamic_role"
)

func (t ApproverType) IsValid() bool {
	return t == ApproverTypeUser || t == ApproverTypeRole || t == ApproverTypeDynamicRole
}

// DynamicRole is resolved against the task and the user directory when the chain is built.
type DynamicRole string

const (
	DynamicRoleCreatorManager          DynamicRole = "creator_manager"
	DynamicRoleDepartmentManager       DynamicRole = "department_manager"
	DynamicRoleParentDepartmentManager DynamicRole = "parent_department_manager"
)

func (r DynamicRole) IsValid() bool {
	switch r {
	case DynamicRoleCreatorManager, DynamicRoleDepartmentManager, DynamicRoleParentDepartmentManager:
		return true
	}
	return false
}
