package models

import "fmt"

type PushCode string

type PushTpl struct {
	Title string
	Msg   string
}

var PushCodeMap = map[PushCode]PushTpl{
	PushTaskCreated:         {Title: "New task", Msg: "Task «%v» was created by %v."},
	PushTaskAssigned:        {Title: "Task assigned", Msg: "Task «%v» is now assigned to you (from %v)."},
	PushTaskStatusChanged:   {Title: "Task status changed", Msg: "Task «%v» status changed to %v."},
	PushApprovalRequired:    {Title: "Approval required", Msg: "Task «%v» is waiting for your approval (stage %v)."},
	PushTaskApproved:        {Title: "Task approved", Msg: "Task «%v» was approved. Last decision by %v."},
	PushTaskRejected:        {Title: "Task rejected", Msg: "Task «%v» was rejected by %v."},
	PushTaskCommented:       {Title: "New comment", Msg: "%v commented on task «%v»."},
	PushTaskOverdue:         {Title: "Task overdue", Msg: "Task «%v» passed its due date %v."},
	PushTaskStageApproved:   {Title: "Stage approved", Msg: "Stage %v of task «%v» was approved by %v."},
	PushTaskAttachmentAdded: {Title: "New attachment", Msg: "%v attached «%v» to task «%v»."},
}

const (
	PushTaskCreated         PushCode = "TaskCreated"
	PushTaskAssigned        PushCode = "TaskAssigned"
	PushTaskStatusChanged   PushCode = "TaskStatusChanged"
	PushApprovalRequired    PushCode = "ApprovalRequired"
	PushTaskApproved        PushCode = "TaskApproved"
	PushTaskRejected        PushCode = "TaskRejected"
	PushTaskCommented       PushCode = "TaskCommented"
	PushTaskOverdue         PushCode = "TaskOverdue"
	PushTaskStageApproved   PushCode = "TaskStageApproved"
	PushTaskAttachmentAdded PushCode = "TaskAttachmentAdded"
)

type NotificationData struct {
	Code   PushCode
	TaskID string
	Status TaskStatus
	Msg    string
	Title  string
}

func newNotification(code PushCode, taskID string, status TaskStatus, args ...any) NotificationData {
	return NotificationData{
		Code:   code,
		TaskID: taskID,
		Status: status,
		Title:  PushCodeMap[code].Title,
		Msg:    fmt.Sprintf(PushCodeMap[code].Msg, args...),
	}
}

func GetPushTaskCreated(taskID, title, creatorName string) NotificationData {
	return newNotification(PushTaskCreated, taskID, TaskStatusOpen, title, creatorName)
}

func GetPushTaskAssigned(taskID, title, fromUserName string, status TaskStatus) NotificationData {
	return newNotification(PushTaskAssigned, taskID, status, title, fromUserName)
}

func GetPushTaskStatusChanged(taskID, title string, status TaskStatus) NotificationData {
	return newNotification(PushTaskStatusChanged, taskID, status, title, status.ToHuman())
}

func GetPushApprovalRequired(taskID, title string, levelOrder int) NotificationData {
	return newNotification(PushApprovalRequired, taskID, TaskStatusPendingApproval, title, levelOrder)
}

func GetPushTaskApproved(taskID, title, userName string) NotificationData {
	return newNotification(PushTaskApproved, taskID, TaskStatusApproved, title, userName)
}

func GetPushTaskRejected(taskID, title, userName string) NotificationData {
	return newNotification(PushTaskRejected, taskID, TaskStatusRejected, title, userName)
}

func GetPushTaskStageApproved(taskID, title, userName string, levelOrder int) NotificationData {
	return newNotification(PushTaskStageApproved, taskID, TaskStatusPendingApproval, levelOrder, title, userName)
}

func GetPushTaskCommented(taskID, title, userName string, status TaskStatus) NotificationData {
	return newNotification(PushTaskCommented, taskID, status, userName, title)
}

func GetPushTaskOverdue(taskID, title, dueDate string, status TaskStatus) NotificationData {
	return newNotification(PushTaskOverdue, taskID, status, title, dueDate)
}

func GetPushTaskAttachmentAdded(taskID, title, userName, fileName string, status TaskStatus) NotificationData {
	return newNotification(PushTaskAttachmentAdded, taskID, status, userName, fileName, title)
}
