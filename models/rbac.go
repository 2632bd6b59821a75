package models

type RbacFunc func(userID string, role UserRole, path string) bool

type Module string

const (
	TasksModule       Module = "TASKS"
	ApprovalsModule   Module = "APPROVALS"
	TemplatesModule   Module = "APPROVAL_TEMPLATES"
	UsersModule       Module = "USERS"
	DepartmentsModule Module = "DEPARTMENTS"
	DashboardModule   Module = "DASHBOARD"
)

type Permission string

const (
	CreatePermission Permission = "CREATE"
	EditPermission   Permission = "EDIT"
	ViewPermission   Permission = "VIEW"
	ManagePermission Permission = "MANAGE"
	FlowPermission   Permission = "FLOW"
	FilesPermission  Permission = "FILES"
	NotesPermission  Permission = "NOTES"
)
