package rbac

import "task-approval-backend/models"

var (
	AdminRoleSet        = []models.UserRole{models.AdminRole}
	AdminManagerRoleSet = []models.UserRole{models.AdminRole, models.ManagerRole}
	// AllRoles is used for the permission map only; business roles are open-ended so the rule itself is AllowFunc.
	AllRoles = []models.UserRole{models.AdminRole, models.ManagerRole, models.UserRoleStd}
)

func (i *impl) initRules() {
	i.addTaskRbac()
	i.addApprovalRbac()
	i.addTemplateRbac()
	i.addDirectoryRbac()
	i.RegisterRule(models.DashboardModule, models.ViewPermission, AllRoles, "/api/v1/dashboard [get]", AllowFunc())
}

func (i *impl) addTaskRbac() {
	allow := AllowFunc()
	//VIEW
	i.RegisterRule(models.TasksModule, models.ViewPermission, AllRoles, "/api/v1/tasks/list [post]", allow)
	i.RegisterRule(models.TasksModule, models.ViewPermission, AllRoles, "/api/v1/tasks/{id} [get]", allow)
	i.RegisterRule(models.TasksModule, models.ViewPermission, AllRoles, "/api/v1/tasks/{id}/nodes [get]", allow)
	i.RegisterRule(models.TasksModule, models.ViewPermission, AllRoles, "/api/v1/tasks/{id}/history [get]", allow)
	i.RegisterRule(models.TasksModule, models.ViewPermission, AllRoles, "/api/v1/tasks/{id}/approval_sheet [get]", allow)
	//CREATE
	i.RegisterRule(models.TasksModule, models.CreatePermission, AllRoles, "/api/v1/tasks [post]", allow)
	i.RegisterRule(models.TasksModule, models.EditPermission, AllRoles, "/api/v1/tasks/{id} [delete]", allow)
	//FLOW, the state machine checks the actor
	for _, action := range []string{"start", "complete", "forward", "reject", "approve", "reject_stage"} {
		i.RegisterRule(models.TasksModule, models.FlowPermission, AllRoles, "/api/v1/tasks/{id}/"+action+" [put]", allow)
	}
	//NOTES
	i.RegisterRule(models.TasksModule, models.NotesPermission, AllRoles, "/api/v1/tasks/{id}/comments [get]", allow)
	i.RegisterRule(models.TasksModule, models.NotesPermission, AllRoles, "/api/v1/tasks/{id}/comments [post]", allow)
	//FILES
	i.RegisterRule(models.TasksModule, models.FilesPermission, AllRoles, "/api/v1/tasks/{id}/attachments [get]", allow)
	i.RegisterRule(models.TasksModule, models.FilesPermission, AllRoles, "/api/v1/tasks/{id}/attachments [post]", allow)
	i.RegisterRule(models.TasksModule, models.FilesPermission, AllRoles, "/api/v1/tasks/{id}/attachments/{fileId} [get]", allow)
}

func (i *impl) addApprovalRbac() {
	allow := AllowFunc()
	i.RegisterRule(models.ApprovalsModule, models.ViewPermission, AllRoles, "/api/v1/approvals/my [get]", allow)
	i.RegisterRule(models.ApprovalsModule, models.ViewPermission, AllRoles, "/api/v1/approvals/history [get]", allow)
	i.RegisterRule(models.ApprovalsModule, models.ViewPermission, AllRoles, "/api/v1/approvals/history/export [get]", allow)
	i.RegisterRule(models.ApprovalsModule, models.ManagePermission, AdminManagerRoleSet, "/api/v1/approvals/pending [get]", nil)
}

func (i *impl) addTemplateRbac() {
	allow := AllowFunc()
	//VIEW
	i.RegisterRule(models.TemplatesModule, models.ViewPermission, AllRoles, "/api/v1/approval_templates/list [post]", allow)
	i.RegisterRule(models.TemplatesModule, models.ViewPermission, AllRoles, "/api/v1/approval_templates/{id} [get]", allow)
	//MANAGE
	i.RegisterRule(models.TemplatesModule, models.ManagePermission, AdminRoleSet, "/api/v1/approval_templates [post]", nil)
	i.RegisterRule(models.TemplatesModule, models.ManagePermission, AdminRoleSet, "/api/v1/approval_templates/{id} [put]", nil)
	i.RegisterRule(models.TemplatesModule, models.ManagePermission, AdminRoleSet, "/api/v1/approval_templates/{id} [delete]", nil)
}

func (i *impl) addDirectoryRbac() {
	allow := AllowFunc()
	//VIEW
	i.RegisterRule(models.UsersModule, models.ViewPermission, AllRoles, "/api/v1/users/list [post]", allow)
	i.RegisterRule(models.UsersModule, models.ViewPermission, AllRoles, "/api/v1/users/{id} [get]", allow)
	i.RegisterRule(models.UsersModule, models.ViewPermission, AllRoles, "/api/v1/users/me [get]", allow)
	i.RegisterRule(models.DepartmentsModule, models.ViewPermission, AllRoles, "/api/v1/dict/departments/tree [get]", allow)
	i.RegisterRule(models.DepartmentsModule, models.ViewPermission, AllRoles, "/api/v1/dict/departments/{id} [get]", allow)
	//MANAGE
	i.RegisterRule(models.UsersModule, models.ManagePermission, AdminRoleSet, "/api/v1/users [post]", nil)
	i.RegisterRule(models.UsersModule, models.ManagePermission, AdminRoleSet, "/api/v1/users/{id} [put]", nil)
	i.RegisterRule(models.UsersModule, models.ManagePermission, AdminRoleSet, "/api/v1/users/{id}/deactivate [put]", nil)
	i.RegisterRule(models.DepartmentsModule, models.ManagePermission, AdminRoleSet, "/api/v1/dict/departments [post]", nil)
	i.RegisterRule(models.DepartmentsModule, models.ManagePermission, AdminRoleSet, "/api/v1/dict/departments/{id} [put]", nil)
	i.RegisterRule(models.DepartmentsModule, models.ManagePermission, AdminRoleSet, "/api/v1/dict/departments/{id} [delete]", nil)
}
