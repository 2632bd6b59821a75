package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
	"task-approval-backend/models"
)

func TestRbac(t *testing.T) {
	t.Run(`pathToRegex check`, func(t *testing.T) {
		path, method, err := parseSwaggerPattern("/api/v1/tasks/{id}/approve [put]")
		require.Nil(t, err)
		require.Equal(t, PUT, method)
		r1, err := pathToRegex(path)
		require.Nil(t, err)
		require.True(t, r1.MatchString("/api/v1/tasks/123-321/approve"))
		require.False(t, r1.MatchString("/api/v1/tasks/approve"))

		path, method, err = parseSwaggerPattern("/api/v1/tasks/{id}/attachments/{fileId} [get]")
		require.Nil(t, err)
		require.Equal(t, GET, method)
		r2, err := pathToRegex(path)
		require.Nil(t, err)
		require.True(t, r2.MatchString("/api/v1/tasks/123-321/attachments/qwe-ewr123-wr-12"))
		require.False(t, r2.MatchString("/api/v1/tasks/we-ewr123-wr-12/attachments"))
	})
	t.Run(`pattern without method`, func(t *testing.T) {
		_, _, err := parseSwaggerPattern("/api/v1/tasks")
		require.NotNil(t, err)
	})
	t.Run(`registered rules`, func(t *testing.T) {
		i := newImpl()
		i.initRules()

		handler, found := i.GetRuleFunc("get", "/api/v1/approvals/pending/")
		require.True(t, found)
		require.True(t, handler("u1", models.ManagerRole, "/api/v1/approvals/pending"))
		require.False(t, handler("u1", models.UserRoleStd, "/api/v1/approvals/pending"))

		handler, found = i.GetRuleFunc("PUT", "/api/v1/tasks/abc/approve")
		require.True(t, found)
		require.True(t, handler("u1", "FINANCE", "/api/v1/tasks/abc/approve"))

		handler, found = i.GetRuleFunc("POST", "/api/v1/approval_templates")
		require.True(t, found)
		require.False(t, handler("u1", models.ManagerRole, "/api/v1/approval_templates"))

		_, found = i.GetRuleFunc("PATCH", "/api/v1/tasks/abc")
		require.False(t, found)

		perms := i.GetPermissions(models.AdminRole)
		require.Contains(t, perms[models.TemplatesModule], models.ManagePermission)
		require.NotContains(t, i.GetPermissions(models.UserRoleStd)[models.TemplatesModule], models.ManagePermission)
	})
}
