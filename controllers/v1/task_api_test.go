package apiv1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"task-approval-backend/config"
	approvalquery "task-approval-backend/lib/approval-query"
	"task-approval-backend/lib/notify"
	"task-approval-backend/lib/rbac"
	taskhandler "task-approval-backend/lib/task"
	authutils "task-approval-backend/lib/utils/auth-utils"
	"task-approval-backend/lib/utils/lock"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/lib/workflow"
	"task-approval-backend/middleware"
	"task-approval-backend/models"
)

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	config.InitDefault()
	tx := testdb.New(t)
	recorder := notify.NewRecorder()
	rbac.NewHandler()
	taskhandler.Instance = taskhandler.NewHandlerWithDB(tx, lock.NewLocal(), recorder, nil, 5*time.Second)
	workflow.Instance = workflow.NewHandlerWithDB(tx, lock.NewLocal(), recorder, 5*time.Second)
	approvalquery.Instance = approvalquery.NewHandlerWithDB(tx)

	app := fiber.New()
	api := fiber.New()
	app.Mount("/api/v1", api)
	api.Use(middleware.AuthorizationRequired())
	api.Use(middleware.RbacMiddleware())
	InitTaskApiRouters(api)
	InitApprovalApiRouters(api)
	return app, tx
}

func call(t *testing.T, app *fiber.App, method, path, userID string, role models.UserRole, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if userID != "" {
		token, err := authutils.GetToken(userID, userID, role)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var result apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) != 0 {
		require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	}
	return resp.StatusCode, result
}

func TestTaskApi(t *testing.T) {
	app, tx := newTestApp(t)

	depID := testdb.Department(t, tx, "Ops", "")
	creator := testdb.User(t, tx, "Anna", models.UserRoleStd, depID)
	approver := testdb.User(t, tx, "Boris", models.UserRoleStd, depID)
	outsider := testdb.User(t, tx, "Olga", models.UserRoleStd, depID)

	t.Run("token is required", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/tasks/list", "", "", map[string]interface{}{})
		require.Equal(t, fiber.StatusUnauthorized, status)
	})

	var taskID string
	t.Run("create", func(t *testing.T) {
		status, resp := call(t, app, http.MethodPost, "/tasks", creator, models.UserRoleStd, map[string]interface{}{
			"title":         "Buy a laptop",
			"approval_type": "specific",
			"approver_ids":  []string{approver},
		})
		require.Equal(t, fiber.StatusOK, status, resp.Message)
		require.NoError(t, json.Unmarshal(resp.Data, &taskID))
		require.NotEmpty(t, taskID)
	})

	t.Run("empty chain is unprocessable", func(t *testing.T) {
		status, resp := call(t, app, http.MethodPost, "/tasks", creator, models.UserRoleStd, map[string]interface{}{
			"title":         "Nobody approves",
			"approval_type": "specific",
		})
		require.Equal(t, fiber.StatusUnprocessableEntity, status)
		require.Equal(t, "fail", resp.Status)
	})

	t.Run("flow", func(t *testing.T) {
		status, resp := call(t, app, http.MethodPut, "/tasks/"+taskID+"/approve", approver, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusConflict, status, resp.Message)

		status, resp = call(t, app, http.MethodPut, "/tasks/"+taskID+"/start", creator, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusOK, status, resp.Message)
		status, resp = call(t, app, http.MethodPut, "/tasks/"+taskID+"/complete", creator, models.UserRoleStd,
			map[string]string{"comment": "done"})
		require.Equal(t, fiber.StatusOK, status, resp.Message)

		status, _ = call(t, app, http.MethodPut, "/tasks/"+taskID+"/approve", outsider, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusForbidden, status)

		status, resp = call(t, app, http.MethodGet, "/approvals/my", approver, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusOK, status, resp.Message)
		var approvals []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Data, &approvals))
		require.Len(t, approvals, 1)
		require.Equal(t, true, approvals[0]["is_actionable"])

		status, resp = call(t, app, http.MethodPut, "/tasks/"+taskID+"/approve", approver, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusOK, status, resp.Message)
		var view map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		require.Equal(t, string(models.TaskStatusApproved), view["status"])

		status, _ = call(t, app, http.MethodPut, "/tasks/"+taskID+"/approve", approver, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("unknown task", func(t *testing.T) {
		status, _ := call(t, app, http.MethodGet, "/tasks/unknown", creator, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusNotFound, status)
	})

	t.Run("pending approvals are for managers", func(t *testing.T) {
		status, _ := call(t, app, http.MethodGet, "/approvals/pending", creator, models.UserRoleStd, nil)
		require.Equal(t, fiber.StatusForbidden, status)
		status, resp := call(t, app, http.MethodGet, "/approvals/pending", creator, models.ManagerRole, nil)
		require.Equal(t, fiber.StatusOK, status, resp.Message)
	})
}
