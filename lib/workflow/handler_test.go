package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"task-approval-backend/lib/notify"
	taskhandler "task-approval-backend/lib/task"
	tasknodestore "task-approval-backend/lib/task-node/store"
	"task-approval-backend/lib/utils/lock"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type env struct {
	tx       *gorm.DB
	recorder *notify.Recorder
	tasks    taskhandler.Provider
	flow     Provider
}

func newEnv(t *testing.T) env {
	tx := testdb.New(t)
	recorder := notify.NewRecorder()
	return env{
		tx:       tx,
		recorder: recorder,
		tasks:    taskhandler.NewHandlerWithDB(tx, lock.NewLocal(), recorder, nil, 5*time.Second),
		flow:     NewHandlerWithDB(tx, lock.NewLocal(), recorder, 5*time.Second),
	}
}

func actor(userID string) models.Actor {
	return models.Actor{UserID: userID, Role: models.UserRoleStd}
}

func (e env) create(t *testing.T, creatorID string, data taskapimodels.TaskData) string {
	t.Helper()
	id, err := e.tasks.Create(context.Background(), actor(creatorID), data)
	require.NoError(t, err)
	return id
}

func (e env) approverStatuses(t *testing.T, taskID string) map[string]models.ApproverStatus {
	t.Helper()
	detail, err := e.tasks.Get(taskID)
	require.NoError(t, err)
	result := map[string]models.ApproverStatus{}
	for _, approver := range detail.Approvers {
		result[approver.Approver.ID] = approver.Status
	}
	return result
}

func (e env) historyEvents(t *testing.T, taskID string, event models.TaskEvent) int {
	t.Helper()
	list, err := e.tasks.History(taskID)
	require.NoError(t, err)
	count := 0
	for _, item := range list {
		if item.Event == event {
			count++
		}
	}
	return count
}

func TestSpecificChain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	depID := testdb.Department(t, e.tx, "Ops", "")
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, depID)
	b := testdb.User(t, e.tx, "Boris", models.UserRoleStd, depID)
	c := testdb.User(t, e.tx, "Clara", models.UserRoleStd, depID)
	taskID := e.create(t, a, taskapimodels.TaskData{
		Title:        "Buy servers",
		ApprovalType: models.ApprovalTypeSpecific,
		ApproverIDs:  []string{b, c},
	})

	t.Run("start and complete by the assignee", func(t *testing.T) {
		view, err := e.flow.Start(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusInProgress, view.Status)
		require.NotNil(t, view.StartedAt)

		e.recorder.Reset()
		view, err = e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{Comment: "done"})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusPendingApproval, view.Status)
		require.Equal(t, 1, view.CurrentLevel)

		var required *notify.Event
		for _, event := range e.recorder.Events() {
			if event.Data.Code == models.PushApprovalRequired {
				event := event
				required = &event
			}
		}
		require.NotNil(t, required)
		require.Equal(t, []string{b}, required.UserIDs)
		require.True(t, required.Email)
	})
	t.Run("later stage can not jump the queue", func(t *testing.T) {
		_, err := e.flow.Approve(ctx, actor(c), taskID, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrInvalidTransition)
		require.Equal(t, models.ApproverStatusPending, e.approverStatuses(t, taskID)[c])
	})
	t.Run("outsider is refused", func(t *testing.T) {
		_, err := e.flow.Approve(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})
	t.Run("first stage approves", func(t *testing.T) {
		view, err := e.flow.Approve(ctx, actor(b), taskID, taskapimodels.ActionRequest{Comment: "ok"})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusPendingApproval, view.Status)
		require.Equal(t, 2, view.CurrentLevel)
		statuses := e.approverStatuses(t, taskID)
		require.Equal(t, models.ApproverStatusApproved, statuses[b])
		require.Equal(t, models.ApproverStatusPending, statuses[c])
	})
	t.Run("re-approving is already processed", func(t *testing.T) {
		_, err := e.flow.Approve(ctx, actor(b), taskID, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrAlreadyProcessed)
		require.Equal(t, 1, e.historyEvents(t, taskID, models.TaskEventApprove))
	})
	t.Run("second stage rejects", func(t *testing.T) {
		view, err := e.flow.RejectStage(ctx, actor(c), taskID, taskapimodels.ActionRequest{Comment: "too expensive"})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusRejected, view.Status)
		require.Equal(t, models.ApproverStatusRejected, e.approverStatuses(t, taskID)[c])

		_, err = e.flow.Approve(ctx, actor(c), taskID, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrAlreadyProcessed)
	})
}

func TestSpecificChainApproved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, e.tx, "Boris", models.UserRoleStd, "")
	taskID := e.create(t, a, taskapimodels.TaskData{
		Title:        "Hire intern",
		ApprovalType: models.ApprovalTypeSpecific,
		ApproverIDs:  []string{b},
	})
	_, err := e.flow.Start(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	_, err = e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	view, err := e.flow.Approve(ctx, actor(b), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusApproved, view.Status)
	require.Equal(t, 0, view.CurrentLevel)

	_, err = e.flow.Approve(ctx, actor(b), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrAlreadyProcessed)
	_, err = e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestPeerReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	depID := testdb.Department(t, e.tx, "Design", "")
	creator := testdb.User(t, e.tx, "Creator", models.UserRoleStd, depID)
	peers := []string{
		testdb.User(t, e.tx, "Peer One", models.UserRoleStd, depID),
		testdb.User(t, e.tx, "Peer Two", models.UserRoleStd, depID),
		testdb.User(t, e.tx, "Peer Three", models.UserRoleStd, depID),
	}
	taskID := e.create(t, creator, taskapimodels.TaskData{Title: "Review mockups", ApprovalType: models.ApprovalType360})
	detail, err := e.tasks.Get(taskID)
	require.NoError(t, err)
	require.Len(t, detail.Approvers, 3)
	for _, approver := range detail.Approvers {
		require.Equal(t, 1, approver.LevelOrder)
	}

	_, err = e.flow.Start(ctx, actor(creator), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	_, err = e.flow.Complete(ctx, actor(creator), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)

	view, err := e.flow.Approve(ctx, actor(peers[0]), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusPendingApproval, view.Status)
	view, err = e.flow.Approve(ctx, actor(peers[1]), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusPendingApproval, view.Status)
	view, err = e.flow.RejectStage(ctx, actor(peers[2]), taskID, taskapimodels.ActionRequest{Comment: "no"})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusRejected, view.Status)
}

func TestTaskWithoutApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	other := testdb.User(t, e.tx, "Other", models.UserRoleStd, "")
	taskID := e.create(t, a, taskapimodels.TaskData{Title: "Water plants"})

	_, err := e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = e.flow.Start(ctx, actor(other), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.flow.Start(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	view, err := e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusCompleted, view.Status)
	require.NotNil(t, view.CompletedAt)

	_, err = e.flow.Start(ctx, actor(a), "missing", taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestForward(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, e.tx, "Boris", models.UserRoleStd, "")
	c := testdb.User(t, e.tx, "Clara", models.UserRoleStd, "")
	retired := testdb.User(t, e.tx, "Retired", models.UserRoleStd, "")
	testdb.Deactivate(t, e.tx, retired)
	taskID := e.create(t, a, taskapimodels.TaskData{Title: "Prepare report"})

	_, err := e.flow.Forward(ctx, actor(a), taskID, taskapimodels.ForwardRequest{ToUserID: b})
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = e.flow.Start(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)

	t.Run("guards", func(t *testing.T) {
		_, err := e.flow.Forward(ctx, actor(b), taskID, taskapimodels.ForwardRequest{ToUserID: c})
		require.ErrorIs(t, err, models.ErrUnauthorized)
		_, err = e.flow.Forward(ctx, actor(a), taskID, taskapimodels.ForwardRequest{ToUserID: retired})
		require.ErrorIs(t, err, models.ErrValidation)
		_, err = e.flow.Forward(ctx, actor(a), taskID, taskapimodels.ForwardRequest{ToUserID: "missing"})
		require.ErrorIs(t, err, models.ErrNotFound)
		_, err = e.flow.Forward(ctx, actor(a), taskID, taskapimodels.ForwardRequest{})
		require.ErrorIs(t, err, models.ErrValidation)
	})
	t.Run("two hand-offs append two nodes", func(t *testing.T) {
		view, err := e.flow.Forward(ctx, actor(a), taskID, taskapimodels.ForwardRequest{ToUserID: b, Comment: "yours"})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusInProgress, view.Status)
		require.Equal(t, b, view.Assignee.ID)
		view, err = e.flow.Forward(ctx, actor(b), taskID, taskapimodels.ForwardRequest{ToUserID: c})
		require.NoError(t, err)
		require.Equal(t, c, view.Assignee.ID)

		nodes, err := tasknodestore.NewInstance(e.tx).ListByTask(taskID)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		require.Equal(t, a, nodes[0].FromUserID)
		require.Equal(t, b, nodes[0].ToUserID)
		require.Equal(t, b, nodes[1].FromUserID)
		require.Equal(t, c, nodes[1].ToUserID)
	})
	t.Run("previous holder lost the task", func(t *testing.T) {
		_, err := e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, e.tx, "Boris", models.UserRoleStd, "")
	outsider := testdb.User(t, e.tx, "Outsider", models.UserRoleStd, "")
	admin := testdb.User(t, e.tx, "Admin", models.AdminRole, "")
	newTask := func() string {
		id := e.create(t, a, taskapimodels.TaskData{Title: "Order chairs", ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{b}})
		_, err := e.flow.Start(ctx, actor(a), id, taskapimodels.ActionRequest{})
		require.NoError(t, err)
		return id
	}

	t.Run("outsider", func(t *testing.T) {
		_, err := e.flow.Reject(ctx, actor(outsider), newTask(), taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrUnauthorized)
	})
	t.Run("approver", func(t *testing.T) {
		view, err := e.flow.Reject(ctx, actor(b), newTask(), taskapimodels.ActionRequest{Comment: "not needed"})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusRejected, view.Status)
	})
	t.Run("admin", func(t *testing.T) {
		view, err := e.flow.Reject(ctx, models.Actor{UserID: admin, Role: models.AdminRole}, newTask(), taskapimodels.ActionRequest{})
		require.NoError(t, err)
		require.Equal(t, models.TaskStatusRejected, view.Status)
	})
	t.Run("not from pending approval", func(t *testing.T) {
		id := newTask()
		_, err := e.flow.Complete(ctx, actor(a), id, taskapimodels.ActionRequest{})
		require.NoError(t, err)
		_, err = e.flow.Reject(ctx, actor(a), id, taskapimodels.ActionRequest{})
		require.ErrorIs(t, err, models.ErrInvalidTransition)
	})
}

func TestRoleAssignee(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := testdb.User(t, e.tx, "Creator", models.UserRoleStd, "")
	finance1 := testdb.User(t, e.tx, "Finance One", "FINANCE", "")
	finance2 := testdb.User(t, e.tx, "Finance Two", "FINANCE", "")
	taskID := e.create(t, creator, taskapimodels.TaskData{
		Title:        "Pay invoice",
		AssigneeType: models.AssigneeTypeRole,
		AssigneeRole: "finance",
	})

	_, err := e.flow.Start(ctx, actor(creator), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrUnauthorized)
	view, err := e.flow.Start(ctx, actor(finance2), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, finance2, view.Assignee.ID)
	_, err = e.flow.Complete(ctx, actor(finance1), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestConcurrentApprovals(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, e.tx, "Boris", models.UserRoleStd, "")
	taskID := e.create(t, a, taskapimodels.TaskData{Title: "Sign contract", ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{b}})
	_, err := e.flow.Start(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)
	_, err = e.flow.Complete(ctx, actor(a), taskID, taskapimodels.ActionRequest{})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		processed int
	)
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.flow.Approve(ctx, actor(b), taskID, taskapimodels.ActionRequest{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if assert.ErrorIs(t, err, models.ErrAlreadyProcessed) {
				processed++
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, succeeded)
	require.Equal(t, workers-1, processed)
	require.Equal(t, 1, e.historyEvents(t, taskID, models.TaskEventApprove))
}

type busyLock struct{}

func (busyLock) WithDelay(context.Context, string, time.Duration, func() error) (bool, error) {
	return false, nil
}

func TestBusyTask(t *testing.T) {
	e := newEnv(t)
	a := testdb.User(t, e.tx, "Anna", models.UserRoleStd, "")
	taskID := e.create(t, a, taskapimodels.TaskData{Title: "Busy"})
	flow := NewHandlerWithDB(e.tx, busyLock{}, e.recorder, time.Millisecond)

	_, err := flow.Start(context.Background(), actor(a), taskID, taskapimodels.ActionRequest{})
	require.ErrorIs(t, err, models.ErrTaskBusy)
	rec := dbmodels.Task{}
	require.NoError(t, e.tx.First(&rec, "id = ?", taskID).Error)
	require.Equal(t, models.TaskStatusOpen, rec.Status)
}
