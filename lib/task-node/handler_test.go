package tasknodehandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tasknodestore "task-approval-backend/lib/task-node/store"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

func TestPath(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		require.Equal(t, []string{}, Path(nil))
	})
	t.Run("chain of hand-offs", func(t *testing.T) {
		nodes := []dbmodels.TaskNode{
			{FromUserID: "a", ToUserID: "b"},
			{FromUserID: "b", ToUserID: "c"},
			{FromUserID: "c", ToUserID: "a"},
		}
		require.Equal(t, []string{"a", "b", "c", "a"}, Path(nodes))
	})
	t.Run("gap", func(t *testing.T) {
		nodes := []dbmodels.TaskNode{
			{FromUserID: "a", ToUserID: "b"},
			{FromUserID: "x", ToUserID: "c"},
		}
		require.Equal(t, []string{"a", "b", "x", "c"}, Path(nodes))
	})
}

func TestLedger(t *testing.T) {
	tx := testdb.New(t)
	a := testdb.User(t, tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, tx, "Boris", models.UserRoleStd, "")
	task := dbmodels.Task{Title: "Ledger", CreatorID: a, Status: models.TaskStatusInProgress}
	require.NoError(t, tx.Create(&task).Error)

	store := tasknodestore.NewInstance(tx)
	start := time.Now()
	_, err := store.Append(dbmodels.TaskNode{TaskID: task.ID, FromUserID: a, ToUserID: b, ForwardedAt: start})
	require.NoError(t, err)
	_, err = store.Append(dbmodels.TaskNode{TaskID: task.ID, FromUserID: b, ToUserID: a, ForwardedAt: start.Add(time.Second)})
	require.NoError(t, err)

	handler := NewHandlerWithDB(tx)
	ledger, err := handler.Ledger(task.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Nodes, 2)
	require.Equal(t, "Anna", ledger.Nodes[0].FromUser.Name)
	require.Equal(t, []string{a, b, a}, ledger.Path)

	_, err = handler.Ledger("missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}
