package taskcommenthandler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"task-approval-backend/lib/notify"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

func TestAddComment(t *testing.T) {
	tx := testdb.New(t)
	recorder := notify.NewRecorder()
	handler := NewHandlerWithDB(tx, recorder)

	a := testdb.User(t, tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, tx, "Boris", models.UserRoleStd, "")
	task := dbmodels.Task{Title: "Discuss", CreatorID: a, AssigneeID: helpers.StrPtr(b), Status: models.TaskStatusOpen}
	require.NoError(t, tx.Create(&task).Error)

	t.Run("validation", func(t *testing.T) {
		_, err := handler.AddComment(models.Actor{UserID: a}, task.ID, taskapimodels.CommentData{Content: "   "})
		require.ErrorIs(t, err, models.ErrValidation)
		_, err = handler.AddComment(models.Actor{UserID: a}, task.ID, taskapimodels.CommentData{Content: strings.Repeat("x", 5001)})
		require.ErrorIs(t, err, models.ErrValidation)
		_, err = handler.AddComment(models.Actor{UserID: a}, "missing", taskapimodels.CommentData{Content: "hi"})
		require.ErrorIs(t, err, models.ErrNotFound)
	})
	t.Run("comment is stored and announced", func(t *testing.T) {
		recorder.Reset()
		view, err := handler.AddComment(models.Actor{UserID: a}, task.ID, taskapimodels.CommentData{Content: "  looks good  "})
		require.NoError(t, err)
		require.Equal(t, "looks good", view.Content)
		require.Equal(t, "Anna", view.User.Name)

		events := recorder.Events()
		require.Len(t, events, 1)
		require.Equal(t, models.PushTaskCommented, events[0].Data.Code)
		require.Equal(t, []string{b}, events[0].UserIDs)

		list, err := handler.List(task.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}
