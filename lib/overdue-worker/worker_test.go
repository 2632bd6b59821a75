package overdueworker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"task-approval-backend/lib/notify"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

func TestHandle(t *testing.T) {
	tx := testdb.New(t)
	recorder := notify.NewRecorder()
	worker := newWorker(tx, recorder, time.Hour, time.Hour)

	a := testdb.User(t, tx, "Anna", models.UserRoleStd, "")
	b := testdb.User(t, tx, "Boris", models.UserRoleStd, "")
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	newTask := func(title string, status models.TaskStatus, due *time.Time) string {
		rec := dbmodels.Task{Title: title, CreatorID: a, AssigneeID: helpers.StrPtr(b), Status: status, DueDate: due}
		require.NoError(t, tx.Create(&rec).Error)
		return rec.ID
	}
	lateID := newTask("Late", models.TaskStatusInProgress, &past)
	newTask("Done late", models.TaskStatusCompleted, &past)
	newTask("On time", models.TaskStatusOpen, &future)
	newTask("No due date", models.TaskStatusOpen, nil)

	worker.handle(context.Background())
	events := recorder.Events()
	require.Len(t, events, 1)
	require.Equal(t, models.PushTaskOverdue, events[0].Data.Code)
	require.Equal(t, lateID, events[0].Data.TaskID)
	require.ElementsMatch(t, []string{a, b}, events[0].UserIDs)

	rec := dbmodels.Task{}
	require.NoError(t, tx.First(&rec, "id = ?", lateID).Error)
	require.NotNil(t, rec.OverdueNotifiedAt)
	require.Equal(t, models.TaskStatusInProgress, rec.Status)

	recorder.Reset()
	worker.handle(context.Background())
	require.Empty(t, recorder.Events())
}
