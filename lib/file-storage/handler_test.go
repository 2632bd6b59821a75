package filestorage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"task-approval-backend/lib/notify"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *memoryObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, errors.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (m *memoryObjects) Remove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

func TestAttachments(t *testing.T) {
	tx := testdb.New(t)
	ctx := context.Background()
	objects := newMemoryObjects()
	recorder := notify.NewRecorder()
	handler := NewHandlerWithDB(tx, objects, recorder)

	a := testdb.User(t, tx, "Anna", models.UserRoleStd, "")
	task := dbmodels.Task{Title: "Invoice", CreatorID: a, Status: models.TaskStatusOpen}
	require.NoError(t, tx.Create(&task).Error)
	actor := models.Actor{UserID: a}
	content := "total: 100"

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := handler.Upload(ctx, actor, dbmodels.UploadFileInfo{TaskID: task.ID, FileName: ""}, strings.NewReader(content), int64(len(content)))
		require.ErrorIs(t, err, models.ErrValidation)
		_, err = handler.Upload(ctx, actor, dbmodels.UploadFileInfo{TaskID: task.ID, FileName: "a.txt"}, strings.NewReader(""), 0)
		require.ErrorIs(t, err, models.ErrValidation)
		_, err = handler.Upload(ctx, actor, dbmodels.UploadFileInfo{TaskID: "missing", FileName: "a.txt"}, strings.NewReader(content), int64(len(content)))
		require.ErrorIs(t, err, models.ErrNotFound)
	})
	t.Run("upload, list, download, remove", func(t *testing.T) {
		view, err := handler.Upload(ctx, actor, dbmodels.UploadFileInfo{
			TaskID:      task.ID,
			FileName:    "../Invoice.PDF",
			ContentType: "application/pdf",
		}, strings.NewReader(content), int64(len(content)))
		require.NoError(t, err)
		require.Equal(t, "Invoice.PDF", view.Filename)
		require.Equal(t, int64(len(content)), view.FileSize)

		list, err := handler.List(task.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)

		rec, body, err := handler.Download(ctx, task.ID, view.ID)
		require.NoError(t, err)
		defer body.Close()
		require.True(t, strings.HasPrefix(rec.Filepath, "tasks/"+task.ID+"/"))
		require.True(t, strings.HasSuffix(rec.Filepath, ".pdf"))
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, content, string(data))

		handler.RemoveTaskFiles(ctx, []string{rec.Filepath})
		require.Empty(t, objects.objects)

		_, _, err = handler.Download(ctx, task.ID, "missing")
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}
