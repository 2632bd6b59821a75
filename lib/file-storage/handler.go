package filestorage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"task-approval-backend/db"
	filesdbstorage "task-approval-backend/lib/file-storage/storage"
	"task-approval-backend/lib/notify"
	taskstore "task-approval-backend/lib/task/store"
	userstore "task-approval-backend/lib/users/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

const MaxFileSize = 20 << 20

type Provider interface {
	Upload(ctx context.Context, actor models.Actor, info dbmodels.UploadFileInfo, reader io.Reader, size int64) (taskapimodels.AttachmentView, error)
	List(taskID string) ([]taskapimodels.AttachmentView, error)
	Download(ctx context.Context, taskID, fileID string) (rec dbmodels.Attachment, body io.ReadCloser, err error)
	RemoveTaskFiles(ctx context.Context, keys []string)
}

var Instance Provider

func NewHandler(objects ObjectStorage) {
	Instance = NewHandlerWithDB(db.DB, objects, notify.Instance)
}

func NewHandlerWithDB(tx *gorm.DB, objects ObjectStorage, publisher notify.Provider) Provider {
	instance := impl{
		store:     filesdbstorage.NewInstance(tx),
		taskStore: taskstore.NewInstance(tx),
		userStore: userstore.NewInstance(tx),
		objects:   objects,
		publisher: publisher,
	}
	initchecker.CheckInit(
		"store", instance.store,
		"taskStore", instance.taskStore,
		"userStore", instance.userStore,
		"objects", instance.objects,
		"publisher", instance.publisher,
	)
	return instance
}

type impl struct {
	store     filesdbstorage.Provider
	taskStore taskstore.Provider
	userStore userstore.Provider
	objects   ObjectStorage
	publisher notify.Provider
}

func objectKey(taskID, fileName string) string {
	return fmt.Sprintf("tasks/%s/%s%s", taskID, uuid.NewString(), strings.ToLower(filepath.Ext(fileName)))
}

func (i impl) Upload(ctx context.Context, actor models.Actor, info dbmodels.UploadFileInfo, reader io.Reader, size int64) (taskapimodels.AttachmentView, error) {
	logger := log.WithField("task_id", info.TaskID).WithField("user_id", actor.UserID)
	fileName := filepath.Base(strings.TrimSpace(info.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return taskapimodels.AttachmentView{}, errors.Wrap(models.ErrValidation, "file name is empty")
	}
	if size <= 0 || size > MaxFileSize {
		return taskapimodels.AttachmentView{}, errors.Wrapf(models.ErrValidation, "file size must be between 1 byte and %d MB", MaxFileSize>>20)
	}
	task, err := i.taskStore.GetByID(info.TaskID)
	if err != nil {
		return taskapimodels.AttachmentView{}, err
	}
	if task == nil {
		return taskapimodels.AttachmentView{}, errors.Wrapf(models.ErrNotFound, "task %s", info.TaskID)
	}
	key := objectKey(task.ID, fileName)
	if err = i.objects.Put(ctx, key, reader, size, info.ContentType); err != nil {
		logger.WithError(err).Error("unable to upload attachment")
		return taskapimodels.AttachmentView{}, err
	}
	rec, err := i.store.SaveFile(dbmodels.Attachment{
		TaskID:   task.ID,
		UserID:   actor.UserID,
		Filename: fileName,
		Filepath: key,
		FileSize: size,
		MimeType: info.ContentType,
	})
	if err != nil {
		if rmErr := i.objects.Remove(ctx, []string{key}); rmErr != nil {
			logger.WithError(rmErr).Warn("unable to remove orphan object")
		}
		return taskapimodels.AttachmentView{}, err
	}
	userName := actor.UserID
	if user, _ := i.userStore.GetByID(actor.UserID); user != nil {
		rec.User = user
		userName = user.GetFullName()
	}
	i.publisher.Publish(notify.Event{
		UserIDs: task.Stakeholders(),
		Data:    models.GetPushTaskAttachmentAdded(task.ID, task.Title, userName, fileName, task.Status),
	})
	logger.WithField("attachment_id", rec.ID).Info("attachment uploaded")
	return taskapimodels.AttachmentConvert(*rec), nil
}

func (i impl) List(taskID string) ([]taskapimodels.AttachmentView, error) {
	list, err := i.store.List(taskID)
	if err != nil {
		return nil, err
	}
	result := make([]taskapimodels.AttachmentView, 0, len(list))
	for _, rec := range list {
		result = append(result, taskapimodels.AttachmentConvert(rec))
	}
	return result, nil
}

func (i impl) Download(ctx context.Context, taskID, fileID string) (dbmodels.Attachment, io.ReadCloser, error) {
	rec, err := i.store.GetByID(taskID, fileID)
	if err != nil {
		return dbmodels.Attachment{}, nil, err
	}
	if rec == nil {
		return dbmodels.Attachment{}, nil, errors.Wrapf(models.ErrNotFound, "attachment %s", fileID)
	}
	body, err := i.objects.Get(ctx, rec.Filepath)
	if err != nil {
		return dbmodels.Attachment{}, nil, err
	}
	return *rec, body, nil
}

// RemoveTaskFiles is best effort, the rows are already gone with the task.
func (i impl) RemoveTaskFiles(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := i.objects.Remove(ctx, keys); err != nil {
		log.WithError(err).WithField("objects", len(keys)).Warn("unable to remove task attachments from storage")
	}
}
