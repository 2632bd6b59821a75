package filestorage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// ObjectStorage is the bucket holding attachment contents.
type ObjectStorage interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, keys []string) error
}

func NewMinioStorage(client *minio.Client, bucketName string) ObjectStorage {
	return &minioImpl{
		client:     client,
		bucketName: bucketName,
	}
}

type minioImpl struct {
	client     *minio.Client
	bucketName string
}

func (i minioImpl) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := i.client.PutObject(ctx, i.bucketName, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, "unable to upload object")
	}
	return nil
}

func (i minioImpl) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := i.client.GetObject(ctx, i.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to get object")
	}
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, errors.Wrap(err, "unable to get object")
	}
	return obj, nil
}

func (i minioImpl) Remove(ctx context.Context, keys []string) error {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)
	for removeErr := range i.client.RemoveObjects(ctx, i.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil {
			return errors.Wrapf(removeErr.Err, "unable to remove object %s", removeErr.ObjectName)
		}
	}
	return nil
}
