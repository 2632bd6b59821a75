package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"task-approval-backend/config"
	filestorage "task-approval-backend/lib/file-storage"
	s3client "task-approval-backend/s3"
)

// InitS3 returns nil when object storage is not configured, attachments are disabled then.
func InitS3(ctx context.Context) filestorage.ObjectStorage {
	if config.Conf.S3.Endpoint == "" {
		log.Warn("S3 endpoint is not set, attachments are disabled")
		return nil
	}
	client, err := s3client.NewClient(config.Conf.S3.Endpoint, config.Conf.S3.AccessKeyID,
		config.Conf.S3.SecretAccessKey, *config.Conf.S3.UseSSL)
	if err != nil {
		log.WithError(err).Error("unable to init S3 client")
		return nil
	}
	if err = s3client.MakeBucket(ctx, client, config.Conf.S3.BucketName); err != nil {
		log.WithError(err).
			WithField("bucket", config.Conf.S3.BucketName).
			Error("unable to prepare S3 bucket")
		return nil
	}
	s3client.Client = client
	log.Info("S3 client initialized")
	return filestorage.NewMinioStorage(client, config.Conf.S3.BucketName)
}
