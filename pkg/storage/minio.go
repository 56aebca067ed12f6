// Package storage provides the object store holding raw uploaded files.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docvault-go/internal/config"
	"docvault-go/pkg/log"
)

var MinioClient *minio.Client

// InitMinIO initializes the MinIO client and ensures the bucket exists.
func InitMinIO(cfg config.MinIOConfig) {
	var err error
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("failed to initialize MinIO client", err)
	}

	ctx := context.Background()
	exists, err := MinioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		log.Fatal("failed to check MinIO bucket", err)
	}
	if !exists {
		if err := MinioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("failed to create MinIO bucket", err)
		}
		log.Infof("bucket '%s' created", cfg.BucketName)
	} else {
		log.Infof("bucket '%s' already exists", cfg.BucketName)
	}
}

// ObjectName returns the bucket key for a source's raw bytes.
func ObjectName(source string) string {
	return fmt.Sprintf("docs/%s", source)
}

// PutDocument stores a source's raw bytes.
func PutDocument(ctx context.Context, bucket, source string, raw []byte) error {
	_, err := MinioClient.PutObject(ctx, bucket, ObjectName(source),
		bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{})
	return err
}

// GetDocument reads a source's raw bytes back.
func GetDocument(ctx context.Context, bucket, source string) ([]byte, error) {
	object, err := MinioClient.GetObject(ctx, bucket, ObjectName(source), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, object); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RemoveDocument deletes a source's raw bytes.
func RemoveDocument(ctx context.Context, bucket, source string) error {
	return MinioClient.RemoveObject(ctx, bucket, ObjectName(source), minio.RemoveObjectOptions{})
}
