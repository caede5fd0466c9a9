// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ui-guide-go/internal/config"
	"ui-guide-go/pkg/log"
)

// Archiver 将导出的文档保存到 MinIO 并生成临时下载链接。
type Archiver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewArchiver 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewArchiver(ctx context.Context, cfg config.MinIOConfig) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}

	expiry := time.Duration(cfg.URLExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}
	log.Info("MinIO 客户端初始化成功")
	return &Archiver{client: client, bucket: cfg.BucketName, expiry: expiry}, nil
}

// Archive 上传文档并返回预签名的下载链接。对象按日期分目录存放。
func (a *Archiver) Archive(ctx context.Context, fileName, contentType string, body []byte) (string, error) {
	objectName := ObjectName(time.Now(), fileName)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	presignedURL, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, a.expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}

// ObjectName 返回 exports/<yyyy-mm-dd>/<unix-nano>-<fileName>。
func ObjectName(now time.Time, fileName string) string {
	return path.Join("exports", now.Format("2006-01-02"), fmt.Sprintf("%d-%s", now.UnixNano(), fileName))
}
