package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/config"
	"github.com/leakguard/leakguard/internal/models"
)

// Store archives raw scraped artifacts in MinIO, one JSON snapshot per
// message, addressed by channel and message id.
type Store struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// New creates a Store and ensures the bucket exists.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created archive bucket", zap.String("bucket", cfg.Minio.Bucket))
	}

	return &Store{client: client, bucket: cfg.Minio.Bucket, logger: logger}, nil
}

// ArchiveMessage uploads the raw message snapshot as JSON, addressed by
// channel and message id.
func (s *Store) ArchiveMessage(ctx context.Context, ch *models.Channel, msg *models.Message) error {
	snapshot := map[string]interface{}{
		"channel_id":          ch.TelegramID,
		"channel_username":    ch.Username,
		"telegram_message_id": msg.TelegramMessageID,
		"sender_id":           msg.SenderID,
		"sender_username":     msg.SenderUsername,
		"text":                msg.Text,
		"message_date":        msg.MessageDate,
		"media_type":          msg.MediaType,
		"media_ref":           msg.MediaRef,
		"scraped_at":          msg.ScrapedAt,
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("raw/%d/%d.json", ch.TelegramID, msg.TelegramMessageID)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}
