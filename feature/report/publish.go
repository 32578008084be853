package report

import (
	"context"
	"fmt"
	"path"

	"modaudit/core/storage"

	"go.uber.org/zap"
)

// Publisher uploads run artifacts (the store file and the conflict report)
// to object storage so the reporting layer can fetch them remotely.
type Publisher struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewPublisher creates a publisher for the configured bucket.
func NewPublisher(client storage.Client, bucket string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, bucket: bucket, logger: logger}
}

// PublishRun uploads the given local files under runs/<runID>/.
func (p *Publisher) PublishRun(ctx context.Context, runID string, files ...string) error {
	for _, file := range files {
		objectName := fmt.Sprintf("runs/%s/%s", runID, path.Base(file))
		if err := storage.UploadFile(ctx, p.client, p.bucket, objectName, file); err != nil {
			return err
		}
		p.logger.Info("Artifact published",
			zap.String("bucket", p.bucket),
			zap.String("object", objectName),
		)
	}
	return nil
}
