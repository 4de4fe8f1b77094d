package service

import (
	"context"
	"fmt"
	"os"
	"time"

	apperrors "pixelgram/internal/errors"
	"pixelgram/internal/metrics"
	"pixelgram/internal/models"
	"pixelgram/internal/tracing"
	"pixelgram/pkg/pixeldrain"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// UploadService materializes one attachment to a local temp file, streams it
// to the remote store, and removes the local copy on every exit path.
type UploadService struct {
	msgr   Messenger
	store  pixeldrain.Client
	logger *logrus.Logger
}

func NewUploadService(msgr Messenger, store pixeldrain.Client, logger *logrus.Logger) *UploadService {
	return &UploadService{
		msgr:   msgr,
		store:  store,
		logger: logger,
	}
}

// Upload processes a single attachment and returns a tagged outcome. Any
// panic while handling the item is recovered at this boundary and reported
// as an internal failure for that item only.
func (s *UploadService) Upload(ctx context.Context, file models.IncomingFile) (outcome models.UploadOutcome) {
	outcome = models.UploadOutcome{File: file}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = apperrors.New(apperrors.ErrCodeInternalError, fmt.Sprintf("panic while uploading: %v", r)).
				WithContext("message_id", file.MessageID).
				WithUserMessage("Unexpected error while processing the file")
		}
		status := "success"
		if outcome.Err != nil {
			status = "failure"
		}
		metrics.IncrementCounter("uploads_total", map[string]string{"status": status}, "Attachment uploads by outcome")
		metrics.RecordTimer("upload_duration", time.Since(start), nil, "End-to-end attachment upload time")
	}()

	ctx, span := tracing.StartSpan(ctx, "upload.file",
		attribute.Int("message_id", file.MessageID),
		attribute.String("file_name", file.FileName),
	)
	defer span.End()

	localPath, err := s.msgr.DownloadAttachment(ctx, file.FileRef, file.FileName)
	if err != nil {
		tracing.RecordError(ctx, err)
		outcome.Err = apperrors.NewDownloadError(file.FileRef, err).WithContext("message_id", file.MessageID)
		return outcome
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			s.logger.WithError(err).WithField("path", localPath).Warn("Failed to remove temporary attachment file")
		}
	}()

	s.logger.WithFields(logrus.Fields{
		"message_id": file.MessageID,
		"path":       localPath,
	}).Debug("Attachment downloaded, uploading to store")

	fileID, err := s.store.UploadFile(ctx, localPath)
	if err != nil {
		tracing.RecordError(ctx, err)
		outcome.Err = err
		return outcome
	}

	outcome.FileID = fileID
	return outcome
}
