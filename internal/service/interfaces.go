package service

import (
	"context"

	"pixelgram/internal/models"
)

// Messenger is the messaging-transport capability consumed by the services:
// send and edit user-visible text, materialize an attachment locally, and
// acknowledge button presses. Implemented by pkg/telegram.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	EditTextWithActions(ctx context.Context, chatID int64, messageID int, text, batchID string) error
	DownloadAttachment(ctx context.Context, fileRef, fileName string) (string, error)
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Uploader pushes one inbound attachment to the remote store and reports a
// tagged outcome. Failures never escape as errors; they are carried inside
// the outcome so one bad item cannot abort its siblings.
type Uploader interface {
	Upload(ctx context.Context, file models.IncomingFile) models.UploadOutcome
}
