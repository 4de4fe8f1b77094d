package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	apperrors "pixelgram/internal/errors"
	"pixelgram/internal/security"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Callback data tags carried by the batch decision buttons.
const (
	actionBuild   = "build"
	actionDiscard = "discard"
)

// TransportConfig holds the settings for the Telegram transport
type TransportConfig struct {
	BotToken        string
	DownloadDir     string
	DownloadTimeout time.Duration
}

// Transport implements the service Messenger capability over the Telegram
// Bot API: send/edit text, download attachments to local temp files, and
// answer button presses.
type Transport struct {
	bot         *tgbotapi.BotAPI
	downloadDir string
	httpClient  *http.Client
	logger      *logrus.Logger
}

func NewTransport(cfg TransportConfig, logger *logrus.Logger) (*Transport, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to create bot client")
	}

	if err := os.MkdirAll(cfg.DownloadDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	return &Transport{
		bot:         bot,
		downloadDir: cfg.DownloadDir,
		httpClient:  &http.Client{Timeout: cfg.DownloadTimeout},
		logger:      logger,
	}, nil
}

// Self returns the bot's username.
func (t *Transport) Self() string {
	return t.bot.Self.UserName
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to send message").
			WithContext("chat_id", chatID)
	}
	return sent.MessageID, nil
}

func (t *Transport) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.DisableWebPagePreview = true

	if _, err := t.bot.Send(edit); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to edit message").
			WithContext("chat_id", chatID).
			WithContext("message_id", messageID)
	}
	return nil
}

func (t *Transport) EditTextWithActions(ctx context.Context, chatID int64, messageID int, text, batchID string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.DisableWebPagePreview = true

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Build album", encodeCallbackData(actionBuild, batchID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Discard", encodeCallbackData(actionDiscard, batchID)),
		),
	)
	edit.ReplyMarkup = &markup

	if _, err := t.bot.Send(edit); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to edit message with actions").
			WithContext("chat_id", chatID).
			WithContext("message_id", messageID)
	}
	return nil
}

// DownloadAttachment materializes the referenced attachment into a temp file
// inside the configured download directory and returns its path. The caller
// owns the file and must remove it.
func (t *Transport) DownloadAttachment(ctx context.Context, fileRef, fileName string) (string, error) {
	file, err := t.bot.GetFile(tgbotapi.FileConfig{FileID: fileRef})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to resolve attachment file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.bot.Token), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("attachment download failed with status: %d", resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(t.downloadDir, "attach_*_"+security.SanitizeFileName(fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}

	if err := security.ValidatePathWithinBase(tempFile.Name(), t.downloadDir); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	t.logger.WithFields(logrus.Fields{
		"file_ref": fileRef,
		"path":     tempFile.Name(),
	}).Debug("Attachment downloaded")

	return tempFile.Name(), nil
}

func (t *Transport) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = alert

	if _, err := t.bot.Request(callback); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTelegramAPI, "failed to answer callback").
			WithContext("callback_id", callbackID)
	}
	return nil
}

func encodeCallbackData(action, batchID string) string {
	return action + ":" + batchID
}
