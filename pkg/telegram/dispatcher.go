package telegram

import (
	"context"
	"strings"

	"pixelgram/internal/metrics"
	"pixelgram/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const msgGreeting = "Hi! Send me files and I will upload them and return shareable links."

// BatchSink receives inbound attachments for debounced aggregation.
type BatchSink interface {
	Add(file models.IncomingFile)
}

// DecisionHandlers receives the build/discard choices on completed batches.
type DecisionHandlers interface {
	HandleBuild(ctx context.Context, decision models.BatchDecision) error
	HandleDiscard(ctx context.Context, decision models.BatchDecision) error
}

// Dispatcher long-polls Telegram updates and routes them: attachment
// messages to the batch sink, button presses to the decision handlers.
// Handler errors are logged and swallowed here so one user's failure never
// stops the update loop.
type Dispatcher struct {
	transport   *Transport
	batches     BatchSink
	decisions   DecisionHandlers
	pollTimeout int
	logger      *logrus.Logger
}

func NewDispatcher(transport *Transport, batches BatchSink, decisions DecisionHandlers, pollTimeoutSec int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		transport:   transport,
		batches:     batches,
		decisions:   decisions,
		pollTimeout: pollTimeoutSec,
		logger:      logger,
	}
}

// Start blocks, receiving updates until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = d.pollTimeout
	updates := d.transport.bot.GetUpdatesChan(updateConfig)

	d.logger.WithField("bot", d.transport.Self()).Info("Telegram dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.transport.bot.StopReceivingUpdates()
			d.logger.Info("Telegram dispatcher stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				d.logger.Info("Updates channel closed")
				return nil
			}
			d.handleUpdate(ctx, update)
		}
	}
}

func (d *Dispatcher) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		d.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	if update.Message.IsCommand() {
		d.handleCommand(ctx, update.Message)
		return
	}

	if file, ok := incomingFileFrom(update.Message); ok {
		metrics.IncrementCounter("attachments_received_total", nil, "Attachment messages received")
		d.batches.Add(file)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	if message.Command() != "start" {
		return
	}
	if _, err := d.transport.SendText(ctx, message.Chat.ID, msgGreeting); err != nil {
		d.logger.WithError(err).WithField("chat_id", message.Chat.ID).Error("Failed to send greeting")
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	action, batchID, ok := parseCallbackData(callback.Data)
	if !ok || callback.Message == nil {
		d.logger.WithField("data", callback.Data).Debug("Ignoring unrecognized callback")
		return
	}

	decision := models.BatchDecision{
		BatchID:     batchID,
		UserID:      callback.From.ID,
		ChatID:      callback.Message.Chat.ID,
		MessageID:   callback.Message.MessageID,
		CallbackID:  callback.ID,
		MessageText: callback.Message.Text,
	}

	var err error
	switch action {
	case actionBuild:
		err = d.decisions.HandleBuild(ctx, decision)
	case actionDiscard:
		err = d.decisions.HandleDiscard(ctx, decision)
	}
	if err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"action":   action,
			"batch_id": batchID,
		}).Error("Decision handler failed")
	}
}

func parseCallbackData(data string) (action, batchID string, ok bool) {
	action, batchID, found := strings.Cut(data, ":")
	if !found || batchID == "" {
		return "", "", false
	}
	if action != actionBuild && action != actionDiscard {
		return "", "", false
	}
	return action, batchID, true
}

// incomingFileFrom extracts the uploadable attachment from a message, if
// any. Photos come in several renditions; the last one is the largest.
func incomingFileFrom(message *tgbotapi.Message) (models.IncomingFile, bool) {
	if message.From == nil {
		return models.IncomingFile{}, false
	}

	file := models.IncomingFile{
		UserID:    message.From.ID,
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
	}

	switch {
	case message.Document != nil:
		file.FileRef = message.Document.FileID
		file.FileName = message.Document.FileName
	case len(message.Photo) > 0:
		photo := message.Photo[len(message.Photo)-1]
		file.FileRef = photo.FileID
		file.FileName = "photo.jpg"
	case message.Video != nil:
		file.FileRef = message.Video.FileID
		file.FileName = message.Video.FileName
	case message.Audio != nil:
		file.FileRef = message.Audio.FileID
		file.FileName = message.Audio.FileName
	case message.Voice != nil:
		file.FileRef = message.Voice.FileID
		file.FileName = "voice.ogg"
	default:
		return models.IncomingFile{}, false
	}

	if file.FileName == "" {
		file.FileName = "file"
	}
	return file, true
}
