package service

import (
	"context"
	"sync"
	"time"

	"pixelgram/internal/metrics"
	"pixelgram/internal/models"
	"pixelgram/internal/tracing"
	"pixelgram/pkg/pixeldrain"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Aggregator coalesces files that arrive from one user in quick succession
// into a single upload batch. Every new file slides that user's debounce
// window forward; the batch drains only once the window has stayed quiet for
// the full debounce duration.
//
// The batch table supports exactly one shared primitive: atomic take-and-
// remove. A firing timer takes ownership of the whole entry under the lock,
// so a timer that lost the race to a newer arrival finds nothing and becomes
// a no-op. At most one live timer exists per user at any instant.
type Aggregator struct {
	mu      sync.Mutex
	batches map[int64]*openBatch

	debounce time.Duration
	uploader Uploader
	msgr     Messenger
	pending  *PendingActions
	store    pixeldrain.Client
	logger   *logrus.Logger

	// baseCtx parents the drain work started by timer fires, so shutdown
	// cancels in-flight uploads.
	baseCtx context.Context
}

type openBatch struct {
	files []models.IncomingFile
	timer *time.Timer
}

func NewAggregator(ctx context.Context, debounce time.Duration, uploader Uploader, msgr Messenger, pending *PendingActions, store pixeldrain.Client, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		batches:  make(map[int64]*openBatch),
		debounce: debounce,
		uploader: uploader,
		msgr:     msgr,
		pending:  pending,
		store:    store,
		logger:   logger,
		baseCtx:  ctx,
	}
}

// Add buffers one inbound file for its user and restarts the user's debounce
// timer. The append and the timer replacement happen under a single lock
// hold, so a superseded timer can never observe a half-updated batch.
func (a *Aggregator) Add(file models.IncomingFile) {
	a.mu.Lock()
	defer a.mu.Unlock()

	batch, ok := a.batches[file.UserID]
	if !ok {
		batch = &openBatch{}
		a.batches[file.UserID] = batch
	}

	batch.files = append(batch.files, file)
	if batch.timer != nil {
		batch.timer.Stop()
	}
	userID := file.UserID
	batch.timer = time.AfterFunc(a.debounce, func() {
		a.fire(userID)
	})

	a.logger.WithFields(logrus.Fields{
		"user_id":    file.UserID,
		"message_id": file.MessageID,
		"buffered":   len(batch.files),
	}).Debug("Attachment buffered, debounce window restarted")

	metrics.SetGauge("open_batches", float64(len(a.batches)), nil, "Users with an open aggregation window")
}

// Stop cancels all outstanding debounce timers. Buffered files are dropped;
// batch state is intentionally ephemeral.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for userID, batch := range a.batches {
		if batch.timer != nil {
			batch.timer.Stop()
		}
		delete(a.batches, userID)
	}
}

// OpenBatches reports the number of users with an open aggregation window.
func (a *Aggregator) OpenBatches() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

// fire runs when a user's debounce window elapses. It atomically takes the
// user's whole batch out of the table; if a racing Stop already superseded
// this timer, or the entry is gone, it does nothing.
func (a *Aggregator) fire(userID int64) {
	a.mu.Lock()
	batch, ok := a.batches[userID]
	delete(a.batches, userID)
	metrics.SetGauge("open_batches", float64(len(a.batches)), nil, "Users with an open aggregation window")
	a.mu.Unlock()

	if !ok || len(batch.files) == 0 {
		return
	}

	ctx, span := tracing.StartSpan(a.baseCtx, "batch.drain",
		attribute.Int64("user_id", userID),
		attribute.Int("files", len(batch.files)),
	)
	defer span.End()

	metrics.IncrementCounter("batches_fired_total", nil, "Debounce windows that fired with buffered files")

	a.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"files":   len(batch.files),
	}).Info("Draining file batch")

	if len(batch.files) == 1 {
		a.drainSingle(ctx, batch.files[0])
		return
	}
	a.drainMulti(ctx, batch.files)
}

func (a *Aggregator) drainSingle(ctx context.Context, file models.IncomingFile) {
	noticeID, err := a.msgr.SendText(ctx, file.ChatID, msgSingleProcessing)
	if err != nil {
		// Could not even start processing; log and keep serving other users.
		a.logger.WithError(err).WithField("user_id", file.UserID).Error("Failed to send processing notice")
		return
	}

	outcome := a.uploader.Upload(ctx, file)

	if err := a.msgr.EditText(ctx, file.ChatID, noticeID, singleResultText(outcome, a.store)); err != nil {
		a.logger.WithError(err).WithField("user_id", file.UserID).Error("Failed to update result message")
	}
}

func (a *Aggregator) drainMulti(ctx context.Context, files []models.IncomingFile) {
	chatID := files[0].ChatID
	userID := files[0].UserID

	noticeID, err := a.msgr.SendText(ctx, chatID, multiProcessingText(len(files)))
	if err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("Failed to send processing notice")
		return
	}

	// Fan out all uploads concurrently and wait for every one; a failure
	// never cancels its siblings. Result slots preserve submission order.
	outcomes := make([]models.UploadOutcome, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file models.IncomingFile) {
			defer wg.Done()
			outcomes[i] = a.uploader.Upload(ctx, file)
		}(i, file)
	}
	wg.Wait()

	var fileIDs []string
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			fileIDs = append(fileIDs, outcome.FileID)
		}
	}

	report := batchReportText(outcomes, a.store)

	if len(fileIDs) == 0 {
		if err := a.msgr.EditText(ctx, chatID, noticeID, report); err != nil {
			a.logger.WithError(err).WithField("user_id", userID).Error("Failed to update batch report")
		}
		return
	}

	batchID := a.pending.Add(fileIDs)
	metrics.SetGauge("pending_actions", float64(a.pending.Len()), nil, "Batches awaiting a build/discard decision")

	report += "\n\n" + msgAlbumPrompt
	if err := a.msgr.EditTextWithActions(ctx, chatID, noticeID, report, batchID); err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"batch_id": batchID,
		}).Error("Failed to update batch report with actions")
	}
}
