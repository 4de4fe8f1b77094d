package service

import (
	"context"

	"pixelgram/internal/metrics"
	"pixelgram/internal/models"
	"pixelgram/internal/tracing"
	"pixelgram/pkg/pixeldrain"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const albumTitle = "Shared album"

// ActionService handles the build/discard decisions on completed batches.
type ActionService struct {
	pending *PendingActions
	store   pixeldrain.Client
	msgr    Messenger
	logger  *logrus.Logger
}

func NewActionService(pending *PendingActions, store pixeldrain.Client, msgr Messenger, logger *logrus.Logger) *ActionService {
	return &ActionService{
		pending: pending,
		store:   store,
		msgr:    msgr,
		logger:  logger,
	}
}

// HandleBuild consumes the batch token and asks the store to bundle the
// uploaded files into a shareable album. A stale or already-consumed token
// surfaces an ephemeral notice instead of rebuilding.
func (s *ActionService) HandleBuild(ctx context.Context, decision models.BatchDecision) error {
	ctx, span := tracing.StartSpan(ctx, "action.build", attribute.String("batch_id", decision.BatchID))
	defer span.End()

	fileIDs, ok := s.pending.Take(decision.BatchID)
	metrics.SetGauge("pending_actions", float64(s.pending.Len()), nil, "Batches awaiting a build/discard decision")
	if !ok {
		metrics.IncrementCounter("stale_decisions_total", map[string]string{"action": "build"}, "Decisions on expired or consumed batch tokens")
		s.logger.WithField("batch_id", decision.BatchID).Info("Build requested for expired or consumed batch")
		return s.msgr.AnswerCallback(ctx, decision.CallbackID, msgBatchExpired, true)
	}

	if err := s.msgr.EditText(ctx, decision.ChatID, decision.MessageID, msgAlbumBuilding); err != nil {
		s.logger.WithError(err).WithField("batch_id", decision.BatchID).Warn("Failed to show album progress notice")
	}

	listID, err := s.store.CreateList(ctx, fileIDs, albumTitle)

	var text string
	if err != nil {
		tracing.RecordError(ctx, err)
		metrics.IncrementCounter("albums_total", map[string]string{"status": "failure"}, "Album creations by outcome")
		s.logger.WithError(err).WithField("batch_id", decision.BatchID).Error("Album creation failed")
		text = albumFailureText(err)
	} else {
		metrics.IncrementCounter("albums_total", map[string]string{"status": "success"}, "Album creations by outcome")
		text = albumSuccessText(s.store.ListURL(listID))
	}

	if err := s.msgr.EditText(ctx, decision.ChatID, decision.MessageID, text); err != nil {
		return err
	}
	return s.msgr.AnswerCallback(ctx, decision.CallbackID, msgAlbumToast, false)
}

// HandleDiscard drops the batch token and rewrites the prior report without
// its decision prompt. Discarding an already-gone token is a no-op.
func (s *ActionService) HandleDiscard(ctx context.Context, decision models.BatchDecision) error {
	ctx, span := tracing.StartSpan(ctx, "action.discard", attribute.String("batch_id", decision.BatchID))
	defer span.End()

	if s.pending.Discard(decision.BatchID) {
		metrics.SetGauge("pending_actions", float64(s.pending.Len()), nil, "Batches awaiting a build/discard decision")
	}

	if err := s.msgr.EditText(ctx, decision.ChatID, decision.MessageID, cancelledText(decision.MessageText)); err != nil {
		return err
	}
	return s.msgr.AnswerCallback(ctx, decision.CallbackID, msgCancelToast, false)
}
