package main

import (
	"context"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// requestHandler processes one analysis request message end to end.
type requestHandler struct {
	svc    analysis.Service
	client *redis.Client
	logger logging.Logger
}

func newRequestHandler(svc analysis.Service, client *redis.Client, logger logging.Logger) *requestHandler {
	return &requestHandler{
		svc:    svc,
		client: client,
		logger: logger.Named("request_handler"),
	}
}

// Handle decodes the envelope and runs the analysis under a per-entity lock.
// A request for an entity currently being analyzed elsewhere is skipped; the
// result lands in the shared cache either way.
func (h *requestHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	envelope, err := kafka.DecodeEnvelope(msg)
	if err != nil {
		return err
	}

	var payload kafka.AnalysisRequestPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.EntityID == "" {
		return errors.InvalidParam("analysis request has no entity id")
	}

	lock := redis.NewLock(h.client, h.logger, "analysis:"+payload.EntityID)
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		h.logger.Debug("entity already being analyzed, skipping",
			logging.String("entity", payload.EntityID))
		return nil
	}
	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			h.logger.Warn("lock release failed",
				logging.String("entity", payload.EntityID), logging.Err(err))
		}
	}()

	result, err := h.svc.AnalyzeEntity(ctx, payload.EntityID)
	if err != nil {
		// A request naming an unknown company is permanently unprocessable;
		// retrying it cannot succeed, so it is dropped here with a warning.
		if errors.IsNotFound(err) {
			h.logger.Warn("analysis request for unknown entity",
				logging.String("entity", payload.EntityID))
			return nil
		}
		return err
	}

	h.logger.Info("analysis request processed",
		logging.String("entity", payload.EntityID),
		logging.String("analysis_id", result.AnalysisID),
		logging.Float64("risk_score", result.RiskScore))
	return nil
}
