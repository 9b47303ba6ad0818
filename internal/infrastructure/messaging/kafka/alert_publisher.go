package kafka

import (
	"context"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

const eventTypeFraudAlert = "fraud.alert.raised"

// alertPublisher adapts the Producer to the analysis.AlertPublisher port.
// Alerts are keyed by entity so that all alerts for one company land on the
// same partition in order.
type alertPublisher struct {
	producer *Producer
	source   string
	logger   logging.Logger
}

var _ analysis.AlertPublisher = (*alertPublisher)(nil)

// NewAlertPublisher wraps a Producer for fraud alert publishing.
func NewAlertPublisher(producer *Producer, source string, logger logging.Logger) analysis.AlertPublisher {
	return &alertPublisher{producer: producer, source: source, logger: logger}
}

func (p *alertPublisher) PublishAlert(ctx context.Context, alert analysis.Alert) error {
	env, err := NewEventEnvelope(eventTypeFraudAlert, p.source, alert)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicFraudAlerts, []byte(alert.EntityID))
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeAlertPublishFailed, "fraud alert publish failed")
	}
	p.logger.Debug("Fraud alert published",
		logging.String("entity", alert.EntityID),
		logging.Float64("risk_score", alert.RiskScore))
	return nil
}
