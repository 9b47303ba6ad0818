package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/GraphSentinel/pkg/errors"
)

func sampleAlert() analysis.Alert {
	return analysis.Alert{
		AlertID:     "alert-1",
		AnalysisID:  "analysis-1",
		EntityID:    "ACME-001",
		EntityName:  "Acme Corp",
		RiskScore:   0.92,
		CycleCount:  1,
		GeneratedAt: time.Now().UTC(),
	}
}

func TestAlertPublisher_PublishesEnvelopeKeyedByEntity(t *testing.T) {
	w := &fakeWriter{}
	producer := newTestProducer(t, w)
	pub := NewAlertPublisher(producer, "apiserver", logging.NewNopLogger())

	err := pub.PublishAlert(context.Background(), sampleAlert())

	require.NoError(t, err)
	require.Len(t, w.written, 1)

	msg := w.written[0]
	assert.Equal(t, TopicFraudAlerts, msg.Topic)
	assert.Equal(t, []byte("ACME-001"), msg.Key)

	env, err := DecodeEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, eventTypeFraudAlert, env.EventType)
	assert.Equal(t, "apiserver", env.Source)

	var decoded analysis.Alert
	require.NoError(t, env.DecodePayload(&decoded))
	assert.Equal(t, 0.92, decoded.RiskScore)
	assert.Equal(t, "Acme Corp", decoded.EntityName)
}

func TestAlertPublisher_WrapsPublishFailure(t *testing.T) {
	producer := newTestProducer(t, &fakeWriter{writeErr: errors.New("broker down")})
	pub := NewAlertPublisher(producer, "worker", logging.NewNopLogger())

	err := pub.PublishAlert(context.Background(), sampleAlert())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAlertPublishFailed))
}
