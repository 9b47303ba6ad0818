package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
)

type fakeReader struct {
	messages  chan kafkago.Message
	mu        sync.Mutex
	committed []kafkago.Message
	closed    atomic.Bool
}

func newFakeReader(msgs ...kafkago.Message) *fakeReader {
	r := &fakeReader{messages: make(chan kafkago.Message, len(msgs))}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafkago.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *fakeReader) Close() error {
	r.closed.Store(true)
	return nil
}

func newTestConsumer(t *testing.T, reader ReaderInterface, retry RetryConfig) *Consumer {
	t.Helper()
	c, err := NewConsumer(ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "graphsentinel-test",
		Topics:  []string{TopicAnalysisRequests},
		Retry:   retry,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	c.reader = reader
	return c
}

func TestNewConsumer_Validation(t *testing.T) {
	log := logging.NewNopLogger()

	_, err := NewConsumer(ConsumerConfig{GroupID: "g"}, log)
	assert.Error(t, err)

	_, err = NewConsumer(ConsumerConfig{Brokers: []string{"b:9092"}}, log)
	assert.Error(t, err)
}

func TestConsumer_DispatchesToHandlerAndCommits(t *testing.T) {
	reader := newFakeReader(kafkago.Message{
		Topic:   TopicAnalysisRequests,
		Key:     []byte("ACME-001"),
		Value:   []byte(`{"event_id":"e1"}`),
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte("analysis.requested")}},
		Offset:  7,
	})
	c := newTestConsumer(t, reader, RetryConfig{})

	received := make(chan *Message, 1)
	c.Subscribe(TopicAnalysisRequests, func(ctx context.Context, msg *Message) error {
		received <- msg
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	select {
	case msg := <-received:
		assert.Equal(t, TopicAnalysisRequests, msg.Topic)
		assert.Equal(t, []byte("ACME-001"), msg.Key)
		assert.Equal(t, int64(7), msg.Offset)
		assert.Equal(t, "analysis.requested", msg.Headers["event_type"])
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	require.Eventually(t, func() bool {
		return c.Processed() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_StartTwiceRejected(t *testing.T) {
	c := newTestConsumer(t, newFakeReader(), RetryConfig{})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
}

func TestConsumer_Close_Idempotent(t *testing.T) {
	reader := newFakeReader()
	c := newTestConsumer(t, reader, RetryConfig{})

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, reader.closed.Load())
}

func TestConsumer_RetryThenSuccess(t *testing.T) {
	c := newTestConsumer(t, newFakeReader(), RetryConfig{MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	handler := func(ctx context.Context, msg *Message) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}

	err := c.processMessage(context.Background(), &Message{Topic: TopicAnalysisRequests}, handler)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(2), c.metrics.MessagesRetried.Load())
}

func TestConsumer_ExhaustedRetriesDeadLetters(t *testing.T) {
	c := newTestConsumer(t, newFakeReader(), RetryConfig{
		MaxRetries:      2,
		RetryBackoff:    time.Millisecond,
		DeadLetterTopic: TopicDeadLetter,
	})
	dlWriter := &fakeWriter{}
	c.deadLetter.writer = dlWriter

	poison := errors.New("unparseable request")
	err := c.processMessage(context.Background(), &Message{
		Topic: TopicAnalysisRequests,
		Key:   []byte("ACME-001"),
		Value: []byte("garbage"),
	}, func(ctx context.Context, msg *Message) error {
		return poison
	})

	assert.ErrorIs(t, err, poison)
	assert.Equal(t, int64(1), c.DeadLettered())
	require.Len(t, dlWriter.written, 1)

	dl := dlWriter.written[0]
	assert.Equal(t, TopicDeadLetter, dl.Topic)
	assert.Equal(t, []byte("ACME-001"), dl.Key)
	headers := make(map[string]string, len(dl.Headers))
	for _, h := range dl.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TopicAnalysisRequests, headers["original_topic"])
	assert.Equal(t, "unparseable request", headers["error_message"])
}

func TestConsumer_RetryAbortsOnCancel(t *testing.T) {
	c := newTestConsumer(t, newFakeReader(), RetryConfig{MaxRetries: 5, RetryBackoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.processMessage(ctx, &Message{Topic: TopicAnalysisRequests}, func(ctx context.Context, msg *Message) error {
		return errors.New("always failing")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsumer_UnhandledTopicCommitted(t *testing.T) {
	reader := newFakeReader(kafkago.Message{Topic: "unknown.topic", Value: []byte("v")})
	c := newTestConsumer(t, reader, RetryConfig{})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	require.Eventually(t, func() bool {
		return reader.committedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), c.Processed())
}
