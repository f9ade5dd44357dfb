package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
	"github.com/noah-isme/alumni-mentorship-api/pkg/middleware/requestid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type writerStub struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *writerStub) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	events   []Event
	failures int
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("leader not available")
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestKafkaPublisherWritesKeyedMessages(t *testing.T) {
	w := &writerStub{}
	pub := newKafkaPublisherWithWriter(w)

	evt, err := New(TypeMentorshipStatusChanged, "req-1", map[string]string{"from": "pending", "to": "accepted"})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), evt))
	require.NoError(t, pub.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("req-1"), w.msgs[0].Key)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, TypeMentorshipStatusChanged, decoded.Type)
	assert.JSONEq(t, `{"from":"pending","to":"accepted"}`, string(decoded.Payload))
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	pub := newKafkaPublisherWithWriter(&writerStub{err: kafka.LeaderNotAvailable})
	evt, _ := New(TypeRegistrationApproved, "app-1", nil)
	err := pub.Publish(context.Background(), evt)
	require.Error(t, err)
	assert.ErrorIs(t, err, kafka.LeaderNotAvailable)
}

func TestNewKafkaPublisherValidatesConfig(t *testing.T) {
	_, err := NewKafkaPublisher(config.EventsConfig{Topic: "t"})
	require.Error(t, err)
	_, err = NewKafkaPublisher(config.EventsConfig{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)

	pub, err := NewKafkaPublisher(config.EventsConfig{Brokers: []string{"localhost:9092"}, Topic: "alumni", Username: "u", Password: "p", TLS: true})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestDispatcherRetriesAndCarriesRequestID(t *testing.T) {
	pub := &recordingPublisher{failures: 1}
	var mu sync.Mutex
	var outcomes []error
	d := NewDispatcher(pub, DispatcherConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnResult: func(eventType string, err error) {
			mu.Lock()
			outcomes = append(outcomes, err)
			mu.Unlock()
		},
	})
	d.Start(context.Background())
	defer d.Stop()

	evt, err := New(TypeRegistrationFiled, "app-9", map[string]int{"score": 3})
	require.NoError(t, err)
	ctx := requestid.NewContext(context.Background(), "req-77")
	require.NoError(t, d.Emit(ctx, evt))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(outcomes) == 2
	}, 2*time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	require.Len(t, pub.events, 1)
	assert.Equal(t, "req-77", pub.events[0].RequestID)
	pub.mu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	assert.Error(t, outcomes[0])
	assert.NoError(t, outcomes[1])
}

func TestDispatcherEmitBeforeStart(t *testing.T) {
	d := NewDispatcher(nil, DispatcherConfig{})
	evt, _ := New(TypeMentorApproved, "mentor-1", nil)
	require.Error(t, d.Emit(context.Background(), evt))

	var nilDispatcher *Dispatcher
	require.NoError(t, nilDispatcher.Emit(context.Background(), evt))
}
