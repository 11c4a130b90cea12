package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type failure struct {
	msg   string
	final bool
}

type fakeOutbox struct {
	mu        sync.Mutex
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]failure
	claimErr  error
}

func newFakeOutbox(events ...*model.OutboxEvent) *fakeOutbox {
	return &fakeOutbox{pending: events, failed: map[uuid.UUID]failure{}}
}

func (f *fakeOutbox) ClaimPending(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	out := f.pending[:limit]
	f.pending = f.pending[limit:]
	return out, nil
}

func (f *fakeOutbox) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, msg string, final bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = failure{msg: msg, final: final}
	return nil
}

type published struct {
	channel string
	body    []byte
}

type fakeBroker struct {
	mu       sync.Mutex
	failures int
	calls    int
	messages []published
}

func (b *fakeBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures > 0 {
		b.failures--
		return errors.New("redis: connection refused")
	}
	b.messages = append(b.messages, published{channel: channel, body: payload})
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Close() error { return nil }

func newEvent(t *testing.T, retries int) *model.OutboxEvent {
	t.Helper()
	ev, err := model.NewOutboxEvent(model.EventAppointmentCreated, uuid.New(), map[string]string{"status": "pending"})
	require.NoError(t, err)
	ev.RetryCount = retries
	return ev
}

func newProcessor(repo *fakeOutbox, broker *fakeBroker, maxFailures int) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		MaxFailures:   maxFailures,
	}, logger.Nop(), metrics.New("test", nil))
}

func TestProcessBatchPublishesEnvelope(t *testing.T) {
	ev := newEvent(t, 0)
	repo := newFakeOutbox(ev)
	broker := &fakeBroker{}

	n, err := newProcessor(repo, broker, 5).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{ev.ID}, repo.processed)

	require.Len(t, broker.messages, 1)
	assert.Equal(t, model.EventAppointmentCreated, broker.messages[0].channel)

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(broker.messages[0].body, &env))
	assert.Equal(t, ev.ID.String(), env.ID)
	assert.Equal(t, model.EventAppointmentCreated, env.Type)
	assert.JSONEq(t, `{"status":"pending"}`, string(env.Payload))
}

func TestProcessBatchRetriesWithinAttempts(t *testing.T) {
	ev := newEvent(t, 0)
	repo := newFakeOutbox(ev)
	broker := &fakeBroker{failures: 2}

	n, err := newProcessor(repo, broker, 5).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, broker.calls)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchRequeuesThenParks(t *testing.T) {
	fresh := newEvent(t, 0)
	worn := newEvent(t, 4)
	repo := newFakeOutbox(fresh, worn)
	broker := &fakeBroker{failures: 100}

	n, err := newProcessor(repo, broker, 5).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Contains(t, repo.failed, fresh.ID)
	assert.False(t, repo.failed[fresh.ID].final)
	assert.Contains(t, repo.failed[fresh.ID].msg, "connection refused")

	require.Contains(t, repo.failed, worn.ID)
	assert.True(t, repo.failed[worn.ID].final)
}

func TestProcessBatchClaimError(t *testing.T) {
	repo := newFakeOutbox()
	repo.claimErr = errors.New("db down")

	_, err := newProcessor(repo, &fakeBroker{}, 5).ProcessBatch(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(newFakeOutbox(), &fakeBroker{}, OutboxProcessorConfig{}, logger.Nop(), metrics.New("test", nil))
	})
}

type fakePruner struct {
	before time.Time
}

func (f *fakePruner) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return 3, nil
}

func TestOutboxCleanupUsesRetention(t *testing.T) {
	pruner := &fakePruner{}
	w := NewOutboxCleanupWorker(pruner, 7*24*time.Hour, time.Hour, logger.Nop())
	now := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	rows, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
	assert.Equal(t, now.Add(-7*24*time.Hour), pruner.before)
}
