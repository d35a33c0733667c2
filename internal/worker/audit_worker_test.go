package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcker struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeAuditRepo struct {
	created []*entity.TaskAudit
	err     error
}

func (r *fakeAuditRepo) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, audit)
	return nil
}

func (r *fakeAuditRepo) ListByTaskID(ctx context.Context, taskID string) ([]entity.TaskAudit, error) {
	return nil, nil
}

func newTestWorker(repo *fakeAuditRepo) (*AuditWorker, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewAuditWorker("amqp://unused", "task_audit_logs", repo, logger), hook
}

func TestConvertToTaskAudit(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	audit, err := convertToTaskAudit(&entity.AuditMessage{
		UserID:    "u1",
		Action:    entity.ActionUpdate,
		EntityID:  "t1",
		NewValues: map[string]any{"status": "done"},
		Timestamp: ts,
	})
	require.NoError(t, err)

	assert.Equal(t, "task", audit.EntityType)
	assert.Equal(t, ts, audit.ChangedAt)
	assert.Nil(t, audit.OldValues)
	require.NotNil(t, audit.NewValues)
	assert.JSONEq(t, `{"status":"done"}`, *audit.NewValues)

	_, err = convertToTaskAudit(&entity.AuditMessage{Action: entity.ActionCreate})
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)
}

func TestProcessMessageStoresAndAcks(t *testing.T) {
	repo := &fakeAuditRepo{}
	w, _ := newTestWorker(repo)
	acker := &fakeAcker{}

	body := []byte(`{"user_id":"u1","action":"Create","entity_id":"t1","new_values":{"title":"x"}}`)
	w.processMessage(context.Background(), amqp.Delivery{Acknowledger: acker, Body: body})

	assert.Equal(t, 1, acker.acked)
	require.Len(t, repo.created, 1)
	assert.Equal(t, entity.ActionCreate, repo.created[0].Action)
}

func TestProcessMessageMalformedIsDropped(t *testing.T) {
	repo := &fakeAuditRepo{}
	w, hook := newTestWorker(repo)
	acker := &fakeAcker{}

	w.processMessage(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte("{broken")})

	assert.Equal(t, 1, acker.nacked)
	assert.False(t, acker.requeue)
	assert.Empty(t, repo.created)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestProcessMessageStoreFailureRequeues(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	w, _ := newTestWorker(repo)
	acker := &fakeAcker{}

	body := []byte(`{"user_id":"u1","action":"Delete","entity_id":"t1"}`)
	w.processMessage(context.Background(), amqp.Delivery{Acknowledger: acker, Body: body})

	assert.Equal(t, 1, acker.nacked)
	assert.True(t, acker.requeue)
}

type countingCleaner struct {
	calls atomic.Int32
}

func (c *countingCleaner) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, nil
}

func TestTokenJanitorSweepsUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{}
	logger, _ := test.NewNullLogger()
	j := NewTokenJanitor(cleaner, 5*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
