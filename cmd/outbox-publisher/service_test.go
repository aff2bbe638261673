package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rajivmenon/tailorbooks-backend/pkg/config"
	"github.com/rajivmenon/tailorbooks-backend/pkg/db/models"
	"github.com/rajivmenon/tailorbooks-backend/pkg/enums"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakePubSub struct {
	pingErr error
}

func (f *fakePubSub) Ping(context.Context) error           { return f.pingErr }
func (f *fakePubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublishedForPublish(_ *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.OutboxEvent, 0, limit)
	for _, event := range f.events {
		if event.PublishedAt == nil && event.AttemptCount < maxAttempts {
			out = append(out, event)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	for i := range f.events {
		if f.events[i].ID == id {
			now := time.Now()
			f.events[i].PublishedAt = &now
		}
	}
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].AttemptCount++
			msg := err.Error()
			f.events[i].LastError = &msg
		}
	}
	return nil
}

type fakePublisher struct {
	err      error
	messages []*gcppubsub.Message
}

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakeResult{err: f.err}
}

func newEvent(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now().Add(-time.Minute),
		AttemptCount:  attempts,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 3
	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeDB{},
		PubSub:     &fakePubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishes(t *testing.T) {
	t.Parallel()

	event := newEvent(0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, event.ID.String(), msg.Attributes["event_id"])
	assert.Equal(t, string(enums.EventOrderCreated), msg.Attributes["event_type"])
	assert.JSONEq(t, `{"version":1}`, string(msg.Data))

	assert.Equal(t, []uuid.UUID{event.ID}, repo.published)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchMarksFailures(t *testing.T) {
	t.Parallel()

	event := newEvent(0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.failed)
	assert.Empty(t, repo.published)
}

func TestProcessBatchSkipsExhaustedEvents(t *testing.T) {
	t.Parallel()

	exhausted := newEvent(3)
	fresh := newEvent(0)
	repo := &fakeRepo{events: []models.OutboxEvent{exhausted, fresh}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	// Only the fresh event reaches the broker.
	require.Len(t, pub.messages, 1)
	assert.Equal(t, fresh.ID.String(), pub.messages[0].Attributes["event_id"])
}

func TestProcessBatchIdleWhenEmpty(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchPropagatesFetchErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{fetchErr: errors.New("connection reset")}
	svc := newTestService(t, repo, &fakePublisher{})

	_, err := svc.processBatch(context.Background())
	require.Error(t, err)
}

func TestNextBackoffDoublesUpToCap(t *testing.T) {
	t.Parallel()

	base := 500 * time.Millisecond
	b := nextBackoff(base, base, maxBackoff)
	assert.Equal(t, time.Second, b)
	b = nextBackoff(8*time.Second, base, maxBackoff)
	assert.Equal(t, maxBackoff, b)
}
