package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// recordingStore captures the last Enqueue call.
type recordingStore struct {
	lastType  Type
	lastDelay time.Duration
	err       error
}

func (s *recordingStore) Enqueue(ctx context.Context, t Type, p Payload, delay time.Duration) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	s.lastType = t
	s.lastDelay = delay
	return uuid.New(), nil
}

func (s *recordingStore) ClaimReady(ctx context.Context, t Type) (*Envelope, error) { return nil, nil }
func (s *recordingStore) Acknowledge(ctx context.Context, id uuid.UUID) error       { return nil }
func (s *recordingStore) Fail(ctx context.Context, id uuid.UUID, retry bool) error  { return nil }

func TestDispatcherEnqueue(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	d := NewDispatcher(store, nil)

	id, err := d.Enqueue(context.Background(), &ItemUpdatePayload{
		IDs:    []int64{1, 2},
		Status: domain.ItemStatusOld,
	}, 3*time.Second)

	require.NoError(t, err, "a valid payload should enqueue")
	assert.NotEqual(t, uuid.Nil, id, "a job id should be returned")
	assert.Equal(t, TypeItemUpdater, store.lastType, "the payload should land on its own queue")
	assert.Equal(t, 3*time.Second, store.lastDelay, "the delay should be passed through")
}

func TestDispatcherRejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload Payload
	}{
		{name: "nil payload", payload: nil},
		{name: "empty id batch", payload: &ItemUpdatePayload{IDs: nil, Status: domain.ItemStatusOld}},
		{name: "non-positive item id", payload: &ItemUpdatePayload{IDs: []int64{0}, Status: domain.ItemStatusOld}},
		{name: "status outside the enum", payload: &ItemUpdatePayload{IDs: []int64{1}, Status: "MOLDY"}},
		{name: "missing receipt url", payload: &ImageProcessPayload{ReceiptID: 1}},
		{name: "malformed receipt url", payload: &ImageProcessPayload{ReceiptID: 1, URL: "not a url"}},
		{name: "missing user id", payload: &DailyReportPayload{}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &recordingStore{}
			d := NewDispatcher(store, nil)

			id, err := d.Enqueue(context.Background(), tc.payload, 0)

			assert.ErrorIs(t, err, ErrInvalidPayload, "validation should fail synchronously")
			assert.Equal(t, uuid.Nil, id, "no job should be created")
			assert.Empty(t, store.lastType, "the store should never see an invalid payload")
		})
	}
}

func TestDispatcherPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("redis gone")
	d := NewDispatcher(&recordingStore{err: storeErr}, nil)

	_, err := d.Enqueue(context.Background(), &DailyReportPayload{UserID: 1}, 0)

	assert.ErrorIs(t, err, storeErr, "store failures should surface to the producer")
}
