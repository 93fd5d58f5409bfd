package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

func TestDecodePayloadRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload Payload
	}{
		{
			name:    "item update",
			payload: &ItemUpdatePayload{IDs: []int64{1, 2, 3}, Status: domain.ItemStatusOld},
		},
		{
			name:    "image process",
			payload: &ImageProcessPayload{ReceiptID: 42, URL: "https://cdn.example.com/receipt.jpg"},
		},
		{
			name:    "daily report",
			payload: &DailyReportPayload{UserID: 7},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			raw, err := EncodePayload(tc.payload)
			require.NoError(t, err, "encoding a valid payload should succeed")

			decoded, err := DecodePayload(tc.payload.Queue(), raw)
			require.NoError(t, err, "decoding on the right queue should succeed")
			assert.Equal(t, tc.payload, decoded, "decode should reproduce the payload exactly")
		})
	}
}

func TestDecodePayloadRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"ids":[1],"status":"FRESH","surprise":true}`)

	_, err := DecodePayload(TypeItemUpdater, raw)

	assert.ErrorIs(t, err, ErrPayloadMismatch, "unknown fields should fail decoding")
}

func TestDecodePayloadRejectsWrongShape(t *testing.T) {
	t.Parallel()

	// An image-process body decoded as an item update.
	raw := json.RawMessage(`{"receiptId":42,"url":"https://example.com/r.jpg"}`)

	_, err := DecodePayload(TypeItemUpdater, raw)

	assert.ErrorIs(t, err, ErrPayloadMismatch, "a payload of the wrong shape should fail decoding")
}

func TestDecodePayloadRejectsUnknownQueue(t *testing.T) {
	t.Parallel()

	_, err := DecodePayload(Type("mystery"), json.RawMessage(`{}`))

	assert.ErrorIs(t, err, ErrUnknownQueue, "a queue outside the enum should fail")
}

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	env, err := NewEnvelope(TypeDailyReporter, &DailyReportPayload{UserID: 7}, 10*time.Second, now)

	require.NoError(t, err)
	assert.NotEqual(t, env.ID.String(), "00000000-0000-0000-0000-000000000000", "envelope should get a real id")
	assert.Equal(t, TypeDailyReporter, env.Queue)
	assert.Equal(t, StatePending, env.State)
	assert.Equal(t, now, env.EnqueuedAt, "enqueue instant should be now")
	assert.Equal(t, now.Add(10*time.Second), env.NotBefore, "eligibility should be now plus the delay")

	decoded, err := env.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, &DailyReportPayload{UserID: 7}, decoded)
}

func TestNewEnvelopeRejectsMismatchedQueue(t *testing.T) {
	t.Parallel()

	_, err := NewEnvelope(TypeItemUpdater, &DailyReportPayload{UserID: 7}, 0, time.Now())

	assert.ErrorIs(t, err, ErrPayloadMismatch, "a payload on the wrong queue should be rejected")
}
