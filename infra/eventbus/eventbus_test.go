package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryEventBusDispatchesByType(t *testing.T) {
	t.Parallel()
	bus := NewWithMemory(discardLogger())

	var got []events.Event
	bus.Register(events.EventTypePaymentApproved.String(), func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	bus.Register(events.EventTypePaymentApproved.String(), func(context.Context, events.Event) error {
		return errors.New("handler failure is logged only")
	})

	approved := events.PaymentApproved{Meta: events.NewMeta(uuid.New(), "bob"), Amount: decimal.NewFromInt(5)}
	require.NoError(t, bus.Emit(context.Background(), approved))
	require.NoError(t, bus.Emit(context.Background(), events.PaymentDeclined{}))

	require.Len(t, got, 1)
	assert.Equal(t, approved, got[0])
	assert.Len(t, bus.Published(), 2)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBusKeepsBoundedHistory(t *testing.T) {
	t.Parallel()
	bus := NewWithMemory(discardLogger())

	total := maxRecorded + 44
	for i := range total {
		evt := events.LiveTradeSettled{Meta: events.NewMeta(uuid.New(), "trader"), Profit: decimal.NewFromInt(int64(i))}
		require.NoError(t, bus.Emit(context.Background(), evt))
	}

	published := bus.Published()
	require.Len(t, published, maxRecorded)
	first, ok := published[0].(events.LiveTradeSettled)
	require.True(t, ok)
	assert.True(t, first.Profit.Equal(decimal.NewFromInt(44)), first.Profit.String())
	last, ok := published[maxRecorded-1].(events.LiveTradeSettled)
	require.True(t, ok)
	assert.True(t, last.Profit.Equal(decimal.NewFromInt(int64(total-1))), last.Profit.String())
}

func TestMemoryEventBusRecoversPanics(t *testing.T) {
	t.Parallel()
	bus := NewWithMemory(discardLogger())
	bus.Register(events.EventTypeKYCSubmitted.String(), func(context.Context, events.Event) error {
		panic("boom")
	})
	assert.NotPanics(t, func() {
		_ = bus.Emit(context.Background(), events.KYCSubmitted{})
	})
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()
	in := events.WithdrawalRequested{
		Meta:           events.NewMeta(uuid.New(), "ann"),
		WithdrawalID:   uuid.New(),
		Amount:         decimal.RequireFromString("12.34"),
		WithdrawalType: "profit",
		Currency:       "USDT",
	}
	raw, err := encodeEnvelope(in)
	require.NoError(t, err)

	out, err := decodeEnvelope(raw, events.EventTypes)
	require.NoError(t, err)
	decoded, ok := out.(*events.WithdrawalRequested)
	require.True(t, ok)
	assert.Equal(t, in.WithdrawalID, decoded.WithdrawalID)
	assert.True(t, in.Amount.Equal(decoded.Amount))

	_, err = decodeEnvelope([]byte(`{"type":"Nope","payload":{}}`), events.EventTypes)
	assert.Error(t, err)
}

func TestTopicNameFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "axeria.events.payment.approved", topicNameFor("axeria.events", "Payment.Approved"))
	assert.Equal(t, []string{"a:1", "b:2"}, parseBrokers(" a:1, ,b:2"))
}
