package notifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/testutils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

// blockingSender holds every Send until release is closed.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSender) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return tgbotapi.Message{}, nil
}

type silentEvent struct{}

func (silentEvent) Type() string { return "Silent" }

func approvedEvent(username string) events.PaymentApproved {
	return events.PaymentApproved{
		Meta:      events.NewMeta(uuid.New(), username),
		PaymentID: uuid.New(),
		Amount:    decimal.NewFromInt(100),
	}
}

func TestTelegramForwardsNotifiableEvents(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == "Payment of $100.00 for alice approved"
	})).Return(nil).Once()

	bus := eventbus.NewWithMemory(testutils.DiscardLogger())
	n := NewTelegramWithSender(sender, 42, 8, testutils.DiscardLogger())
	n.Subscribe(bus)

	require.NoError(t, bus.Emit(context.Background(), approvedEvent("alice")))
	require.NoError(t, n.Close())
	sender.AssertExpectations(t)
}

func TestTelegramSwallowsFailures(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("chat not found"))
	n := NewTelegramWithSender(sender, 1, 8, testutils.DiscardLogger())

	err := n.Handle(context.Background(), events.KYCSubmitted{Meta: events.NewMeta(uuid.New(), "bob")})
	assert.NoError(t, err)
	assert.NoError(t, n.Handle(context.Background(), silentEvent{}))
	require.NoError(t, n.Close())
	sender.AssertNumberOfCalls(t, "Send", 1)

	assert.NoError(t, n.Handle(context.Background(), events.KYCSubmitted{}))
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestTelegramDoesNotBlockEmitter(t *testing.T) {
	sender := &blockingSender{started: make(chan struct{}), release: make(chan struct{})}
	bus := eventbus.NewWithMemory(testutils.DiscardLogger())
	n := NewTelegramWithSender(sender, 7, 1, testutils.DiscardLogger())
	n.Subscribe(bus)

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, approvedEvent("first")))
	<-sender.started

	// The worker is stuck on the first message: the second fills the
	// queue and the third is dropped, all without waiting.
	require.NoError(t, bus.Emit(ctx, approvedEvent("second")))
	require.NoError(t, bus.Emit(ctx, approvedEvent("third")))

	close(sender.release)
	require.NoError(t, n.Close())
	assert.Equal(t, int32(2), sender.calls.Load())
}

func TestNewTelegramBoundsRequestTime(t *testing.T) {
	var sends atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Axeria","username":"axeria_bot"}}`))
			return
		}
		sends.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	n, err := NewTelegram(&config.Telegram{
		Token:    "123:abc",
		ChatID:   9,
		Endpoint: srv.URL + "/bot%s/%s",
		Timeout:  100 * time.Millisecond,
	}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.NotNil(t, n)

	require.NoError(t, n.Handle(context.Background(), approvedEvent("carol")))
	start := time.Now()
	require.NoError(t, n.Close())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(1), sends.Load())
}

func TestNewTelegramDisabledWithoutToken(t *testing.T) {
	n, err := NewTelegram(&config.Telegram{}, testutils.DiscardLogger())
	require.NoError(t, err)
	assert.Nil(t, n)
}
