// Package events defines what the workflows announce after they commit.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is anything published on the bus.
type Event interface {
	Type() string
}

// Notifiable events carry a one-line human summary for chat notifications.
type Notifiable interface {
	Event
	Message() string
}

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeUserRegistered      EventType = "User.Registered"
	EventTypePaymentRequested    EventType = "Payment.Requested"
	EventTypePaymentApproved     EventType = "Payment.Approved"
	EventTypePaymentDeclined     EventType = "Payment.Declined"
	EventTypeWithdrawalRequested EventType = "Withdrawal.Requested"
	EventTypeWithdrawalApproved  EventType = "Withdrawal.Approved"
	EventTypeWithdrawalRejected  EventType = "Withdrawal.Rejected"
	EventTypeCopyTradeStarted    EventType = "CopyTrade.Started"
	EventTypeLiveTradeOpened     EventType = "LiveTrade.Opened"
	EventTypeLiveTradeSettled    EventType = "LiveTrade.Settled"
	EventTypeKYCSubmitted        EventType = "KYC.Submitted"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Meta is shared by every event.
type Meta struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewMeta(userID uuid.UUID, username string) Meta {
	return Meta{UserID: userID, Username: username, OccurredAt: time.Now().UTC()}
}

type UserRegistered struct {
	Meta
	Email string `json:"email"`
}

func (UserRegistered) Type() string { return EventTypeUserRegistered.String() }
func (e UserRegistered) Message() string {
	return fmt.Sprintf("New user %s (%s) registered", e.Username, e.Email)
}

type PaymentRequested struct {
	Meta
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Purpose       string          `json:"purpose"`
	TransactionNo string          `json:"transaction_no"`
}

func (PaymentRequested) Type() string { return EventTypePaymentRequested.String() }
func (e PaymentRequested) Message() string {
	return fmt.Sprintf("%s requested a %s payment of $%s (#%s)", e.Username, e.Purpose, e.Amount.StringFixed(2), e.TransactionNo)
}

type PaymentApproved struct {
	Meta
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (PaymentApproved) Type() string { return EventTypePaymentApproved.String() }
func (e PaymentApproved) Message() string {
	return fmt.Sprintf("Payment of $%s for %s approved", e.Amount.StringFixed(2), e.Username)
}

type PaymentDeclined struct {
	Meta
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (PaymentDeclined) Type() string { return EventTypePaymentDeclined.String() }
func (e PaymentDeclined) Message() string {
	return fmt.Sprintf("Payment of $%s for %s declined", e.Amount.StringFixed(2), e.Username)
}

type WithdrawalRequested struct {
	Meta
	WithdrawalID   uuid.UUID       `json:"withdrawal_id"`
	Amount         decimal.Decimal `json:"amount"`
	WithdrawalType string          `json:"withdrawal_type"`
	Currency       string          `json:"currency"`
}

func (WithdrawalRequested) Type() string { return EventTypeWithdrawalRequested.String() }
func (e WithdrawalRequested) Message() string {
	return fmt.Sprintf("%s requested a %s withdrawal of $%s in %s", e.Username, e.WithdrawalType, e.Amount.StringFixed(2), e.Currency)
}

type WithdrawalApproved struct {
	Meta
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Amount       decimal.Decimal `json:"amount"`
	Field        string          `json:"field"`
}

func (WithdrawalApproved) Type() string { return EventTypeWithdrawalApproved.String() }
func (e WithdrawalApproved) Message() string {
	return fmt.Sprintf("Withdrawal of $%s for %s approved", e.Amount.StringFixed(2), e.Username)
}

type WithdrawalRejected struct {
	Meta
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Amount       decimal.Decimal `json:"amount"`
}

func (WithdrawalRejected) Type() string { return EventTypeWithdrawalRejected.String() }
func (e WithdrawalRejected) Message() string {
	return fmt.Sprintf("Withdrawal of $%s for %s rejected", e.Amount.StringFixed(2), e.Username)
}

type CopyTradeStarted struct {
	Meta
	CopyTradeID uuid.UUID       `json:"copy_trade_id"`
	TraderName  string          `json:"trader_name"`
	Amount      decimal.Decimal `json:"amount"`
}

func (CopyTradeStarted) Type() string { return EventTypeCopyTradeStarted.String() }
func (e CopyTradeStarted) Message() string {
	return fmt.Sprintf("%s started copying %s with $%s", e.Username, e.TraderName, e.Amount.StringFixed(2))
}

type LiveTradeOpened struct {
	Meta
	LiveTradeID uuid.UUID       `json:"live_trade_id"`
	Ticker      string          `json:"ticker"`
	Amount      decimal.Decimal `json:"amount"`
}

func (LiveTradeOpened) Type() string { return EventTypeLiveTradeOpened.String() }
func (e LiveTradeOpened) Message() string {
	return fmt.Sprintf("Live trade on %s opened for %s with $%s", e.Ticker, e.Username, e.Amount.StringFixed(2))
}

type LiveTradeSettled struct {
	Meta
	LiveTradeID uuid.UUID       `json:"live_trade_id"`
	Ticker      string          `json:"ticker"`
	Outcome     string          `json:"outcome"`
	Profit      decimal.Decimal `json:"profit"`
}

func (LiveTradeSettled) Type() string { return EventTypeLiveTradeSettled.String() }
func (e LiveTradeSettled) Message() string {
	return fmt.Sprintf("Live trade on %s for %s settled: %s (%s)", e.Ticker, e.Username, e.Outcome, e.Profit.StringFixed(2))
}

type KYCSubmitted struct {
	Meta
	VerificationID uuid.UUID `json:"verification_id"`
}

func (KYCSubmitted) Type() string { return EventTypeKYCSubmitted.String() }
func (e KYCSubmitted) Message() string {
	return fmt.Sprintf("%s submitted a KYC document", e.Username)
}

// EventTypes maps a type name to a constructor, used by the bus
// implementations that decode events off the wire.
var EventTypes = map[string]func() Event{
	EventTypeUserRegistered.String():      func() Event { return &UserRegistered{} },
	EventTypePaymentRequested.String():    func() Event { return &PaymentRequested{} },
	EventTypePaymentApproved.String():     func() Event { return &PaymentApproved{} },
	EventTypePaymentDeclined.String():     func() Event { return &PaymentDeclined{} },
	EventTypeWithdrawalRequested.String(): func() Event { return &WithdrawalRequested{} },
	EventTypeWithdrawalApproved.String():  func() Event { return &WithdrawalApproved{} },
	EventTypeWithdrawalRejected.String():  func() Event { return &WithdrawalRejected{} },
	EventTypeCopyTradeStarted.String():    func() Event { return &CopyTradeStarted{} },
	EventTypeLiveTradeOpened.String():     func() Event { return &LiveTradeOpened{} },
	EventTypeLiveTradeSettled.String():    func() Event { return &LiveTradeSettled{} },
	EventTypeKYCSubmitted.String():        func() Event { return &KYCSubmitted{} },
}
