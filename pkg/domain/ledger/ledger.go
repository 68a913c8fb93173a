// Package ledger holds the per-user money pools and the only arithmetic
// allowed to change them.
package ledger

import (
	"fmt"
	"time"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field names one of the four money pools on a user row.
type Field string

const (
	CurrentDeposit Field = "current_deposit"
	ROIInvestment  Field = "roi_investment"
	Profit         Field = "profit"
	CopyExpenses   Field = "copy_expenses"
)

// Fields lists every ledger field in storage order.
var Fields = []Field{CurrentDeposit, ROIInvestment, Profit, CopyExpenses}

// Valid reports whether f is a known ledger field.
func (f Field) Valid() bool {
	switch f {
	case CurrentDeposit, ROIInvestment, Profit, CopyExpenses:
		return true
	}
	return false
}

// Balances is the snapshot of a user's money pools. Every field stays >= 0.
type Balances struct {
	CurrentDeposit decimal.Decimal `json:"current_deposit"`
	ROIInvestment  decimal.Decimal `json:"roi_investment"`
	Profit         decimal.Decimal `json:"profit"`
	CopyExpenses   decimal.Decimal `json:"copy_expenses"`
}

// Entry is a single signed change applied to one field.
type Entry struct {
	Field        Field           `json:"field"`
	Delta        decimal.Decimal `json:"delta"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// Round quantizes to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateAmount rejects zero, negative and sub-cent amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount.String())
	}
	return nil
}

// Get returns the value of a field.
func (b Balances) Get(f Field) decimal.Decimal {
	switch f {
	case CurrentDeposit:
		return b.CurrentDeposit
	case ROIInvestment:
		return b.ROIInvestment
	case Profit:
		return b.Profit
	case CopyExpenses:
		return b.CopyExpenses
	}
	return decimal.Zero
}

func (b *Balances) set(f Field, v decimal.Decimal) {
	switch f {
	case CurrentDeposit:
		b.CurrentDeposit = v
	case ROIInvestment:
		b.ROIInvestment = v
	case Profit:
		b.Profit = v
	case CopyExpenses:
		b.CopyExpenses = v
	}
}

func checkField(f Field) error {
	if !f.Valid() {
		return fmt.Errorf("%w: unknown ledger field %q", domain.ErrValidation, f)
	}
	return nil
}

// Credit adds amount to f.
func (b *Balances) Credit(f Field, amount decimal.Decimal) (Entry, error) {
	if err := checkField(f); err != nil {
		return Entry{}, err
	}
	if err := ValidateAmount(amount); err != nil {
		return Entry{}, err
	}
	after := b.Get(f).Add(amount)
	b.set(f, after)
	return Entry{Field: f, Delta: amount, BalanceAfter: after}, nil
}

// Debit subtracts amount from f and fails rather than go negative.
func (b *Balances) Debit(f Field, amount decimal.Decimal) (Entry, error) {
	if err := checkField(f); err != nil {
		return Entry{}, err
	}
	if err := ValidateAmount(amount); err != nil {
		return Entry{}, err
	}
	current := b.Get(f)
	if current.LessThan(amount) {
		return Entry{}, fmt.Errorf(
			"%w: %s has %s, need %s",
			domain.ErrInsufficientFunds, f, current.StringFixed(2), amount.StringFixed(2),
		)
	}
	after := current.Sub(amount)
	b.set(f, after)
	return Entry{Field: f, Delta: amount.Neg(), BalanceAfter: after}, nil
}

// DebitUpTo subtracts at most amount from f, stopping at zero. The returned
// entry carries the delta actually applied, which may be zero.
func (b *Balances) DebitUpTo(f Field, amount decimal.Decimal) (Entry, error) {
	if err := checkField(f); err != nil {
		return Entry{}, err
	}
	if err := ValidateAmount(amount); err != nil {
		return Entry{}, err
	}
	current := b.Get(f)
	applied := decimal.Min(current, amount)
	after := current.Sub(applied)
	b.set(f, after)
	return Entry{Field: f, Delta: applied.Neg(), BalanceAfter: after}, nil
}

// Move debits from and credits to by the same amount.
func (b *Balances) Move(from, to Field, amount decimal.Decimal) ([]Entry, error) {
	if from == to {
		return nil, fmt.Errorf("%w: cannot move %s onto itself", domain.ErrValidation, from)
	}
	snapshot := *b
	debit, err := b.Debit(from, amount)
	if err != nil {
		return nil, err
	}
	credit, err := b.Credit(to, amount)
	if err != nil {
		*b = snapshot
		return nil, err
	}
	return []Entry{debit, credit}, nil
}

// Set overwrites f with value and reports the difference as an entry.
// Used by administrative balance corrections.
func (b *Balances) Set(f Field, value decimal.Decimal) (Entry, error) {
	if err := checkField(f); err != nil {
		return Entry{}, err
	}
	if value.IsNegative() || !value.Equal(value.Truncate(2)) {
		return Entry{}, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, value.String())
	}
	delta := value.Sub(b.Get(f))
	b.set(f, value)
	return Entry{Field: f, Delta: delta, BalanceAfter: value}, nil
}

// Op is a deferred balance mutation, applied by the ledger poster inside a
// unit of work.
type Op func(b *Balances) ([]Entry, error)

func CreditOp(f Field, amount decimal.Decimal) Op {
	return func(b *Balances) ([]Entry, error) {
		e, err := b.Credit(f, amount)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	}
}

func DebitOp(f Field, amount decimal.Decimal) Op {
	return func(b *Balances) ([]Entry, error) {
		e, err := b.Debit(f, amount)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	}
}

func DebitUpToOp(f Field, amount decimal.Decimal) Op {
	return func(b *Balances) ([]Entry, error) {
		e, err := b.DebitUpTo(f, amount)
		if err != nil {
			return nil, err
		}
		if e.Delta.IsZero() {
			return nil, nil
		}
		return []Entry{e}, nil
	}
}

func MoveOp(from, to Field, amount decimal.Decimal) Op {
	return func(b *Balances) ([]Entry, error) {
		return b.Move(from, to, amount)
	}
}

// SetOp overwrites every field in target, skipping unchanged ones.
func SetOp(target Balances) Op {
	return func(b *Balances) ([]Entry, error) {
		var entries []Entry
		for _, f := range Fields {
			if b.Get(f).Equal(target.Get(f)) {
				continue
			}
			e, err := b.Set(f, target.Get(f))
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return entries, nil
	}
}

// Apply runs ops in order against a copy of b. On failure b is untouched.
func (b *Balances) Apply(ops ...Op) ([]Entry, error) {
	working := *b
	var entries []Entry
	for _, op := range ops {
		es, err := op(&working)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	*b = working
	return entries, nil
}

// Drift is the difference between a stored balance and the sum of its entries.
type Drift struct {
	Field    Field           `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}

// Reconcile compares stored balances with the per-field sum of entry deltas
// and returns the fields that disagree.
func Reconcile(stored Balances, entries []Entry) []Drift {
	var sums Balances
	for _, e := range entries {
		sums.set(e.Field, sums.Get(e.Field).Add(e.Delta))
	}
	var drift []Drift
	for _, f := range Fields {
		if !stored.Get(f).Equal(sums.Get(f)) {
			drift = append(drift, Drift{Field: f, Stored: stored.Get(f), Computed: sums.Get(f)})
		}
	}
	return drift
}

// Source says which workflow produced a posting.
type Source struct {
	Type   string
	ID     uuid.UUID
	Reason string
}

// Record is a persisted ledger entry.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Field      Field           `json:"field"`
	Delta      decimal.Decimal `json:"delta"`
	Balance    decimal.Decimal `json:"balance_after"`
	Reason     string          `json:"reason"`
	SourceType string          `json:"source_type"`
	SourceID   uuid.UUID       `json:"source_id"`
	CreatedAt  time.Time       `json:"created"`
}

// NewRecords stamps entries with their owner and source.
func NewRecords(userID uuid.UUID, src Source, entries []Entry) []*Record {
	now := time.Now().UTC()
	out := make([]*Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, &Record{
			ID:         uuid.New(),
			UserID:     userID,
			Field:      e.Field,
			Delta:      e.Delta,
			Balance:    e.BalanceAfter,
			Reason:     src.Reason,
			SourceType: src.Type,
			SourceID:   src.ID,
			CreatedAt:  now,
		})
	}
	return out
}

// Entries strips persistence details, for reconciliation.
func Entries(records []*Record) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, Entry{Field: r.Field, Delta: r.Delta, BalanceAfter: r.Balance})
	}
	return out
}
