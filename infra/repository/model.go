package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a user record in the database.
type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Username       string          `gorm:"uniqueIndex;not null;size:150"`
	Email          string          `gorm:"uniqueIndex;not null;size:255"`
	Password       string          `gorm:"not null"`
	Role           string          `gorm:"size:20;not null;index"`
	FirstName      string          `gorm:"size:150"`
	LastName       string          `gorm:"size:150"`
	FullName       string          `gorm:"size:100"`
	Mobile         string          `gorm:"size:15"`
	Address        string          `gorm:"size:100"`
	City           string          `gorm:"size:50"`
	ZipCode        string          `gorm:"size:20"`
	Language       string          `gorm:"size:10;not null"`
	Active         bool            `gorm:"not null"`
	Blocked        bool            `gorm:"not null"`
	CustomMessage  string          `gorm:"size:300"`
	MessageFormat  string          `gorm:"size:20"`
	CurrentDeposit decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ROIInvestment  decimal.Decimal `gorm:"column:roi_investment;type:numeric(12,2);not null"`
	Profit         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CopyExpenses   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Version        int64           `gorm:"not null"`
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"column:last_login_ip;size:64"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string { return "users" }

// LedgerEntry is an immutable balance change.
type LedgerEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	User         *User           `gorm:"constraint:OnDelete:CASCADE"`
	Field        string          `gorm:"size:20;not null"`
	Delta        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Reason       string          `gorm:"size:100"`
	SourceType   string          `gorm:"size:30;index:idx_ledger_source"`
	SourceID     uuid.UUID       `gorm:"type:uuid;index:idx_ledger_source"`
	CreatedAt    time.Time       `gorm:"index"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// Transaction represents a transaction record in the database.
type Transaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	User       *User           `gorm:"constraint:OnDelete:CASCADE"`
	Type       string          `gorm:"size:20;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status     string          `gorm:"size:20;not null"`
	Ref        uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	SourceType string          `gorm:"size:30;index:idx_transactions_source"`
	SourceID   *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_source"`
	Date       time.Time       `gorm:"not null;index"`
	UpdatedAt  time.Time
}

func (Transaction) TableName() string { return "transactions" }

type PaymentMethod struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name          string            `gorm:"size:50;not null"`
	WalletAddress string            `gorm:"size:250;not null"`
	Details       map[string]string `gorm:"serializer:json"`
	Active        bool              `gorm:"not null"`
	Ref           uuid.UUID         `gorm:"type:uuid;uniqueIndex"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PaymentMethod) TableName() string { return "payment_methods" }

type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	User          *User           `gorm:"constraint:OnDelete:CASCADE"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MethodID      *uuid.UUID      `gorm:"type:uuid"`
	Method        *PaymentMethod  `gorm:"constraint:OnDelete:SET NULL"`
	Purpose       string          `gorm:"size:10;not null"`
	PortfolioID   *uuid.UUID      `gorm:"type:uuid"`
	Portfolio     *Portfolio      `gorm:"constraint:OnDelete:SET NULL"`
	Ref           uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	Status        string          `gorm:"size:10;not null;index"`
	TransactionNo string          `gorm:"size:20;uniqueIndex"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Payment) TableName() string { return "payments" }

type Withdrawal struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	User                 *User           `gorm:"constraint:OnDelete:CASCADE"`
	Currency             string          `gorm:"size:20;not null"`
	WalletAddress        string          `gorm:"size:250;not null"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Charges              decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	AvailableForWithdraw decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	WithdrawalType       string          `gorm:"size:10;not null"`
	Status               string          `gorm:"size:20;not null;index"`
	Ref                  uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	CreatedAt            time.Time
	DecidedAt            *time.Time
}

func (Withdrawal) TableName() string { return "withdrawals" }

type InvestmentPlan struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name               string          `gorm:"size:20;uniqueIndex;not null"`
	Percentage         decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	ReferralCommission decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TradeFee           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MinimumInvestment  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MaximumInvestment  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Active             bool            `gorm:"not null"`
	PlanType           string          `gorm:"size:10;not null"`
	RecurringDays      int             `gorm:"not null"`
	Term               int             `gorm:"not null"`
	DurationMultiplier int             `gorm:"not null"`
	CreatedAt          time.Time
}

func (InvestmentPlan) TableName() string { return "investment_plans" }

type Portfolio struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	User            *User           `gorm:"constraint:OnDelete:CASCADE"`
	PlanID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Plan            *InvestmentPlan `gorm:"constraint:OnDelete:RESTRICT"`
	AmountInvested  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AmountAvailable decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Profit          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status          string          `gorm:"size:10;not null;index"`
	BotActive       bool            `gorm:"not null"`
	BotName         string          `gorm:"size:100"`
	SetupDate       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time
}

func (Portfolio) TableName() string { return "portfolios" }

type Trader struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                 string          `gorm:"size:100;not null"`
	Image                string          `gorm:"size:255"`
	DurationDays         int             `gorm:"not null"`
	TotalInvestors       int             `gorm:"not null"`
	ActiveInvestors      int             `gorm:"not null"`
	MinDeposit           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RiskLevel            decimal.Decimal `gorm:"type:numeric(10,1);not null"`
	WinRate              decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DailyROI             decimal.Decimal `gorm:"column:daily_roi;type:numeric(10,2);not null"`
	TradingFeePercentage decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Verified             bool            `gorm:"not null"`
	CreatedAt            time.Time
}

func (Trader) TableName() string { return "traders" }

type CopyTrade struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	User            *User           `gorm:"constraint:OnDelete:CASCADE"`
	TraderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Trader          *Trader         `gorm:"constraint:OnDelete:CASCADE"`
	AmountCopying   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TradeProgress   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CurrentProfit   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	WithdrawnProfit decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Active          bool            `gorm:"not null;index"`
	OpenedAt        time.Time       `gorm:"not null"`
	UpdatedAt       time.Time
}

func (CopyTrade) TableName() string { return "copy_trades" }

type LiveTrade struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	User            *User               `gorm:"constraint:OnDelete:CASCADE"`
	TraderID        *uuid.UUID          `gorm:"type:uuid"`
	Trader          *Trader             `gorm:"constraint:OnDelete:SET NULL"`
	Ticker          string              `gorm:"size:20;not null"`
	Striker         string              `gorm:"size:50"`
	IntervalSeconds int64               `gorm:"not null"`
	Side            string              `gorm:"size:4;not null"`
	Category        string              `gorm:"size:10;not null"`
	Amount          decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	EntryPrice      decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	ExitPrice       decimal.NullDecimal `gorm:"type:numeric(20,8)"`
	Profit          decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	Outcome         string              `gorm:"size:10"`
	Open            bool                `gorm:"column:is_open;not null;index"`
	AdminCreated    bool                `gorm:"not null"`
	OpenedAt        time.Time           `gorm:"not null"`
	ClosedAt        time.Time           `gorm:"not null;index"`
}

func (LiveTrade) TableName() string { return "live_trades" }

type KycVerification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	User           *User     `gorm:"constraint:OnDelete:CASCADE"`
	Document       string    `gorm:"size:255;not null"`
	Status         string    `gorm:"size:20;not null;index"`
	RejectedReason string    `gorm:"type:text"`
	Ref            uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	UploadedAt     time.Time `gorm:"not null"`
}

func (KycVerification) TableName() string { return "kyc_verifications" }

type MarketCategory struct {
	ID     uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name   string        `gorm:"size:100;uniqueIndex;not null"`
	Slug   string        `gorm:"size:120;uniqueIndex;not null"`
	Assets []MarketAsset `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (MarketCategory) TableName() string { return "market_categories" }

type MarketAsset struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"size:100;not null"`
	Ticker          string          `gorm:"size:20;uniqueIndex;not null"`
	Image           string          `gorm:"size:255"`
	PercentChange1D decimal.Decimal `gorm:"column:percent_change_1d;type:numeric(8,5);not null"`
	Slug            string          `gorm:"size:120;uniqueIndex;not null"`
}

func (MarketAsset) TableName() string { return "market_assets" }

// SiteConfig is a single row with ID 1.
type SiteConfig struct {
	ID               uint            `gorm:"primaryKey"`
	WithdrawalCharge decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Email            string          `gorm:"size:50"`
	SiteName         string          `gorm:"size:50"`
	SiteMobile       string          `gorm:"size:50"`
	BotAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UpdatedAt        time.Time
}

func (SiteConfig) TableName() string { return "site_config" }

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&User{},
		&LedgerEntry{},
		&Transaction{},
		&PaymentMethod{},
		&InvestmentPlan{},
		&Portfolio{},
		&Payment{},
		&Withdrawal{},
		&Trader{},
		&CopyTrade{},
		&LiveTrade{},
		&KycVerification{},
		&MarketCategory{},
		&MarketAsset{},
		&SiteConfig{},
	}
}
