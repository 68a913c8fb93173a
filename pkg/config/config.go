package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Url         string `envconfig:"URL" default:"file:axeria.db?_foreign_keys=on"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:""`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"axeria:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type EventBus struct {
	Driver      string `envconfig:"DRIVER" default:"memory"`
	RedisStream string `envconfig:"REDIS_STREAM" default:"axeria.events"`
	RedisGroup  string `envconfig:"REDIS_GROUP" default:"axeria"`
}

type Kafka struct {
	Brokers     string `envconfig:"BROKERS" default:"localhost:9092"`
	GroupID     string `envconfig:"GROUP_ID" default:"axeria"`
	TopicPrefix string `envconfig:"TOPIC_PREFIX" default:"axeria.events"`
}

type PriceTicker struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"https://api.binance.com"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"3s"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	CachePrefix string        `envconfig:"CACHE_PREFIX" default:"ticker:"`
}

type Telegram struct {
	Token     string        `envconfig:"TOKEN"`
	ChatID    int64         `envconfig:"CHAT_ID"`
	Endpoint  string        `envconfig:"ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"5s"`
	QueueSize int           `envconfig:"QUEUE_SIZE" default:"64"`
}

type Storage struct {
	Dir          string `envconfig:"DIR" default:"./uploads"`
	MaxFileBytes int64  `envconfig:"MAX_FILE_BYTES" default:"5242880"`
}

type Scheduler struct {
	Enabled      bool   `envconfig:"ENABLED" default:"true"`
	SettleSpec   string `envconfig:"SETTLE_SPEC" default:"@every 1m"`
	ProgressSpec string `envconfig:"PROGRESS_SPEC" default:"@hourly"`
}

// Ledger holds balance policy knobs.
type Ledger struct {
	// WithdrawalDebit is "by_type" or "legacy_deposit".
	WithdrawalDebit string `envconfig:"WITHDRAWAL_DEBIT" default:"by_type"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[axeria]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// Site seeds the site configuration row on first read.
type Site struct {
	Name             string          `envconfig:"NAME" default:"Axeria"`
	Email            string          `envconfig:"EMAIL" default:"support@axeria.local"`
	Mobile           string          `envconfig:"MOBILE" default:""`
	WithdrawalCharge decimal.Decimal `envconfig:"WITHDRAWAL_CHARGE" default:"0"`
	BotAmount        decimal.Decimal `envconfig:"BOT_AMOUNT" default:"0"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Auth        *Auth        `envconfig:"AUTH"`
	Redis       *Redis       `envconfig:"REDIS"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
	EventBus    *EventBus    `envconfig:"EVENT_BUS"`
	Kafka       *Kafka       `envconfig:"KAFKA"`
	PriceTicker *PriceTicker `envconfig:"PRICE_TICKER"`
	Telegram    *Telegram    `envconfig:"TELEGRAM"`
	Storage     *Storage     `envconfig:"STORAGE"`
	Scheduler   *Scheduler   `envconfig:"SCHEDULER"`
	Ledger      *Ledger      `envconfig:"LEDGER"`
	Site        *Site        `envconfig:"SITE"`
}
