package config

import (
	"time"

	"github.com/shopspring/decimal"
)

type DB struct {
	Driver       string        `envconfig:"DRIVER" default:"postgres"`
	Url          string        `envconfig:"URL"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"false"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxLifetime  time.Duration `envconfig:"MAX_LIFETIME" default:"1h"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}
type Auth struct {
	Strategy string `envconfig:"STRATEGY" default:"jwt"`
	Jwt      *Jwt   `envconfig:"JWT"`
}

type Redis struct {
	URL          string        `envconfig:"URL"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Ledger holds the money rules. Minimums are in major units of Currency.
type Ledger struct {
	Currency             string          `envconfig:"CURRENCY" default:"GHS"`
	MinInvestment        decimal.Decimal `envconfig:"MIN_INVESTMENT" default:"100"`
	MinWithdrawal        decimal.Decimal `envconfig:"MIN_WITHDRAWAL" default:"10"`
	MinDeposit           decimal.Decimal `envconfig:"MIN_DEPOSIT" default:"100"`
	InvestorSharePercent decimal.Decimal `envconfig:"INVESTOR_SHARE_PERCENT" default:"80"`
	AllowOverfunding     bool            `envconfig:"ALLOW_OVERFUNDING" default:"true"`
	GatewayTimeout       time.Duration   `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
}

//revive:disable
type Paystack struct {
	SecretKey   string `envconfig:"SECRET_KEY"`
	BaseURL     string `envconfig:"BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string `envconfig:"CALLBACK_URL" default:"http://localhost:3000/payment/callback"`
}

type Stripe struct {
	Env           string `envconfig:"ENV" default:"test"`
	ApiKey        string `envconfig:"API_KEY"`
	SigningSecret string `envconfig:"SIGNING_SECRET"`
	SuccessPath   string `envconfig:"SUCCESS_PATH" default:"http://localhost:3000/payment/stripe/success/"`
	CancelPath    string `envconfig:"CANCEL_PATH" default:"http://localhost:3000/payment/stripe/cancel/"`
}

//revive:enable

// PaymentProviders selects the gateway. Provider is one of mock, paystack or stripe.
type PaymentProviders struct {
	Provider string    `envconfig:"PROVIDER" default:"mock"`
	Paystack *Paystack `envconfig:"PAYSTACK"`
	Stripe   *Stripe   `envconfig:"STRIPE"`
}

type Kafka struct {
	Brokers       []string `envconfig:"BROKERS" default:"localhost:9092"`
	GroupID       string   `envconfig:"GROUP_ID" default:"demony"`
	TopicPrefix   string   `envconfig:"TOPIC_PREFIX" default:"demony"`
	SASLUsername  string   `envconfig:"SASL_USERNAME"`
	SASLPassword  string   `envconfig:"SASL_PASSWORD"`
	TLSEnabled    bool     `envconfig:"TLS_ENABLED" default:"false"`
	TLSSkipVerify bool     `envconfig:"TLS_SKIP_VERIFY" default:"false"`
}

// EventBus selects the post-commit event transport: memory, redis or kafka.
type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Stream string `envconfig:"STREAM" default:"demony-events"`
	Group  string `envconfig:"GROUP" default:"demony"`
	Kafka  *Kafka `envconfig:"KAFKA"`
}

type SMTP struct {
	Host     string        `envconfig:"HOST"`
	Port     int           `envconfig:"PORT" default:"587"`
	Username string        `envconfig:"USERNAME"`
	Password string        `envconfig:"PASSWORD"`
	From     string        `envconfig:"FROM" default:"Demony <no-reply@demony.app>"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// Notify selects how investor notifications are delivered: log or smtp.
type Notify struct {
	Driver      string        `envconfig:"DRIVER" default:"log"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"15s"`
	MaxInFlight int           `envconfig:"MAX_IN_FLIGHT" default:"32"`
	SMTP        *SMTP         `envconfig:"SMTP"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[demony]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env              string            `envconfig:"APP_ENV" default:"development"`
	Server           *Server           `envconfig:"SERVER"`
	Log              *Log              `envconfig:"LOG"`
	DB               *DB               `envconfig:"DATABASE"`
	Auth             *Auth             `envconfig:"AUTH"`
	Redis            *Redis            `envconfig:"REDIS"`
	RateLimit        *RateLimit        `envconfig:"RATE_LIMIT"`
	Ledger           *Ledger           `envconfig:"LEDGER"`
	PaymentProviders *PaymentProviders `envconfig:"PAYMENT"`
	EventBus         *EventBus         `envconfig:"EVENT_BUS"`
	Notify           *Notify           `envconfig:"NOTIFY"`
}
