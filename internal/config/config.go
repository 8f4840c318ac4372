package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	Env         string `envconfig:"ENV" default:"development"`
	APIURL      string `envconfig:"EXTERNAL_URL" default:"localhost:8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	DB          DB          `ignored:"true"`
	Redis       Redis       `ignored:"true"`
	RabbitMQ    RabbitMQ    `ignored:"true"`
	Auth        Auth        `ignored:"true"`
	Midtrans    Midtrans    `ignored:"true"`
	RateLimiter RateLimiter `ignored:"true"`
	Mail        Mail        `ignored:"true"`

	OrderIDSalt    string `envconfig:"ORDER_ID_SALT" default:"streamhost"`
	CredentialsKey string `envconfig:"CREDENTIALS_KEY" required:"true"`
	ExpoToken      string `envconfig:"EXPO_ACCESS_TOKEN"`
}

type DB struct {
	Addr        string `envconfig:"DB_ADDR" required:"true"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	MaxIdleTime string `envconfig:"DB_MAX_IDLE_TIME" default:"15m"`
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_CACHE_TTL" default:"10m"`
}

type RabbitMQ struct {
	URL      string `envconfig:"RABBITMQ_URL"`
	Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"streamhost.events"`
	Queue    string `envconfig:"RABBITMQ_QUEUE" default:"streamhost.booking-notifications"`
}

type Auth struct {
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUPABASE_JWT_ISSUER"`
	Audience          string `envconfig:"SUPABASE_JWT_AUDIENCE" default:"authenticated"`
	BasicUser         string `envconfig:"AUTH_BASIC_USER" default:"admin"`
	BasicPass         string `envconfig:"AUTH_BASIC_PASS" required:"true"`
}

type Midtrans struct {
	ServerKey  string `envconfig:"MIDTRANS_SERVER_KEY" required:"true"`
	Production bool   `envconfig:"MIDTRANS_PRODUCTION" default:"false"`
	FinishURL  string `envconfig:"PAYMENT_FINISH_URL" default:"http://localhost:3000/payment/finish"`
}

type RateLimiter struct {
	RequestsPerTimeFrame int           `envconfig:"RATELIMITER_REQUESTS_COUNT" default:"200"`
	TimeFrame            time.Duration `envconfig:"RATELIMITER_TIME_FRAME" default:"5s"`
	Enabled              bool          `envconfig:"RATE_LIMITER_ENABLED" default:"false"`
}

type Mail struct {
	Host      string `envconfig:"SMTP_HOST"`
	Port      int    `envconfig:"SMTP_PORT" default:"587"`
	Username  string `envconfig:"SMTP_USERNAME"`
	Password  string `envconfig:"SMTP_PASSWORD"`
	FromEmail string `envconfig:"SMTP_FROM_EMAIL" default:"no-reply@streamhost.id"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	var c Config
	// Sections are processed one by one so their keys are not prefixed with
	// the field name.
	for _, section := range []any{&c, &c.DB, &c.Redis, &c.RabbitMQ, &c.Auth, &c.Midtrans, &c.RateLimiter, &c.Mail} {
		if err := envconfig.Process("", section); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
