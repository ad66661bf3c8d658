// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	EmailProvider           string `yaml:"email_provider" env-default:"smtp"`
	SiteURL                 string `yaml:"site_url" env-default:"https://congress.iwahs.org"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RabbitMQ                `yaml:"rabbitmq"`
	Session                 `yaml:"session"`
	SMTP                    `yaml:"smtp"`
	Mailjet                 `yaml:"mailjet"`
	PayPal                  `yaml:"paypal"`
	Pricing                 `yaml:"pricing"`
	Reconcile               `yaml:"reconcile"`
	Admin                   `yaml:"admin"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
	LockTTL      time.Duration `yaml:"lock_ttl" env-default:"30s"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	PublishTimeout     time.Duration `yaml:"publish_timeout" env-default:"5s"`
}

// Session структура для работы с сессионной cookie и jwt-токеном
type Session struct {
	CookieName   string        `yaml:"cookie_name" env-default:"wahs_session"`
	CookieSecret string        `yaml:"cookie_secret" env:"SESSION_COOKIE_SECRET"`
	Secure       bool          `yaml:"secure" env-default:"true"`
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env-default:"WAHS <noreply@iwahs.org>"`
}

// Mailjet структура для отправки писем через Mailjet API
type Mailjet struct {
	PublicKey  string `yaml:"public_key" env:"MAILJET_PUBLIC_KEY"`
	PrivateKey string `yaml:"private_key" env:"MAILJET_PRIVATE_KEY"`
	Sender     string `yaml:"sender" env-default:"noreply@iwahs.org"`
}

// PayPal структура для проверки IPN и ссылок на оплату
type PayPal struct {
	Sandbox          bool              `yaml:"sandbox" env:"PAYPAL_SANDBOX"`
	VerifyURL        string            `yaml:"verify_url" env-default:"https://ipnpb.paypal.com/cgi-bin/webscr"`
	SandboxVerifyURL string            `yaml:"sandbox_verify_url" env-default:"https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"`
	VerifyTimeout    time.Duration     `yaml:"verify_timeout" env-default:"10s"`
	Links            map[string]string `yaml:"links"`
}

// Pricing структура цен на билеты и членство
type Pricing struct {
	CongressYear           int     `yaml:"congress_year" env-default:"2026"`
	EarlyBirdCutoff        string  `yaml:"early_bird_cutoff" env:"EARLY_BIRD_CUTOFF" env-default:"2026-05-15"`
	Timezone               string  `yaml:"timezone" env-default:"Asia/Seoul"`
	RegularEarlyBird       float64 `yaml:"regular_early_bird" env-default:"240"`
	RegularFull            float64 `yaml:"regular_full" env-default:"300"`
	StudentEarlyBird       float64 `yaml:"student_early_bird" env-default:"120"`
	StudentFull            float64 `yaml:"student_full" env-default:"150"`
	MembershipProfessional float64 `yaml:"membership_professional" env-default:"250"`
	MembershipStudent      float64 `yaml:"membership_student" env-default:"150"`
	Tolerance              float64 `yaml:"tolerance" env-default:"5"`
}

// Reconcile структура для настройки сверки платежей
type Reconcile struct {
	AllowUnmatchedAmounts bool `yaml:"allow_unmatched_amounts"`
}

// Admin структура со списком администраторов
type Admin struct {
	Emails   []string `yaml:"emails" env:"ADMIN_EMAILS" env-separator:","`
	Password string   `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Scheduler структура для планировщика истечения членства
type Scheduler struct {
	Spec           string        `yaml:"spec" env-default:"0 3 * * *"`
	ReminderWindow time.Duration `yaml:"reminder_window" env-default:"168h"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из файла CONFIG_PATH
func MustLoad() *Config {
	// .env необязателен, используется при локальном запуске
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// PayPalVerifyURL возвращает адрес проверки IPN в зависимости от режима sandbox.
func (c *Config) PayPalVerifyURL() string {
	if c.Sandbox {
		return c.SandboxVerifyURL
	}
	return c.VerifyURL
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"PayPal:\n"+
			"  Sandbox: %t\n"+
			"Pricing:\n"+
			"  CongressYear: %d\n"+
			"  EarlyBirdCutoff: %s %s\n"+
			"EmailProvider: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.RabbitMQURL,
		c.Sandbox,
		c.CongressYear,
		c.EarlyBirdCutoff,
		c.Timezone,
		c.EmailProvider,
	)
}
