package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	JWTSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	LogLevel  string
	LogFormat string
	GormLog   string

	ReminderCron     string
	ReminderLeadDays int

	RateLimitRPS   float64
	RateLimitBurst int

	NotifyQueueKey string
	AutoMigrate    bool
}

var defaults = map[string]any{
	"APP_PORT":                "8080",
	"MYSQL_HOST":              "mysql",
	"MYSQL_PORT":              "3306",
	"MYSQL_DB":                "homeloan",
	"MYSQL_USER":              "homeloan",
	"MYSQL_PASS":              "homeloan",
	"REDIS_ADDR":              "redis:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"JWT_SECRET":              "",
	"SMTP_HOST":               "",
	"SMTP_PORT":               587,
	"SMTP_USER":               "",
	"SMTP_PASS":               "",
	"SMTP_FROM":               "no-reply@homeloan.local",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"GORM_LOG_LEVEL":          "warn",
	"REMINDER_CRON":           "0 8 * * *",
	"REMINDER_LEAD_DAYS":      3,
	"RATE_LIMIT_RPS":          20.0,
	"RATE_LIMIT_BURST":        40,
	"NOTIFY_QUEUE_KEY":        "homeloan:notifications",
	"AUTO_MIGRATE":            true,
}

// Load reads the environment, optionally layered over the file named by
// CONFIG_FILE (any format viper understands). Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", file, err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:   v.GetString("APP_PORT"),
		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		IdempTTLSecs:  v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		JWTSecret: v.GetString("JWT_SECRET"),

		SMTPHost: v.GetString("SMTP_HOST"),
		SMTPPort: v.GetInt("SMTP_PORT"),
		SMTPUser: v.GetString("SMTP_USER"),
		SMTPPass: v.GetString("SMTP_PASS"),
		SMTPFrom: v.GetString("SMTP_FROM"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		GormLog:   strings.ToLower(v.GetString("GORM_LOG_LEVEL")),

		ReminderCron:     v.GetString("REMINDER_CRON"),
		ReminderLeadDays: v.GetInt("REMINDER_LEAD_DAYS"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		NotifyQueueKey: v.GetString("NOTIFY_QUEUE_KEY"),
		AutoMigrate:    v.GetBool("AUTO_MIGRATE"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	if _, err := cron.ParseStandard(c.ReminderCron); err != nil {
		return fmt.Errorf("invalid REMINDER_CRON %q: %w", c.ReminderCron, err)
	}
	if c.ReminderLeadDays < 0 {
		return fmt.Errorf("REMINDER_LEAD_DAYS must not be negative, got %d", c.ReminderLeadDays)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

// MailEnabled reports whether SMTP delivery is configured; otherwise
// notifications go to the log.
func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// MigrateURL is the golang-migrate mysql URL for the same database.
func (c *Config) MigrateURL() string {
	return "mysql://" + c.MySQLDSN()
}
