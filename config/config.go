package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config application configuration root
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Lookup    LookupConfig    `mapstructure:"lookup"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
// The session timezone is UTC so that timestamptz values round-trip as absolute instants.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// MailConfig outbound e-mail settings
type MailConfig struct {
	Provider      string   `mapstructure:"provider"` // smtp | resend | ses
	Fallback      []string `mapstructure:"fallback"`
	From          string   `mapstructure:"from"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPUseTLS   bool   `mapstructure:"smtp_use_tls"`

	ResendAPIKey string `mapstructure:"resend_api_key"`
	SESRegion    string `mapstructure:"ses_region"`
}

// KafkaConfig fired-alert stream settings; empty brokers disables publishing
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// AlertsConfig alert engine settings
type AlertsConfig struct {
	TriggerToken   string        `mapstructure:"trigger_token"`
	TriggerTimeout time.Duration `mapstructure:"trigger_timeout"`
	PreviewSize    int           `mapstructure:"preview_size"`
}

// SchedulerConfig daily alert cycle settings
type SchedulerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Cron        string        `mapstructure:"cron"`
	Timezone    string        `mapstructure:"timezone"`
	WarmupDelay time.Duration `mapstructure:"warmup_delay"` // 0 disables the startup run
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
}

// LookupConfig external legal-process lookup sources
type LookupConfig struct {
	DataJudURL   string        `mapstructure:"datajud_url"`
	DataJudToken string        `mapstructure:"datajud_token"`
	PJeURL       string        `mapstructure:"pje_url"`
	PJeToken     string        `mapstructure:"pje_token"`
	CPFURL       string        `mapstructure:"cpf_url"`
	CPFToken     string        `mapstructure:"cpf_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration.
// Precedence: environment > config file > defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	// every key needs one: AutomaticEnv only overrides keys viper already knows
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "custody")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "8h")

	v.SetDefault("mail.provider", "smtp")
	v.SetDefault("mail.fallback", []string{})
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.subject_prefix", "[Custody Alerts]")
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.smtp_user", "")
	v.SetDefault("mail.smtp_password", "")
	v.SetDefault("mail.smtp_use_tls", true)
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.ses_region", "us-east-1")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "custody.alerts.fired")

	v.SetDefault("alerts.trigger_token", "")
	v.SetDefault("alerts.trigger_timeout", "30s")
	v.SetDefault("alerts.preview_size", 20)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cron", "0 8 * * *")
	v.SetDefault("scheduler.timezone", "America/Sao_Paulo")
	v.SetDefault("scheduler.warmup_delay", "5s")
	v.SetDefault("scheduler.run_timeout", "2m")

	for _, key := range []string{
		"lookup.datajud_url", "lookup.datajud_token",
		"lookup.pje_url", "lookup.pje_token",
		"lookup.cpf_url", "lookup.cpf_token",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("lookup.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("CUSTODY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Mail.Provider {
	case "smtp", "resend", "ses":
	default:
		return fmt.Errorf("invalid config: unknown mail.provider %q", c.Mail.Provider)
	}
	if c.Alerts.PreviewSize <= 0 {
		return fmt.Errorf("invalid config: alerts.preview_size must be positive")
	}
	if c.Scheduler.Enabled {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("invalid config: scheduler.timezone %q: %w", c.Scheduler.Timezone, err)
		}
		if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
			return fmt.Errorf("invalid config: scheduler.cron %q: %w", c.Scheduler.Cron, err)
		}
	}
	return nil
}
