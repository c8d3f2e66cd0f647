package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Mail:   MailConfig{Provider: "smtp"},
		Alerts: AlertsConfig{PreviewSize: 20},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Cron:     "0 8 * * *",
			Timezone: "America/Sao_Paulo",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty secret":     func(c *Config) { c.Auth.JWTSecret = "" },
		"short secret":     func(c *Config) { c.Auth.JWTSecret = "short" },
		"bad port":         func(c *Config) { c.Server.Port = 70000 },
		"unknown provider": func(c *Config) { c.Mail.Provider = "pigeon" },
		"zero preview":     func(c *Config) { c.Alerts.PreviewSize = 0 },
		"bad timezone":     func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" },
		"bad cron":         func(c *Config) { c.Scheduler.Cron = "every morning" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidate_DisabledSchedulerSkipsCronCheck(t *testing.T) {
	c := validConfig()
	c.Scheduler.Enabled = false
	c.Scheduler.Cron = "not a cron"
	if err := c.Validate(); err != nil {
		t.Errorf("disabled scheduler should not validate cron: %v", err)
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CUSTODY_AUTH_JWT_SECRET", "env-secret-long-enough-123")
	t.Setenv("CUSTODY_ALERTS_TRIGGER_TOKEN", "trigger-token")
	t.Setenv("CUSTODY_SCHEDULER_WARMUP_DELAY", "0s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret-long-enough-123" {
		t.Errorf("jwt secret not read from env: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Alerts.TriggerToken != "trigger-token" {
		t.Errorf("trigger token not read from env: %q", cfg.Alerts.TriggerToken)
	}
	if cfg.Alerts.TriggerTimeout != 30*time.Second {
		t.Errorf("expected default trigger timeout 30s, got %v", cfg.Alerts.TriggerTimeout)
	}
	if cfg.Scheduler.Cron != "0 8 * * *" || cfg.Scheduler.Timezone != "America/Sao_Paulo" {
		t.Errorf("unexpected scheduler defaults: %+v", cfg.Scheduler)
	}
	if cfg.Scheduler.WarmupDelay != 0 {
		t.Errorf("expected warmup disabled, got %v", cfg.Scheduler.WarmupDelay)
	}
	if cfg.Database.Timezone != "UTC" {
		t.Errorf("expected UTC session timezone, got %q", cfg.Database.Timezone)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CUSTODY_AUTH_JWT_SECRET", "")
	if _, err := Load(""); err == nil {
		t.Error("expected error without jwt secret")
	}
}

func TestLoad_EnvOverridesKeysMissingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: file-secret-long-enough-123\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CUSTODY_ALERTS_TRIGGER_TOKEN", "env-trigger")
	t.Setenv("CUSTODY_MAIL_SMTP_HOST", "smtp.example.org")
	t.Setenv("CUSTODY_MAIL_FROM", "alerts@example.org")
	t.Setenv("CUSTODY_MAIL_RESEND_API_KEY", "re_123")
	t.Setenv("CUSTODY_LOOKUP_DATAJUD_URL", "https://datajud.example.org")
	t.Setenv("CUSTODY_LOOKUP_CPF_TOKEN", "cpf-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "file-secret-long-enough-123" {
		t.Errorf("jwt secret not read from file: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Alerts.TriggerToken != "env-trigger" {
		t.Errorf("trigger token = %q", cfg.Alerts.TriggerToken)
	}
	if cfg.Mail.SMTPHost != "smtp.example.org" || cfg.Mail.From != "alerts@example.org" {
		t.Errorf("mail settings not read from env: host=%q from=%q", cfg.Mail.SMTPHost, cfg.Mail.From)
	}
	if cfg.Mail.ResendAPIKey != "re_123" {
		t.Errorf("resend key = %q", cfg.Mail.ResendAPIKey)
	}
	if cfg.Lookup.DataJudURL != "https://datajud.example.org" || cfg.Lookup.CPFToken != "cpf-token" {
		t.Errorf("lookup settings not read from env: %+v", cfg.Lookup)
	}
}
