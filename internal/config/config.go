package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Mailbox   MailboxConfig   `yaml:"mailbox" mapstructure:"mailbox"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Policy    PolicyConfig    `yaml:"policy" mapstructure:"policy"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// MailboxConfig configures the Gmail-backed email source.
type MailboxConfig struct {
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenDir        string `yaml:"token_dir" mapstructure:"token_dir"`
	LabelPrefix     string `yaml:"label_prefix" mapstructure:"label_prefix"`
}

// PipelineConfig configures extraction behavior.
type PipelineConfig struct {
	MeetingConfidenceThreshold float64 `yaml:"meeting_confidence_threshold" mapstructure:"meeting_confidence_threshold"`
	FetchLimit                 int     `yaml:"fetch_limit" mapstructure:"fetch_limit"`
	MinBodyChars               int     `yaml:"min_body_chars" mapstructure:"min_body_chars"`
}

// PolicyConfig is the single table of cooldown intervals for recurring
// automated actions. Intervals are fixed per deployment, not per user.
type PolicyConfig struct {
	LeadQuietDays         int   `yaml:"lead_quiet_days" mapstructure:"lead_quiet_days"`
	LeadRecontactDays     int   `yaml:"lead_recontact_days" mapstructure:"lead_recontact_days"`
	TaskReminderHours     int   `yaml:"task_reminder_hours" mapstructure:"task_reminder_hours"`
	InvoiceReminderOffsets []int `yaml:"invoice_reminder_offsets_days" mapstructure:"invoice_reminder_offsets_days"`
}

// LeadQuietWindow is the minimum gap since the last correspondence with a
// lead before a re-contact action may fire.
func (p PolicyConfig) LeadQuietWindow() time.Duration {
	return time.Duration(p.LeadQuietDays) * 24 * time.Hour
}

// LeadRecontactInterval is the delay scheduled after a re-contact fires.
func (p PolicyConfig) LeadRecontactInterval() time.Duration {
	return time.Duration(p.LeadRecontactDays) * 24 * time.Hour
}

// TaskReminderWindow is the minimum gap between task reminder digests.
func (p PolicyConfig) TaskReminderWindow() time.Duration {
	return time.Duration(p.TaskReminderHours) * time.Hour
}

// BatchConfig configures multi-tenant batch processing. The default of one
// concurrent user keeps provider request rates bounded and deterministic.
type BatchConfig struct {
	MaxConcurrentUsers int `yaml:"max_concurrent_users" mapstructure:"max_concurrent_users"`
	UserLimit          int `yaml:"user_limit" mapstructure:"user_limit"`
}

// ServerConfig configures the HTTP trigger/inspection server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUTOPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "autopilot.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("mailbox.credentials_file", "credentials.json")
	v.SetDefault("mailbox.token_dir", ".tokens")
	v.SetDefault("mailbox.label_prefix", "autopilot")
	v.SetDefault("pipeline.meeting_confidence_threshold", 0.6)
	v.SetDefault("pipeline.fetch_limit", 25)
	v.SetDefault("pipeline.min_body_chars", 30)
	v.SetDefault("policy.lead_quiet_days", 3)
	v.SetDefault("policy.lead_recontact_days", 14)
	v.SetDefault("policy.task_reminder_hours", 8)
	v.SetDefault("policy.invoice_reminder_offsets_days", []int{-1, 0, 3})
	v.SetDefault("batch.max_concurrent_users", 1)
	v.SetDefault("batch.user_limit", 0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
