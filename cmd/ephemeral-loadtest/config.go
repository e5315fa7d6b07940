package main

import (
	"fmt"
	"strings"

	goEphemeral "github.com/MrEthical07/goEphemeral"
	"github.com/spf13/viper"
)

const envPrefix = "EPHEMERAL"

type loadtestConfig struct {
	Users       int    `mapstructure:"users"`
	Concurrency int    `mapstructure:"concurrency"`
	Ops         int    `mapstructure:"ops"`
	RedisAddr   string `mapstructure:"redis_addr"`
	AuditStream string `mapstructure:"audit_stream"`
	AuditMaxLen int64  `mapstructure:"audit_max_len"`
	// MetricsFormat is one of "prometheus", "otel" or "none".
	MetricsFormat string `mapstructure:"metrics_format"`

	Engine goEphemeral.Config `mapstructure:"engine"`
}

// loadConfig reads defaults, then the optional file at path, then EPHEMERAL_* env vars.
// Nested keys map to env names with "." replaced by "_", e.g. EPHEMERAL_ENGINE_OTP_LIFETIME.
func loadConfig(path string) (loadtestConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("redis_addr", envPrefix+"_REDIS_ADDR", "REDIS_ADDR")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return loadtestConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg loadtestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return loadtestConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return loadtestConfig{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := goEphemeral.DefaultConfig()

	v.SetDefault("users", 10000)
	v.SetDefault("concurrency", 64)
	v.SetDefault("ops", 100000)
	v.SetDefault("redis_addr", "")
	v.SetDefault("audit_stream", goEphemeral.DefaultAuditStream)
	v.SetDefault("audit_max_len", 100000)
	v.SetDefault("metrics_format", "prometheus")

	v.SetDefault("engine.otp.lifetime", def.OTP.Lifetime)
	v.SetDefault("engine.otp.max_entries", def.OTP.MaxEntries)
	v.SetDefault("engine.session.lifetime", def.Session.Lifetime)
	v.SetDefault("engine.session.max_entries", def.Session.MaxEntries)
	v.SetDefault("engine.audit.enabled", def.Audit.Enabled)
	v.SetDefault("engine.audit.buffer_size", def.Audit.BufferSize)
	v.SetDefault("engine.audit.drop_if_full", def.Audit.DropIfFull)
	v.SetDefault("engine.metrics.enabled", true)
	v.SetDefault("engine.metrics.enable_latency_histograms", true)
}

func (c loadtestConfig) validate() error {
	if c.Users <= 0 || c.Concurrency <= 0 || c.Ops <= 0 {
		return fmt.Errorf("users, concurrency, and ops must be > 0")
	}
	switch c.MetricsFormat {
	case "prometheus", "otel", "none":
	default:
		return fmt.Errorf("unknown metrics_format %q", c.MetricsFormat)
	}
	return c.Engine.Validate()
}
