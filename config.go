package goEphemeral

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultOTPLifetime is how long a one-time passcode stays valid.
	DefaultOTPLifetime = 300 * time.Second
	// DefaultSessionLifetime is how long a session token stays valid.
	DefaultSessionLifetime = 14000 * time.Second
)

// Config controls issuer lifetimes, capacity, audit, and metrics.
//
// Config values are copied into the Engine at Build time; mutating a Config afterwards has no
// effect on a running Engine.
type Config struct {
	OTP     IssuerConfig  `mapstructure:"otp"`
	Session IssuerConfig  `mapstructure:"session"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

/*
====================================
ISSUER CONFIG
====================================
*/

// IssuerConfig configures one issuer and its private store.
type IssuerConfig struct {
	// Lifetime is added to the issuance instant to compute expiry. Zero issues
	// credentials that are already expired. Must be whole seconds.
	Lifetime time.Duration `mapstructure:"lifetime" validate:"gte=0s,whole_seconds"`
	// MaxEntries caps physical store entries, expired ones included. Zero means unbounded.
	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size" validate:"gte=0"`
	DropIfFull bool `mapstructure:"drop_if_full"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counters and the validate latency histogram.
type MetricsConfig struct {
	Enabled                 bool `mapstructure:"enabled"`
	EnableLatencyHistograms bool `mapstructure:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by New when WithConfig is not called.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		OTP: IssuerConfig{
			Lifetime: DefaultOTPLifetime,
		},
		Session: IssuerConfig{
			Lifetime: DefaultSessionLifetime,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("whole_seconds", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%int64(time.Second) == 0
	})
	return v
}

// Validate checks field constraints and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "whole_seconds":
		return fmt.Sprintf("%s must be a whole number of seconds", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
