package goEphemeral

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const (
	sessionDrawMin uint64 = 1_000_000_000_000
	sessionDrawMax uint64 = 10_000_000_000_000
)

// SessionIssuer issues long-lived hexadecimal session tokens.
type SessionIssuer struct {
	core *issuer
}

// NewSessionIssuer returns a standalone issuer with DefaultSessionLifetime, the system
// clock, crypto randomness, and no logging, metrics, or audit.
func NewSessionIssuer() *SessionIssuer {
	return newSessionIssuer(defaultConfig().Session, defaultIssuerDeps())
}

func newSessionIssuer(cfg IssuerConfig, deps issuerDeps) *SessionIssuer {
	return &SessionIssuer{core: newIssuer(kindSession, cfg, deps, sessionMetricIDs)}
}

// GenerateCode concatenates two independent draws from [1e12, 1e13), each rendered
// as unpadded lowercase hex. Every draw in that range is 10 or 11 hex digits.
func (s *SessionIssuer) GenerateCode() (string, error) {
	first, err := s.core.random.Uint64Range(sessionDrawMin, sessionDrawMax)
	if err != nil {
		return "", err
	}
	second, err := s.core.random.Uint64Range(sessionDrawMin, sessionDrawMax)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(first, 16) + strconv.FormatUint(second, 16), nil
}

// CreateUserSession generates a token for user, stores it with the configured
// lifetime, and returns it. Every failure is wrapped in ErrSessionCreationFailed.
func (s *SessionIssuer) CreateUserSession(ctx context.Context, user string) (string, error) {
	code, err := s.GenerateCode()
	if err != nil {
		s.core.issueFailed(ctx, user, err)
		return "", s.fail(ctx, user, "error generating session code", err)
	}
	if err := s.core.issue(ctx, code, user); err != nil {
		return "", s.fail(ctx, user, "error saving session item", err)
	}
	return code, nil
}

func (s *SessionIssuer) fail(ctx context.Context, user, msg string, err error) error {
	s.core.logger.LogAttrs(ctx, slog.LevelError, msg,
		slog.String("kind", s.core.kind),
		slog.String("user", user),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s: %w", ErrSessionCreationFailed, msg, err)
}

// IsValid reports whether code is a live session for user.
func (s *SessionIssuer) IsValid(ctx context.Context, code, user string) bool {
	return s.core.isValid(ctx, code, user)
}

// Remove revokes the session. It returns the code and true if an entry existed,
// expired or not.
func (s *SessionIssuer) Remove(ctx context.Context, code, user string) (string, bool) {
	return s.core.remove(ctx, code, user)
}

// Size returns the number of stored entries, including expired ones not yet
// removed or swept. It is not the number of valid sessions.
func (s *SessionIssuer) Size() int {
	return s.core.store.Size()
}

// Live returns the number of sessions that are currently valid.
func (s *SessionIssuer) Live() int {
	return s.core.store.Live()
}

// Sweep deletes expired entries and returns how many were removed.
func (s *SessionIssuer) Sweep(ctx context.Context) int {
	return s.core.sweep(ctx)
}

// Lifetime returns the configured session lifetime.
func (s *SessionIssuer) Lifetime() time.Duration {
	return s.core.lifetime
}
