package store

import "time"

// Key is the composite lookup key. Struct keys compare field by field, so no two
// distinct (code, user) pairs can collide regardless of the characters they contain.
type Key struct {
	Code string
	User string
}

// String renders the key as code:user. It is for diagnostics only and is never used
// for lookups, since the rendering is ambiguous when either part contains ':'.
func (k Key) String() string {
	return k.Code + ":" + k.User
}

// Record is one issued credential.
type Record struct {
	Code      string
	User      string
	ExpiresAt int64
}

// NewRecord builds a record that expires lifetime after now, truncated to whole seconds.
func NewRecord(code, user string, now time.Time, lifetime time.Duration) Record {
	return Record{
		Code:      code,
		User:      user,
		ExpiresAt: now.Unix() + int64(lifetime/time.Second),
	}
}

// Key returns the composite key for the record.
func (r Record) Key() Key {
	return Key{Code: r.Code, User: r.User}
}

// Expired reports whether the record is no longer valid at now (Unix seconds).
func (r Record) Expired(now int64) bool {
	return r.ExpiresAt <= now
}
