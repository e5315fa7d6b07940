// Package goEphemeral issues and validates short-lived credentials: six-digit one-time
// passcodes and hexadecimal session tokens, each bound to a user and an absolute expiry.
//
// Both issuer flavors are built by [Builder.Build] into an [Engine]. Issuer methods are safe to
// call from multiple goroutines.
//
// # Architecture boundaries
//
// goEphemeral is the public surface. It exposes [Engine], [Builder], [Config], [OTPIssuer],
// [SessionIssuer] and the observability types. Storage lives in the store package; the time
// source lives in the clock package. Each issuer owns its own store, so OTP codes and session
// tokens never share a namespace.
//
// # Expiry and size
//
// Expiry is lazy. An expired credential reads as invalid but stays in its store until it is
// removed or swept, which means Size reports physical entries, expired ones included.
// Call [Engine.Sweep] (or an issuer's Sweep) to reclaim memory.
//
// # What this package must NOT do
//
//   - Log or audit plaintext codes.
//   - Let logging, metrics, or audit sinks change the result of an operation.
//   - Start background goroutines other than the audit dispatcher.
package goEphemeral
