// Package clock provides the time source used for credential expiry.
//
// Issuers and stores depend on the [Clock] interface instead of calling time.Now directly, so
// tests can swap in a [Fake] and step through expiry deterministically.
//
// # What this package must NOT do
//
//   - Import goEphemeral or store (no upward imports).
//   - Start goroutines or timers.
package clock
