// Package store provides the in-memory expiring map that backs every credential issuer.
//
// # Expiry model
//
// Entries map a composite [Key] (code, user) to an absolute expiry in Unix seconds. Expiry is
// lazy: [Store.Get] treats an entry whose expiry is <= now as absent but leaves it in the map.
// Memory is reclaimed only when the key is removed, overwritten, or swept by [Store.Sweep].
//
// As a consequence [Store.Size] counts physical entries, expired ones included. It is NOT the
// number of valid credentials; use [Store.Live] for that.
//
// # Architecture boundaries
//
// This package owns storage and expiry comparison. It does NOT generate codes, log, emit
// audit events, or decide lifetimes. Those belong to the issuers in goEphemeral.
//
// # What this package must NOT do
//
//   - Import goEphemeral (no upward imports).
//   - Start background sweepers.
package store
