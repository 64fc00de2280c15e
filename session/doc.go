// Package session defines the refresh-token session model, the [Store]
// persistence capability, and opaque token generation.
//
// Three Store implementations exist in this module: [RedisStore] (this
// package), the SQL session-table store in pgstore, and the single-column
// variant in gormstore. All three honor the same rotation contract: revoke
// before create, atomically, so a redeemed token is never valid twice.
//
// # What this package must NOT do
//
//   - Import authcore, token, or password (no upward imports).
//   - Interpret access tokens or enforce authentication policy.
package session
