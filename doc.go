// Package authcore is a credential issuance and rotation engine: password
// verification against Argon2id (or bcrypt) hashes, RS256 JWT access
// tokens, and opaque single-use refresh tokens with atomic rotation.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (TokenPair, AuthResult, MetricsSnapshot).
// Account storage is abstracted behind [UserProvider] and session storage
// behind session.Store; the pgstore and gormstore packages provide SQL
// implementations of both, and the session package a Redis one.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or hash encodings in its
//     public API.
//   - Perform I/O outside of Engine methods and Build (key file reads
//     happen once, at Build).
//   - Import any sub-package that re-imports authcore (no import cycles).
//
// # Performance contract
//
// ValidateAccess is the hot path. It completes without any storage
// round-trip: token validity is decided by signature and lifetime alone.
// Login and Refresh are allowed one provider lookup and one session store
// round-trip each.
package authcore
