// Package gormstore backs authcore with PostgreSQL through gorm, storing
// the refresh token as a nullable column on the user row itself.
//
// This is the single-session variant: each account holds at most one
// refresh token, and a new login displaces the previous session. Rotation
// is one compare-and-swap UPDATE guarded by the old token, so the loser of
// a concurrent rotation matches no row and observes session.ErrNotFound.
// Deployments that need many concurrent sessions per account should use
// pgstore or the Redis store instead.
package gormstore
