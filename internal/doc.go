// Package internal holds helpers that are intentionally private to
// authcore.
//
// # Sub-packages
//
//   - rate: Redis-backed fixed-window throttles for login and refresh
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
