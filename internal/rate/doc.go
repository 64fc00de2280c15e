// Package rate provides Redis-backed fixed-window throttles for login and
// refresh attempts.
//
// # Window semantics
//
// Fixed-window counters: INCR plus conditional EXPIRE on the first hit.
// Key prefixes:
//   - rl:li: login per-identifier
//   - rl:ip: login per-IP
//   - rl:rf: refresh per-user
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the engine does).
//   - Be imported outside the authcore module.
package rate
