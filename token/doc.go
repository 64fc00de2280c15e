// Package token mints and validates RS256-signed access tokens carrying the
// user's uuid, name, and email, with nbf/exp enforcement and fixed clock-skew
// leeway. Validation is pure: a token is judged by signature and timestamps
// alone, never by a storage lookup.
package token
