// Package pgstore backs authcore with PostgreSQL through database/sql and
// the pgx stdlib driver. It implements both the account side
// (authcore.UserProvider) and the session side (session.Store) on two
// tables, users and sessions, managed by embedded goose migrations.
//
// Rotation runs in a transaction: the spent token row is deleted first and
// the replacement inserted only if the delete hit a row, so concurrent
// redemptions of the same token serialize on the row lock and exactly one
// wins.
package pgstore
