// Package password implements salted one-way password hashing and
// constant-time verification.
//
// # Output format
//
// The default [Argon2] hasher encodes hashes in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// so the salt and cost parameters travel with the hash and no separate salt
// storage exists. [Bcrypt] is provided for stores whose hashes predate the
// Argon2id default.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
