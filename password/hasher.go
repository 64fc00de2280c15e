package password

// Hasher is the one-way credential hashing capability used by the engine.
// Hash embeds its salt and parameters in the returned string so no separate
// salt storage exists; Verify performs a constant-time comparison and treats
// malformed stored hashes as an error, never a panic.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}
