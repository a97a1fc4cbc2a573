// Package password provides one-way credential hashing for authcore.
//
// The engine treats hashing as a pluggable capability behind [Hasher] so a
// deployment can move from the legacy unsalted digest ([SHA256]) to a salted,
// adaptive one ([Argon2]) without touching any caller.
package password

// Hasher is the credential-hashing capability consumed by the engine.
//
// Implementations must treat empty input as "no password": Hash("") returns
// an empty digest, and Verify returns false whenever either argument is
// empty. An empty digest therefore never verifies.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}
