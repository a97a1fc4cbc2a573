package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SHA256 is the legacy [Hasher]: a single unsalted SHA-256 digest in hex.
//
// It exists so records written by earlier deployments keep verifying. It has
// no salt and no work factor; new deployments should use [Argon2].
type SHA256 struct{}

// NewSHA256 returns the legacy hasher.
func NewSHA256() *SHA256 {
	return &SHA256{}
}

// Hash returns the hex-encoded SHA-256 digest of plaintext, or an empty
// digest for empty input.
func (*SHA256) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest and compares in constant time.
func (s *SHA256) Verify(plaintext, digest string) (bool, error) {
	if plaintext == "" || digest == "" {
		return false, nil
	}
	computed, err := s.Hash(plaintext)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}
