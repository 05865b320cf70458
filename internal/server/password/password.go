// Package password wraps the adaptive, salted password hash used for stored
// credentials.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes plaintext passwords and verifies candidates against stored
// digests.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Matches(plaintext, digest string) bool
}

// BcryptHasher implements Hasher with bcrypt. The salt is embedded in the
// digest, so equal passwords still produce distinct digests.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a Hasher with the given cost; cost <= 0 selects
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Matches(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
