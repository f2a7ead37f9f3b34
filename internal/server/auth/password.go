package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies account passwords with bcrypt. The cost
// parameter bounds the brute-force rate; hashing is intentionally slow.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. Costs outside
// the valid bcrypt range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted, self-describing bcrypt hash of the plaintext.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check reports whether the plaintext matches the stored hash. A malformed
// stored hash is treated as a non-match, never an error.
func (h *PasswordHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
