package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// Decoy burns the same bcrypt work as a real comparison so unknown usernames
// are not distinguishable by response time. Its cost should match the cost
// stored passwords were hashed with.
type Decoy struct {
	cost int
	once sync.Once
	hash string
}

// NewDecoy returns a decoy hashing at cost; the hash is built on first use.
func NewDecoy(cost int) *Decoy {
	return &Decoy{cost: cost}
}

// Compare runs a comparison that always fails.
func (d *Decoy) Compare(plain string) {
	d.once.Do(func() {
		d.hash, _ = HashPassword("decoy-password", d.cost)
	})
	_ = ComparePassword(d.hash, plain)
}
