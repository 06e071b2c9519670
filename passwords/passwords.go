package passwords

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/jrsteele09/go-blog-server/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects input past 72 bytes while the password rules allow 128 characters.
// Longer inputs are pre-hashed to a fixed 43 bytes.
const bcryptMaxInput = 72

// DefaultHasher uses bcrypt.DefaultCost.
var DefaultHasher = Hasher{Cost: bcrypt.DefaultCost}

// Hasher hashes and verifies passwords with bcrypt at a tunable cost.
// The produced hash is self-describing ($2a$<cost>$<salt+digest>, 60 characters),
// so verification never needs the cost that created it.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher, clamping cost to bcrypt's accepted range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return Hasher{Cost: cost}
}

// Hash returns a salted bcrypt hash. Two calls with the same input differ.
func (h Hasher) Hash(password string) (string, error) {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.Observe(time.Since(start).Seconds()) }()

	bytes, err := bcrypt.GenerateFromPassword(prepare(password), h.Cost)
	return string(bytes), err
}

// Verify reports whether password matches hash. Empty or malformed input is false.
func (h Hasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(password)) == nil
}

// Cost returns the cost factor embedded in hash.
func Cost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}

func HashPassword(password string) (string, error) {
	return DefaultHasher.Hash(password)
}

func VerifyPassword(password, hash string) bool {
	return DefaultHasher.Verify(password, hash)
}

func prepare(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}
