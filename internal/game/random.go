// internal/game/random.go
//
// Randomness source for target picks, hints and suggestions.
// Live sessions use crypto/rand; tests inject a seeded math/rand/v2 generator.

package game

import (
	"crypto/rand"
	"math/big"
)

// Rand picks uniformly in [0, n). *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// CryptoRand draws from crypto/rand. It is the default for live sessions.
type CryptoRand struct{}

// IntN returns a uniform value in [0, n); n must be positive.
func (CryptoRand) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
