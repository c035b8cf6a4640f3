// Package dice provides the random source shared by oracle and move rolls.
// Callers depend on the RNG interface so tests can script exact die faces.
package dice

import (
	"crypto/rand"
	"encoding/binary"
)

// RNG yields uniform integers in [0, n).
type RNG interface {
	Intn(n int) int
}

// Roll returns a die roll in [1, sides].
func Roll(rng RNG, sides int) int {
	return rng.Intn(sides) + 1
}

// CryptoSource draws from crypto/rand. The zero value is ready to use.
type CryptoSource struct{}

// Intn returns a uniform value in [0, n) via rejection sampling.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := ^uint64(0) - ^uint64(0)%uint64(n)
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// Entropy exhaustion should not happen; degrade rather than panic.
			return 0
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if v < max {
			return int(v % uint64(n))
		}
	}
}
