package goEphemeral

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomSource draws uniform integers from [min, max).
type RandomSource interface {
	Uint64Range(min, max uint64) (uint64, error)
}

// CryptoRandom draws from crypto/rand.
type CryptoRandom struct{}

// Uint64Range returns a uniform value in [min, max).
func (CryptoRandom) Uint64Range(min, max uint64) (uint64, error) {
	if min >= max {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, min, max)
	}
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(max-min))
	if err != nil {
		return 0, err
	}
	return min + n.Uint64(), nil
}
