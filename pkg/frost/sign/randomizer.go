package sign

import (
	"fmt"
	"io"

	"github.com/quorumsig/frost/internal/zero"
	"github.com/quorumsig/frost/pkg/frost"
)

// NewRandomizer derives a randomizer from fresh randomness and the frozen
// signing package, so that even a biased randomness source cannot force a
// randomizer that repeats across attempts.
func NewRandomizer(rand io.Reader, suite frost.RandomizedSuite, sp *SigningPackage) (*frost.Randomizer, error) {
	random := make([]byte, 32)
	defer zero.Bytes(random)
	if _, err := io.ReadFull(rand, random); err != nil {
		return nil, fmt.Errorf("sign: reading randomness: %w", err)
	}
	encodedPackage, err := sp.Encode(suite)
	if err != nil {
		return nil, err
	}
	input := make([]byte, 0, len(random)+len(encodedPackage))
	input = append(input, random...)
	input = append(input, encodedPackage...)
	return frost.RandomizerFromScalar(suite, suite.HRandomizer(input)), nil
}
