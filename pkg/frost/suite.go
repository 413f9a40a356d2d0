// Package frost implements the key material and serialization shared by the
// FROST trusted dealer, DKG and signing subpackages, together with the
// ciphersuites that parameterize all of them.
package frost

import (
	"fmt"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// SuiteID tags every at-rest and on-the-wire encoding with the ciphersuite
// that produced it, so cross-suite confusion is rejected at load time.
type SuiteID byte

const (
	// SuiteIDEd25519 identifies FROST(Ed25519, SHA-512).
	SuiteIDEd25519 SuiteID = 1
	// SuiteIDRedPallas identifies FROST(RedPallas, BLAKE2b-512).
	SuiteIDRedPallas SuiteID = 2
	// SuiteIDSecp256k1 identifies FROST(secp256k1, SHA-256).
	SuiteIDSecp256k1 SuiteID = 3
)

// Suite is the ciphersuite port: the group together with the domain
// separated hash functions all protocol algorithms are parameterized by.
//
// The H1..H5 split follows RFC 9591: H1 derives binding factors, H2 the
// Schnorr challenge, H3 nonces, H4 hashes messages, and H5 hashes
// commitment lists. HDKG derives the proof-of-knowledge challenge during
// distributed key generation.
type Suite interface {
	ID() SuiteID
	// Name is the context string of the suite.
	Name() string
	Group() curve.Curve
	H1(m []byte) curve.Scalar
	H2(m []byte) curve.Scalar
	H3(m []byte) curve.Scalar
	H4(m []byte) []byte
	H5(m []byte) []byte
	HDKG(m []byte) curve.Scalar
	// Challenge computes the Schnorr challenge c binding the group
	// commitment, the verifying key and the message.
	Challenge(R curve.Point, publicKey curve.Point, msg []byte) (curve.Scalar, error)
}

// RandomizedSuite is implemented by suites that support rerandomized FROST.
type RandomizedSuite interface {
	Suite
	// HRandomizer hashes fresh randomness and the signing package into a
	// randomizer scalar.
	HRandomizer(m []byte) curve.Scalar
}

// Suites returns all registered ciphersuites.
func Suites() []Suite {
	return []Suite{Ed25519Suite{}, RedPallasSuite{}, Secp256k1Suite{}}
}

// SuiteByID looks up a ciphersuite by its serialization tag.
func SuiteByID(id SuiteID) (Suite, error) {
	for _, s := range Suites() {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("frost: unknown ciphersuite tag %d: %w", id, ErrWrongCiphersuite)
}

// SuiteByName looks up a ciphersuite by its context string.
func SuiteByName(name string) (Suite, error) {
	for _, s := range Suites() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("frost: unknown ciphersuite %q: %w", name, ErrWrongCiphersuite)
}
