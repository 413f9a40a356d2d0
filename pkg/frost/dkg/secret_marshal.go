package dkg

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/polynomial"
	"github.com/quorumsig/frost/pkg/party"
)

// The secret packages are serializable so the file-driven CLI can stop
// between parts. The encodings contain the dealt polynomial and must be
// stored with owner-only permissions and deleted after part 3.

type round1SecretWire struct {
	Suite        string   `cbor:"suite"`
	Identifier   uint16   `cbor:"identifier"`
	Coefficients [][]byte `cbor:"coefficients"`
	MinSigners   uint16   `cbor:"min_signers"`
	MaxSigners   uint16   `cbor:"max_signers"`
}

type round2SecretWire struct {
	Suite      string   `cbor:"suite"`
	Identifier uint16   `cbor:"identifier"`
	OwnShare   []byte   `cbor:"own_share"`
	Commitment [][]byte `cbor:"commitment"`
	MinSigners uint16   `cbor:"min_signers"`
	MaxSigners uint16   `cbor:"max_signers"`
}

// Encode serializes the round 1 secret state.
func (s *Round1SecretPackage) Encode() ([]byte, error) {
	coefficients := s.f.Coefficients()
	wire := round1SecretWire{
		Suite:        s.suite.Name(),
		Identifier:   uint16(s.identifier),
		Coefficients: make([][]byte, len(coefficients)),
		MinSigners:   s.minSigners,
		MaxSigners:   s.maxSigners,
	}
	for i, c := range coefficients {
		encoded, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		wire.Coefficients[i] = encoded
	}
	return encMode.Marshal(wire)
}

// DecodeRound1SecretPackage restores round 1 secret state.
func DecodeRound1SecretPackage(suite frost.Suite, data []byte) (*Round1SecretPackage, error) {
	var wire round1SecretWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("dkg: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if wire.Suite != suite.Name() {
		return nil, fmt.Errorf("dkg: secret for suite %q, want %q: %w",
			wire.Suite, suite.Name(), frost.ErrWrongCiphersuite)
	}
	group := suite.Group()
	coefficients := make([]curve.Scalar, len(wire.Coefficients))
	for i, encoded := range wire.Coefficients {
		coefficients[i] = group.NewScalar()
		if err := coefficients[i].UnmarshalBinary(encoded); err != nil {
			return nil, fmt.Errorf("dkg: coefficient %d: %v: %w", i, err, frost.ErrMalformedEncoding)
		}
	}
	f := polynomial.FromCoefficients(group, coefficients)
	return &Round1SecretPackage{
		suite:      suite,
		identifier: party.ID(wire.Identifier),
		f:          f,
		commitment: polynomial.NewPolynomialExponent(f),
		minSigners: wire.MinSigners,
		maxSigners: wire.MaxSigners,
	}, nil
}

// Encode serializes the round 2 secret state.
func (s *Round2SecretPackage) Encode() ([]byte, error) {
	ownShare, err := s.ownShare.MarshalBinary()
	if err != nil {
		return nil, err
	}
	coefficients := s.commitment.Coefficients()
	wire := round2SecretWire{
		Suite:      s.suite.Name(),
		Identifier: uint16(s.identifier),
		OwnShare:   ownShare,
		Commitment: make([][]byte, len(coefficients)),
		MinSigners: s.minSigners,
		MaxSigners: s.maxSigners,
	}
	for i, c := range coefficients {
		encoded, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		wire.Commitment[i] = encoded
	}
	return encMode.Marshal(wire)
}

// DecodeRound2SecretPackage restores round 2 secret state.
func DecodeRound2SecretPackage(suite frost.Suite, data []byte) (*Round2SecretPackage, error) {
	var wire round2SecretWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("dkg: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if wire.Suite != suite.Name() {
		return nil, fmt.Errorf("dkg: secret for suite %q, want %q: %w",
			wire.Suite, suite.Name(), frost.ErrWrongCiphersuite)
	}
	group := suite.Group()
	ownShare := group.NewScalar()
	if err := ownShare.UnmarshalBinary(wire.OwnShare); err != nil {
		return nil, fmt.Errorf("dkg: own share: %v: %w", err, frost.ErrMalformedEncoding)
	}
	coefficients := make([]curve.Point, len(wire.Commitment))
	for i, encoded := range wire.Commitment {
		coefficients[i] = group.NewPoint()
		if err := coefficients[i].UnmarshalBinary(encoded); err != nil {
			return nil, fmt.Errorf("dkg: commitment coefficient %d: %v: %w", i, err, frost.ErrMalformedEncoding)
		}
	}
	return &Round2SecretPackage{
		suite:      suite,
		identifier: party.ID(wire.Identifier),
		ownShare:   ownShare,
		commitment: polynomial.NewExponent(group, coefficients),
		minSigners: wire.MinSigners,
		maxSigners: wire.MaxSigners,
	}, nil
}
