package dkg

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/polynomial"
)

// encMode sorts map keys so that equal packages encode to equal bytes.
var encMode, _ = cbor.CanonicalEncOptions().EncMode()

type round1Wire struct {
	Suite      string   `cbor:"suite"`
	Commitment [][]byte `cbor:"commitment"`
	ProofR     []byte   `cbor:"proof_r"`
	ProofZ     []byte   `cbor:"proof_z"`
}

type round2Wire struct {
	Suite        string `cbor:"suite"`
	SigningShare []byte `cbor:"signing_share"`
}

// Encode serializes the broadcast package for the wire.
func (p *Round1Package) Encode(suite frost.Suite) ([]byte, error) {
	coefficients := p.Commitment.Coefficients()
	wire := round1Wire{Suite: suite.Name(), Commitment: make([][]byte, len(coefficients))}
	for i, c := range coefficients {
		encoded, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		wire.Commitment[i] = encoded
	}
	var err error
	if wire.ProofR, err = p.ProofR.MarshalBinary(); err != nil {
		return nil, err
	}
	if wire.ProofZ, err = p.ProofZ.MarshalBinary(); err != nil {
		return nil, err
	}
	return encMode.Marshal(wire)
}

// DecodeRound1Package parses a broadcast package, rejecting packages from
// another ciphersuite.
func DecodeRound1Package(suite frost.Suite, data []byte) (*Round1Package, error) {
	var wire round1Wire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("dkg: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if wire.Suite != suite.Name() {
		return nil, fmt.Errorf("dkg: package for suite %q, want %q: %w",
			wire.Suite, suite.Name(), frost.ErrWrongCiphersuite)
	}
	group := suite.Group()
	if len(wire.Commitment) == 0 {
		return nil, fmt.Errorf("dkg: empty commitment: %w", frost.ErrMalformedEncoding)
	}
	coefficients := make([]curve.Point, len(wire.Commitment))
	for i, encoded := range wire.Commitment {
		coefficients[i] = group.NewPoint()
		if err := coefficients[i].UnmarshalBinary(encoded); err != nil {
			return nil, fmt.Errorf("dkg: commitment coefficient %d: %v: %w", i, err, frost.ErrMalformedEncoding)
		}
	}
	proofR := group.NewPoint()
	if err := proofR.UnmarshalBinary(wire.ProofR); err != nil {
		return nil, fmt.Errorf("dkg: proof R: %v: %w", err, frost.ErrMalformedEncoding)
	}
	proofZ := group.NewScalar()
	if err := proofZ.UnmarshalBinary(wire.ProofZ); err != nil {
		return nil, fmt.Errorf("dkg: proof z: %v: %w", err, frost.ErrMalformedEncoding)
	}
	return &Round1Package{
		Commitment: polynomial.NewExponent(group, coefficients),
		ProofR:     proofR,
		ProofZ:     proofZ,
	}, nil
}

// Encode serializes the share package for the wire. The result contains a
// secret share and must only travel through an end-to-end encrypted
// channel.
func (p *Round2Package) Encode(suite frost.Suite) ([]byte, error) {
	share, err := p.SigningShare.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(round2Wire{Suite: suite.Name(), SigningShare: share})
}

// DecodeRound2Package parses a share package.
func DecodeRound2Package(suite frost.Suite, data []byte) (*Round2Package, error) {
	var wire round2Wire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("dkg: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if wire.Suite != suite.Name() {
		return nil, fmt.Errorf("dkg: package for suite %q, want %q: %w",
			wire.Suite, suite.Name(), frost.ErrWrongCiphersuite)
	}
	share := suite.Group().NewScalar()
	if err := share.UnmarshalBinary(wire.SigningShare); err != nil {
		return nil, fmt.Errorf("dkg: signing share: %v: %w", err, frost.ErrMalformedEncoding)
	}
	return &Round2Package{SigningShare: share}, nil
}
