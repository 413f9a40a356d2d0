package sign

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/quorumsig/frost/pkg/frost"
	"github.com/quorumsig/frost/pkg/party"
)

// encMode sorts map keys so that equal packages encode to equal bytes;
// randomizer derivation hashes package encodings and needs determinism.
var encMode, _ = cbor.CanonicalEncOptions().EncMode()

type commitmentsWire struct {
	Suite   string `cbor:"suite"`
	Hiding  []byte `cbor:"hiding"`
	Binding []byte `cbor:"binding"`
}

type signingPackageWire struct {
	Suite       string            `cbor:"suite"`
	Message     []byte            `cbor:"message"`
	Commitments map[uint16][]byte `cbor:"commitments"`
}

type signatureShareWire struct {
	Suite string `cbor:"suite"`
	Share []byte `cbor:"share"`
}

func checkWireSuite(got string, suite frost.Suite) error {
	if got != suite.Name() {
		return fmt.Errorf("sign: package for suite %q, want %q: %w", got, suite.Name(), frost.ErrWrongCiphersuite)
	}
	return nil
}

// Encode serializes the commitments for the wire.
func (c *SigningCommitments) Encode(suite frost.Suite) ([]byte, error) {
	hiding, err := c.Hiding.MarshalBinary()
	if err != nil {
		return nil, err
	}
	binding, err := c.Binding.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(commitmentsWire{Suite: suite.Name(), Hiding: hiding, Binding: binding})
}

// DecodeSigningCommitments parses commitments, rejecting the identity and
// foreign suites.
func DecodeSigningCommitments(suite frost.Suite, data []byte) (*SigningCommitments, error) {
	var wire commitmentsWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("sign: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if err := checkWireSuite(wire.Suite, suite); err != nil {
		return nil, err
	}
	return decodeCommitmentPair(suite, wire.Hiding, wire.Binding)
}

func decodeCommitmentPair(suite frost.Suite, hidingBytes, bindingBytes []byte) (*SigningCommitments, error) {
	group := suite.Group()
	hiding := group.NewPoint()
	if err := hiding.UnmarshalBinary(hidingBytes); err != nil {
		return nil, fmt.Errorf("sign: hiding commitment: %v: %w", err, frost.ErrMalformedEncoding)
	}
	binding := group.NewPoint()
	if err := binding.UnmarshalBinary(bindingBytes); err != nil {
		return nil, fmt.Errorf("sign: binding commitment: %v: %w", err, frost.ErrMalformedEncoding)
	}
	return &SigningCommitments{Hiding: hiding, Binding: binding}, nil
}

// Encode serializes the signing package for the wire.
func (sp *SigningPackage) Encode(suite frost.Suite) ([]byte, error) {
	wire := signingPackageWire{
		Suite:       suite.Name(),
		Message:     sp.Message,
		Commitments: make(map[uint16][]byte, len(sp.Commitments)),
	}
	for id, c := range sp.Commitments {
		encoded, err := c.Encode(suite)
		if err != nil {
			return nil, err
		}
		wire.Commitments[uint16(id)] = encoded
	}
	return encMode.Marshal(wire)
}

// DecodeSigningPackage parses a signing package.
func DecodeSigningPackage(suite frost.Suite, data []byte) (*SigningPackage, error) {
	var wire signingPackageWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("sign: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if err := checkWireSuite(wire.Suite, suite); err != nil {
		return nil, err
	}
	commitments := make(map[party.ID]*SigningCommitments, len(wire.Commitments))
	for id, encoded := range wire.Commitments {
		c, err := DecodeSigningCommitments(suite, encoded)
		if err != nil {
			return nil, err
		}
		commitments[party.ID(id)] = c
	}
	return NewSigningPackage(wire.Message, commitments)
}

// Encode serializes the signature share for the wire.
func (s *SignatureShare) Encode(suite frost.Suite) ([]byte, error) {
	share, err := s.Share.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(signatureShareWire{Suite: suite.Name(), Share: share})
}

// DecodeSignatureShare parses a signature share.
func DecodeSignatureShare(suite frost.Suite, data []byte) (*SignatureShare, error) {
	var wire signatureShareWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("sign: %v: %w", err, frost.ErrMalformedEncoding)
	}
	if err := checkWireSuite(wire.Suite, suite); err != nil {
		return nil, err
	}
	share := suite.Group().NewScalar()
	if err := share.UnmarshalBinary(wire.Share); err != nil {
		return nil, fmt.Errorf("sign: share: %v: %w", err, frost.ErrMalformedEncoding)
	}
	return &SignatureShare{Share: share}, nil
}
