package frost

import (
	"fmt"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// Signature is a Schnorr signature (R, z) satisfying
//
//	z·B = R + Challenge(R, Y, m)·Y.
type Signature struct {
	R curve.Point
	Z curve.Scalar
}

// Encode returns enc(R) ‖ enc(z).
func (sig *Signature) Encode() ([]byte, error) {
	encodedR, err := sig.R.MarshalBinary()
	if err != nil {
		return nil, err
	}
	encodedZ, err := sig.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(encodedR, encodedZ...), nil
}

// DecodeSignature parses a signature encoded for the given suite.
func DecodeSignature(suite Suite, data []byte) (*Signature, error) {
	group := suite.Group()
	if len(data) != group.PointBytes()+group.ScalarBytes() {
		return nil, fmt.Errorf("frost: signature has length %d: %w", len(data), ErrMalformedEncoding)
	}
	R, err := decodePoint(suite, data[:group.PointBytes()])
	if err != nil {
		return nil, err
	}
	z, err := decodeScalar(suite, data[group.PointBytes():])
	if err != nil {
		return nil, err
	}
	return &Signature{R: R, Z: z}, nil
}
