package curve

import (
	"bytes"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/cronokirby/saferith"
)

// Ed25519 is the twisted Edwards curve underlying the Ed25519 signature
// scheme, as a prime-order group (the usual cofactor-8 caveats are handled
// by rejecting small-order and non-canonical encodings).
type Ed25519 struct{}

// ed25519Order is the group order l = 2²⁵² + 27742317777372353535851937790883648493.
var ed25519Order = saferith.ModulusFromBytes([]byte{
	0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x14, 0xde, 0xf9, 0xde, 0xa2, 0xf7, 0x9c, 0xd6,
	0x58, 0x12, 0x63, 0x1a, 0x5c, 0xf5, 0xd3, 0xed,
})

func (Ed25519) NewPoint() Point {
	return &ed25519Point{value: *edwards25519.NewIdentityPoint()}
}

func (Ed25519) NewBasePoint() Point {
	return &ed25519Point{value: *edwards25519.NewGeneratorPoint()}
}

func (Ed25519) NewScalar() Scalar {
	return &ed25519Scalar{value: *edwards25519.NewScalar()}
}

func (Ed25519) Name() string { return "ed25519" }

func (Ed25519) ScalarBytes() int { return 32 }

func (Ed25519) PointBytes() int { return 32 }

func (Ed25519) Order() *saferith.Modulus { return ed25519Order }

type ed25519Scalar struct {
	value edwards25519.Scalar
}

func ed25519CastScalar(generic Scalar) *ed25519Scalar {
	out, ok := generic.(*ed25519Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ed25519Scalar: %v", generic))
	}
	return out
}

func (*ed25519Scalar) Curve() Curve { return Ed25519{} }

// MarshalBinary returns the canonical 32-byte little-endian encoding.
func (s *ed25519Scalar) MarshalBinary() ([]byte, error) {
	return s.value.Bytes(), nil
}

func (s *ed25519Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid length for ed25519 scalar: %d", len(data))
	}
	if _, err := s.value.SetCanonicalBytes(data); err != nil {
		return errors.New("non-canonical ed25519 scalar")
	}
	return nil
}

func (s *ed25519Scalar) Add(that Scalar) Scalar {
	s.value.Add(&s.value, &ed25519CastScalar(that).value)
	return s
}

func (s *ed25519Scalar) Sub(that Scalar) Scalar {
	s.value.Subtract(&s.value, &ed25519CastScalar(that).value)
	return s
}

func (s *ed25519Scalar) Negate() Scalar {
	s.value.Negate(&s.value)
	return s
}

func (s *ed25519Scalar) Mul(that Scalar) Scalar {
	s.value.Multiply(&s.value, &ed25519CastScalar(that).value)
	return s
}

func (s *ed25519Scalar) Invert() Scalar {
	s.value.Invert(&s.value)
	return s
}

func (s *ed25519Scalar) Equal(that Scalar) bool {
	return s.value.Equal(&ed25519CastScalar(that).value) == 1
}

func (s *ed25519Scalar) IsZero() bool {
	zero := edwards25519.NewScalar()
	return s.value.Equal(zero) == 1
}

func (s *ed25519Scalar) Set(that Scalar) Scalar {
	s.value.Set(&ed25519CastScalar(that).value)
	return s
}

func (s *ed25519Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, ed25519Order)
	buf := make([]byte, 32)
	reduced.FillBytes(buf)
	reverse(buf)
	if _, err := s.value.SetCanonicalBytes(buf); err != nil {
		panic(fmt.Sprintf("ed25519Scalar.SetNat: %v", err))
	}
	return s
}

// SetUniformBytes interprets data as a little-endian integer reduced mod l.
// The input must be exactly 64 bytes, matching SHA-512 output.
func (s *ed25519Scalar) SetUniformBytes(data []byte) Scalar {
	if _, err := s.value.SetUniformBytes(data); err != nil {
		panic(fmt.Sprintf("ed25519Scalar.SetUniformBytes: %v", err))
	}
	return s
}

func (s *ed25519Scalar) Act(that Point) Point {
	other := ed25519CastPoint(that)
	out := &ed25519Point{}
	out.value.ScalarMult(&s.value, &other.value)
	return out
}

func (s *ed25519Scalar) ActOnBase() Point {
	out := &ed25519Point{}
	out.value.ScalarBaseMult(&s.value)
	return out
}

type ed25519Point struct {
	value edwards25519.Point
}

func ed25519CastPoint(generic Point) *ed25519Point {
	out, ok := generic.(*ed25519Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to ed25519Point: %v", generic))
	}
	return out
}

func (*ed25519Point) Curve() Curve { return Ed25519{} }

func (p *ed25519Point) MarshalBinary() ([]byte, error) {
	return p.value.Bytes(), nil
}

func (p *ed25519Point) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid length for ed25519 point: %d", len(data))
	}
	var candidate edwards25519.Point
	if _, err := candidate.SetBytes(data); err != nil {
		return errors.New("invalid ed25519 point encoding")
	}
	// SetBytes accepts a handful of non-canonical encodings; re-encoding
	// detects them.
	if !bytes.Equal(candidate.Bytes(), data) {
		return errors.New("non-canonical ed25519 point encoding")
	}
	if candidate.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return errors.New("ed25519 point is the identity")
	}
	p.value.Set(&candidate)
	return nil
}

func (p *ed25519Point) Add(that Point) Point {
	out := &ed25519Point{}
	out.value.Add(&p.value, &ed25519CastPoint(that).value)
	return out
}

func (p *ed25519Point) Sub(that Point) Point {
	out := &ed25519Point{}
	out.value.Subtract(&p.value, &ed25519CastPoint(that).value)
	return out
}

func (p *ed25519Point) Negate() Point {
	out := &ed25519Point{}
	out.value.Negate(&p.value)
	return out
}

func (p *ed25519Point) Set(that Point) Point {
	p.value.Set(&ed25519CastPoint(that).value)
	return p
}

func (p *ed25519Point) Equal(that Point) bool {
	return p.value.Equal(&ed25519CastPoint(that).value) == 1
}

func (p *ed25519Point) IsIdentity() bool {
	return p.value.Equal(edwards25519.NewIdentityPoint()) == 1
}

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
