package curve

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/quorumsig/frost/internal/pallas"
)

// Pallas is the Pallas curve of the pasta cycle, used by RedPallas
// signatures (Zcash Orchard).
type Pallas struct{}

var pallasOrder = saferith.ModulusFromBytes(pallasOrderBytes())

func pallasOrderBytes() []byte {
	out := make([]byte, 32)
	pallas.Q.FillBytes(out)
	return out
}

func (Pallas) NewPoint() Point {
	return &pallasPoint{value: *pallas.NewIdentity()}
}

func (Pallas) NewBasePoint() Point {
	return &pallasPoint{value: *pallas.NewGenerator()}
}

func (Pallas) NewScalar() Scalar {
	return &pallasScalar{value: *new(saferith.Nat).SetUint64(0)}
}

func (Pallas) Name() string { return "pallas" }

func (Pallas) ScalarBytes() int { return 32 }

func (Pallas) PointBytes() int { return 32 }

func (Pallas) Order() *saferith.Modulus { return pallasOrder }

type pallasScalar struct {
	value saferith.Nat
}

func pallasCastScalar(generic Scalar) *pallasScalar {
	out, ok := generic.(*pallasScalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to pallasScalar: %v", generic))
	}
	return out
}

func (*pallasScalar) Curve() Curve { return Pallas{} }

// MarshalBinary returns the canonical 32-byte little-endian encoding used
// by the pasta curves.
func (s *pallasScalar) MarshalBinary() ([]byte, error) {
	out := make([]byte, 32)
	s.value.FillBytes(out)
	reverse(out)
	return out, nil
}

func (s *pallasScalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid length for pallas scalar: %d", len(data))
	}
	buf := make([]byte, 32)
	copy(buf, data)
	reverse(buf)
	candidate := new(saferith.Nat).SetBytes(buf)
	if _, _, lt := candidate.CmpMod(pallasOrder); lt != 1 {
		return errors.New("non-canonical pallas scalar")
	}
	s.value.SetNat(candidate)
	return nil
}

func (s *pallasScalar) Add(that Scalar) Scalar {
	s.value.ModAdd(&s.value, &pallasCastScalar(that).value, pallasOrder)
	return s
}

func (s *pallasScalar) Sub(that Scalar) Scalar {
	neg := new(saferith.Nat).ModNeg(&pallasCastScalar(that).value, pallasOrder)
	s.value.ModAdd(&s.value, neg, pallasOrder)
	return s
}

func (s *pallasScalar) Negate() Scalar {
	s.value.ModNeg(&s.value, pallasOrder)
	return s
}

func (s *pallasScalar) Mul(that Scalar) Scalar {
	s.value.ModMul(&s.value, &pallasCastScalar(that).value, pallasOrder)
	return s
}

func (s *pallasScalar) Invert() Scalar {
	s.value.SetNat(new(saferith.Nat).ModInverse(&s.value, pallasOrder))
	return s
}

func (s *pallasScalar) Equal(that Scalar) bool {
	return s.value.Eq(&pallasCastScalar(that).value) == 1
}

func (s *pallasScalar) IsZero() bool {
	zero := new(saferith.Nat).SetUint64(0)
	return s.value.Eq(zero) == 1
}

func (s *pallasScalar) Set(that Scalar) Scalar {
	s.value.SetNat(&pallasCastScalar(that).value)
	return s
}

func (s *pallasScalar) SetNat(x *saferith.Nat) Scalar {
	s.value.Mod(x, pallasOrder)
	return s
}

// SetUniformBytes interprets data as a little-endian integer reduced mod q,
// matching the from_uniform_bytes construction of the pasta curves.
func (s *pallasScalar) SetUniformBytes(data []byte) Scalar {
	buf := make([]byte, len(data))
	copy(buf, data)
	reverse(buf)
	s.value.Mod(new(saferith.Nat).SetBytes(buf), pallasOrder)
	return s
}

func (s *pallasScalar) bigEndianBytes() []byte {
	out := make([]byte, 32)
	s.value.FillBytes(out)
	return out
}

func (s *pallasScalar) Act(that Point) Point {
	other := pallasCastPoint(that)
	out := &pallasPoint{}
	out.value.ScalarMult(s.bigEndianBytes(), &other.value)
	return out
}

func (s *pallasScalar) ActOnBase() Point {
	out := &pallasPoint{}
	out.value.ScalarBaseMult(s.bigEndianBytes())
	return out
}

type pallasPoint struct {
	value pallas.Point
}

func pallasCastPoint(generic Point) *pallasPoint {
	out, ok := generic.(*pallasPoint)
	if !ok {
		panic(fmt.Sprintf("failed to convert to pallasPoint: %v", generic))
	}
	return out
}

func (*pallasPoint) Curve() Curve { return Pallas{} }

func (p *pallasPoint) MarshalBinary() ([]byte, error) {
	return p.value.MarshalCompressed(), nil
}

func (p *pallasPoint) UnmarshalBinary(data []byte) error {
	return p.value.UnmarshalCompressed(data)
}

func (p *pallasPoint) Add(that Point) Point {
	out := &pallasPoint{}
	out.value.Add(&p.value, &pallasCastPoint(that).value)
	return out
}

func (p *pallasPoint) Sub(that Point) Point {
	neg := new(pallas.Point).Neg(&pallasCastPoint(that).value)
	out := &pallasPoint{}
	out.value.Add(&p.value, neg)
	return out
}

func (p *pallasPoint) Negate() Point {
	out := &pallasPoint{}
	out.value.Neg(&p.value)
	return out
}

func (p *pallasPoint) Set(that Point) Point {
	p.value.Set(&pallasCastPoint(that).value)
	return p
}

func (p *pallasPoint) Equal(that Point) bool {
	return p.value.Equal(&pallasCastPoint(that).value)
}

func (p *pallasPoint) IsIdentity() bool {
	return p.value.IsIdentity()
}
