package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the group that a threshold signature scheme operates in.
//
// Implementations provide constructors for scalars and points, along with
// the sizes and the order needed for sampling and hashing.
type Curve interface {
	// NewPoint returns the identity element of the group.
	NewPoint() Point
	// NewBasePoint returns the standard generator B.
	NewBasePoint() Point
	// NewScalar returns the scalar 0.
	NewScalar() Scalar
	// Name uniquely identifies the curve, and is bound into transcripts.
	Name() string
	// ScalarBytes is the length of a canonical scalar encoding.
	ScalarBytes() int
	// PointBytes is the length of a canonical point encoding.
	PointBytes() int
	// Order returns the order q of the prime-order group.
	Order() *saferith.Modulus
}

// Scalar is an element of ℤ/(q).
//
// Mutating methods operate in place and return the receiver, following the
// usual chaining convention. Equality and scalar arithmetic are constant
// time. Act and ActOnBase are constant time on Ed25519 only; the Pallas and
// secp256k1 backends multiply points in variable time.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Negate() Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar
	SetNat(*saferith.Nat) Scalar
	// SetUniformBytes reduces a wide (at least 2·ScalarBytes-long) byte
	// string modulo q, for use by hash-to-scalar constructions.
	SetUniformBytes([]byte) Scalar
	// Act returns the result of the scalar acting on a point, i.e. s·P.
	Act(Point) Point
	// ActOnBase returns s·B.
	ActOnBase() Point
}

// Point is an element of the group generated by the base point.
//
// UnmarshalBinary accepts only canonical encodings and rejects the identity,
// since no protocol message legitimately carries it.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}
