// Package pallas implements the Pallas curve, the short Weierstrass curve
//
//	y² = x³ + 5
//
// over the base field of size
//
//	p = 0x40000000000000000000000000000000224698fc094cf91b992d30ed00000001
//
// with scalar field of size
//
//	q = 0x40000000000000000000000000000000224698fc0994a8dd8c46eb2100000001.
//
// This is the group used by the RedPallas signature scheme (Zcash Orchard).
// Points are public values throughout the protocols, so point arithmetic
// uses math/big in Jacobian coordinates; scalar arithmetic lives with the
// caller, which keeps scalars in constant-time saferith representation.
package pallas

import (
	"errors"
	"math/big"
)

var (
	// P is the base field modulus.
	P *big.Int
	// Q is the scalar field modulus, i.e. the group order.
	Q *big.Int
	// b is the constant term of the curve equation.
	b = big.NewInt(5)
	// generator affine coordinates: (-1, 2) satisfies (-1)³ + 5 = 4 = 2².
	genX *big.Int
	genY = big.NewInt(2)
)

func init() {
	P, _ = new(big.Int).SetString("40000000000000000000000000000000224698fc094cf91b992d30ed00000001", 16)
	Q, _ = new(big.Int).SetString("40000000000000000000000000000000224698fc0994a8dd8c46eb2100000001", 16)
	genX = new(big.Int).Sub(P, big.NewInt(1))
}

// Point is a point on the Pallas curve in Jacobian coordinates.
// The identity is represented by Z = 0.
type Point struct {
	X, Y, Z big.Int
}

// NewIdentity returns the point at infinity.
func NewIdentity() *Point {
	p := &Point{}
	p.X.SetInt64(1)
	p.Y.SetInt64(1)
	return p
}

// NewGenerator returns the standard base point.
func NewGenerator() *Point {
	p := &Point{}
	p.X.Set(genX)
	p.Y.Set(genY)
	p.Z.SetInt64(1)
	return p
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	return p.Z.Sign() == 0
}

// Set copies q into p.
func (p *Point) Set(q *Point) *Point {
	p.X.Set(&q.X)
	p.Y.Set(&q.Y)
	p.Z.Set(&q.Z)
	return p
}

func mod(x *big.Int) *big.Int { return x.Mod(x, P) }

// affine returns the affine coordinates of p. Must not be called on the
// identity.
func (p *Point) affine() (x, y *big.Int) {
	zInv := new(big.Int).ModInverse(&p.Z, P)
	zInv2 := new(big.Int).Mul(zInv, zInv)
	mod(zInv2)
	x = new(big.Int).Mul(&p.X, zInv2)
	mod(x)
	zInv3 := zInv2.Mul(zInv2, zInv)
	mod(zInv3)
	y = new(big.Int).Mul(&p.Y, zInv3)
	mod(y)
	return x, y
}

// Normalize rescales p to Z ∈ {0, 1} so that coordinate comparison works.
func (p *Point) Normalize() *Point {
	if p.IsIdentity() {
		p.X.SetInt64(1)
		p.Y.SetInt64(1)
		p.Z.SetInt64(0)
		return p
	}
	x, y := p.affine()
	p.X.Set(x)
	p.Y.Set(y)
	p.Z.SetInt64(1)
	return p
}

// Equal reports whether p and q are the same group element.
func (p *Point) Equal(q *Point) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() == q.IsIdentity()
	}
	px, py := p.affine()
	qx, qy := q.affine()
	return px.Cmp(qx) == 0 && py.Cmp(qy) == 0
}

// Neg sets p = -q.
func (p *Point) Neg(q *Point) *Point {
	p.X.Set(&q.X)
	p.Y.Neg(&q.Y)
	p.Y.Mod(&p.Y, P)
	p.Z.Set(&q.Z)
	return p
}

// Double sets p = 2·q using the standard Jacobian doubling formulae for
// a = 0 curves.
func (p *Point) Double(q *Point) *Point {
	if q.IsIdentity() {
		return p.Set(q)
	}
	// A = X², B = Y², C = B²
	a := new(big.Int).Mul(&q.X, &q.X)
	mod(a)
	bb := new(big.Int).Mul(&q.Y, &q.Y)
	mod(bb)
	c := new(big.Int).Mul(bb, bb)
	mod(c)
	// D = 2((X+B)² − A − C)
	d := new(big.Int).Add(&q.X, bb)
	d.Mul(d, d)
	mod(d)
	d.Sub(d, a)
	d.Sub(d, c)
	d.Lsh(d, 1)
	d.Mod(d, P)
	// E = 3A, F = E²
	e := new(big.Int).Lsh(a, 1)
	e.Add(e, a)
	e.Mod(e, P)
	f := new(big.Int).Mul(e, e)
	mod(f)
	// X3 = F − 2D
	x3 := new(big.Int).Lsh(d, 1)
	x3.Sub(f, x3)
	x3.Mod(x3, P)
	// Y3 = E(D − X3) − 8C
	y3 := new(big.Int).Sub(d, x3)
	y3.Mul(y3, e)
	mod(y3)
	c8 := new(big.Int).Lsh(c, 3)
	y3.Sub(y3, c8)
	y3.Mod(y3, P)
	// Z3 = 2YZ
	z3 := new(big.Int).Mul(&q.Y, &q.Z)
	mod(z3)
	z3.Lsh(z3, 1)
	z3.Mod(z3, P)

	p.X.Set(x3)
	p.Y.Set(y3)
	p.Z.Set(z3)
	return p
}

// Add sets p = q1 + q2.
func (p *Point) Add(q1, q2 *Point) *Point {
	if q1.IsIdentity() {
		return p.Set(q2)
	}
	if q2.IsIdentity() {
		return p.Set(q1)
	}
	// U1 = X1·Z2², U2 = X2·Z1²
	z1z1 := new(big.Int).Mul(&q1.Z, &q1.Z)
	mod(z1z1)
	z2z2 := new(big.Int).Mul(&q2.Z, &q2.Z)
	mod(z2z2)
	u1 := new(big.Int).Mul(&q1.X, z2z2)
	mod(u1)
	u2 := new(big.Int).Mul(&q2.X, z1z1)
	mod(u2)
	// S1 = Y1·Z2³, S2 = Y2·Z1³
	s1 := new(big.Int).Mul(&q1.Y, &q2.Z)
	mod(s1)
	s1.Mul(s1, z2z2)
	mod(s1)
	s2 := new(big.Int).Mul(&q2.Y, &q1.Z)
	mod(s2)
	s2.Mul(s2, z1z1)
	mod(s2)

	h := new(big.Int).Sub(u2, u1)
	h.Mod(h, P)
	r := new(big.Int).Sub(s2, s1)
	r.Mod(r, P)

	if h.Sign() == 0 {
		if r.Sign() == 0 {
			return p.Double(q1)
		}
		// q1 = -q2
		p.X.SetInt64(1)
		p.Y.SetInt64(1)
		p.Z.SetInt64(0)
		return p
	}

	h2 := new(big.Int).Mul(h, h)
	mod(h2)
	h3 := new(big.Int).Mul(h2, h)
	mod(h3)
	u1h2 := new(big.Int).Mul(u1, h2)
	mod(u1h2)

	// X3 = r² − H³ − 2·U1·H²
	x3 := new(big.Int).Mul(r, r)
	mod(x3)
	x3.Sub(x3, h3)
	tmp := new(big.Int).Lsh(u1h2, 1)
	x3.Sub(x3, tmp)
	x3.Mod(x3, P)
	// Y3 = r(U1·H² − X3) − S1·H³
	y3 := new(big.Int).Sub(u1h2, x3)
	y3.Mul(y3, r)
	mod(y3)
	tmp.Mul(s1, h3)
	mod(tmp)
	y3.Sub(y3, tmp)
	y3.Mod(y3, P)
	// Z3 = Z1·Z2·H
	z3 := new(big.Int).Mul(&q1.Z, &q2.Z)
	mod(z3)
	z3.Mul(z3, h)
	mod(z3)

	p.X.Set(x3)
	p.Y.Set(y3)
	p.Z.Set(z3)
	return p
}

// ScalarMult sets p = k·q. The scalar is given as a 32-byte big-endian
// integer already reduced mod Q. All 256 bit positions are processed so the
// operation count does not depend on the scalar value.
func (p *Point) ScalarMult(k []byte, q *Point) *Point {
	acc := NewIdentity()
	tmp := NewIdentity()
	for _, by := range k {
		for bit := 7; bit >= 0; bit-- {
			acc.Double(acc)
			tmp.Add(acc, q)
			if (by>>uint(bit))&1 == 1 {
				acc.Set(tmp)
			}
		}
	}
	return p.Set(acc)
}

// ScalarBaseMult sets p = k·G.
func (p *Point) ScalarBaseMult(k []byte) *Point {
	return p.ScalarMult(k, NewGenerator())
}

// MarshalCompressed returns the 32-byte little-endian encoding of the
// x-coordinate with the parity of y in the top bit of the last byte, the
// encoding used by the pasta curves. The identity encodes as all zeroes.
func (p *Point) MarshalCompressed() []byte {
	out := make([]byte, 32)
	if p.IsIdentity() {
		return out
	}
	x, y := p.affine()
	x.FillBytes(out)
	reverse(out)
	if y.Bit(0) == 1 {
		out[31] |= 0x80
	}
	return out
}

// UnmarshalCompressed decodes a compressed point. It rejects non-canonical
// x-coordinates, off-curve values, and the identity encoding.
func (p *Point) UnmarshalCompressed(data []byte) error {
	if len(data) != 32 {
		return errors.New("pallas: invalid point length")
	}
	buf := make([]byte, 32)
	copy(buf, data)
	ySign := buf[31] >> 7
	buf[31] &= 0x7f
	reverse(buf)
	x := new(big.Int).SetBytes(buf)
	if x.Cmp(P) >= 0 {
		return errors.New("pallas: non-canonical x coordinate")
	}
	if x.Sign() == 0 && ySign == 0 {
		return errors.New("pallas: point is the identity")
	}
	// y² = x³ + 5
	y2 := new(big.Int).Mul(x, x)
	mod(y2)
	y2.Mul(y2, x)
	mod(y2)
	y2.Add(y2, b)
	y2.Mod(y2, P)
	y := new(big.Int).ModSqrt(y2, P)
	if y == nil {
		return errors.New("pallas: x coordinate not on curve")
	}
	if y.Bit(0) != uint(ySign) {
		y.Sub(P, y)
	}
	p.X.Set(x)
	p.Y.Set(y)
	p.Z.SetInt64(1)
	return nil
}

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
