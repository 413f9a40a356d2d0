package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/quorumsig/frost/pkg/math/curve"
)

const maxIterations = 255

// ErrMaxIterations is returned if the rejection sampling loop fails to
// terminate, which has negligible probability with a functioning reader.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for i := 0; i < maxIterations; i++ {
		mustReadBits(rand, buf)
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out
		}
	}
	panic(ErrMaxIterations)
}

// Scalar returns a uniform scalar of the given group.
func Scalar(rand io.Reader, group curve.Curve) curve.Scalar {
	return group.NewScalar().SetNat(ModN(rand, group.Order()))
}

// ScalarNonZero returns a uniform nonzero scalar of the given group.
func ScalarNonZero(rand io.Reader, group curve.Curve) curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		if s := Scalar(rand, group); !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}
