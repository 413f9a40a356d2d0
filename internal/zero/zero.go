// Package zero provides overwrite helpers for secret material. A leaked
// signing nonce after its share has been emitted allows full key recovery,
// so callers defer these on every exit path.
package zero

import "github.com/quorumsig/frost/pkg/math/curve"

// Bytes overwrites the slice with zeroes.
func Bytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// Scalar overwrites the scalar with zero.
func Scalar(s curve.Scalar) {
	if s == nil {
		return
	}
	s.Set(s.Curve().NewScalar())
}

// Scalars overwrites every scalar in the slice with zero.
func Scalars(scalars ...curve.Scalar) {
	for _, s := range scalars {
		Scalar(s)
	}
}
