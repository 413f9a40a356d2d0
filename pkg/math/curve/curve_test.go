package curve

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCurves() []Curve {
	return []Curve{Ed25519{}, Pallas{}, Secp256k1{}}
}

func randomScalar(t *testing.T, group Curve) Scalar {
	t.Helper()
	buf := make([]byte, 64)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return group.NewScalar().SetUniformBytes(buf[:group.ScalarBytes()*2])
}

func TestScalarArithmetic(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			a := randomScalar(t, group)
			b := randomScalar(t, group)

			// a + b - b = a
			sum := group.NewScalar().Set(a).Add(b)
			sum.Sub(b)
			assert.True(t, sum.Equal(a))

			// a * a⁻¹ = 1
			if !a.IsZero() {
				one := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
				inv := group.NewScalar().Set(a).Invert()
				assert.True(t, inv.Mul(a).Equal(one))
			}

			// a + (-a) = 0
			neg := group.NewScalar().Set(a).Negate()
			assert.True(t, neg.Add(a).IsZero())
		})
	}
}

func TestScalarRoundTrip(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			a := randomScalar(t, group)
			data, err := a.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, data, group.ScalarBytes())

			b := group.NewScalar()
			require.NoError(t, b.UnmarshalBinary(data))
			assert.True(t, a.Equal(b))
		})
	}
}

func TestScalarRejectsNonCanonical(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			// The all-ones encoding exceeds every group order in use.
			data := make([]byte, group.ScalarBytes())
			for i := range data {
				data[i] = 0xff
			}
			err := group.NewScalar().UnmarshalBinary(data)
			assert.Error(t, err)

			err = group.NewScalar().UnmarshalBinary(data[:len(data)-1])
			assert.Error(t, err)
		})
	}
}

func TestPointRoundTrip(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			p := randomScalar(t, group).ActOnBase()
			data, err := p.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, data, group.PointBytes())

			q := group.NewPoint()
			require.NoError(t, q.UnmarshalBinary(data))
			assert.True(t, p.Equal(q))
		})
	}
}

func TestPointRejectsIdentity(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			identity := group.NewPoint()
			require.True(t, identity.IsIdentity())
			if data, err := identity.MarshalBinary(); err == nil {
				assert.Error(t, group.NewPoint().UnmarshalBinary(data))
			}
		})
	}
}

func TestActMatchesGroupLaw(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			a := randomScalar(t, group)
			b := randomScalar(t, group)

			// (a·b)·B = a·(b·B)
			ab := group.NewScalar().Set(a).Mul(b)
			left := ab.ActOnBase()
			right := a.Act(b.ActOnBase())
			assert.True(t, left.Equal(right))

			// (a+b)·B = a·B + b·B
			sum := group.NewScalar().Set(a).Add(b)
			left = sum.ActOnBase()
			right = a.ActOnBase().Add(b.ActOnBase())
			assert.True(t, left.Equal(right))
		})
	}
}

func TestPointAddSubNegate(t *testing.T) {
	for _, group := range allCurves() {
		t.Run(group.Name(), func(t *testing.T) {
			p := randomScalar(t, group).ActOnBase()
			q := randomScalar(t, group).ActOnBase()

			assert.True(t, p.Add(q).Sub(q).Equal(p))
			assert.True(t, p.Add(p.Negate()).IsIdentity())
		})
	}
}
