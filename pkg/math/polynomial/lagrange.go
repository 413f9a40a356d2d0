package polynomial

import (
	"github.com/cronokirby/saferith"
	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/party"
)

// Lagrange returns the Lagrange coefficients at 0 for all parties in the
// interpolation domain. Summing λᵢ·f(xᵢ) over the domain recovers f(0).
func Lagrange(group curve.Curve, interpolationDomain party.IDSlice) map[party.ID]curve.Scalar {
	scalars, numerator := getScalarsAndNumerator(group, interpolationDomain)
	coefficients := make(map[party.ID]curve.Scalar, len(interpolationDomain))
	for _, j := range interpolationDomain {
		coefficients[j] = lagrange(group, scalars, numerator, j)
	}
	return coefficients
}

// LagrangeSingle returns the Lagrange coefficient at 0 of the party with
// index j.
func LagrangeSingle(group curve.Curve, interpolationDomain party.IDSlice, j party.ID) curve.Scalar {
	scalars, numerator := getScalarsAndNumerator(group, interpolationDomain)
	return lagrange(group, scalars, numerator, j)
}

// getScalarsAndNumerator returns the scalars associated to the IDs, and the
// product numerator = x₀⋅…⋅xₖ.
func getScalarsAndNumerator(group curve.Curve, interpolationDomain party.IDSlice) (map[party.ID]curve.Scalar, curve.Scalar) {
	numerator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	scalars := make(map[party.ID]curve.Scalar, len(interpolationDomain))
	for _, id := range interpolationDomain {
		xi := id.Scalar(group)
		scalars[id] = xi
		numerator.Mul(xi)
	}
	return scalars, numerator
}

// lagrange computes
//
//	          x₀ ⋅⋅⋅ xₖ
//	lⱼ(0) = --------------------------------------------------
//	        xⱼ⋅(x₀ - xⱼ)⋅⋅⋅(xⱼ₋₁ - xⱼ)⋅(xⱼ₊₁ - xⱼ)⋅⋅⋅(xₖ - xⱼ).
func lagrange(group curve.Curve, interpolationDomain map[party.ID]curve.Scalar, numerator curve.Scalar, j party.ID) curve.Scalar {
	xJ := interpolationDomain[j]
	tmp := group.NewScalar()

	denominator := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(1))
	for i, xI := range interpolationDomain {
		if i == j {
			denominator.Mul(xJ)
			continue
		}
		// tmp = xᵢ - xⱼ
		tmp.Set(xI).Sub(xJ)
		denominator.Mul(tmp)
	}

	lJ := denominator.Invert()
	lJ.Mul(numerator)
	return lJ
}
