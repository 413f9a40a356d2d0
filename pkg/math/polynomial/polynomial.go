package polynomial

import (
	"io"

	"github.com/quorumsig/frost/pkg/math/curve"
	"github.com/quorumsig/frost/pkg/math/sample"
)

// Polynomial represents f(X) = a₀ + a₁⋅X + … + aₜ₋₁⋅Xᵗ⁻¹ over the scalar
// field of a curve. The constant coefficient is the shared secret.
type Polynomial struct {
	group        curve.Curve
	coefficients []curve.Scalar
}

// NewPolynomial generates a Polynomial f(X) = constant + a₁⋅X + … + aₜ⋅Xᵗ
// of the given degree, with the remaining coefficients sampled uniformly
// from rand.
func NewPolynomial(group curve.Curve, degree int, constant curve.Scalar, rand io.Reader) *Polynomial {
	polynomial := &Polynomial{
		group:        group,
		coefficients: make([]curve.Scalar, degree+1),
	}
	if constant == nil {
		constant = group.NewScalar()
	}
	polynomial.coefficients[0] = constant
	for i := 1; i <= degree; i++ {
		polynomial.coefficients[i] = sample.Scalar(rand, group)
	}
	return polynomial
}

// FromCoefficients rebuilds a polynomial from explicit coefficients, for
// callers restoring persisted secret state.
func FromCoefficients(group curve.Curve, coefficients []curve.Scalar) *Polynomial {
	return &Polynomial{group: group, coefficients: coefficients}
}

// Coefficients exposes the coefficient slice; the caller owns the secret.
func (p *Polynomial) Coefficients() []curve.Scalar {
	return p.coefficients
}

// Evaluate evaluates the polynomial at the given nonzero index using
// Horner's method. Evaluating at 0 would leak the secret and panics.
func (p *Polynomial) Evaluate(index curve.Scalar) curve.Scalar {
	if index.IsZero() {
		panic("polynomial: attempt to leak secret")
	}
	result := p.group.NewScalar()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// bₙ₋₁ = bₙ * x + aₙ₋₁
		result.Mul(index).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a copy of the constant coefficient.
func (p *Polynomial) Constant() curve.Scalar {
	return p.group.NewScalar().Set(p.coefficients[0])
}

// Degree is the highest power of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Wipe overwrites all coefficients with zero. The polynomial is unusable
// afterwards.
func (p *Polynomial) Wipe() {
	zero := p.group.NewScalar()
	for _, c := range p.coefficients {
		c.Set(zero)
	}
}
