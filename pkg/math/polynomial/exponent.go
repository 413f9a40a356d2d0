package polynomial

import (
	"errors"

	"github.com/quorumsig/frost/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are group elements,
// i.e. F(X) = [f(X)]·B for a scalar polynomial f. It is the verifiable
// commitment to f used by Feldman-style secret sharing.
type Exponent struct {
	group        curve.Curve
	coefficients []curve.Point
}

// NewPolynomialExponent computes the commitment [f]·B to the given
// polynomial.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		group:        polynomial.group,
		coefficients: make([]curve.Point, len(polynomial.coefficients)),
	}
	for i := range p.coefficients {
		p.coefficients[i] = polynomial.coefficients[i].ActOnBase()
	}
	return p
}

// NewExponent builds an Exponent from explicit coefficients.
func NewExponent(group curve.Curve, coefficients []curve.Point) *Exponent {
	return &Exponent{group: group, coefficients: coefficients}
}

// Evaluate returns F(index) = Σₖ indexᵏ·Fₖ using Horner's method in the
// exponent.
func (p *Exponent) Evaluate(index curve.Scalar) curve.Point {
	result := p.group.NewPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
		result = index.Act(result).Add(p.coefficients[i])
	}
	return result
}

// Degree is the highest power of the polynomial.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

// Constant returns the constant coefficient, i.e. the commitment to the
// shared secret.
func (p *Exponent) Constant() curve.Point {
	return p.coefficients[0]
}

// Coefficients exposes the underlying commitment vector.
func (p *Exponent) Coefficients() []curve.Point {
	return p.coefficients
}

// Copy returns a deep copy of the Exponent.
func (p *Exponent) Copy() *Exponent {
	q := &Exponent{
		group:        p.group,
		coefficients: make([]curve.Point, len(p.coefficients)),
	}
	for i := range p.coefficients {
		q.coefficients[i] = p.group.NewPoint().Set(p.coefficients[i])
	}
	return q
}

func (p *Exponent) add(q *Exponent) error {
	if len(p.coefficients) != len(q.coefficients) {
		return errors.New("polynomial: mismatched degrees")
	}
	for i := range p.coefficients {
		p.coefficients[i] = p.coefficients[i].Add(q.coefficients[i])
	}
	return nil
}

// Sum returns the coefficient-wise sum of the given Exponents. The sum of
// all participants' commitments is the commitment to the joint secret.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial: empty sum")
	}
	summed := polynomials[0].Copy()
	for _, q := range polynomials[1:] {
		if err := summed.add(q); err != nil {
			return nil, err
		}
	}
	return summed, nil
}

// Equal reports whether two Exponents commit to the same polynomial.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}
