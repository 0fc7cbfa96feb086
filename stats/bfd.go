package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/astrofold/shearkit/errs"
)

// BFDSums accumulates the moment sums of the Bayesian Fourier Domain method.
//
// BFD never fits per-object shears; each measured object contributes to a
// response 4-vector b and a symmetric 4x4 normal matrix A, and the shear
// components fall out of solving A·p = b over the full accumulation. Only the
// upper triangle of A is stored.
//
// Components g1 and g2 occupy index pairs (0,1) and (2,3) of the solution
// vector respectively; see SolveBFDSums.
type BFDSums struct {
	// B1..B4 accumulate the response vector b.
	B1, B2, B3, B4 float64

	// A11..A44 accumulate the upper triangle of the symmetric normal matrix A.
	A11, A12, A13, A14 float64
	A22, A23, A24      float64
	A33, A34           float64
	A44                float64
}

// Add accumulates other into s field-wise.
func (s *BFDSums) Add(other *BFDSums) {
	s.B1 += other.B1
	s.B2 += other.B2
	s.B3 += other.B3
	s.B4 += other.B4

	s.A11 += other.A11
	s.A12 += other.A12
	s.A13 += other.A13
	s.A14 += other.A14
	s.A22 += other.A22
	s.A23 += other.A23
	s.A24 += other.A24
	s.A33 += other.A33
	s.A34 += other.A34
	s.A44 += other.A44
}

// CombineBFDSums merges per-batch BFD sums field-wise. Nil entries are
// skipped; an empty or all-nil list yields zero sums.
//
// Parameters:
//   - list: Sums from independent batches, in any order
//
// Returns:
//   - *BFDSums: The merged sums
func CombineBFDSums(list []*BFDSums) *BFDSums {
	combined := &BFDSums{}

	for _, s := range list {
		if s == nil {
			continue
		}

		combined.Add(s)
	}

	return combined
}

// SolveBFDSums solves the accumulated normal equations A·p = b for one shear
// component and packages the answer as a RegressionResult.
//
// Component 1 reads Slope = p[0], Intercept = p[1], with errors from the
// square roots of A⁻¹[0,0] and A⁻¹[1,1] and Covar = A⁻¹[0,1]; component 2
// reads the same pattern off indices 2 and 3.
//
// Parameters:
//   - sums: Accumulated BFD sums, typically from CombineBFDSums
//   - component: Shear component to solve for, 1 or 2
//
// Returns:
//   - *RegressionResult: Solved component with propagated errors
//   - error: errs.ErrInvalidComponent for a component other than 1 or 2,
//     errs.ErrSingularMatrix when A cannot be inverted
func SolveBFDSums(sums *BFDSums, component int) (*RegressionResult, error) {
	if component != 1 && component != 2 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidComponent, component)
	}

	a := mat.NewDense(4, 4, []float64{
		sums.A11, sums.A12, sums.A13, sums.A14,
		sums.A12, sums.A22, sums.A23, sums.A24,
		sums.A13, sums.A23, sums.A33, sums.A34,
		sums.A14, sums.A24, sums.A34, sums.A44,
	})

	var ainv mat.Dense
	if err := ainv.Inverse(a); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSingularMatrix, err)
	}

	b := mat.NewVecDense(4, []float64{sums.B1, sums.B2, sums.B3, sums.B4})

	var p mat.VecDense
	p.MulVec(&ainv, b)

	i := 0
	if component == 2 {
		i = 2
	}

	return &RegressionResult{
		Slope:        p.AtVec(i),
		Intercept:    p.AtVec(i + 1),
		SlopeErr:     math.Sqrt(ainv.At(i, i)),
		InterceptErr: math.Sqrt(ainv.At(i+1, i+1)),
		Covar:        ainv.At(i, i+1),
	}, nil
}
