// Package axis maps image rows to chart values from two calibration points.
package axis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when both calibration points share a row.
var ErrDegenerate = errors.New("axis: calibration points must be on different rows")

// Axis is a linear mapping value = Intercept + Slope*y between image rows and
// chart values.
type Axis struct {
	Intercept float64
	Slope     float64
}

// FromPoints solves for the axis passing through (y1, v1) and (y2, v2).
func FromPoints(y1, v1, y2, v2 float64) (Axis, error) {
	if y1 == y2 {
		return Axis{}, ErrDegenerate
	}

	// [1 y1] [a]   [v1]
	// [1 y2] [b] = [v2]
	A := mat.NewDense(2, 2, []float64{
		1, y1,
		1, y2,
	})
	b := mat.NewVecDense(2, []float64{v1, v2})

	var params mat.VecDense
	if err := params.SolveVec(A, b); err != nil {
		return Axis{}, fmt.Errorf("axis: solve: %w", err)
	}

	return Axis{Intercept: params.AtVec(0), Slope: params.AtVec(1)}, nil
}

// ValueAt returns the chart value at image row y.
func (a Axis) ValueAt(y float64) float64 {
	return a.Intercept + a.Slope*y
}

// ValuePerPixel is the change in value per pixel moved up the image.
func (a Axis) ValuePerPixel() float64 {
	return -a.Slope
}
