// Package form defines the calibration form fields and validates submissions.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names, matching the names the analysis backend expects.
const (
	FieldX1          = "x1"
	FieldY1          = "y1"
	FieldX2          = "x2"
	FieldY2          = "y2"
	FieldBaseline    = "p1_value"
	FieldSecondValue = "p2_value"
)

// DefaultBaseline is written to the baseline field when the first point is placed.
const DefaultBaseline = "0.00"

// CoordinateFields lists the four coordinate fields in submission order.
var CoordinateFields = []string{FieldX1, FieldY1, FieldX2, FieldY2}

// Validation limits, in image pixels.
const (
	MaxHorizontalDrift = 50
	MinVerticalSpan    = 10
)

var (
	ErrMissingPoints = errors.New("please select two points on the chart for calibration")
	ErrNotAligned    = errors.New("calibration points should be vertically aligned")
	ErrTooClose      = fmt.Errorf("calibration points must be vertically separated by at least %d pixels", MinVerticalSpan)
	ErrInvalidValue  = errors.New("invalid value")
	ErrMissingValue  = errors.New("this field is required")
	ErrNegativeValue = errors.New("value must be at least 0")
)

// Values is a snapshot of form field contents keyed by field name.
type Values map[string]string

// Submission is a parsed calibration form.
type Submission struct {
	X1, Y1 int
	X2, Y2 int

	// Baseline is the axis value at point 1, SecondValue the value at point 2.
	Baseline    float64
	SecondValue float64
}

// Parse reads a submission from form values. Empty coordinate fields parse as
// zero and are reported by Validate. Malformed numbers, and empty or negative
// axis values, are reported here.
func Parse(v Values) (Submission, error) {
	var s Submission
	var errs []error

	coords := []*int{&s.X1, &s.Y1, &s.X2, &s.Y2}
	for i, name := range CoordinateFields {
		n, err := parseInt(v[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		*coords[i] = n
	}

	var err error
	if s.Baseline, err = parseValue(v[FieldBaseline]); err != nil {
		errs = append(errs, fmt.Errorf("baseline: %w", err))
	}
	if s.SecondValue, err = parseValue(v[FieldSecondValue]); err != nil {
		errs = append(errs, fmt.Errorf("second value: %w", err))
	}

	return s, errors.Join(errs...)
}

// Validate applies the checks the backend runs before analysis.
func (s Submission) Validate() error {
	if s.X1 == 0 || s.Y1 == 0 || s.X2 == 0 || s.Y2 == 0 {
		return ErrMissingPoints
	}

	var errs []error
	if abs(s.X1-s.X2) > MaxHorizontalDrift {
		errs = append(errs, ErrNotAligned)
	}
	if abs(s.Y1-s.Y2) < MinVerticalSpan {
		errs = append(errs, ErrTooClose)
	}
	return errors.Join(errs...)
}

// Values renders the submission back into form values.
func (s Submission) Values() Values {
	return Values{
		FieldX1:          strconv.Itoa(s.X1),
		FieldY1:          strconv.Itoa(s.Y1),
		FieldX2:          strconv.Itoa(s.X2),
		FieldY2:          strconv.Itoa(s.Y2),
		FieldBaseline:    strconv.FormatFloat(s.Baseline, 'f', 2, 64),
		FieldSecondValue: strconv.FormatFloat(s.SecondValue, 'f', 2, 64),
	}
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidValue, s)
	}
	return n, nil
}

// parseValue reads a required, non-negative axis value.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidValue, s)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w, got %s", ErrNegativeValue, s)
	}
	return f, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
