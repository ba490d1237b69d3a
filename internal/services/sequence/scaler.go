package sequence

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

var ErrEmptySeries = errors.New("empty series")

// MinMaxScaler rescales values into [0,1] using the observed min and max.
// A constant series has zero range; it is treated as range 1 so it maps to
// 0 and inverts exactly.
type MinMaxScaler struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	fitted bool
}

// Fit records the min and max of xs.
func (s *MinMaxScaler) Fit(xs []float64) error {
	if len(xs) == 0 {
		return ErrEmptySeries
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	s.fitted = true
	return nil
}

// Fitted reports whether Fit has succeeded.
func (s *MinMaxScaler) Fitted() bool { return s.fitted }

func (s *MinMaxScaler) scale() float64 {
	r := s.Max - s.Min
	if r == 0 {
		return 1
	}
	return r
}

// Transform returns a scaled copy of xs.
func (s *MinMaxScaler) Transform(xs []float64) []float64 {
	out := make([]float64, len(xs))
	r := s.scale()
	for i, x := range xs {
		out[i] = (x - s.Min) / r
	}
	return out
}

// FitTransform fits on xs and returns the scaled copy.
func (s *MinMaxScaler) FitTransform(xs []float64) ([]float64, error) {
	if err := s.Fit(xs); err != nil {
		return nil, err
	}
	return s.Transform(xs), nil
}

// InverseOne maps a scaled value back to original units.
func (s *MinMaxScaler) InverseOne(v float64) float64 {
	return v*s.scale() + s.Min
}

// Inverse maps scaled values back to original units.
func (s *MinMaxScaler) Inverse(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = s.InverseOne(v)
	}
	return out
}
