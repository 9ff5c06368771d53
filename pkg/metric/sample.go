package metric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sample is an ordered, growing collection of fixed-dimension observation vectors.  It
// backs the expanding reference window of a chart: rows are only ever appended, never
// removed, and the row-major backing store grows by amortized reallocation.
type Sample struct {
	dim  int
	data []float64
}

// NewSample creates a sample from an initial set of observations.  Every row must have
// the same dimension, which fixes the dimension for all future appends.
func NewSample(rows [][]float64) (*Sample, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sample must be initialized with at least one observation")
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("sample observations must have at least one dimension")
	}
	s := &Sample{
		dim:  dim,
		data: make([]float64, 0, len(rows)*dim),
	}
	for _, row := range rows {
		if err := s.Append(row); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append adds one observation to the end of the sample
func (s *Sample) Append(row []float64) error {
	if len(row) != s.dim {
		return fmt.Errorf("observation has dimension %d, sample dimension is %d", len(row), s.dim)
	}
	s.data = append(s.data, row...)
	return nil
}

// Len returns the number of observations in the sample
func (s *Sample) Len() int {
	return len(s.data) / s.dim
}

// Dim returns the dimension of each observation
func (s *Sample) Dim() int {
	return s.dim
}

// Row returns a copy of the i-th observation in insertion order
func (s *Sample) Row(i int) []float64 {
	out := make([]float64, s.dim)
	copy(out, s.data[i*s.dim:(i+1)*s.dim])
	return out
}

// Matrix returns the sample as an n x p matrix view over the backing store.  The view
// shares storage with the sample and is valid until the next Append.
func (s *Sample) Matrix() mat.Matrix {
	return mat.NewDense(s.Len(), s.dim, s.data)
}
