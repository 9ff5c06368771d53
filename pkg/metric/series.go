package metric

import (
	"fmt"
)

// Series is an append-only record of a monitoring statistic in temporal order.  Unlike a
// fixed-capacity ring buffer, a series retains every observation for the life of the chart
// because the full statistic sequence is the chart's output.  The backing store grows by
// amortized reallocation, so a long monitoring horizon does not require a size up front.
type Series struct {
	name   Name
	values []float64
}

type SeriesOption func(s *Series) error

// Values returns a copy of the current values in the series in temporal order from oldest to most recent
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Record appends a new observation to the series
func (s *Series) Record(p float64) {
	s.values = append(s.values, p)
}

// Last returns the most recent observation.  The second return is false when the series is empty.
func (s *Series) Last() (float64, bool) {
	if len(s.values) == 0 {
		return 0.0, false
	}
	return s.values[len(s.values)-1], true
}

// Count returns the total number of observations for this series
func (s *Series) Count() int {
	return len(s.values)
}

// Name returns the name of the series and associated metadata
func (s *Series) Name() string {
	return s.name.String()
}

// NewSeries creates a new empty series
func NewSeries(opts ...SeriesOption) (*Series, error) {
	s := &Series{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithName sets the name of the series
func WithName(name string, md map[string]string) SeriesOption {
	return func(s *Series) error {
		if name == "" {
			return fmt.Errorf("series name must be the non-empty string")
		}
		s.name = NewName(name, md)
		return nil
	}
}

// WithCapacity preallocates the backing store when the expected monitoring horizon is
// known, avoiding growth reallocations.  The series still grows past the hint if needed.
func WithCapacity(cap int) SeriesOption {
	return func(s *Series) error {
		if cap < 0 {
			return fmt.Errorf("series capacity hint must be non-negative")
		}
		s.values = make([]float64, 0, cap)
		return nil
	}
}

// WithValues initializes a series from an existing set of observations.
func WithValues(values []float64) SeriesOption {
	return func(s *Series) error {
		for _, v := range values {
			s.Record(v)
		}
		return nil
	}
}
