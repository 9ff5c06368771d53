// Package chart implements a spatial-rank EWMA (SREWMA) control chart for detecting
// mean shifts in a stream of multivariate observations without distributional
// assumptions.  The chart keeps a strictly expanding reference window: every processed
// observation joins the reference sample used to whiten and rank the observations that
// follow it, so step order is load-bearing and processing is strictly sequential.
package chart

import (
	"fmt"
	"math"

	"github.com/spckit/rankmon/pkg/fsm"
	"github.com/spckit/rankmon/pkg/metric"
	"github.com/spckit/rankmon/pkg/rank"
)

const (
	// These represent the phases of a monitoring run.  A chart initializes once from the
	// historical reference sample, monitors incoming observations one at a time, and
	// terminates either explicitly or on a fatal error.
	Initializing = fsm.State("initializing")
	Monitoring   = fsm.State("monitoring")
	Terminated   = fsm.State("terminated")
)

func newMachine() (*fsm.Machine, error) {
	return fsm.NewMachine(Initializing, fsm.WithStoppable(), fsm.WithTransitions(
		fsm.T(Initializing, Monitoring, Terminated),
		fsm.T(Monitoring, Terminated),
	))
}

// Chart is a sequential SREWMA monitoring engine.  It owns all cross-step state: the
// expanding reference sample, the cumulative squared-rank-norm total, the EWMA state
// vector and the emitted statistic sequence.  A chart holds no process-wide state, so
// independent charts over different product batches can run concurrently.  A single
// chart is not safe for concurrent use: the monitoring recursion is inherently
// sequential.
type Chart struct {
	name    metric.Name
	lambda  float64
	limit   float64
	dim     int
	ref     *metric.Sample
	total   float64
	v       []float64
	stats   *metric.Series
	machine *fsm.Machine

	step      int
	current   float64
	alarmed   bool
	alarmedAt int
	err       error
}

// Option configures a chart at construction
type Option func(c *Chart) error

// WithLimit sets the control limit h.  The first statistic exceeding h marks the chart
// as alarmed.  Without a limit the chart only records the statistic sequence.
func WithLimit(h float64) Option {
	return func(c *Chart) error {
		if h <= 0 {
			return fmt.Errorf("control limit must be positive: %f", h)
		}
		c.limit = h
		return nil
	}
}

// WithName sets the name and metadata under which the statistic sequence is recorded
func WithName(name metric.Name) Option {
	return func(c *Chart) error {
		c.name = name
		return nil
	}
}

// New creates a chart from the historical in-control reference sample and the smoothing
// constant lambda in (0,1).  Construction runs the initializing phase: the reference is
// whitened, the spatial rank of every reference point is computed against the others,
// and their squared norms seed the cumulative total that normalizes the statistic.
// Returns InsufficientReferenceSize when the reference has fewer than p+1 observations
// and rank.SingularCovariance when the reference covariance is degenerate.
func New(reference [][]float64, lambda float64, opts ...Option) (*Chart, error) {
	if len(reference) == 0 {
		return nil, InsufficientReferenceSize{Size: 0, Dim: 0}
	}
	dim := len(reference[0])
	if len(reference) <= dim {
		return nil, InsufficientReferenceSize{Size: len(reference), Dim: dim}
	}
	if lambda <= 0 || lambda >= 1 {
		return nil, fmt.Errorf("smoothing constant must be in (0,1): %f", lambda)
	}

	sample, err := metric.NewSample(reference)
	if err != nil {
		return nil, fmt.Errorf("invalid reference sample: %v", err)
	}

	machine, err := newMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create chart FSM: %v", err)
	}

	c := &Chart{
		name:    metric.NewName("srewma_statistic", nil),
		lambda:  lambda,
		dim:     dim,
		ref:     sample,
		v:       make([]float64, dim),
		machine: machine,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	stats, err := metric.NewSeries()
	if err != nil {
		return nil, err
	}
	c.stats = stats

	// initializing phase: seed the cumulative squared-rank-norm total from the
	// reference sample itself
	_, refW, err := rank.Whiten(sample.Matrix())
	if err != nil {
		return nil, err
	}
	row := make([]float64, dim)
	for i := 0; i < sample.Len(); i++ {
		for j := 0; j < dim; j++ {
			row[j] = refW.At(i, j)
		}
		r := rank.SpatialRank(row, refW)
		c.total += rank.SquaredNorm(r)
	}

	if err := c.machine.Transition(Monitoring); err != nil {
		return nil, err
	}
	return c, nil
}

// Step processes one incoming observation in arrival order and returns the control
// statistic for this time step.  The reference sample is rewhitened from scratch, the
// observation's spatial rank is computed against it, the cumulative total and EWMA state
// are updated exactly once, the statistic is recorded and the observation joins the
// reference sample for subsequent steps.  A rank.SingularCovariance or
// DimensionMismatch failure is fatal: the chart terminates and the statistic sequence
// recorded so far remains available.
func (c *Chart) Step(obs []float64) (float64, error) {
	if s := c.machine.State(); s != Monitoring {
		return 0, fsm.StopError{Msg: fmt.Sprintf("chart is %s, no further observations accepted", s)}
	}
	if len(obs) != c.dim {
		err := DimensionMismatch{Step: c.step + 1, Got: len(obs), Want: c.dim}
		c.fail(err)
		return 0, err
	}

	transform, refW, err := rank.Whiten(c.ref.Matrix())
	if err != nil {
		werr := StepError{Step: c.step + 1, Err: err}
		c.fail(werr)
		return 0, werr
	}

	xw := rank.WhitenPoint(transform, obs)
	r := rank.SpatialRank(xw, refW)

	c.total += rank.SquaredNorm(r)
	eps := c.total / float64(c.ref.Len()+1)

	if err := c.ref.Append(obs); err != nil {
		werr := StepError{Step: c.step + 1, Err: err}
		c.fail(werr)
		return 0, werr
	}

	for k := range c.v {
		c.v[k] = (1.0-c.lambda)*c.v[k] + c.lambda*r[k]
	}

	q := ((2.0 - c.lambda) * float64(c.dim) / (c.lambda * eps)) * rank.SquaredNorm(c.v)
	if math.IsNaN(q) || math.IsInf(q, 1) || math.IsInf(q, -1) {
		werr := StepError{Step: c.step + 1, Err: fmt.Errorf("statistic is not defined: %f", q)}
		c.fail(werr)
		return 0, werr
	}

	c.stats.Record(q)
	c.step++
	c.current = q
	if c.limit > 0 && !c.alarmed && q > c.limit {
		c.alarmed = true
		c.alarmedAt = c.step
	}
	return q, nil
}

// Run processes a finite stream of observations in order and returns the statistics
// computed for this call.  On a fatal error the prefix computed before the failure is
// returned together with the error.  Running an empty stream is always a no-op that
// returns an empty increment, even on a terminated chart.
func (c *Chart) Run(stream [][]float64) ([]float64, error) {
	out := make([]float64, 0, len(stream))
	for _, obs := range stream {
		q, err := c.Step(obs)
		if err != nil {
			return out, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Terminate transitions the chart to the terminated state.  The chart becomes
// read-only: accessors keep working but no further observations are accepted.
func (c *Chart) Terminate() {
	if c.machine.State() != Terminated {
		// transition from monitoring to terminated is always allowable
		_ = c.machine.Transition(Terminated)
	}
}

func (c *Chart) fail(err error) {
	c.err = err
	_ = c.machine.Transition(Terminated)
}

// State returns the current phase of the monitoring run
func (c *Chart) State() fsm.State {
	return c.machine.State()
}

// Statistics returns a copy of the full control statistic sequence recorded so far,
// one value per processed observation in arrival order
func (c *Chart) Statistics() []float64 {
	return c.stats.Values()
}

// Value returns the most recent control statistic
func (c *Chart) Value() float64 {
	return c.current
}

// Limit returns the configured control limit, 0 when none was set
func (c *Chart) Limit() float64 {
	return c.limit
}

// Lambda returns the smoothing constant
func (c *Chart) Lambda() float64 {
	return c.lambda
}

// Dim returns the dimension of the monitored observations
func (c *Chart) Dim() int {
	return c.dim
}

// ReferenceSize returns the current size of the expanding reference sample
func (c *Chart) ReferenceSize() int {
	return c.ref.Len()
}

// HasAlarmed returns true once a statistic has exceeded the control limit.  The alarm
// latches: it stays raised for the remainder of the run even if later statistics fall
// back under the limit.
func (c *Chart) HasAlarmed() bool {
	return c.alarmed
}

// AlarmedAt returns the 1-based step index of the first limit crossing, 0 if the chart
// has not alarmed
func (c *Chart) AlarmedAt() int {
	return c.alarmedAt
}

// Name returns the chart name and associated metadata
func (c *Chart) Name() string {
	return c.name.String()
}

// Err returns the fatal error that terminated the run, nil while the chart is healthy
func (c *Chart) Err() error {
	return c.err
}
