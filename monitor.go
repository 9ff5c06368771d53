// Package rankmon is a client for monitoring a stream of multivariate observations with
// a nonparametric spatial-rank EWMA control chart.  The chart itself lives in pkg/chart;
// this package ties it to configuration, per-step event fan-out and alarm reporting.
package rankmon

import (
	"context"
	"time"

	"github.com/spckit/rankmon/pkg/chart"
	"github.com/spckit/rankmon/pkg/eventbus"
	"github.com/spckit/rankmon/pkg/metric"
)

const (
	// StepEventType is dispatched on the default topic after every processed observation
	StepEventType eventbus.EventType = "step"
	// AlarmEventType is dispatched on the alarm topic at the first limit crossing
	AlarmEventType eventbus.EventType = "alarm"
	// FatalEventType is dispatched on the alarm topic when the run stops on an error
	FatalEventType eventbus.EventType = "fatal"
)

// AlarmTopic carries only alarm and fatal events
const AlarmTopic eventbus.Topic = "alarms"

// StepEvent describes one processed observation
type StepEvent struct {
	Index     int
	Statistic float64
	Alarmed   bool
}

// Monitor runs a SREWMA chart over a monitoring stream, fanning out step and alarm
// events on an event bus and notifying a report collector when configured
type Monitor struct {
	Config Config

	chart  *chart.Chart
	bus    *eventbus.EventBus
	sender ReportSender
	closed bool
}

// New creates a monitor from the historical in-control reference sample and
// configuration options.  Construction fails if the reference sample is too small for
// its dimension, if its covariance is degenerate, or if the configuration is invalid.
func New(reference [][]float64, options ...ConfigOption) (*Monitor, []error) {
	cfg, errs := newConfig(options...)
	if len(errs) > 0 {
		return nil, errs
	}

	md := make(map[string]string)
	if cfg.ID != "" {
		md["id"] = cfg.ID
	}
	if cfg.Hostname != "" {
		md["host"] = cfg.Hostname
	}
	copts := []chart.Option{chart.WithName(metric.NewName("srewma_statistic", md))}
	if cfg.Limit > 0 {
		copts = append(copts, chart.WithLimit(cfg.Limit))
	}

	c, err := chart.New(reference, cfg.Lambda, copts...)
	if err != nil {
		return nil, []error{err}
	}

	m := &Monitor{
		Config: cfg,
		chart:  c,
		bus:    eventbus.New(),
	}
	if cfg.NotifyOnAlarm || cfg.NotifyOnFatal {
		m.sender = &Report{Host: cfg.host, Port: cfg.port, UseTLS: cfg.useTLS}
	}
	return m, nil
}

// Subscribe registers a subscriber for monitoring events.  Subscribe before calling Run;
// the bus shuts down when the run finishes.  See eventbus.EventBus.Subscribe for the
// channel protocol.
func (m *Monitor) Subscribe(topics ...eventbus.Topic) (chan eventbus.Event, chan struct{}) {
	return m.bus.Subscribe(topics...)
}

// Run drains the monitoring stream through the chart in arrival order and returns the
// control statistic sequence.  On a fatal error the valid prefix is returned together
// with the error.  Run is a single drain: the chart terminates and the event bus shuts
// down when it returns.  A subsequent Run with an empty stream returns an empty
// sequence, leaving all state unchanged.
func (m *Monitor) Run(stream [][]float64) ([]float64, error) {
	if len(stream) == 0 {
		return []float64{}, nil
	}
	if m.closed {
		// chart is terminated, let it report the stopped state
		return m.chart.Run(stream)
	}

	if m.sender != nil {
		m.startReporter()
	}

	stats := make([]float64, 0, len(stream))
	var runErr error
	alarmed := m.chart.HasAlarmed()
	for _, obs := range stream {
		q, err := m.chart.Step(obs)
		if err != nil {
			runErr = err
			if m.Config.NotifyOnFatal {
				m.bus.Dispatch(eventbus.Event{Type: FatalEventType, Data: newPayload(m, ReasonFatal, err)}, AlarmTopic)
			}
			break
		}
		stats = append(stats, q)
		m.bus.Dispatch(eventbus.Event{Type: StepEventType, Data: StepEvent{
			Index:     len(stats),
			Statistic: q,
			Alarmed:   m.chart.HasAlarmed(),
		}})
		if !alarmed && m.chart.HasAlarmed() {
			alarmed = true
			if m.Config.NotifyOnAlarm {
				m.bus.Dispatch(eventbus.Event{Type: AlarmEventType, Data: newPayload(m, ReasonAlarm, nil)}, AlarmTopic)
			}
		}
	}

	m.chart.Terminate()
	m.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), m.Config.NotifyTimeout)
	defer cancel()
	if err := m.bus.Shutdown(ctx); err != nil {
		ReportError(err)
	}
	return stats, runErr
}

// startReporter subscribes the report sender to the alarm topic.  Payloads are built
// synchronously at dispatch time, so the reporter goroutine never touches chart state.
func (m *Monitor) startReporter() {
	events, done := m.bus.Subscribe(AlarmTopic)
	go func() {
		defer close(done)
		for ev := range events {
			var p Payload
			switch ev.Type {
			case AlarmEventType, FatalEventType:
				var ok bool
				if p, ok = ev.Data.(Payload); !ok {
					continue
				}
			default:
				continue
			}
			m.sender.Create(p)

			result := make(chan error, 1)
			cancel := make(chan bool)
			go m.sender.Send(result, cancel)
			select {
			case err := <-result:
				if err != nil {
					ReportError(err)
				}
			case <-time.After(m.Config.NotifyTimeout):
				close(cancel)
			}
		}
	}()
}

// Chart exposes the underlying chart for read access to its state
func (m *Monitor) Chart() *chart.Chart {
	return m.chart
}

// Statistics returns the full control statistic sequence recorded so far
func (m *Monitor) Statistics() []float64 {
	return m.chart.Statistics()
}

// HasAlarmed returns true once the chart has crossed the control limit
func (m *Monitor) HasAlarmed() bool {
	return m.chart.HasAlarmed()
}

// AlarmedAt returns the 1-based step index of the first limit crossing, 0 if none
func (m *Monitor) AlarmedAt() int {
	return m.chart.AlarmedAt()
}
