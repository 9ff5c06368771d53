package rankmon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
)

// Reason describes why a report is being sent
type Reason string

const (
	// ReasonAlarm reports the first crossing of the control limit
	ReasonAlarm Reason = "alarm"
	// ReasonFatal reports a monitoring run stopped by an unrecoverable error
	ReasonFatal Reason = "fatal"
)

// ReportSender is an interface for sending reports
type ReportSender interface {
	Create(p Payload)
	Send(result chan error, cancel chan bool)
}

// Payload carries the outcome of a monitoring run to the collector.  The full statistic
// sequence computed so far is always included so that a fatal failure does not lose the
// monitoring history.
type Payload struct {
	ID         string    `json:"id"`
	Hostname   string    `json:"hostname"`
	Reason     Reason    `json:"reason"`
	Lambda     float64   `json:"lambda"`
	Limit      float64   `json:"limit"`
	AlarmIndex int       `json:"alarm_index,omitempty"`
	Statistic  float64   `json:"statistic"`
	Statistics []float64 `json:"statistics"`
	Failure    string    `json:"failure,omitempty"`
	CreatedAt  int64     `json:"created_at"`
}

func newPayload(m *Monitor, reason Reason, failure error) Payload {
	p := Payload{
		ID:         m.Config.ID,
		Hostname:   m.Config.Hostname,
		Reason:     reason,
		Lambda:     m.Config.Lambda,
		Limit:      m.Config.Limit,
		AlarmIndex: m.chart.AlarmedAt(),
		Statistic:  m.chart.Value(),
		Statistics: m.chart.Statistics(),
		CreatedAt:  time.Now().Unix(),
	}
	if failure != nil {
		p.Failure = failure.Error()
	}
	return p
}

// Report is a wrapper for sending a report to the collector over HTTP
type Report struct {
	Host    string
	Port    string
	UseTLS  bool
	Payload Payload

	client *http.Client
}

// Create prepares a new report from the payload
func (r *Report) Create(p Payload) {
	r.Payload = p
}

// Send will transmit a report to the collector.  Errors cause an exponential backoff
// until the call is successful or a cancel is received from the parent.
func (r *Report) Send(result chan error, cancel chan bool) {
	if r.client == nil {
		r.client = &http.Client{Timeout: 30 * time.Second}
	}
	send := func() error {
		body, err := json.Marshal(r.Payload)
		if err != nil {
			// should not happen, do not retry
			return backoff.Permanent(err)
		}
		scheme := "https"
		if !r.UseTLS {
			scheme = "http"
		}
		resp, err := r.client.Post(fmt.Sprintf("%s://%s/reports", scheme, net.JoinHostPort(r.Host, r.Port)), "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("send fail: status %d", resp.StatusCode)
		}
		return nil
	}
	select {
	case result <- backoff.Retry(send, backoff.NewExponentialBackOff()):
	case <-cancel:
	}
}
