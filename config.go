package rankmon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the monitoring run configuration.  The smoothing constant and control
// limit are externally supplied tuning constants, typically chosen from tabulated
// run-length performance; the monitor treats them as given.
type Config struct {
	ID             string
	Hostname       string
	Lambda         float64
	Limit          float64
	NotifyOnAlarm  bool
	NotifyOnFatal  bool
	NotifyTimeout  time.Duration

	host   string
	port   string
	useTLS bool
}

type ConfigOption func(c *Config) error

func newConfig(options ...ConfigOption) (Config, []error) {
	host, err := os.Hostname()
	if err != nil {
		host = ""
	}
	c := Config{
		Lambda:        0.025,
		NotifyOnAlarm: true,
		NotifyOnFatal: true,
		NotifyTimeout: 10 * time.Second,
		Hostname:      host,
		useTLS:        true,
	}

	var errors []error
	for _, option := range options {
		err := option(&c)
		if err != nil {
			errors = append(errors, err)
		}
	}
	if c.Lambda <= 0 || c.Lambda >= 1 {
		errors = append(errors, fmt.Errorf("smoothing constant must be in (0,1), got %f", c.Lambda))
	}
	if c.Limit < 0 {
		errors = append(errors, fmt.Errorf("control limit must be non-negative, got %f", c.Limit))
	}
	if (c.NotifyOnAlarm || c.NotifyOnFatal) && c.host == "" {
		// no report host configured: notifications are disabled rather than failing,
		// since local-only runs are the common case
		c.NotifyOnAlarm = false
		c.NotifyOnFatal = false
	}

	if len(errors) > 0 {
		return Config{}, errors
	}
	return c, nil
}

// ID sets the identifier for this monitoring run
func ID(id string) ConfigOption {
	return func(c *Config) error {
		c.ID = id
		return nil
	}
}

// Lambda sets the EWMA smoothing constant, a value in (0,1)
func Lambda(lambda string) ConfigOption {
	return func(c *Config) error {
		l, err := strconv.ParseFloat(lambda, 64)
		if err != nil {
			return fmt.Errorf("could not parse smoothing constant: %s", lambda)
		}
		c.Lambda = l
		return nil
	}
}

// Limit sets the control limit h above which the chart signals out-of-control
func Limit(limit string) ConfigOption {
	return func(c *Config) error {
		h, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return fmt.Errorf("could not parse control limit: %s", limit)
		}
		c.Limit = h
		return nil
	}
}

// Host sets the report collector as host:port
func Host(pathWithPort string) ConfigOption {
	return func(c *Config) error {
		h := strings.Split(pathWithPort, ":")
		if len(h) != 2 {
			return fmt.Errorf("unknown host, use host:port")
		}
		c.host = h[0]
		c.port = h[1]
		return nil
	}
}

// Insecure disables TLS on the connection to the report collector
func Insecure() ConfigOption {
	return func(c *Config) error {
		c.useTLS = false
		return nil
	}
}

// NoNotifyOnAlarm suppresses reports when the chart crosses the control limit
func NoNotifyOnAlarm() ConfigOption {
	return func(c *Config) error {
		c.NotifyOnAlarm = false
		return nil
	}
}

// NoNotifyOnFatal suppresses reports when the run stops on a fatal error
func NoNotifyOnFatal() ConfigOption {
	return func(c *Config) error {
		c.NotifyOnFatal = false
		return nil
	}
}

// NotifyTimeout bounds how long the monitor waits for outstanding reports on shutdown
func NotifyTimeout(timeout string) ConfigOption {
	return func(c *Config) error {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("unrecognized notify timeout duration: %s", timeout)
		}
		c.NotifyTimeout = duration
		return nil
	}
}

// NoErrorReports disables sending unexpected client errors to Rollbar
func NoErrorReports() ConfigOption {
	return func(c *Config) error {
		SuppressErrorReporting = true
		return nil
	}
}
