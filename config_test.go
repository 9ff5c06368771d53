package rankmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	tt := []struct {
		Name    string
		Options []ConfigOption
		Check   func(t *testing.T, c Config)
		Errors  int
	}{
		{Name: "defaults", Options: nil, Check: func(t *testing.T, c Config) {
			assert.Equal(t, 0.025, c.Lambda)
			assert.Equal(t, 0.0, c.Limit)
			assert.Equal(t, 10*time.Second, c.NotifyTimeout)
			assert.True(t, c.useTLS)
		}},
		{Name: "lambda and limit", Options: []ConfigOption{Lambda("0.1"), Limit("12.5")}, Check: func(t *testing.T, c Config) {
			assert.Equal(t, 0.1, c.Lambda)
			assert.Equal(t, 12.5, c.Limit)
		}},
		{Name: "host enables notification", Options: []ConfigOption{Host("collector:8080")}, Check: func(t *testing.T, c Config) {
			assert.True(t, c.NotifyOnAlarm)
			assert.True(t, c.NotifyOnFatal)
			assert.Equal(t, "collector", c.host)
			assert.Equal(t, "8080", c.port)
		}},
		{Name: "no host disables notification", Options: nil, Check: func(t *testing.T, c Config) {
			assert.False(t, c.NotifyOnAlarm)
			assert.False(t, c.NotifyOnFatal)
		}},
		{Name: "insecure", Options: []ConfigOption{Insecure()}, Check: func(t *testing.T, c Config) {
			assert.False(t, c.useTLS)
		}},
		{Name: "unparseable lambda", Options: []ConfigOption{Lambda("abc")}, Errors: 1},
		{Name: "lambda zero", Options: []ConfigOption{Lambda("0")}, Errors: 1},
		{Name: "lambda one", Options: []ConfigOption{Lambda("1")}, Errors: 1},
		{Name: "negative limit", Options: []ConfigOption{Limit("-3")}, Errors: 1},
		{Name: "bad host", Options: []ConfigOption{Host("noport")}, Errors: 1},
		{Name: "bad timeout", Options: []ConfigOption{NotifyTimeout("never")}, Errors: 1},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			c, errs := newConfig(tc.Options...)
			assert.Len(t, errs, tc.Errors)
			if tc.Errors == 0 && tc.Check != nil {
				tc.Check(t, c)
			}
		})
	}
}
