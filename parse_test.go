package rankmon

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/go-yaml/yaml"
	"github.com/stretchr/testify/assert"
)

func TestParseFlags(t *testing.T) {
	tt := []struct {
		Name     string
		Cmdline  string
		Expected []ConfigOption
		Args     []string
		Error    bool
	}{
		{Name: "id", Cmdline: "--id test", Expected: []ConfigOption{ID("test")}, Error: false},
		{Name: "id shorthand", Cmdline: "-i test", Expected: []ConfigOption{ID("test")}, Error: false},
		{Name: "lambda", Cmdline: "--lambda 0.05", Expected: []ConfigOption{Lambda("0.05")}, Error: false},
		{Name: "limit", Cmdline: "--limit 15.2", Expected: []ConfigOption{Limit("15.2")}, Error: false},
		{Name: "host", Cmdline: "--host localhost:8080", Expected: []ConfigOption{Host("localhost:8080")}, Error: false},
		{Name: "insecure", Cmdline: "--insecure", Expected: []ConfigOption{Insecure()}, Error: false},
		{Name: "no-notify-on-alarm", Cmdline: "--no-notify-on-alarm", Expected: []ConfigOption{NoNotifyOnAlarm()}, Error: false},
		{Name: "no-notify-on-fatal", Cmdline: "--no-notify-on-fatal", Expected: []ConfigOption{NoNotifyOnFatal()}, Error: false},
		{Name: "notify-timeout", Cmdline: "--notify-timeout 30s", Expected: []ConfigOption{NotifyTimeout("30s")}, Error: false},
		{Name: "no-error-reports", Cmdline: "--no-error-reports", Expected: []ConfigOption{NoErrorReports()}, Error: false},
		{Name: "positional args", Cmdline: "--id test reference.csv stream.csv", Expected: []ConfigOption{ID("test")}, Args: []string{"reference.csv", "stream.csv"}, Error: false},
		{Name: "error on unknown flag", Cmdline: "--does-not-exist", Expected: []ConfigOption{}, Error: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			pf := createFlagSet()
			args, options, err := parse(strings.Split(tc.Cmdline, " "), pf)
			if tc.Error {
				assert.Error(t, err)
			} else {
				expected, received := createComparisonConfigs(tc.Expected, options)
				assert.Equal(t, expected, received)
				assert.NoError(t, err)
				if tc.Args != nil {
					assert.Equal(t, tc.Args, args)
				}
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	tt := []struct {
		Name     string
		Yaml     map[string]interface{}
		Expected []ConfigOption
		Error    bool
	}{
		{Name: "id", Yaml: map[string]interface{}{"id": "test"}, Expected: []ConfigOption{ID("test")}, Error: false},
		{Name: "lambda", Yaml: map[string]interface{}{"lambda": 0.05}, Expected: []ConfigOption{Lambda("0.05")}, Error: false},
		{Name: "limit as int", Yaml: map[string]interface{}{"limit": 15}, Expected: []ConfigOption{Limit("15")}, Error: false},
		{Name: "limit as float", Yaml: map[string]interface{}{"limit": 15.2}, Expected: []ConfigOption{Limit("15.2")}, Error: false},
		{Name: "host", Yaml: map[string]interface{}{"host": "localhost:8080"}, Expected: []ConfigOption{Host("localhost:8080")}, Error: false},
		{Name: "insecure", Yaml: map[string]interface{}{"insecure": true}, Expected: []ConfigOption{Insecure()}, Error: false},
		{Name: "insecure false is a no op", Yaml: map[string]interface{}{"insecure": false}, Expected: []ConfigOption{}, Error: false},
		{Name: "no-notify-on-alarm", Yaml: map[string]interface{}{"no-notify-on-alarm": true}, Expected: []ConfigOption{NoNotifyOnAlarm()}, Error: false},
		{Name: "no-notify-on-fatal", Yaml: map[string]interface{}{"no-notify-on-fatal": true}, Expected: []ConfigOption{NoNotifyOnFatal()}, Error: false},
		{Name: "notify-timeout", Yaml: map[string]interface{}{"notify-timeout": "30s"}, Expected: []ConfigOption{NotifyTimeout("30s")}, Error: false},
		{Name: "error on unknown key", Yaml: map[string]interface{}{"does-not-exist": "test"}, Expected: []ConfigOption{}, Error: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			f, err := ioutil.TempFile("", "rankmoncfg")
			if err != nil {
				t.Fatalf("unexpected error creating temp config file: %s", err)
			}
			defer os.Remove(f.Name())

			y, err := yaml.Marshal(tc.Yaml)
			if err != nil {
				t.Fatalf("unexpected error marshaling YAML: %s", err)
			}
			if _, err := f.Write(y); err != nil {
				t.Fatalf("unexpected error writing to file: %s", err)
			}
			if err := f.Close(); err != nil {
				t.Fatalf("unexpected error closing file: %s", err)
			}

			pf := createFlagSet()
			_, options, err := parse([]string{"-c", f.Name()}, pf)
			if tc.Error {
				assert.Error(t, err)
			} else {
				expected, received := createComparisonConfigs(tc.Expected, options)
				assert.Equal(t, expected, received)
				assert.NoError(t, err)
			}
		})
	}
}

func createComparisonConfigs(expected []ConfigOption, received []ConfigOption) (Config, Config) {
	expectedConfig := Config{}
	for _, eo := range expected {
		eo(&expectedConfig)
	}
	receivedConfig := Config{}
	for _, to := range received {
		to(&receivedConfig)
	}
	return expectedConfig, receivedConfig
}
