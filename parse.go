package rankmon

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	err     error
}

// ParseCommandLine configures the client from command line options or from a YAML
// configuration file passed with the -c flag.  Returns the positional arguments (the
// reference and stream data files) and a slice of functional options that can be
// applied to the configuration.
func ParseCommandLine() ([]string, []ConfigOption, error) {
	pf := createFlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) ([]string, []ConfigOption, error) {
	options := options{}
	if err := pf.ParseAll(args, parseFlag(&options)); err != nil {
		return pf.Args(), options.options, err
	}
	return pf.Args(), options.options, options.err
}

func createFlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("rankmon", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of rankmon:\nrankmon -i <identifier> <options> reference.csv stream.csv\n")
		fmt.Printf("\n%s", pf.FlagUsagesWrapped(10))
	}

	pf.StringP("id", "i", "", "Identifier for this monitoring run")
	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.String("lambda", "0.025", "EWMA smoothing constant in (0,1).  Smaller values detect smaller sustained shifts.")
	pf.String("limit", "0", "Control limit h.  The first statistic above h raises an out-of-control alarm.  0 disables alarming.")
	pf.String("host", "", "Report collector to notify on alarm as host:port")
	pf.Bool("insecure", false, "Do not use TLS to secure the connection for reports")
	pf.Bool("no-notify-on-alarm", false, "Do not send a report when the chart signals out-of-control.")
	pf.Bool("no-notify-on-fatal", false, "Do not send a report when the run stops on a fatal error.")
	pf.String("notify-timeout", "", "Bound on time spent waiting for outstanding reports at shutdown (e.g., 30s).")
	pf.Bool("no-error-reports", false, "Do not send reports when there are unexpected errors in the client")

	return pf
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		switch flag.Name {
		case "config":
			opts, err := parseFromFile(value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, opts...)
		default:
			option, err := handleOption(flag.Name, value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, option)
		}
		return nil
	}
}

func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "id":
		return ID(value), nil
	case "lambda":
		return Lambda(value), nil
	case "limit":
		return Limit(value), nil
	case "host":
		return Host(value), nil
	case "insecure":
		return Insecure(), nil
	case "no-notify-on-alarm":
		return NoNotifyOnAlarm(), nil
	case "no-notify-on-fatal":
		return NoNotifyOnFatal(), nil
	case "notify-timeout":
		return NotifyTimeout(value), nil
	case "no-error-reports":
		return NoErrorReports(), nil
	default:
		return nil, fmt.Errorf("Unknown option: %s", name)
	}
}

func parseFromFile(fpath string) ([]ConfigOption, error) {
	var options []ConfigOption
	data, err := ioutil.ReadFile(fpath)
	if err != nil {
		return options, err
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return options, err
	}
	for k, v := range cfg {
		switch val := v.(type) {
		case string:
			opt, err := handleOption(k, val)
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		case int:
			opt, err := handleOption(k, strconv.Itoa(val))
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		case float64:
			opt, err := handleOption(k, strconv.FormatFloat(val, 'f', -1, 64))
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		case bool:
			if !val {
				continue
			}
			opt, err := handleOption(k, "")
			if err != nil {
				return options, err
			}
			options = append(options, opt)
		default:
			return options, fmt.Errorf("Could not process config key %s, unknown type", k)
		}
	}
	return options, nil
}
