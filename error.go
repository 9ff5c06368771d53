package rankmon

import (
	"os"

	"github.com/stvp/rollbar"
)

// SuppressErrorReporting is a global flag to prevent the client from sending unhandled
// errors to Rollbar to improve the quality of the service.  Data is anonymous and
// consists only of a stack trace to identify the source of the problem.
var SuppressErrorReporting bool

func init() {
	switch env := os.Getenv("environment"); env {
	case "development":
		rollbar.Environment = "development"
	default:
		rollbar.Environment = "production"
	}
	rollbar.Token = os.Getenv("RANKMON_ROLLBAR_TOKEN")
}

// ReportError will send the result of an unexpected error to Rollbar to improve the
// quality of the client.  Data is anonymous.
func ReportError(err error) {
	if SuppressErrorReporting || rollbar.Token == "" {
		return
	}
	rollbar.Error(rollbar.ERR, err)
}
