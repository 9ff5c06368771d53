package rankmon

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// test helper silences superfluous logging calls from the mock package
type quietT struct {
	t *testing.T
}

func (q quietT) Logf(format string, args ...interface{}) {
	// makes mock calls to log a no op to prevent a lot of superfluous logging calls
}
func (q quietT) Errorf(format string, args ...interface{}) {
	q.t.Errorf(format, args...)
}
func (q quietT) FailNow() {
	q.t.FailNow()
}

func silenceT(t *testing.T) mock.TestingT {
	return quietT{t}
}
