package osc

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type loggerHolder struct {
	logrus.FieldLogger
}

var pkgLogger atomic.Value

func init() {
	SetLogger(nil)
}

// SetLogger sets the logger used to report bundle elements that were dropped
// while decoding, encoding or transforming. Passing nil silences the package,
// which is also the default.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	pkgLogger.Store(loggerHolder{l})
}

func logger() logrus.FieldLogger {
	return pkgLogger.Load().(loggerHolder).FieldLogger
}

// logDropped records a bundle element that was left out of the result.
func logDropped(op string, index, length int, err error) {
	logger().WithFields(logrus.Fields{
		"op":     op,
		"index":  index,
		"length": length,
	}).WithError(err).Debug("dropped bundle element")
}
