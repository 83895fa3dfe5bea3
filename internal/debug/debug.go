// Package debug holds the logger that every package in the module
// reports diagnostics through.
package debug

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetLevel(logrus.WarnLevel)

	for _, env := range []string{"SURF_DEBUG", "WAYLAND_DEBUG"} {
		debugLevel, err := strconv.ParseInt(os.Getenv(env), 10, 0)
		if err != nil {
			continue
		}
		if debugLevel > 0 {
			log.SetLevel(logrus.DebugLevel)
			return
		}
	}
}

// Printf logs a trace message. Traces are only written if SURF_DEBUG
// or WAYLAND_DEBUG is set to a positive number.
func Printf(str string, args ...any) {
	log.Debugf(str, args...)
}

// Log returns the underlying logger. Structural and protocol
// violations are logged through it at warn level.
func Log() *logrus.Logger {
	return log
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
