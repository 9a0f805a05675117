// Package logx configures the process-wide logrus logger for the tools.
package logx

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options controls logger setup.
type Options struct {
	// Verbose enables debug output from the library packages.
	Verbose bool
	// DisableColor turns off ANSI colours, e.g. when output is piped.
	DisableColor bool
	// Output defaults to stderr.
	Output io.Writer
}

// Init applies options to the standard logrus logger.
func Init(options Options) {
	if options.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    options.DisableColor,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
		QuoteEmptyFields: true,
	})

	if options.Output != nil {
		logrus.SetOutput(options.Output)
	} else {
		logrus.SetOutput(os.Stderr)
	}
}
