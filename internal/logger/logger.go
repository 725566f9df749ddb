// Package logger configures the process-wide logrus logger: level and format
// come from configuration, and an optional file path adds size-capped
// rotation alongside stderr.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // json or text
	FilePath   string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
}

// Init configures the logrus standard logger and returns it. Unrecognized
// levels fall back to info.
func Init(opts Options) *logrus.Logger {
	log := logrus.StandardLogger()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(opts.Format) == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stderr
	if opts.FilePath != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		out = io.MultiWriter(os.Stderr, rotated)
	}
	log.SetOutput(out)

	return log
}
