package logger

import (
    "io"
    "os"

    "github.com/sirupsen/logrus"
)

var _log = logrus.New()

// Init initializes the process-wide logger. out normally fans out to both
// stdout and the rotating file handle cmd/waf/main.go sets up; debug
// switches to human-readable text (local development) instead of the JSON
// lines a log shipper expects in production.
func Init(debug bool, out io.Writer) {
    if out == nil {
        out = os.Stdout
    }
    _log.SetOutput(out)
    if debug {
        _log.SetLevel(logrus.DebugLevel)
        _log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    } else {
        _log.SetLevel(logrus.InfoLevel)
        _log.SetFormatter(&logrus.JSONFormatter{})
    }
}

// Log returns an entry on the shared logger, for packages that have no
// extra fields to attach up front.
func Log() *logrus.Entry {
    return logrus.NewEntry(_log)
}

// WithFields returns an entry on the shared logger pre-populated with
// fields — the form internal/waf and internal/blocklist use to attach
// ip/reason/error context to every warning they emit.
func WithFields(fields logrus.Fields) *logrus.Entry {
    return Log().WithFields(fields)
}
