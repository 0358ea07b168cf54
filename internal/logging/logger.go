// Package logging builds the charm console logger used by funcmatch.
// Its settings come from FUNCMATCH_LOG_* environment variables so they
// apply before the config file is read.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects how console records are rendered.
type Options struct {
	Level  log.Level
	Prefix string
	// Formatter is text, json or logfmt. Machine formats suit CI logs
	// that are parsed next to --format json reports.
	Formatter log.Formatter
	// Dir, when set, sends records to a timestamped file there instead
	// of the given writer.
	Dir string
}

// OptionsFromEnv reads
//
//	FUNCMATCH_LOG_LEVEL   debug, info, warn or error (default info)
//	FUNCMATCH_LOG_PREFIX  record prefix (default "funcmatch")
//	FUNCMATCH_LOG_FORMAT  text, json or logfmt (default text)
//	FUNCMATCH_LOG_DIR     directory for a per-run log file
func OptionsFromEnv() Options {
	prefix, ok := os.LookupEnv("FUNCMATCH_LOG_PREFIX")
	if !ok {
		prefix = "funcmatch"
	}
	return Options{
		Level:     ParseLevel(os.Getenv("FUNCMATCH_LOG_LEVEL")),
		Prefix:    prefix,
		Formatter: ParseFormatter(os.Getenv("FUNCMATCH_LOG_FORMAT")),
		Dir:       os.Getenv("FUNCMATCH_LOG_DIR"),
	}
}

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// ParseLevel maps a level name to a charm log level, defaulting to info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a format name to a charm formatter, defaulting to text.
func ParseFormatter(name string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New creates a logger writing to w, or to a file under opts.Dir.
func New(w io.Writer, opts Options) (*LoggerCloser, error) {
	var closer io.Closer
	if opts.Dir != "" {
		name := fmt.Sprintf("funcmatch-%s.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	lg := log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Prefix:          opts.Prefix,
		Formatter:       opts.Formatter,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	return &LoggerCloser{Logger: lg, closer: closer}, nil
}

// NewLogger creates a stderr logger from the environment. A log
// directory that cannot be opened falls back to stderr.
func NewLogger() *LoggerCloser {
	opts := OptionsFromEnv()
	lg, err := New(os.Stderr, opts)
	if err != nil {
		opts.Dir = ""
		lg, _ = New(os.Stderr, opts)
		lg.Warn("Logging to stderr", "error", err)
	}
	return lg
}
