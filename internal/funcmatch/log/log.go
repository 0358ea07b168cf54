// Package log wires the process-wide slog logger.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"

	"funcmatch/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	logFileOut  *os.File
)

// Setup installs the default slog logger. Records go to the charm logger
// on stderr and, when logFile is set, also to that file as JSON.
func Setup(logFile string, debug bool) error {
	var setupErr error
	initOnce.Do(func() {
		console := logging.NewLogger()
		if debug {
			console.SetLevel(charmlog.DebugLevel)
			console.SetReportCaller(true)
		}

		handler := slog.Handler(console.Logger)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				setupErr = fmt.Errorf("open log file: %w", err)
				return
			}
			logFileOut = f
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			handler = slogmulti.Fanout(handler, slog.NewJSONHandler(f, &slog.HandlerOptions{
				Level:     level,
				AddSource: debug,
			}))
		}

		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
	return setupErr
}

// Close flushes and closes the log file opened by Setup, if any.
func Close() error {
	if logFileOut == nil {
		return nil
	}
	err := logFileOut.Close()
	logFileOut = nil
	return err
}

func Initialized() bool {
	return initialized.Load()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
