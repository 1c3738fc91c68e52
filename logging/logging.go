// Package logging provides the level-prefixed log lines used throughout the
// dispatcher. Output goes to the standard logger, optionally routed through a
// rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var debugging atomic.Bool

// SetDebug enables or disables DEBUG lines.
func SetDebug(enabled bool) {
	debugging.Store(enabled)
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Rotate sends log output to both stderr and a size-rotated log file. The
// returned closer must be closed on exit.
func Rotate(file string, maxSizeMB int, maxBackups int) io.Closer {
	logger := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   false,
	}

	log.SetOutput(io.MultiWriter(os.Stderr, logger))

	return logger
}

func Debugf(format string, args ...any) {
	if debugging.Load() {
		printf("DEBUG", format, args...)
	}
}

func Infof(format string, args ...any) {
	printf("INFO", format, args...)
}

func Warnf(format string, args ...any) {
	printf("WARN", format, args...)
}

func Errorf(format string, args ...any) {
	printf("ERROR", format, args...)
}

func printf(level string, format string, args ...any) {
	log.Printf("%-5s %s", level, fmt.Sprintf(format, args...))
}
