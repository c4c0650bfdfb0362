// Package logger provides the service-prefixed loggers used by the bridge
// and tools. The simulation core itself never logs; keeping I/O out of the
// tick path is part of the determinism contract.
package logger

import (
	"io"
	"log"
	"os"
)

// Logger is an alias used by services for dependency injection.
type Logger = log.Logger

// New returns a standard logger with a consistent service prefix.
func New(service string) *Logger {
	return log.New(os.Stdout, "["+service+"] ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// NewDebug returns a logger for verbose per-request output. It discards
// everything unless SIM_DEBUG is set, so the hot bridge loop can log
// unconditionally without spamming production output.
func NewDebug(service string) *Logger {
	out := io.Discard
	if os.Getenv("SIM_DEBUG") != "" {
		out = os.Stdout
	}
	return log.New(out, "["+service+"/debug] ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}
