package logger

import "github.com/user/editsurface/pkg/ports"

var (
	_ ports.Logger = (*ConsoleLogger)(nil)
	_ ports.Logger = NoopLogger{}
)

// NoopLogger discards everything. Tests and the watch TUI, which owns the
// terminal, use it.
type NoopLogger struct{}

// NewNoop returns a NoopLogger.
func NewNoop() NoopLogger {
	return NoopLogger{}
}

func (NoopLogger) Debug(string, ...interface{})        {}
func (NoopLogger) Info(string, ...interface{})         {}
func (NoopLogger) Warn(string, ...interface{})         {}
func (NoopLogger) Error(string, ...interface{})        {}
func (l NoopLogger) WithComponent(string) ports.Logger { return l }
