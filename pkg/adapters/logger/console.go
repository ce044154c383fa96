// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/editsurface/pkg/ports"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// sink is shared by a console logger and every logger derived from it.
// Backend progress callbacks log from their own goroutines, so lines are
// written under a lock.
type sink struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	color   bool
	started time.Time
	now     func() time.Time
}

// ConsoleLogger writes translated messages to stdout, and warnings and
// errors to stderr. Component names nest: "editor" then "export" logs as
// [editor.export]. Debug lines carry the time since the logger was made,
// which is how tick and resize timing is read off a session log.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	sink      *sink
}

// NewConsole creates a console logger on stdout and stderr.
// Color is on when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return NewConsoleTo(level, os.Stdout, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewConsoleTo creates a console logger on the given writers.
func NewConsoleTo(level ports.LogLevel, out, errOut io.Writer, color bool) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		sink: &sink{
			out:     out,
			err:     errOut,
			color:   color,
			started: time.Now(),
			now:     time.Now,
		},
	}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.log(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.log(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger for a sub-component sharing this one's output.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	name := l.component
	switch {
	case name == "" || name == component:
		name = component
	case component != "":
		name += "." + component
	}
	return &ConsoleLogger{level: l.level, component: name, sink: l.sink}
}

// Enabled reports whether messages at level are written.
func (l *ConsoleLogger) Enabled(level ports.LogLevel) bool {
	return level < ports.LevelQuiet && level >= l.level
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []interface{}) {
	if !l.Enabled(level) {
		return
	}
	s := l.sink
	line := l.format(level, l10n.F(msg, args...))

	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.out
	if level >= ports.LevelWarn {
		w = s.err
	}
	fmt.Fprintln(w, line)
}

func (l *ConsoleLogger) format(level ports.LogLevel, text string) string {
	s := l.sink
	prefix := ""
	if level == ports.LevelDebug {
		prefix = fmt.Sprintf("+%.3fs ", s.now().Sub(s.started).Seconds())
	}
	if !s.color && level >= ports.LevelWarn {
		prefix += level.String() + ": "
	}
	if l.component != "" {
		if s.color {
			prefix += colorCyan + "[" + l.component + "]" + colorReset + " "
		} else {
			prefix += "[" + l.component + "] "
		}
	}
	line := prefix + text
	if !s.color {
		return line
	}
	switch level {
	case ports.LevelDebug:
		return colorGray + line + colorReset
	case ports.LevelWarn:
		return colorYellow + line + colorReset
	case ports.LevelError:
		return colorRed + line + colorReset
	}
	return line
}
