package mocks

import (
	"fmt"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// Logger is a mock implementation of ports.Logger that records formatted messages by level.
type Logger struct {
	mu     *sync.Mutex
	prefix string
	store  *loggerStore
}

type loggerStore struct {
	debug []string
	info  []string
	warn  []string
	error []string
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, store: &loggerStore{}}
}

func (l *Logger) format(msg string, args []interface{}) string {
	return l.prefix + fmt.Sprintf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.debug = append(l.store.debug, l.format(msg, args))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.info = append(l.store.info, l.format(msg, args))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.warn = append(l.store.warn, l.format(msg, args))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.error = append(l.store.error, l.format(msg, args))
}

// WithComponent returns a logger sharing the same records with a "[component] " prefix.
func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{mu: l.mu, prefix: "[" + component + "] ", store: l.store}
}

// Warnings returns the recorded warnings.
func (l *Logger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.store.warn...)
}

// Errors returns the recorded errors.
func (l *Logger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.store.error...)
}

// Infos returns the recorded info messages.
func (l *Logger) Infos() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.store.info...)
}

var _ ports.Logger = (*Logger)(nil)
