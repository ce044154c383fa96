package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/user/editsurface/pkg/ports"
)

func newTestConsole(level ports.LogLevel) (*ConsoleLogger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewConsoleTo(level, &out, &errOut, false), &out, &errOut
}

func TestConsole_LevelsAndStreams(t *testing.T) {
	l, out, errOut := newTestConsole(ports.LevelInfo)

	l.Debug("hidden")
	l.Info("Loaded %s", "clip.mp4")
	l.Warn("Zoom update failed: %v", "boom")

	if got := out.String(); got != "Loaded clip.mp4\n" {
		t.Errorf("unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "warn: Zoom update failed: boom\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestConsole_NestedComponents(t *testing.T) {
	l, out, _ := newTestConsole(ports.LevelInfo)

	editor := l.WithComponent("editor")
	editor.WithComponent("export").Info("started")
	editor.WithComponent("editor").Info("same")
	editor.WithComponent("").Info("empty")

	want := "[editor.export] started\n[editor] same\n[editor] empty\n"
	if got := out.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestConsole_DebugCarriesElapsed(t *testing.T) {
	l, out, _ := newTestConsole(ports.LevelDebug)
	l.sink.now = func() time.Time { return l.sink.started.Add(1500 * time.Millisecond) }

	l.WithComponent("scheduler").Debug("tick")

	if got := out.String(); got != "+1.500s [scheduler] tick\n" {
		t.Errorf("unexpected debug line %q", got)
	}
}

func TestConsole_ColorWrapsLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleTo(ports.LevelInfo, &out, &errOut, true)

	l.Error("fatal")

	got := errOut.String()
	if !strings.HasPrefix(got, colorRed) || !strings.Contains(got, "fatal"+colorReset) {
		t.Errorf("expected a red error line, got %q", got)
	}
	if strings.Contains(got, "error:") {
		t.Error("expected no level tag when colored")
	}
}

func TestConsole_QuietWritesNothing(t *testing.T) {
	l, out, errOut := newTestConsole(ports.LevelQuiet)
	l.Error("nothing")
	if out.Len()+errOut.Len() != 0 {
		t.Error("expected no output at quiet level")
	}
}
