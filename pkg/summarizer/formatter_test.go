package summarizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/editsurface/pkg/ports"
)

func TestFormatterFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"report.md", false},
		{"REPORT.MD", false},
		{"out/report.markdown", false},
		{"notes.txt", false},
		{"report.pdf", true},
		{"report", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatterFor(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ports.ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := f.(*MarkdownFormatter); !ok {
				t.Errorf("expected a MarkdownFormatter, got %T", f)
			}
		})
	}
}

func TestFormatterFor_PassesOptions(t *testing.T) {
	f, err := FormatterFor("report.md", WithVersion("9.9.9"))
	if err != nil {
		t.Fatal(err)
	}
	if out := f.Format(videoSummary()); !strings.Contains(out, "9.9.9") {
		t.Errorf("expected the version in the report:\n%s", out)
	}
}
