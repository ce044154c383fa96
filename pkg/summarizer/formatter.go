package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/editsurface/pkg/ports"
)

// Formatter renders a Summary.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// FormatterFor picks the formatter for a summary file by its extension.
// Markdown is the only report format; .txt gets the same Markdown text.
func FormatterFor(path string, opts ...MarkdownOption) (Formatter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return NewMarkdownFormatter(opts...), nil
	default:
		return nil, fmt.Errorf("summary %s: %w", path, ports.ErrUnsupportedFormat)
	}
}
