package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/editsurface/pkg/filters"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used for labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a formatter with untranslated labels.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", t("Export Summary"))
	fmt.Fprintf(&sb, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&sb, "## %s\n\n", t("Source"))
	f.header(&sb)
	f.row(&sb, "File", "`"+s.Source.Path+"`")
	if s.Source.IsVideo {
		v := s.Source.Video
		f.row(&sb, "Kind", t("Video"))
		f.row(&sb, "Container", v.Format.String())
		f.row(&sb, "Size", fmt.Sprintf("%dx%d", v.Width, v.Height))
		f.row(&sb, "Frame Rate", fmt.Sprintf("%.3f fps", v.FrameRate))
		f.row(&sb, "Frames", fmt.Sprintf("%d", v.TotalFrames))
		f.row(&sb, "Duration", formatMicros(v.DurationMicros))
	} else {
		f.row(&sb, "Kind", t("Image"))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", t("Look"))
	f.header(&sb)
	if s.Look.Filter == "" || s.Look.Filter == filters.None {
		f.row(&sb, "Filter", t("None"))
	} else {
		f.row(&sb, "Filter", fmt.Sprintf("%s (%.0f%%)", s.Look.Filter, s.Look.Intensity*100))
	}
	if len(s.Look.Changed) == 0 {
		f.row(&sb, "Adjustments", t("Default"))
	}
	for _, c := range s.Look.Changed {
		fmt.Fprintf(&sb, "| %s | %s |\n", c.Name, formatValue(c.Value))
	}
	sb.WriteString("\n")

	o := s.Output
	fmt.Fprintf(&sb, "## %s\n\n", t("Output"))
	f.header(&sb)
	f.row(&sb, "Path", "`"+o.Path+"`")
	if o.FramesDir != "" {
		f.row(&sb, "Frames Directory", "`"+o.FramesDir+"`")
	}
	f.row(&sb, "Format", fmt.Sprintf("%s (%s %d)", o.Format, t("quality"), o.Quality))
	if s.Source.IsVideo {
		f.row(&sb, "Frames", fmt.Sprintf("%d", o.Frames))
	}
	f.row(&sb, "Elapsed", o.Elapsed.Round(time.Millisecond).String())
	if o.DryRun {
		f.row(&sb, "Dry Run", t("Yes"))
	}

	if f.version != "" {
		fmt.Fprintf(&sb, "\n---\n\neditsurface %s\n", f.version)
	}
	return sb.String()
}

func (f *MarkdownFormatter) header(sb *strings.Builder) {
	fmt.Fprintf(sb, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	sb.WriteString("|------|-------|\n")
}

func (f *MarkdownFormatter) row(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "| %s | %s |\n", f.translate(label), value)
}

// formatMicros renders a duration in seconds with two decimals.
func formatMicros(us int64) string {
	return fmt.Sprintf("%.2f s", float64(us)/1e6)
}

// formatValue drops trailing zeros from an adjustment value.
func formatValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

var _ Formatter = (*MarkdownFormatter)(nil)
