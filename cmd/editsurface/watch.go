package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/user/editsurface/pkg/adapters/logger"
	"github.com/user/editsurface/pkg/ports"
)

// seekStep is the fraction of the duration moved by the arrow keys.
const seekStep = 0.05

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	chartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cccccc")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#333355"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

// textHistogram is a ports.HistogramView drawn with block characters.
// Present runs on the UI loop and Render on the terminal program.
type textHistogram struct {
	mu      sync.Mutex
	width   int
	height  int
	columns []float64
}

func newTextHistogram(width, height int) *textHistogram {
	return &textHistogram{width: width, height: height}
}

func (h *textHistogram) Size() (int, int) {
	return h.width, h.height
}

func (h *textHistogram) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.columns = nil
}

// Present keeps the tallest luminance bar per character column.
func (h *textHistogram) Present(bars []ports.Bar) {
	cols := make([]float64, h.width)
	for _, b := range bars {
		if b.Channel != ports.ChannelLuminance {
			continue
		}
		x := int(b.X)
		if x >= 0 && x < len(cols) && b.Height > cols[x] {
			cols[x] = b.Height
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.columns = cols
}

func (h *textHistogram) Render() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.columns == nil {
		return strings.Repeat(strings.Repeat(" ", h.width)+"\n", h.height-1) + strings.Repeat(" ", h.width)
	}
	var sb strings.Builder
	for row := h.height; row > 0; row-- {
		for _, v := range h.columns {
			switch {
			case v >= float64(row):
				sb.WriteString("█")
			case v >= float64(row)-0.5:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		if row > 1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// status is what the terminal shows, read from the editor on the UI loop.
type status struct {
	path     string
	video    bool
	playing  bool
	percent  float64
	timeText string
	zoom     string
	frames   uint64
	closed   bool
}

type tickMsg time.Time

type watchModel struct {
	s      *session
	hist   *textHistogram
	status status
	err    error
	width  int
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.do(func() error {
				m.s.editor.TogglePlayPause()
				return nil
			})
		case "left":
			m.seek(-seekStep)
		case "right":
			m.seek(seekStep)
		case "+", "=":
			m.do(func() error { m.s.editor.ZoomIn(); return nil })
		case "-":
			m.do(func() error { m.s.editor.ZoomOut(); return nil })
		case "0":
			m.do(func() error { m.s.editor.ZoomFit(); return nil })
		case "h":
			m.do(func() error { m.s.editor.RefreshHistogram(); return nil })
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		if m.status.closed {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m *watchModel) do(fn func() error) {
	if err := m.s.call(fn); err != nil {
		m.err = err
	}
}

func (m *watchModel) seek(delta float64) {
	m.do(func() error {
		if !m.s.editor.IsVideo() {
			return nil
		}
		target := m.s.editor.Progress().Percent/100 + delta
		return m.s.editor.SeekTo(min(max(target, 0), 1))
	})
}

func (m *watchModel) refresh() {
	m.s.call(func() error {
		e := m.s.editor
		m.status = status{
			path:     e.CurrentPath(),
			video:    e.IsVideo(),
			playing:  e.IsPlaying(),
			percent:  e.Progress().Percent,
			timeText: e.TimeText(),
			zoom:     e.ZoomText(),
			frames:   e.Presented(),
			closed:   e.Closed(),
		}
		return nil
	})
}

func (m watchModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("editsurface") + "  " + m.status.path + "\n\n")

	if m.status.video {
		state := l10n.T("Paused")
		if m.status.playing {
			state = l10n.T("Playing")
		}
		width := max(m.width-30, 20)
		filled := int(m.status.percent / 100 * float64(width))
		sb.WriteString(fmt.Sprintf("%s %s%s %s\n",
			labelStyle.Render(state),
			barStyle.Render(strings.Repeat("━", filled)),
			labelStyle.Render(strings.Repeat("─", width-filled)),
			m.status.timeText))
	}
	sb.WriteString(labelStyle.Render(l10n.F("Zoom %s  presented %d", m.status.zoom, m.status.frames)) + "\n")
	sb.WriteString(chartStyle.Render(m.hist.Render()) + "\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	sb.WriteString(labelStyle.Render(l10n.T("space play/pause  ←/→ seek  +/-/0 zoom  h histogram  q quit")) + "\n")
	return sb.String()
}

func runWatch(c *cli.Context) error {
	path, err := argument(c, "file")
	if err != nil {
		return err
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New(l10n.T("watch requires a terminal"))
	}
	ctx, cancel, cfg, _, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	hist := newTextHistogram(64, 8)
	// Log lines would corrupt the terminal program.
	s, err := newSession(ctx, cfg, logger.NewNoop(), sessionOptions{View: hist})
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.open(path, c.Int("width"), c.Int("height")); err != nil {
		return err
	}

	m := watchModel{s: s, hist: hist}
	m.refresh()
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

var _ ports.HistogramView = (*textHistogram)(nil)
