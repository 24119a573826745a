// Package ui previews the status line in a terminal, fed by the same tick
// loop that drives the bar.
package ui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// Streamer produces a snapshot after every tick until ctx is done.
type Streamer interface {
	Stream(ctx context.Context) <-chan model.Snapshot
}

// Model renders live snapshots from the tick loop.
type Model struct {
	latest    model.Snapshot
	stream    <-chan model.Snapshot
	ctxCancel context.CancelFunc
	width     int
	height    int
}

func New(stream <-chan model.Snapshot, cancel context.CancelFunc) *Model {
	return &Model{
		stream:    stream,
		ctxCancel: cancel,
		width:     120,
		height:    40,
	}
}

// Messages
type (
	tickMsg struct{}
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		}
	case tickMsg:
		select {
		case snap, ok := <-m.stream:
			if ok {
				m.latest = snap
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	barStyle    = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
	separator = subtleStyle.Render(" | ")
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("swaystatus preview") + "  " +
		subtleStyle.Render("q to quit")
	if !s.Timestamp.IsZero() {
		header += "  " + subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))
	}
	if len(s.Blocks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, subtleStyle.Render("waiting for the first tick..."))
	}

	bar := barStyle.MaxWidth(m.width).Render(renderBar(s.Blocks))
	blocks := card("Blocks", renderTable(s.Blocks, m.width-8))

	parts := []string{header, bar, blocks}
	if footer := renderTotals(s); footer != "" {
		parts = append(parts, subtleStyle.Render(footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderBar lays the blocks out left to right the way a bar would.
func renderBar(blocks []model.Block) string {
	rendered := make([]string, 0, len(blocks))
	for _, b := range blocks {
		rendered = append(rendered, renderBlock(b))
	}
	return strings.Join(rendered, separator)
}

func renderBlock(b model.Block) string {
	if b.Markup == model.MarkupPango {
		return renderPango(b.FullText)
	}
	style := lipgloss.NewStyle()
	if c, ok := hexColor(b.Color); ok {
		style = style.Foreground(c)
	}
	if b.MinWidth != nil {
		w := b.MinWidth.Pixels / 8
		if b.MinWidth.Text != "" {
			w = lipgloss.Width(b.MinWidth.Text)
		}
		style = style.Width(w).Align(position(b.Align))
	}
	return style.Render(b.FullText)
}

var spanRe = regexp.MustCompile(`<span color="([^"]*)">(.*?)</span>`)

// renderPango colors the span elements of a Pango string. Text outside
// spans is kept as is.
func renderPango(s string) string {
	var out strings.Builder
	last := 0
	for _, loc := range spanRe.FindAllStringSubmatchIndex(s, -1) {
		out.WriteString(s[last:loc[0]])
		text := s[loc[4]:loc[5]]
		if c, ok := hexColor(s[loc[2]:loc[3]]); ok {
			text = lipgloss.NewStyle().Foreground(c).Render(text)
		}
		out.WriteString(text)
		last = loc[1]
	}
	out.WriteString(s[last:])
	return out.String()
}

// hexColor converts "#rrggbb" or "#rrggbbaa" to a terminal color. The alpha
// channel is dropped.
func hexColor(c string) (lipgloss.Color, bool) {
	if !strings.HasPrefix(c, "#") {
		return "", false
	}
	switch len(c) {
	case 7:
		return lipgloss.Color(c), true
	case 9:
		return lipgloss.Color(c[:7]), true
	}
	return "", false
}

func position(a model.Align) lipgloss.Position {
	switch a {
	case model.AlignRight:
		return lipgloss.Right
	case model.AlignCenter:
		return lipgloss.Center
	}
	return lipgloss.Left
}

func renderTable(blocks []model.Block, width int) string {
	if width < 40 {
		width = 40
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %-10s %s\n", "name", "color", "text")
	for _, blk := range blocks {
		text := blk.FullText
		if blk.Markup == model.MarkupPango {
			text = renderPango(text)
		}
		fmt.Fprintf(&b, "%-18s %-10s %s\n",
			truncate(blk.Name, 18), truncate(blk.Color, 10), truncate(text, width-30))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTotals summarizes the cumulative network counters.
func renderTotals(s model.Snapshot) string {
	if !s.NetOK {
		return ""
	}
	return fmt.Sprintf("since boot: %s received, %s sent",
		humanize.IBytes(s.Net.RxBytes), humanize.IBytes(s.Net.TxBytes))
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n || strings.Contains(s, "\x1b") {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunTUI starts the Bubble Tea program over the snapshots of s.
func RunTUI(ctx context.Context, s Streamer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	prog := tea.NewProgram(New(s.Stream(ctx), cancel), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
