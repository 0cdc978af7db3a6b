// Package ui is the terminal front end: it renders engine status and turns
// key presses into engine commands.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/util"
)

const (
	volumeStep     = 0.05
	maxQueueLines  = 8
	messageTimeout = 5 * time.Second
	gaugeWidth     = 10
)

// Controller is the part of *engine.Engine the TUI drives.
type Controller interface {
	EnqueueAll(ctx context.Context, paths []string) (int, error)
	TogglePause() (bool, error)
	Skip() error
	Stop() error
	SetVolume(v float64) error
	Volume() float64
	Status() engine.Status
}

// Model is the Bubbletea model for the climpd TUI.
type Model struct {
	ctl  Controller
	dir  string
	keys keyMap
	help help.Model

	status engine.Status
	bar    progress.Model

	// The gauge chases the real volume on a spring.
	spring harmonica.Spring
	volPos float64
	volVel float64

	browser  *BrowserModel
	adding   int
	spinner  spinner.Model
	message  string
	msgTime  time.Time
	width    int
	height   int
	quitting bool
}

// New creates a Model driving ctl. dir is where the file browser starts.
func New(ctl Controller, dir string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	vol := ctl.Volume()
	return Model{
		ctl:     ctl,
		dir:     dir,
		keys:    defaultKeys(),
		help:    help.New(),
		status:  ctl.Status(),
		bar:     newProgressBar(),
		spring:  harmonica.NewSpring(harmonica.FPS(int(time.Second/tickInterval)), 8.0, 1.0),
		volPos:  vol,
		spinner: s,
	}
}

// WithBrowser returns m with the file browser open.
func (m Model) WithBrowser() Model {
	b := NewBrowser(m.dir)
	if err := b.Err(); err != nil {
		m.setMessage(err.Error())
		return m
	}
	m.browser = &b
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, tea.SetWindowTitle("climpd"))
}

func (m *Model) setMessage(s string) {
	m.message = s
	m.msgTime = time.Now()
}

func (m Model) enqueue(path string) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		n, err := ctl.EnqueueAll(context.Background(), []string{path})
		return enqueuedMsg{path: path, added: n, err: err}
	}
}

func run(f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return commandErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.browser != nil {
			b, cmd := m.browser.Update(msg)
			m.browser = &b
			return m, cmd
		}
		return m, nil

	case tickMsg:
		m.status = m.ctl.Status()
		m.volPos, m.volVel = m.spring.Update(m.volPos, m.volVel, m.status.Volume)
		if m.message != "" && time.Since(m.msgTime) > messageTimeout {
			m.message = ""
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BrowserSelectedMsg:
		m.browser = nil
		m.adding++
		return m, m.enqueue(msg.Path)

	case BrowserCancelledMsg:
		m.browser = nil
		return m, nil

	case enqueuedMsg:
		m.adding--
		switch {
		case msg.err != nil:
			m.setMessage(fmt.Sprintf("add failed: %v", msg.err))
		case msg.added == 0:
			m.setMessage(fmt.Sprintf("nothing playable in %s", filepath.Base(msg.path)))
		case msg.added == 1:
			m.setMessage("added 1 track")
		default:
			m.setMessage(fmt.Sprintf("added %d tracks", msg.added))
		}
		return m, nil

	case commandErrMsg:
		if errors.Is(msg.err, engine.ErrClosed) || errors.Is(msg.err, engine.ErrWorkerTerminated) {
			m.quitting = true
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		m.setMessage(msg.err.Error())
		return m, nil
	}

	if m.browser != nil {
		b, cmd := m.browser.Update(msg)
		m.browser = &b
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	case key.Matches(msg, m.keys.Toggle):
		return m, run(func() error { _, err := m.ctl.TogglePause(); return err })
	case key.Matches(msg, m.keys.Skip):
		return m, run(m.ctl.Skip)
	case key.Matches(msg, m.keys.Stop):
		return m, run(m.ctl.Stop)
	case key.Matches(msg, m.keys.VolUp):
		v := m.ctl.Volume() + volumeStep
		return m, run(func() error { return m.ctl.SetVolume(v) })
	case key.Matches(msg, m.keys.VolDown):
		v := m.ctl.Volume() - volumeStep
		return m, run(func() error { return m.ctl.SetVolume(v) })
	case key.Matches(msg, m.keys.Add):
		m = m.WithBrowser()
		if m.browser != nil && m.width > 0 {
			b, _ := m.browser.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
			m.browser = &b
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browser != nil {
		return m.browser.View()
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("climpd") + "\n\n")

	st := m.status
	if st.Playing == nil {
		b.WriteString("  " + artistStyle.Render("nothing playing, press a to add music") + "\n\n")
	} else {
		t := st.Playing
		b.WriteString("  " + titleStyle.Render(t.DisplayTitle()) + "\n")
		if sub := subtitle(t.Artist, t.Year); sub != "" {
			b.WriteString("  " + artistStyle.Render(sub) + "\n")
		}
		b.WriteString("\n")

		elapsed := util.FormatDuration(t.Position)
		total := util.FormatDuration(t.Duration)
		if t.Duration > 0 {
			total = "-" + util.FormatDuration(t.Remaining())
		}
		m.bar.Width = max(w-len(elapsed)-len(total)-6, 10)
		ratio := 0.0
		if t.Duration > 0 {
			ratio = float64(t.Position) / float64(t.Duration)
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", timeStyle.Render(elapsed), m.bar.ViewAs(ratio), timeStyle.Render(total)))
	}
	b.WriteString("\n")

	statusIcon := "■"
	switch st.State {
	case engine.StatePlaying:
		statusIcon = "▶"
	case engine.StatePaused:
		statusIcon = "❚❚"
	}
	left := fmt.Sprintf("%s  %s", statusIcon, st.State)
	if m.adding > 0 {
		left += "  " + m.spinner.View() + " adding"
	}
	right := renderVolumeGauge(m.volPos, gaugeWidth) + " " + renderVolumePercent(st.Volume)
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right)-4, 2)
	b.WriteString("  " + statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right) + "\n")

	if len(st.Queue) > 0 {
		b.WriteString("\n  " + headerStyle.Render(fmt.Sprintf("up next (%d)", len(st.Queue))) + "\n")
		for i, t := range st.Queue {
			if i == maxQueueLines {
				b.WriteString("  " + queueStyle.Render(fmt.Sprintf("   … %d more", len(st.Queue)-i)) + "\n")
				break
			}
			line := fmt.Sprintf("%2d. %s", i+1, t.DisplayTitle())
			if t.Duration > 0 {
				line += "  " + util.FormatDuration(t.Duration)
			}
			b.WriteString("  " + queueStyle.Render(line) + "\n")
		}
	}

	if m.message != "" {
		b.WriteString("\n  " + messageStyle.Render(m.message) + "\n")
	}
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")

	view := b.String()
	if m.height > 0 {
		if pad := m.height - lipgloss.Height(view); pad > 0 {
			view += strings.Repeat("\n", pad)
		}
	}
	return view
}

func subtitle(artist string, year int) string {
	switch {
	case artist != "" && year > 0:
		return fmt.Sprintf("%s (%d)", artist, year)
	case artist != "":
		return artist
	case year > 0:
		return fmt.Sprint(year)
	}
	return ""
}
