package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"

	"github.com/olivier-w/climpd/internal/media"
)

// BrowserSelectedMsg carries the file or playlist the user picked.
type BrowserSelectedMsg struct {
	Path string
}

// BrowserCancelledMsg is sent when the user leaves the browser without picking.
type BrowserCancelledMsg struct{}

type fileItem struct {
	name string
	ext  string
	path string
	rel  string
}

func (i fileItem) Title() string { return i.name }
func (i fileItem) Description() string {
	if media.IsPlaylistExt(i.ext) {
		return "playlist · " + i.rel
	}
	return i.rel
}
func (i fileItem) FilterValue() string { return i.rel }

type pathItem struct{}

func (i pathItem) Title() string       { return "Enter a path..." }
func (i pathItem) Description() string { return "type a file or playlist path" }
func (i pathItem) FilterValue() string { return "path" }

// BrowserModel lists the playable files and playlists under a directory.
type BrowserModel struct {
	list     list.Model
	input    textinput.Model
	pathMode bool
	dir      string
	err      error
}

// NewBrowser scans dir for playable files and playlists.
func NewBrowser(dir string) BrowserModel {
	files, err := media.ListPlayable(dir)
	if err != nil {
		return BrowserModel{dir: dir, err: errors.Wrap(err, "cannot read directory")}
	}

	// Playlists sit next to the music, only the top level is listed.
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && media.IsPlaylistExt(filepath.Ext(e.Name())) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}

	items := []list.Item{pathItem{}}
	for _, path := range files {
		ext := strings.ToLower(filepath.Ext(path))
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		items = append(items, fileItem{name: name, ext: ext, path: path, rel: rel})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "add to queue"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "/path/to/song.flac"
	ti.CharLimit = 4096
	ti.Width = 60

	return BrowserModel{list: l, input: ti, dir: dir}
}

// Err returns the error that kept the browser from listing its directory.
func (m BrowserModel) Err() error {
	return m.err
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func selectPath(path string) tea.Cmd {
	return func() tea.Msg { return BrowserSelectedMsg{Path: path} }
}

func cancelled() tea.Msg { return BrowserCancelledMsg{} }

func (m BrowserModel) Update(msg tea.Msg) (BrowserModel, tea.Cmd) {
	if m.pathMode {
		return m.updatePathInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case pathItem:
				m.pathMode = true
				m.input.Focus()
				return m, textinput.Blink
			case fileItem:
				return m, selectPath(item.path)
			}
		case "q", "esc", "ctrl+c":
			return m, cancelled
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updatePathInput(msg tea.Msg) (BrowserModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path != "" {
				if !filepath.IsAbs(path) {
					path = filepath.Join(m.dir, path)
				}
				return m, selectPath(path)
			}
		case "esc":
			m.pathMode = false
			m.input.Reset()
			m.input.Blur()
			return m, nil
		case "ctrl+c":
			return m, cancelled
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.pathMode {
		s := "\n"
		s += "  " + headerStyle.Render("climpd") + "\n"
		s += "\n"
		s += "  " + statusStyle.Render("Enter path:") + "\n"
		s += "  " + m.input.View() + "\n"
		s += "\n"
		s += "  " + helpStyle.Render("enter confirm  esc back  ctrl+c cancel") + "\n"
		return s
	}
	return m.list.View()
}
