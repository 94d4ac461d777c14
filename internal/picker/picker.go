// Package picker is an interactive search over the bookmarks: the query is
// searched as it is typed and a result can be opened or copied.
package picker

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
)

// clipboardWriteAll is replaced in tests.
var clipboardWriteAll = clipboard.WriteAll

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Source is the debounced search the picker drives.
type Source interface {
	Input(term string)
	Updates() <-chan search.State[model.Bookmark]
	ShowMore(ctx context.Context) (search.State[model.Bookmark], error)
}

// resultsMsg arrives from the updates channel, moreMsg from a show-more
// request. Only resultsMsg re-arms the channel reader.
type resultsMsg search.State[model.Bookmark]

type moreMsg search.State[model.Bookmark]

type statusMsg struct {
	text string
	err  bool
}

// Picker is a TUI for searching and selecting a bookmark.
type Picker struct {
	ctx    context.Context
	source Source
	keys   KeyMap
	input  textinput.Model

	state     search.State[model.Bookmark]
	cursor    int
	listFocus bool
	status    statusMsg
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker searching source, starting with query.
func New(ctx context.Context, source Source, query string) Picker {
	input := textinput.New()
	input.Placeholder = "Search bookmarks..."
	input.CharLimit = 200
	input.Width = 50
	input.SetValue(query)
	input.Focus()

	return Picker{
		ctx:    ctx,
		source: source,
		keys:   DefaultKeyMap(),
		input:  input,
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	if q := p.input.Value(); q != "" {
		p.source.Input(q)
	}
	return tea.Batch(textinput.Blink, p.waitForResults())
}

func (p Picker) waitForResults() tea.Cmd {
	updates := p.source.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return resultsMsg(s)
	}
}

func (p Picker) showMore() tea.Cmd {
	return func() tea.Msg {
		s, err := p.source.ShowMore(p.ctx)
		if err != nil {
			return statusMsg{text: apperr.UserMessage(err), err: true}
		}
		return moreMsg(s)
	}
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case resultsMsg:
		p.apply(search.State[model.Bookmark](msg))
		return p, p.waitForResults()

	case moreMsg:
		p.apply(search.State[model.Bookmark](msg))
		return p, nil

	case statusMsg:
		p.status = msg
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Picker) apply(s search.State[model.Bookmark]) {
	term := p.state.Term
	p.state = s
	if p.state.Term != term || p.cursor >= len(p.state.Items) {
		p.cursor = 0
	}
	p.status = statusMsg{}
}

func (p Picker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Cancel):
		p.cancelled = true
		return p, tea.Quit

	case key.Matches(msg, p.keys.Select):
		if len(p.state.Items) == 0 {
			return p, nil
		}
		p.selected = true
		return p, tea.Quit

	case key.Matches(msg, p.keys.ShowMore):
		if !p.state.HasMore() {
			return p, nil
		}
		return p, p.showMore()

	case key.Matches(msg, p.keys.Focus):
		p.listFocus = !p.listFocus
		if p.listFocus {
			p.input.Blur()
			return p, nil
		}
		return p, p.input.Focus()
	}

	if p.listFocus || typingKeys[msg.String()] {
		switch {
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.state.Items)-1 {
				p.cursor++
			}
			return p, nil
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	if p.listFocus {
		switch {
		case key.Matches(msg, p.keys.YankURL):
			return p, p.yank()
		case key.Matches(msg, p.keys.Quit):
			p.cancelled = true
			return p, tea.Quit
		}
		return p, nil
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if after := p.input.Value(); after != before {
		p.source.Input(after)
	}
	return p, cmd
}

func (p Picker) yank() tea.Cmd {
	b := p.current()
	if b == nil || b.URL == "" {
		return nil
	}
	url := b.URL
	return func() tea.Msg {
		if err := clipboardWriteAll(url); err != nil {
			return statusMsg{text: "clipboard unavailable: " + err.Error(), err: true}
		}
		return statusMsg{text: "copied " + url}
	}
}

func (p Picker) current() *model.Bookmark {
	if p.cursor < 0 || p.cursor >= len(p.state.Items) {
		return nil
	}
	return &p.state.Items[p.cursor]
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %d of %d results", len(p.state.Items), p.state.TotalEntries)))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	for i, item := range p.visible() {
		idx := p.offset() + i
		cursor := "  "
		style := normalStyle
		if item.IsFolder() {
			style = folderStyle
		}
		if idx == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		suffix := ""
		if item.IsFolder() {
			suffix = "/"
		}
		name := truncateName(item.DisplayName, suffix, p.width-2)
		fmt.Fprintf(&b, "%s%s\n", cursor, style.Render(name))
		detail := item.Path
		if item.URL != "" {
			detail = item.URL
		}
		fmt.Fprintf(&b, "   %s\n", urlStyle.Render(truncate(detail, p.width-3)))
	}

	b.WriteString("\n")
	if p.status.text != "" {
		style := hintStyle
		if p.status.err {
			style = errorStyle
		}
		b.WriteString(style.Render(p.status.text))
		b.WriteString("\n")
	}
	hints := "tab: input/list  j/k: move  y: copy url  enter: open  esc: cancel"
	if p.state.HasMore() {
		hints += "  ctrl+n: show more"
	}
	b.WriteString(hintStyle.Render(hints))

	return b.String()
}

// rows available for results, two lines each
func (p Picker) pageSize() int {
	n := (p.height - 8) / 2
	if n < 1 {
		return 1
	}
	return n
}

func (p Picker) offset() int {
	if p.cursor < p.pageSize() {
		return 0
	}
	return p.cursor - p.pageSize() + 1
}

func (p Picker) visible() []model.Bookmark {
	start := p.offset()
	end := min(start+p.pageSize(), len(p.state.Items))
	if start >= end {
		return nil
	}
	return p.state.Items[start:end]
}

// SelectedBookmark returns the selected bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected {
		return nil
	}
	return p.current()
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
