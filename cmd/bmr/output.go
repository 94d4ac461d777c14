package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/resolver"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// subscribe prints toasts and the no-access redirect to w.
func subscribe(bus *event.Bus, w io.Writer) {
	bus.Subscribe(event.Toast, func(e event.Event) {
		t := e.(event.ToastEvent)
		switch t.Level {
		case event.Error:
			fmt.Fprintln(w, errorStyle.Render("✗ "+t.Text))
		case event.Success:
			fmt.Fprintln(w, successStyle.Render("✓ "+t.Text))
		default:
			fmt.Fprintln(w, t.Text)
		}
	})
	bus.Subscribe(event.AuthRequired, func(e event.Event) {
		a := e.(event.AuthRequiredEvent)
		fmt.Fprintln(w, errorStyle.Render("not authorized, see "+a.Redirect))
	})
	bus.Subscribe(event.Progress, func(e event.Event) {
		logger.Debug("busy", zap.Bool("busy", e.(event.ProgressEvent).Busy))
	})
}

func printView(w io.Writer, view resolver.FolderView) {
	header := view.Title
	if view.SearchMode {
		header = fmt.Sprintf("Search: %s", view.Term)
	} else if view.Path != "/" {
		header = fmt.Sprintf("%s  %s", view.Title, dimStyle.Render(breadcrumb(view)))
	}
	fmt.Fprintln(w, titleStyle.Render(header))
	printListing(w, view.Items)
}

func breadcrumb(view resolver.FolderView) string {
	return strings.Join(view.Segments.Names, " › ")
}

func printListing(w io.Writer, items model.Listing) {
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (empty)"))
		return
	}
	width := len(fmt.Sprint(len(items)))
	for i, b := range items {
		pos := b.Position
		if pos == 0 {
			pos = i + 1
		}
		marker := " "
		if b.Highlight == 1 {
			marker = starStyle.Render("*")
		}
		if b.IsFolder() {
			fmt.Fprintf(w, "%*d %s %s %s\n", width, pos, marker,
				folderStyle.Render(b.DisplayName+"/"), dimStyle.Render(fmt.Sprintf("(%d)", b.ChildCount)))
			continue
		}
		fmt.Fprintf(w, "%*d %s %s  %s\n", width, pos, marker, b.DisplayName, urlStyle.Render(b.URL))
	}
}

func printDocuments(w io.Writer, docs []model.Document, showAmount bool) {
	if len(docs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (no documents)"))
		return
	}
	for _, d := range docs {
		line := fmt.Sprintf("%s  %s", d.LastDate().Format("2006-01-02"), d.Title)
		if showAmount {
			line += fmt.Sprintf("  %.2f", d.Amount)
		}
		fmt.Fprintln(w, line)
		meta := []string{d.FileName}
		if len(d.Senders) > 0 {
			meta = append(meta, "from "+strings.Join(d.Senders, ", "))
		}
		if len(d.Tags) > 0 {
			meta = append(meta, "#"+strings.Join(d.Tags, " #"))
		}
		fmt.Fprintln(w, "   "+dimStyle.Render(strings.Join(meta, "  ")))
	}
}
