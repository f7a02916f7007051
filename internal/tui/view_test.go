package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestView_NotReady(t *testing.T) {
	m := NewModel(&stubRunner{}, "", "")
	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected init placeholder, got %q", got)
	}
}

func TestView_LoadingPopup(t *testing.T) {
	m := sized(NewModel(&stubRunner{}, "", ""))
	m.controller.Begin()
	view := m.View()
	if !strings.Contains(view, "Running comparison report") {
		t.Error("expected loading popup text")
	}
}

func TestView_NoReportPlaceholder(t *testing.T) {
	m := sized(NewModel(&stubRunner{}, "", ""))
	view := m.View()
	if !strings.Contains(view, "No report yet") {
		t.Error("expected no-report placeholder")
	}
	if !strings.Contains(view, "'r'") {
		t.Error("expected run hint in placeholder")
	}
}

func TestView_SummaryLine(t *testing.T) {
	m := loaded(t, sampleReport())
	m.revision = "main@abcdef123456"
	view := m.View()

	for _, want := range []string{"50.00%", "1 / 2", "main@abcdef123456", "[sort: match ^]"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in summary, got:\n%s", want, view)
		}
	}
}

func TestView_FilterIndicator(t *testing.T) {
	m := loaded(t, sampleReport())
	m.controller.SetFilter("b.o")
	m.rebuildTableRows()
	if !strings.Contains(m.View(), `[FILTER: "b.o"]`) {
		t.Error("expected filter indicator in summary")
	}
}

func TestView_EmptyFilterMessage(t *testing.T) {
	m := loaded(t, sampleReport())
	m.controller.SetFilter("nothing-matches")
	m.rebuildTableRows()
	if !strings.Contains(m.View(), "No units match filter") {
		t.Error("expected empty-filter message in detail pane")
	}
}

func TestView_HelpOverlay(t *testing.T) {
	m := loaded(t, sampleReport())
	m, _ = press(m, "?")
	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("expected help overlay")
	}
	if !strings.Contains(view, "Expand/collapse") {
		t.Error("expected expansion help entry")
	}

	// Any key closes the overlay
	m, _ = press(m, "x")
	if m.showHelp {
		t.Error("expected help to close on any key")
	}
}

func TestView_QuitIsEmpty(t *testing.T) {
	m := loaded(t, sampleReport())
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}
