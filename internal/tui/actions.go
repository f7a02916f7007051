package tui

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/objtrack/objtrack/internal/report"
)

// sourceExtensions are tried in order when resolving a unit's source file.
// Units are named after object files, so the object extension is stripped
// first.
var sourceExtensions = []string{".c", ".cpp", ".cc", ".cxx", ".s", ".S", ".asm"}

// sourceDirs are project-relative roots searched for unit sources.
var sourceDirs = []string{"", "src", "source", "asm"}

// findSourceFile maps a unit name like "main/game.o" to a source file on
// disk, or "" when no candidate exists.
func (m Model) findSourceFile(unitName string) string {
	base := strings.TrimSuffix(unitName, filepath.Ext(unitName))
	for _, dir := range sourceDirs {
		for _, ext := range sourceExtensions {
			candidate := filepath.Join(m.projectDir, dir, filepath.FromSlash(base)+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

func (m Model) copyUnitName() tea.Cmd {
	name, ok := m.selectedUnit()
	if !ok {
		return func() tea.Msg { return statusMsg("No unit selected") }
	}

	if err := clipboard.WriteAll(name); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}

	return func() tea.Msg { return statusMsg(fmt.Sprintf("Copied: %s", name)) }
}

func (m Model) openEditor() tea.Cmd {
	name, ok := m.selectedUnit()
	if !ok {
		return nil
	}
	path := m.findSourceFile(name)
	if path == "" {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("No source file found for %s", name)) }
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	c := exec.Command(editor, path)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil {
			return statusMsg(fmt.Sprintf("Error opening editor: %v", err))
		}
		return statusMsg("Editor closed")
	})
}

// exportJSON writes the loaded report next to the working directory with a
// timestamped name.
func (m Model) exportJSON() tea.Cmd {
	rep := m.controller.Report()
	if rep == nil {
		return func() tea.Msg { return statusMsg("No report to export") }
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("objtrack-report-%s.json", timestamp)

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, rep); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Export error: %v", err)) }
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Write error: %v", err)) }
	}

	absPath, _ := filepath.Abs(filename)
	return func() tea.Msg {
		return statusMsg(fmt.Sprintf("Exported report to %s", absPath))
	}
}

// sourcePreview returns syntax-highlighted source for the unit, capped to
// what fits comfortably in the detail pane.
func (m Model) sourcePreview(unitName string) string {
	path := m.findSourceFile(unitName)
	if path == "" {
		return dimStyle.Render(fmt.Sprintf("No source file found for %s", unitName))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return dimStyle.Render(fmt.Sprintf("Cannot read %s: %v", path, err))
	}

	const maxPreviewBytes = 64 * 1024
	truncated := false
	if len(data) > maxPreviewBytes {
		data = data[:maxPreviewBytes]
		truncated = true
	}

	out := titleStyle.Render(path) + "\n\n" + highlightCode(string(data), path)
	if truncated {
		out += "\n" + dimStyle.Render("[truncated]")
	}
	return out
}

func highlightCode(code string, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}
