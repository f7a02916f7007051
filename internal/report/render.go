package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/objtrack/objtrack/internal/engine"
	"github.com/objtrack/objtrack/internal/types"
)

// PrintOptions controls the one-shot CLI rendering of a view model.
type PrintOptions struct {
	NoColor  bool
	Bordered bool
	Symbols  bool
	Revision string
}

// PrintView writes the summary and unit table for a Loaded view model.
// Symbol detail follows each mismatched unit when opts.Symbols is set,
// matching what the interactive view shows for an expanded row.
func PrintView(w io.Writer, vm engine.ViewModel, opts PrintOptions) {
	fmt.Fprintf(w, "Progress: %s (%s objects)\n", vm.Summary.Progress, vm.Summary.Objects)
	fmt.Fprintf(w, "Generated: %s\n", vm.Summary.Timestamp.Local().Format("Jan 2 2006, 15:04:05"))
	if opts.Revision != "" {
		fmt.Fprintf(w, "Revision: %s\n", opts.Revision)
	}
	fmt.Fprintln(w)

	if len(vm.Rows) == 0 {
		if vm.Filter != "" {
			fmt.Fprintf(w, "No units match %q\n", vm.Filter)
		} else {
			fmt.Fprintln(w, "No units in report")
		}
		return
	}

	if opts.Bordered {
		printBordered(w, vm, opts)
	} else {
		printColumns(w, vm, opts)
	}
}

func printColumns(w io.Writer, vm engine.ViewModel, opts PrintOptions) {
	maxName := 4
	for _, row := range vm.Rows {
		if len(row.Name) > maxName {
			maxName = len(row.Name)
		}
	}

	for _, row := range vm.Rows {
		status := row.Status
		if !opts.NoColor {
			status = colorStatus(row)
		}
		fmt.Fprintf(w, "%-*s  %7s  %s\n", maxName, row.Name, row.Percent, status)
		if opts.Symbols {
			for _, sym := range row.Symbols {
				fmt.Fprintf(w, "  %-*s  %7s  %d/%d bytes\n", maxName-2, sym.Name, sym.Percent, sym.BaseSize, sym.TargetSize)
			}
		}
	}
}

func printBordered(w io.Writer, vm engine.ViewModel, opts PrintOptions) {
	t := tablewriter.NewTable(w)
	t.Header([]string{"Unit", "Match", "Status"})
	for _, row := range vm.Rows {
		_ = t.Append([]string{row.Name, row.Percent, row.Status})
		if opts.Symbols {
			for _, sym := range row.Symbols {
				_ = t.Append([]string{
					"  " + sym.Name,
					sym.Percent,
					fmt.Sprintf("%d/%d bytes", sym.BaseSize, sym.TargetSize),
				})
			}
		}
	}
	_ = t.Render()
}

func colorStatus(row engine.Row) string {
	if row.Mismatch {
		return "\x1b[31m" + row.Status + "\x1b[0m" // red
	}
	return "\x1b[32m" + row.Status + "\x1b[0m" // green
}

// WriteJSON emits the raw report for pipelines.
func WriteJSON(w io.Writer, report *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
