package objtrack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/objtrack/objtrack/internal/config"
	"github.com/objtrack/objtrack/internal/engine"
	"github.com/objtrack/objtrack/internal/gitinfo"
	"github.com/objtrack/objtrack/internal/objdiff"
	"github.com/objtrack/objtrack/internal/report"
	"github.com/objtrack/objtrack/internal/update"
)

var (
	flagFilter  string
	flagSort    string
	flagDesc    bool
	flagUnits   string
	flagSymbols bool
	flagTable   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the comparison tool once and print the match report",
		RunE:  runReport,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagFilter, "filter", "", "show only units whose name contains this substring")
	cmd.Flags().StringVar(&flagSort, "sort", "", "sort by match|name (default match, worst first)")
	cmd.Flags().BoolVar(&flagDesc, "desc", false, "reverse the sort order")
	cmd.Flags().StringVar(&flagUnits, "units", "", "show only units matching this glob (e.g. 'main/**')")
	cmd.Flags().BoolVar(&flagSymbols, "symbols", false, "include mismatching symbols under each mismatched unit")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output in table format with borders")
}

// resolveProject picks the project directory: the --project flag when given,
// else the global config's project, else the current directory.
func resolveProject() string {
	if flagProject == "." {
		if c, err := config.LoadGlobal(); err == nil {
			if p := pickString("", nil, c.Project); p != "" {
				abs, _ := filepath.Abs(p)
				return abs
			}
		}
	}
	abs, _ := filepath.Abs(flagProject)
	return abs
}

// newRunner resolves config precedence (CLI > local > global) and builds the
// comparison tool runner for the project directory.
func newRunner(abs string) (*objdiff.Runner, config.FileConfig, config.FileConfig, error) {
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	}

	ltool := lcfg.GetObjdiffConfig()
	gtool := gcfg.GetObjdiffConfig()
	binary := pickString("", ltool.Binary, gtool.Binary)
	args := ltool.Args
	if len(args) == 0 {
		args = gtool.Args
	}

	runner, err := objdiff.NewRunner(binary, abs, args)
	if err != nil {
		return nil, lcfg, gcfg, err
	}
	return runner, lcfg, gcfg, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	abs := resolveProject()

	runner, lcfg, gcfg, err := newRunner(abs)
	if err != nil {
		return err
	}

	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'objtrack --self-update' to upgrade\n", latest)
			}
		}
		if flagSelfUpdate {
			if err := selfUpdate(); err == nil {
				_, _ = fmt.Fprintln(os.Stderr, "updated to latest; re-run command")
				return nil
			}
		}
	}

	ctrl := engine.New(runner)
	if err := ctrl.RunReport(cmd.Context()); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	applySort(ctrl, pickString(flagSort, lcfg.SortKey, gcfg.SortKey), pickBool(flagDesc, lcfg.SortDesc, gcfg.SortDesc))
	ctrl.SetFilter(flagFilter)

	if flagSymbols {
		// Expand every mismatched unit so the engine supplies symbol detail
		for _, row := range ctrl.ViewModel().Rows {
			if row.Expandable {
				ctrl.ToggleExpansion(row.Name)
			}
		}
	}

	if flagJSON {
		return report.WriteJSON(os.Stdout, ctrl.Report())
	}

	vm := ctrl.ViewModel()
	if flagUnits != "" {
		vm, err = filterRowsGlob(vm, flagUnits)
		if err != nil {
			return err
		}
	}

	noColor := pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		noColor = true
	}

	report.PrintView(os.Stdout, vm, report.PrintOptions{
		NoColor:  noColor,
		Bordered: flagTable,
		Symbols:  flagSymbols,
		Revision: gitinfo.Describe(abs),
	})
	return nil
}

// applySort maps the config/flag sort spec onto the engine. The engine
// starts at the default (match, ascending), so a requested key is applied
// once and a reversal is a second toggle of the same key.
func applySort(ctrl *engine.Controller, key string, desc bool) {
	switch key {
	case "name":
		ctrl.SetSort(engine.SortByName)
	case "", "match":
		// already the default
	}
	if desc {
		current, _ := ctrl.Sort()
		ctrl.SetSort(current)
	}
}

// filterRowsGlob narrows the view to units matching a doublestar pattern.
func filterRowsGlob(vm engine.ViewModel, pattern string) (engine.ViewModel, error) {
	if !doublestar.ValidatePattern(pattern) {
		return vm, fmt.Errorf("invalid unit glob %q", pattern)
	}
	var rows []engine.Row
	for _, row := range vm.Rows {
		ok, err := doublestar.Match(pattern, row.Name)
		if err != nil {
			return vm, fmt.Errorf("invalid unit glob %q: %w", pattern, err)
		}
		if ok {
			rows = append(rows, row)
		}
	}
	vm.Rows = rows
	return vm, nil
}
