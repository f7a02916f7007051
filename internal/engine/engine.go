package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/objtrack/objtrack/internal/types"
)

// SortKey is the closed set of unit attributes the table can sort on.
type SortKey int

const (
	SortByMatch SortKey = iota
	SortByName
)

func (k SortKey) String() string {
	if k == SortByName {
		return "name"
	}
	return "match"
}

// SortDirection inverts the comparator's sign uniformly.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// State is the view lifecycle: NoReport -> Loading -> {Loaded, Error}, and
// back to Loading on a re-run.
type State int

const (
	StateNoReport State = iota
	StateLoading
	StateLoaded
	StateError
)

// Runner acquires a report. Implemented by objdiff.Runner; faked in tests.
type Runner interface {
	RunReport(ctx context.Context) (*types.Report, error)
}

// Controller owns the live report and all view parameters. It is built on
// view entry and discarded on exit; all mutation happens on the owning
// goroutine (discrete UI events or the single run's completion).
type Controller struct {
	runner Runner

	state  State
	err    error
	report *types.Report

	// sorted is the canonical unit order under the current sort parameters.
	// It is rebuilt only when the sort changes or a report loads; filtering
	// scans it without re-sorting.
	sorted []types.Unit

	filter   string
	sortKey  SortKey
	sortDir  SortDirection
	expanded map[string]bool

	lastFingerprint uint64
	unchanged       bool
}

// New builds a Controller in the NoReport state.
func New(runner Runner) *Controller {
	return &Controller{
		runner:   runner,
		state:    StateNoReport,
		expanded: make(map[string]bool),
	}
}

// State returns the current view lifecycle state.
func (c *Controller) State() State { return c.state }

// Report returns the loaded report, or nil outside the Loaded state.
func (c *Controller) Report() *types.Report {
	if c.state != StateLoaded {
		return nil
	}
	return c.report
}

// Begin transitions to Loading. It returns false if a run is already in
// flight; at most one acquisition runs at a time.
func (c *Controller) Begin() bool {
	if c.state == StateLoading {
		return false
	}
	c.state = StateLoading
	return true
}

// Finish applies the result of an acquisition started with Begin. On
// success the new report replaces the old one and derived view state
// (filter, expansion, sort) resets to defaults. On failure any previous
// report is discarded; a visible error always wins over stale data.
func (c *Controller) Finish(report *types.Report, err error) {
	if err != nil {
		c.report = nil
		c.sorted = nil
		c.err = err
		c.state = StateError
		c.unchanged = false
		return
	}

	c.unchanged = c.report != nil && report.Fingerprint == c.lastFingerprint
	c.lastFingerprint = report.Fingerprint

	c.report = report
	c.err = nil
	c.filter = ""
	c.expanded = make(map[string]bool)
	c.sortKey = SortByMatch
	c.sortDir = Ascending
	c.resort()
	c.state = StateLoaded
}

// RunReport acquires a new report synchronously: Begin, run, Finish. The
// returned error is the acquisition error, if any; the controller state
// reflects it either way.
func (c *Controller) RunReport(ctx context.Context) error {
	if !c.Begin() {
		return nil
	}
	report, err := c.runner.RunReport(ctx)
	c.Finish(report, err)
	return err
}

// SetFilter updates the unit-name filter. Matching is a case-insensitive
// substring test; the empty query shows everything. The canonical sort
// order is untouched.
func (c *Controller) SetFilter(query string) {
	c.filter = query
}

// Filter returns the current filter query.
func (c *Controller) Filter() string { return c.filter }

// SetSort selects a sort key. Re-selecting the current key toggles the
// direction; a new key resets to ascending.
func (c *Controller) SetSort(key SortKey) {
	if key == c.sortKey {
		if c.sortDir == Ascending {
			c.sortDir = Descending
		} else {
			c.sortDir = Ascending
		}
	} else {
		c.sortKey = key
		c.sortDir = Ascending
	}
	c.resort()
}

// Sort returns the current sort parameters.
func (c *Controller) Sort() (SortKey, SortDirection) { return c.sortKey, c.sortDir }

// ToggleExpansion expands or collapses a unit's symbol detail. Unknown
// names are harmless; matched units never render detail regardless.
func (c *Controller) ToggleExpansion(unitName string) {
	if c.expanded[unitName] {
		delete(c.expanded, unitName)
	} else {
		c.expanded[unitName] = true
	}
}

// IsExpanded reports whether a unit's detail is expanded.
func (c *Controller) IsExpanded(unitName string) bool { return c.expanded[unitName] }

// resort rebuilds the canonical order from the report. The sort is stable
// so equal keys keep their prior relative order and repeated same-direction
// sorts are idempotent.
func (c *Controller) resort() {
	if c.report == nil {
		c.sorted = nil
		return
	}
	c.sorted = append(c.sorted[:0:0], c.report.Units...)
	key, desc := c.sortKey, c.sortDir == Descending
	sort.SliceStable(c.sorted, func(i, j int) bool {
		a, b := c.sorted[i], c.sorted[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case SortByName:
			return a.Name < b.Name
		default:
			return a.MatchPercent < b.MatchPercent
		}
	})
}

// visibleUnits applies the filter to the canonical order.
func (c *Controller) visibleUnits() []types.Unit {
	if c.filter == "" {
		return c.sorted
	}
	query := strings.ToLower(c.filter)
	var out []types.Unit
	for _, u := range c.sorted {
		if strings.Contains(strings.ToLower(u.Name), query) {
			out = append(out, u)
		}
	}
	return out
}

// ViewModel is the display projection of (report x view parameters). It is
// recomputed on every state change and holds only presentation data.
type ViewModel struct {
	State     State
	Error     string
	Summary   Summary
	Rows      []Row
	Filter    string
	SortKey   SortKey
	SortDir   SortDirection
	Unchanged bool
}

// Summary is the report-wide header.
type Summary struct {
	Progress  string // "50.00%"
	Objects   string // "1 / 2"
	Timestamp time.Time
}

// Row is one unit in the table, with symbol detail when expanded.
type Row struct {
	Name       string
	Percent    string
	Status     string
	Mismatch   bool
	Expandable bool
	Expanded   bool
	Symbols    []SymbolRow
}

// SymbolRow is one mismatching symbol in an expanded unit's detail.
type SymbolRow struct {
	Name       string
	Percent    string
	BaseSize   uint64
	TargetSize uint64
}

// ViewModel projects the current state for display. Summary and rows are
// only populated in the Loaded state.
func (c *Controller) ViewModel() ViewModel {
	vm := ViewModel{
		State:     c.state,
		Filter:    c.filter,
		SortKey:   c.sortKey,
		SortDir:   c.sortDir,
		Unchanged: c.unchanged,
	}

	switch c.state {
	case StateError:
		vm.Error = c.err.Error()
		return vm
	case StateLoaded:
	default:
		return vm
	}

	vm.Summary = Summary{
		Progress:  formatPercent(c.report.TotalProgress),
		Objects:   fmt.Sprintf("%d / %d", c.report.MatchedObjects, c.report.TotalObjects),
		Timestamp: c.report.Timestamp,
	}

	units := c.visibleUnits()
	vm.Rows = make([]Row, 0, len(units))
	for _, u := range units {
		row := Row{
			Name:       u.Name,
			Percent:    formatPercent(u.MatchPercent),
			Status:     "Matched",
			Mismatch:   !u.Matched(),
			Expandable: !u.Matched(),
		}
		if row.Mismatch {
			row.Status = "Mismatch"
			if c.expanded[u.Name] {
				row.Expanded = true
				for _, s := range u.Symbols {
					if s.Matched() {
						continue
					}
					row.Symbols = append(row.Symbols, SymbolRow{
						Name:       s.Name,
						Percent:    formatPercent(s.MatchPercent),
						BaseSize:   s.BaseSize,
						TargetSize: s.TargetSize,
					})
				}
			}
		}
		vm.Rows = append(vm.Rows, row)
	}

	return vm
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}
