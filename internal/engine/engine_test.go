package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objtrack/objtrack/internal/objdiff"
	"github.com/objtrack/objtrack/internal/types"
)

// fakeRunner returns a canned report or error, counting invocations.
type fakeRunner struct {
	report *types.Report
	err    error
	calls  int
}

func (f *fakeRunner) RunReport(context.Context) (*types.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Copy so the controller never aliases the fake's fixture.
	r := *f.report
	return &r, nil
}

func sampleReport() *types.Report {
	return &types.Report{
		TotalProgress:  0.5,
		MatchedObjects: 1,
		TotalObjects:   2,
		Timestamp:      time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		Fingerprint:    42,
		Units: []types.Unit{
			{Name: "a.o", MatchPercent: 1.0},
			{Name: "b.o", MatchPercent: 0.25, Symbols: []types.Symbol{
				{Name: "fn1", MatchPercent: 0.0, BaseSize: 100, TargetSize: 120},
				{Name: "fn2", MatchPercent: 1.0, BaseSize: 40, TargetSize: 40},
			}},
		},
	}
}

func loadedController(t *testing.T, report *types.Report) *Controller {
	t.Helper()
	c := New(&fakeRunner{report: report})
	require.NoError(t, c.RunReport(context.Background()))
	require.Equal(t, StateLoaded, c.State())
	return c
}

func rowNames(vm ViewModel) []string {
	names := make([]string, len(vm.Rows))
	for i, r := range vm.Rows {
		names[i] = r.Name
	}
	return names
}

func TestLifecycle_States(t *testing.T) {
	c := New(&fakeRunner{report: sampleReport()})
	assert.Equal(t, StateNoReport, c.State())
	assert.Empty(t, c.ViewModel().Rows)

	require.True(t, c.Begin())
	assert.Equal(t, StateLoading, c.State())
	assert.False(t, c.Begin(), "second Begin while loading must refuse")

	c.Finish(sampleReport(), nil)
	assert.Equal(t, StateLoaded, c.State())
}

func TestRunReport_Error(t *testing.T) {
	c := New(&fakeRunner{err: &objdiff.ExecError{ExitCode: 1, Stderr: "boom"}})
	err := c.RunReport(context.Background())
	require.Error(t, err)

	vm := c.ViewModel()
	assert.Equal(t, StateError, vm.State)
	assert.Contains(t, vm.Error, "exited with code 1")
	assert.Empty(t, vm.Rows)
	assert.Empty(t, vm.Summary.Progress, "summary must be hidden in error state")
}

func TestRunReport_ErrorDiscardsPreviousReport(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	c := New(runner)
	require.NoError(t, c.RunReport(context.Background()))

	runner.err = errors.New("tool vanished")
	require.Error(t, c.RunReport(context.Background()))

	vm := c.ViewModel()
	assert.Equal(t, StateError, vm.State)
	assert.Empty(t, vm.Rows, "stale report must not survive a failed re-run")
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "main/GAME.o", MatchPercent: 0.1},
		{Name: "main/menu.o", MatchPercent: 0.2},
		{Name: "lib/game_util.o", MatchPercent: 0.3},
	}})

	c.SetFilter("game")
	assert.ElementsMatch(t, []string{"main/GAME.o", "lib/game_util.o"}, rowNames(c.ViewModel()))

	c.SetFilter("")
	assert.Len(t, c.ViewModel().Rows, 3, "empty query includes all units")

	c.SetFilter("no such unit")
	assert.Empty(t, c.ViewModel().Rows)
}

func TestFilter_DoesNotResort(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "b.o", MatchPercent: 0.5},
		{Name: "a.o", MatchPercent: 0.5},
		{Name: "c.o", MatchPercent: 0.5},
	}})

	// All percents tie; the stable default sort keeps report order.
	require.Equal(t, []string{"b.o", "a.o", "c.o"}, rowNames(c.ViewModel()))

	c.SetFilter(".o")
	assert.Equal(t, []string{"b.o", "a.o", "c.o"}, rowNames(c.ViewModel()))
	c.SetFilter("")
	assert.Equal(t, []string{"b.o", "a.o", "c.o"}, rowNames(c.ViewModel()))
}

func TestSort_DefaultWorstFirst(t *testing.T) {
	c := loadedController(t, sampleReport())
	key, dir := c.Sort()
	assert.Equal(t, SortByMatch, key)
	assert.Equal(t, Ascending, dir)
	assert.Equal(t, []string{"b.o", "a.o"}, rowNames(c.ViewModel()))
}

func TestSort_SameKeyTogglesDirection(t *testing.T) {
	c := loadedController(t, sampleReport())

	c.SetSort(SortByMatch)
	_, dir := c.Sort()
	assert.Equal(t, Descending, dir)
	assert.Equal(t, []string{"a.o", "b.o"}, rowNames(c.ViewModel()))

	c.SetSort(SortByMatch)
	_, dir = c.Sort()
	assert.Equal(t, Ascending, dir)
	assert.Equal(t, []string{"b.o", "a.o"}, rowNames(c.ViewModel()))
}

func TestSort_NewKeyResetsAscending(t *testing.T) {
	c := loadedController(t, sampleReport())
	c.SetSort(SortByMatch) // now descending
	c.SetSort(SortByName)

	key, dir := c.Sort()
	assert.Equal(t, SortByName, key)
	assert.Equal(t, Ascending, dir)
	assert.Equal(t, []string{"a.o", "b.o"}, rowNames(c.ViewModel()))
}

func TestSort_DescendingIsExactReverse(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "d.o", MatchPercent: 0.9},
		{Name: "a.o", MatchPercent: 0.1},
		{Name: "c.o", MatchPercent: 0.7},
		{Name: "b.o", MatchPercent: 0.3},
	}})

	asc := rowNames(c.ViewModel())
	require.Equal(t, []string{"a.o", "b.o", "c.o", "d.o"}, asc)

	c.SetSort(SortByMatch)
	desc := rowNames(c.ViewModel())
	for i := range asc {
		assert.Equal(t, asc[len(asc)-1-i], desc[i])
	}
}

func TestSort_StableWithDuplicates(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "x.o", MatchPercent: 0.5},
		{Name: "y.o", MatchPercent: 0.5},
		{Name: "z.o", MatchPercent: 0.1},
	}})

	first := rowNames(c.ViewModel())
	require.Equal(t, []string{"z.o", "x.o", "y.o"}, first)

	c.SetSort(SortByMatch) // descending
	c.SetSort(SortByMatch) // ascending again
	assert.Equal(t, first, rowNames(c.ViewModel()), "repeated same-direction sort must be idempotent")
}

func TestClassification(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "full.o", MatchPercent: 1.0},
		{Name: "almost.o", MatchPercent: 0.9999},
		{Name: "zero.o", MatchPercent: 0.0},
	}})

	for _, row := range c.ViewModel().Rows {
		if row.Name == "full.o" {
			assert.Equal(t, "Matched", row.Status)
			assert.False(t, row.Expandable)
		} else {
			assert.Equal(t, "Mismatch", row.Status, "unit %s", row.Name)
			assert.True(t, row.Expandable)
		}
	}
}

func TestExpansion_Independence(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "a.o", MatchPercent: 0.1, Symbols: []types.Symbol{{Name: "f", MatchPercent: 0}}},
		{Name: "b.o", MatchPercent: 0.2, Symbols: []types.Symbol{{Name: "g", MatchPercent: 0}}},
	}})

	before := rowNames(c.ViewModel())
	c.ToggleExpansion("a.o")

	assert.True(t, c.IsExpanded("a.o"))
	assert.False(t, c.IsExpanded("b.o"))
	assert.Equal(t, before, rowNames(c.ViewModel()), "expansion must not change filter/sort results")

	c.ToggleExpansion("a.o")
	assert.False(t, c.IsExpanded("a.o"))

	// Unknown names are a harmless no-op.
	c.ToggleExpansion("ghost.o")
	assert.True(t, c.IsExpanded("ghost.o"))
	assert.Equal(t, before, rowNames(c.ViewModel()))
}

func TestExpansion_MatchedUnitRendersNoDetail(t *testing.T) {
	c := loadedController(t, &types.Report{Units: []types.Unit{
		{Name: "done.o", MatchPercent: 1.0, Symbols: []types.Symbol{{Name: "f", MatchPercent: 0.5}}},
	}})

	c.ToggleExpansion("done.o")
	row := c.ViewModel().Rows[0]
	assert.False(t, row.Expanded)
	assert.Empty(t, row.Symbols)
}

func TestReload_ClearsDerivedState(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	c := New(runner)
	require.NoError(t, c.RunReport(context.Background()))

	c.SetFilter("b.o")
	c.SetSort(SortByName)
	c.ToggleExpansion("b.o")

	runner.report.Fingerprint = 43
	require.NoError(t, c.RunReport(context.Background()))

	assert.Empty(t, c.Filter())
	assert.False(t, c.IsExpanded("b.o"))
	key, dir := c.Sort()
	assert.Equal(t, SortByMatch, key)
	assert.Equal(t, Ascending, dir)
	assert.Equal(t, 2, runner.calls)
}

func TestReload_UnchangedFingerprint(t *testing.T) {
	runner := &fakeRunner{report: sampleReport()}
	c := New(runner)
	require.NoError(t, c.RunReport(context.Background()))
	assert.False(t, c.ViewModel().Unchanged)

	require.NoError(t, c.RunReport(context.Background()))
	assert.True(t, c.ViewModel().Unchanged)

	runner.report.Fingerprint = 7
	require.NoError(t, c.RunReport(context.Background()))
	assert.False(t, c.ViewModel().Unchanged)
}

// The concrete end-to-end scenario from the design discussion.
func TestViewModel_Scenario(t *testing.T) {
	c := loadedController(t, sampleReport())
	vm := c.ViewModel()

	assert.Equal(t, "50.00%", vm.Summary.Progress)
	assert.Equal(t, "1 / 2", vm.Summary.Objects)

	require.Equal(t, []string{"b.o", "a.o"}, rowNames(vm))
	assert.False(t, vm.Rows[1].Expandable, "a.o is fully matched and never expandable")

	c.ToggleExpansion("b.o")
	vm = c.ViewModel()
	row := vm.Rows[0]
	require.True(t, row.Expanded)
	require.Len(t, row.Symbols, 1, "fn2 is fully matched and omitted from detail")
	sym := row.Symbols[0]
	assert.Equal(t, "fn1", sym.Name)
	assert.Equal(t, "0.00%", sym.Percent)
	assert.Equal(t, uint64(100), sym.BaseSize)
	assert.Equal(t, uint64(120), sym.TargetSize)
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{0, "0.00%"},
		{0.25, "25.00%"},
		{0.9999, "99.99%"},
		{1, "100.00%"},
		{0.33333, "33.33%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatPercent(tt.fraction))
	}
}
