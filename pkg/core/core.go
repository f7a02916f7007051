package core

import (
	"context"

	"github.com/objtrack/objtrack/internal/objdiff"
	"github.com/objtrack/objtrack/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Report = types.Report
type Unit = types.Unit
type Symbol = types.Symbol

// RunOptions configures a single report acquisition.
type RunOptions struct {
	// Binary is an explicit path to the comparison tool. Empty means look
	// it up on PATH under its default name.
	Binary string
	// Dir is the project directory the tool runs in. Empty means the
	// current directory.
	Dir string
	// Args are extra arguments appended to the tool invocation.
	Args []string
}

// RunReport invokes the comparison tool once and returns the parsed report.
// This is the stable entrypoint for other programs.
func RunReport(ctx context.Context, opts RunOptions) (*Report, error) {
	runner, err := objdiff.NewRunner(opts.Binary, opts.Dir, opts.Args)
	if err != nil {
		return nil, err
	}
	return runner.RunReport(ctx)
}

// ParseReport parses raw report JSON as emitted by the comparison tool.
// This is exposed for consumers that already have the tool's output.
func ParseReport(data []byte) (*Report, error) {
	return objdiff.Parse(data)
}
