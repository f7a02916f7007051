package objdiff

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/objtrack/objtrack/internal/types"
)

// Runner invokes the comparison tool and parses its report output. It has
// no side effects beyond running the subprocess; callers own all view state.
type Runner struct {
	// Binary is the resolved path to the comparison tool.
	Binary string
	// Dir is the project directory the tool runs in.
	Dir string
	// Args are extra arguments appended after the report subcommand.
	Args []string
}

// NewRunner resolves the tool location and builds a Runner for the given
// project directory.
func NewRunner(customPath, dir string, extraArgs []string) (*Runner, error) {
	bin, err := Locate(customPath)
	if err != nil {
		return nil, err
	}
	return &Runner{Binary: bin, Dir: dir, Args: extraArgs}, nil
}

// RunReport runs the tool and returns the parsed report. Errors are one of
// ErrToolNotConfigured, *ExecError, or *MalformedReportError. There is no
// timeout here; a hung tool leaves the caller waiting until ctx is done.
func (r *Runner) RunReport(ctx context.Context) (*types.Report, error) {
	if r.Binary == "" {
		return nil, ErrToolNotConfigured
	}

	args := append([]string{"report", "generate", "--format", "json"}, r.Args...)
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return nil, &ExecError{ExitCode: exitCode, Stderr: trimOutput(stderr.String())}
	}

	return Parse(stdout.Bytes())
}

// trimOutput keeps error detail readable in a status line.
func trimOutput(s string) string {
	const max = 300
	s = string(bytes.TrimSpace([]byte(s)))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
