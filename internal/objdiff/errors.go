package objdiff

import (
	"errors"
	"fmt"
)

// ErrToolNotConfigured means the comparison tool's location could not be
// resolved. The remediation is configuration, not retrying.
var ErrToolNotConfigured = errors.New("comparison tool not configured")

// ExecError means the comparison tool ran but exited non-zero. The report
// output, if any, is not trusted.
type ExecError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("comparison tool exited with code %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("comparison tool exited with code %d", e.ExitCode)
}

// MalformedReportError means the tool exited cleanly but its output could
// not be parsed into a report. Kept distinct from ExecError so users can
// tell "tool broken" from "tool produced garbage".
type MalformedReportError struct {
	Reason string
	Err    error
}

func (e *MalformedReportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed report: %s: %v", e.Reason, e.Err)
	}
	return "malformed report: " + e.Reason
}

func (e *MalformedReportError) Unwrap() error { return e.Err }

func malformed(reason string, err error) error {
	return &MalformedReportError{Reason: reason, Err: err}
}
