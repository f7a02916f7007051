// Package objdiff invokes the external comparison tool and parses its JSON
// progress report. It only returns data or structured errors; view state is
// owned entirely by the caller.
package objdiff
