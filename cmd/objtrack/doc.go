// Package objtrack provides the command-line interface for the objtrack
// tool. It configures subcommands (report, tui, completion), parses flags,
// and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/objtrack/objtrack/cmd/objtrack"
//	func main() { objtrack.Execute() }
package objtrack
