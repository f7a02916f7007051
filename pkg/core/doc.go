// Package core provides a small, stable facade over objtrack's internal
// packages for external integrations. It deliberately re-exports a narrow
// API surface so build dashboards and third-party tools can depend on a
// stable import path without touching internal implementation packages.
//
// Example:
//
//	rep, err := core.RunReport(context.Background(), core.RunOptions{Dir: "."})
//	if err != nil { /* handle */ }
//	_ = core.MarshalReport(os.Stdout, rep)
package core
