// Package engine holds the match-report view engine: report lifecycle,
// filter/sort derivation, expansion state, and the display projection. It is
// UI-agnostic; the TUI and the one-shot CLI printer are both thin front-ends
// over a Controller.
package engine
