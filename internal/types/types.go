package types

import "time"

// Report is one comparison run over the whole project: overall progress plus
// the per-unit match records. A new run replaces the previous Report
// wholesale; nothing is persisted.
type Report struct {
	TotalProgress  float64   `json:"totalProgress"`
	MatchedObjects int       `json:"matchedObjects"`
	TotalObjects   int       `json:"totalObjects"`
	Timestamp      time.Time `json:"timestamp"`
	Units          []Unit    `json:"units"`

	// Fingerprint is a hash of the raw report bytes, used to detect that a
	// re-run produced an identical report. Not part of the wire format.
	Fingerprint uint64 `json:"-"`
}

// Unit is the match record for one compiled object file. Identity is the
// name; slice position only reflects the current sort.
type Unit struct {
	Name         string   `json:"name"`
	MatchPercent float64  `json:"matchPercent"`
	Symbols      []Symbol `json:"symbols"`
}

// Matched reports whether the unit is byte-for-byte identical to the
// reference. Anything below 1.0 is a mismatch.
func (u Unit) Matched() bool {
	return u.MatchPercent == 1.0
}

// Symbol is the match record for one function within a unit. Names are
// unique within the owning unit, not globally.
type Symbol struct {
	Name         string  `json:"name"`
	MatchPercent float64 `json:"matchPercent"`
	BaseSize     uint64  `json:"baseSize"`
	TargetSize   uint64  `json:"targetSize"`
}

// Matched reports whether the rebuilt symbol matches the reference exactly.
func (s Symbol) Matched() bool {
	return s.MatchPercent == 1.0
}
