package objdiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/objtrack/objtrack/internal/types"
)

// Wire shapes use pointers so a missing field is distinguishable from a
// zero value. Unknown extra fields are ignored; newer tool versions may add
// them.
type wireReport struct {
	TotalProgress  *float64       `json:"totalProgress"`
	MatchedObjects *int64         `json:"matchedObjects"`
	TotalObjects   *int64         `json:"totalObjects"`
	Timestamp      *wireTimestamp `json:"timestamp"`
	Units          *[]wireUnit    `json:"units"`
}

type wireUnit struct {
	Name         *string      `json:"name"`
	MatchPercent *float64     `json:"matchPercent"`
	Symbols      []wireSymbol `json:"symbols"`
}

type wireSymbol struct {
	Name         *string  `json:"name"`
	MatchPercent *float64 `json:"matchPercent"`
	BaseSize     *int64   `json:"baseSize"`
	TargetSize   *int64   `json:"targetSize"`
}

// wireTimestamp accepts either an RFC 3339 string or a unix-seconds number.
type wireTimestamp struct {
	time.Time
}

func (t *wireTimestamp) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			if parsed, err = time.Parse(time.RFC3339Nano, s); err != nil {
				return fmt.Errorf("timestamp %q is not RFC 3339", s)
			}
		}
		t.Time = parsed
		return nil
	}
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is not a number", b)
	}
	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * float64(time.Second))
	t.Time = time.Unix(sec, nsec)
	return nil
}

// Parse decodes and validates the comparison tool's JSON report. Any
// deviation from the expected shape yields a MalformedReportError.
func Parse(data []byte) (*types.Report, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, malformed("empty output", nil)
	}

	var wire wireReport
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, malformed("invalid JSON", err)
	}

	switch {
	case wire.TotalProgress == nil:
		return nil, malformed("missing totalProgress", nil)
	case *wire.TotalProgress < 0 || *wire.TotalProgress > 1:
		return nil, malformed(fmt.Sprintf("totalProgress %v outside [0,1]", *wire.TotalProgress), nil)
	case wire.MatchedObjects == nil:
		return nil, malformed("missing matchedObjects", nil)
	case wire.TotalObjects == nil:
		return nil, malformed("missing totalObjects", nil)
	case *wire.MatchedObjects < 0 || *wire.TotalObjects < 0:
		return nil, malformed("negative object count", nil)
	case *wire.MatchedObjects > *wire.TotalObjects:
		return nil, malformed(fmt.Sprintf("matchedObjects %d exceeds totalObjects %d", *wire.MatchedObjects, *wire.TotalObjects), nil)
	case wire.Timestamp == nil:
		return nil, malformed("missing timestamp", nil)
	case wire.Units == nil:
		return nil, malformed("missing units", nil)
	}

	report := &types.Report{
		TotalProgress:  *wire.TotalProgress,
		MatchedObjects: int(*wire.MatchedObjects),
		TotalObjects:   int(*wire.TotalObjects),
		Timestamp:      wire.Timestamp.Time,
		Units:          make([]types.Unit, 0, len(*wire.Units)),
		Fingerprint:    xxhash.Sum64(data),
	}

	for i, wu := range *wire.Units {
		unit, err := convertUnit(i, wu)
		if err != nil {
			return nil, err
		}
		report.Units = append(report.Units, unit)
	}

	return report, nil
}

func convertUnit(idx int, wu wireUnit) (types.Unit, error) {
	var unit types.Unit
	switch {
	case wu.Name == nil || *wu.Name == "":
		return unit, malformed(fmt.Sprintf("unit %d has no name", idx), nil)
	case wu.MatchPercent == nil:
		return unit, malformed(fmt.Sprintf("unit %q missing matchPercent", *wu.Name), nil)
	case *wu.MatchPercent < 0 || *wu.MatchPercent > 1:
		return unit, malformed(fmt.Sprintf("unit %q matchPercent %v outside [0,1]", *wu.Name, *wu.MatchPercent), nil)
	}

	unit.Name = *wu.Name
	unit.MatchPercent = *wu.MatchPercent
	unit.Symbols = make([]types.Symbol, 0, len(wu.Symbols))

	for j, ws := range wu.Symbols {
		switch {
		case ws.Name == nil || *ws.Name == "":
			return unit, malformed(fmt.Sprintf("unit %q symbol %d has no name", unit.Name, j), nil)
		case ws.MatchPercent == nil:
			return unit, malformed(fmt.Sprintf("symbol %q missing matchPercent", *ws.Name), nil)
		case *ws.MatchPercent < 0 || *ws.MatchPercent > 1:
			return unit, malformed(fmt.Sprintf("symbol %q matchPercent %v outside [0,1]", *ws.Name, *ws.MatchPercent), nil)
		case ws.BaseSize == nil || ws.TargetSize == nil:
			return unit, malformed(fmt.Sprintf("symbol %q missing sizes", *ws.Name), nil)
		case *ws.BaseSize < 0 || *ws.TargetSize < 0:
			return unit, malformed(fmt.Sprintf("symbol %q has negative size", *ws.Name), nil)
		}
		unit.Symbols = append(unit.Symbols, types.Symbol{
			Name:         *ws.Name,
			MatchPercent: *ws.MatchPercent,
			BaseSize:     uint64(*ws.BaseSize),
			TargetSize:   uint64(*ws.TargetSize),
		})
	}

	return unit, nil
}
