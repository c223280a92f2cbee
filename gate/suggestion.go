package gate

import "fmt"

// Suggestion is an analysis result that can be written back into Settings.
// ThresholdDB lies in [-60, -1], Release (seconds) and FloorDB (dB, within
// [-90, -6]) are absent when the analysis had nothing to base them on.
type Suggestion struct {
	ThresholdDB float64
	Release     Optional
	FloorDB     Optional
}

// Apply returns base with the suggested fields written over it. Absent
// fields keep the value from base.
func (s Suggestion) Apply(base Settings) Settings {
	base.ThresholdDB = s.ThresholdDB
	if s.Release.Valid {
		base.Release = s.Release.Value
	}

	if s.FloorDB.Valid {
		base.FloorDB = s.FloorDB
	}

	return base.Clamped()
}

func (s Suggestion) String() string {
	return fmt.Sprintf("threshold=%.1fdB release=%s floor=%s", s.ThresholdDB, s.Release, s.FloorDB)
}
