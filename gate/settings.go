package gate

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-drumgate/dsp/core"
)

// Parameter ranges exposed to hosts and UIs.
const (
	MinThresholdDB = -60.0
	MaxThresholdDB = 0.0
	MinAttack      = 0.001 // seconds
	MaxAttack      = 0.5
	MinRelease     = 0.02
	MaxRelease     = 1.5
	MinFloorDB     = -120.0 // at or below: no floor, hard mute
	MaxFloorDB     = -6.0
)

// Default settings applied to a freshly created host.
const (
	DefaultThresholdDB = -40.0
	DefaultAttack      = 0.002
	DefaultRelease     = 0.15
	DefaultFloorDB     = -80.0
)

// ErrInvalidSettings is returned by [Settings.Validate].
var ErrInvalidSettings = errors.New("gate: invalid settings")

// Optional is a float64 that may be absent. The zero value is absent.
type Optional struct {
	Value float64
	Valid bool
}

// Some returns a present Optional holding v.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// Or returns the held value, or def when absent.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}

	return o.Value
}

func (o Optional) String() string {
	if !o.Valid {
		return "none"
	}

	return fmt.Sprintf("%g", o.Value)
}

// Settings configures the gate processor. Times are in seconds.
// FloorDB absent means the closed gate mutes completely.
type Settings struct {
	ThresholdDB float64
	Attack      float64
	Release     float64
	FloorDB     Optional
	Active      bool
}

// DefaultSettings returns an active gate with moderate drum settings.
func DefaultSettings() Settings {
	return Settings{
		ThresholdDB: DefaultThresholdDB,
		Attack:      DefaultAttack,
		Release:     DefaultRelease,
		FloorDB:     Some(DefaultFloorDB),
		Active:      true,
	}
}

// Clamped returns s limited to the parameter ranges. Non-finite fields
// fall back to their defaults and a floor at or below [MinFloorDB] becomes
// absent, so the result is the canonical form used for equality checks.
func (s Settings) Clamped() Settings {
	s.ThresholdDB = clampOr(s.ThresholdDB, MinThresholdDB, MaxThresholdDB, DefaultThresholdDB)
	s.Attack = clampOr(s.Attack, MinAttack, MaxAttack, DefaultAttack)
	s.Release = clampOr(s.Release, MinRelease, MaxRelease, DefaultRelease)

	switch {
	case !s.FloorDB.Valid:
		s.FloorDB = None()
	case math.IsNaN(s.FloorDB.Value) || s.FloorDB.Value <= MinFloorDB:
		s.FloorDB = None()
	default:
		s.FloorDB = Some(math.Min(s.FloorDB.Value, MaxFloorDB))
	}

	return s
}

// Validate reports whether every field is inside its parameter range.
func (s Settings) Validate() error {
	switch {
	case !inRange(s.ThresholdDB, MinThresholdDB, MaxThresholdDB):
		return fmt.Errorf("%w: threshold %v dB outside [%v, %v]", ErrInvalidSettings, s.ThresholdDB, MinThresholdDB, MaxThresholdDB)
	case !inRange(s.Attack, MinAttack, MaxAttack):
		return fmt.Errorf("%w: attack %v s outside [%v, %v]", ErrInvalidSettings, s.Attack, MinAttack, MaxAttack)
	case !inRange(s.Release, MinRelease, MaxRelease):
		return fmt.Errorf("%w: release %v s outside [%v, %v]", ErrInvalidSettings, s.Release, MinRelease, MaxRelease)
	case s.FloorDB.Valid && !inRange(s.FloorDB.Value, MinFloorDB, MaxFloorDB):
		return fmt.Errorf("%w: floor %v dB outside [%v, %v]", ErrInvalidSettings, s.FloorDB.Value, MinFloorDB, MaxFloorDB)
	}

	return nil
}

// FloorGain returns the linear gain of the closed gate, 0 for a hard mute.
func (s Settings) FloorGain() float64 {
	if !s.FloorDB.Valid {
		return 0
	}

	return core.DBToLinear(s.FloorDB.Value)
}

func clampOr(v, lo, hi, def float64) float64 {
	if !core.IsFinite(v) {
		return def
	}

	return core.Clamp(v, lo, hi)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
