package gate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidProfile is returned by [Profile.Validate].
var ErrInvalidProfile = errors.New("gate: invalid profile")

// Band is one frequency range characteristic of an instrument, weighted by
// how strongly it indicates the wanted transient.
type Band struct {
	LowHz  float64
	HighHz float64
	Weight float64
}

// HoldRange bounds release suggestions, in seconds.
type HoldRange struct {
	Min float64
	Max float64
}

// Midpoint returns the center of the range.
func (h HoldRange) Midpoint() float64 {
	return (h.Min + h.Max) / 2
}

// Profile describes an instrument for analysis and gating.
type Profile struct {
	Name          string
	FocusBands    []Band
	ThresholdBias float64 // dB added to suggested thresholds
	HoldRange     HoldRange
}

// Validate checks that the profile has at least one focus band with a
// positive weight and a well-formed hold range. Band edges are checked
// against the sample rate later, when filters are built.
func (p Profile) Validate() error {
	if len(p.FocusBands) == 0 {
		return fmt.Errorf("%w: no focus bands", ErrInvalidProfile)
	}

	for i, b := range p.FocusBands {
		if !(b.Weight > 0) || math.IsInf(b.Weight, 0) {
			return fmt.Errorf("%w: band %d weight %v", ErrInvalidProfile, i, b.Weight)
		}
	}

	if math.IsNaN(p.ThresholdBias) || math.IsInf(p.ThresholdBias, 0) {
		return fmt.Errorf("%w: threshold bias %v", ErrInvalidProfile, p.ThresholdBias)
	}

	h := p.HoldRange
	if !(h.Min > 0) || !(h.Max >= h.Min) || math.IsInf(h.Max, 0) {
		return fmt.Errorf("%w: hold range [%v, %v]", ErrInvalidProfile, h.Min, h.Max)
	}

	return nil
}

// Built-in drum profiles. Focus regions follow the usual spectral homes
// of each kit piece: kick body below 180 Hz, snare between 140 Hz and
// 4.5 kHz, hats above 4 kHz, toms 80-900 Hz, cymbals above 6 kHz.
var (
	Kick = Profile{
		Name: "kick",
		FocusBands: []Band{
			{LowHz: 40, HighHz: 120, Weight: 2.0},
			{LowHz: 2000, HighHz: 5000, Weight: 1.0},
		},
		HoldRange: HoldRange{Min: 0.08, Max: 0.2},
	}

	Snare = Profile{
		Name: "snare",
		FocusBands: []Band{
			{LowHz: 150, HighHz: 400, Weight: 1.5},
			{LowHz: 1500, HighHz: 4500, Weight: 2.0},
		},
		HoldRange: HoldRange{Min: 0.06, Max: 0.16},
	}

	HiHat = Profile{
		Name: "hats",
		FocusBands: []Band{
			{LowHz: 4000, HighHz: 10000, Weight: 2.0},
		},
		ThresholdBias: 1.0,
		HoldRange:     HoldRange{Min: 0.03, Max: 0.09},
	}

	Toms = Profile{
		Name: "toms",
		FocusBands: []Band{
			{LowHz: 80, HighHz: 300, Weight: 2.0},
			{LowHz: 300, HighHz: 900, Weight: 1.0},
		},
		ThresholdBias: -1.0,
		HoldRange:     HoldRange{Min: 0.12, Max: 0.3},
	}

	Cymbals = Profile{
		Name: "cymbals",
		FocusBands: []Band{
			{LowHz: 6000, HighHz: 10500, Weight: 2.0},
		},
		ThresholdBias: -2.0,
		HoldRange:     HoldRange{Min: 0.25, Max: 0.6},
	}
)

var builtins = map[string]Profile{
	"kick":    Kick,
	"snare":   Snare,
	"hats":    HiHat,
	"hihat":   HiHat,
	"toms":    Toms,
	"tom":     Toms,
	"cymbals": Cymbals,
}

// BuiltinProfile looks up a built-in profile by case-insensitive name.
// The returned profile owns a fresh copy of its band slice.
func BuiltinProfile(name string) (Profile, bool) {
	p, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, false
	}

	p.FocusBands = append([]Band(nil), p.FocusBands...)

	return p, true
}

// BuiltinNames returns the canonical built-in profile names, sorted.
func BuiltinNames() []string {
	seen := map[string]struct{}{}
	names := make([]string, 0, len(builtins))

	for _, p := range builtins {
		if _, ok := seen[p.Name]; ok {
			continue
		}

		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}

	sort.Strings(names)

	return names
}
