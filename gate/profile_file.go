package gate

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// ProfileFile is the TOML representation of a [Profile]:
//
//	name = "kick"
//	threshold_bias = -1.5
//	hold_range = [0.08, 0.2]
//
//	[[focus_bands]]
//	low_hz = 40
//	high_hz = 120
//	weight = 2.0
type ProfileFile struct {
	Name          string     `toml:"name"`
	Base          string     `toml:"base"`
	ThresholdBias *float64   `toml:"threshold_bias"`
	HoldRange     []float64  `toml:"hold_range"`
	FocusBands    []BandFile `toml:"focus_bands"`
}

// BandFile is the TOML representation of a [Band]. A missing weight is 1.
type BandFile struct {
	LowHz  float64  `toml:"low_hz"`
	HighHz float64  `toml:"high_hz"`
	Weight *float64 `toml:"weight"`
}

// Profile converts the file form into a validated Profile. When Base names
// a built-in profile, fields missing from the file are taken from it.
func (f ProfileFile) Profile() (Profile, error) {
	var p Profile

	if f.Base != "" {
		base, ok := BuiltinProfile(f.Base)
		if !ok {
			return Profile{}, fmt.Errorf("%w: unknown base profile %q", ErrInvalidProfile, f.Base)
		}

		p = base
	}

	if f.Name != "" {
		p.Name = f.Name
	}

	if f.ThresholdBias != nil {
		p.ThresholdBias = *f.ThresholdBias
	}

	switch len(f.HoldRange) {
	case 0:
	case 2:
		p.HoldRange = HoldRange{Min: f.HoldRange[0], Max: f.HoldRange[1]}
	default:
		return Profile{}, fmt.Errorf("%w: hold_range needs 2 values, got %d", ErrInvalidProfile, len(f.HoldRange))
	}

	if len(f.FocusBands) > 0 {
		p.FocusBands = make([]Band, len(f.FocusBands))
		for i, b := range f.FocusBands {
			w := 1.0
			if b.Weight != nil {
				w = *b.Weight
			}

			p.FocusBands[i] = Band{LowHz: b.LowHz, HighHz: b.HighHz, Weight: w}
		}
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

// DecodeProfile reads a TOML profile from r.
func DecodeProfile(r io.Reader) (Profile, error) {
	var f ProfileFile

	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return Profile{}, fmt.Errorf("gate: decode profile: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("%w: unknown key %q", ErrInvalidProfile, undecoded[0].String())
	}

	return f.Profile()
}

// LoadProfile reads a TOML profile file.
func LoadProfile(path string) (Profile, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("gate: open profile: %w", err)
	}
	defer fh.Close()

	return DecodeProfile(fh)
}
