// Package config loads the analysis configuration file used by the
// command line tools:
//
//	[analysis]
//	max_seconds = 60
//	target_sample_rate = 22050
//	bin_duration = 0.01
//	waveform_mode = "peak"
//	spectral = true
//	spectrum = true
//
//	[profile]
//	base = "snare"
//	threshold_bias = 1.5
//
//	[[sidechain]]
//	kind = "highpass"
//	freq_hz = 60
//	q = 0.707
//
// Every key is optional. A missing file yields [Default].
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/measure/spectral"
	"github.com/cwbudde/algo-drumgate/measure/waveform"
)

// ErrInvalidConfig is returned for values that cannot be applied.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the decoded configuration file.
type Config struct {
	Analysis  Analysis          `toml:"analysis"`
	Profile   *gate.ProfileFile `toml:"profile"`
	Sidechain []Stage           `toml:"sidechain"`
}

// Analysis holds the [analysis] table.
type Analysis struct {
	MaxSeconds       float64 `toml:"max_seconds"`
	TargetSampleRate float64 `toml:"target_sample_rate"`
	BinDuration      float64 `toml:"bin_duration"`
	WaveformMode     string  `toml:"waveform_mode"`
	Spectral         bool    `toml:"spectral"`
	Spectrum         bool    `toml:"spectrum"`
}

// Stage is one [[sidechain]] entry.
type Stage struct {
	Kind   string  `toml:"kind"`
	FreqHz float64 `toml:"freq_hz"`
	Q      float64 `toml:"q"`
	GainDB float64 `toml:"gain_db"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis: Analysis{
			MaxSeconds:       spectral.DefaultMaxSeconds,
			TargetSampleRate: spectral.DefaultTargetSampleRate,
			BinDuration:      waveform.DefaultBinDuration,
			WaveformMode:     waveform.ModePeak.String(),
			Spectral:         true,
			Spectrum:         true,
		},
	}
}

// Load reads the file at path. A missing file is not an error.
func Load(path string) (Config, error) {
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer fh.Close()

	return Decode(fh)
}

// Decode reads a configuration from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	c := Default()

	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks values that the analysis options would silently ignore.
func (c Config) Validate() error {
	a := c.Analysis

	switch {
	case a.TargetSampleRate <= 0:
		return fmt.Errorf("%w: target_sample_rate %v", ErrInvalidConfig, a.TargetSampleRate)
	case a.BinDuration <= 0:
		return fmt.Errorf("%w: bin_duration %v", ErrInvalidConfig, a.BinDuration)
	}

	if _, err := c.Mode(); err != nil {
		return err
	}

	_, err := c.SidechainStages()

	return err
}

// Mode returns the configured waveform mode.
func (c Config) Mode() (waveform.Mode, error) {
	switch strings.ToLower(c.Analysis.WaveformMode) {
	case "", "peak":
		return waveform.ModePeak, nil
	case "rms":
		return waveform.ModeRMS, nil
	default:
		return 0, fmt.Errorf("%w: waveform_mode %q", ErrInvalidConfig, c.Analysis.WaveformMode)
	}
}

var filterKinds = map[string]spectral.FilterKind{
	"highpass":  spectral.Highpass,
	"lowpass":   spectral.Lowpass,
	"peak":      spectral.Peak,
	"lowshelf":  spectral.LowShelf,
	"highshelf": spectral.HighShelf,
}

// SidechainStages converts the [[sidechain]] entries. It returns nil when
// the file has none, meaning the analyzer default applies.
func (c Config) SidechainStages() ([]spectral.EQStage, error) {
	if len(c.Sidechain) == 0 {
		return nil, nil
	}

	stages := make([]spectral.EQStage, len(c.Sidechain))

	for i, s := range c.Sidechain {
		kind, ok := filterKinds[strings.ToLower(s.Kind)]
		if !ok {
			return nil, fmt.Errorf("%w: sidechain %d kind %q", ErrInvalidConfig, i, s.Kind)
		}

		if s.FreqHz <= 0 {
			return nil, fmt.Errorf("%w: sidechain %d freq_hz %v", ErrInvalidConfig, i, s.FreqHz)
		}

		stages[i] = spectral.EQStage{Kind: kind, FreqHz: s.FreqHz, Q: s.Q, GainDB: s.GainDB}
	}

	return stages, nil
}

// AnalyzerOptions returns the spectral analyzer options of the file.
func (c Config) AnalyzerOptions() []spectral.Option {
	opts := []spectral.Option{
		spectral.WithMaxSeconds(c.Analysis.MaxSeconds),
		spectral.WithTargetSampleRate(c.Analysis.TargetSampleRate),
		spectral.WithSpectrum(c.Analysis.Spectrum),
	}

	if stages, err := c.SidechainStages(); err == nil && stages != nil {
		opts = append(opts, spectral.WithSidechain(stages))
	}

	return opts
}

// WaveformOptions returns the envelope extraction options of the file.
func (c Config) WaveformOptions() []waveform.Option {
	mode, _ := c.Mode()

	return []waveform.Option{
		waveform.WithBinDuration(c.Analysis.BinDuration),
		waveform.WithMode(mode),
	}
}

// ResolveProfile returns the profile of the file. A [profile] table without
// base and focus bands extends the built-in profile named fallback; no
// table selects that built-in profile unchanged.
func (c Config) ResolveProfile(fallback string) (gate.Profile, error) {
	if c.Profile == nil {
		p, ok := gate.BuiltinProfile(fallback)
		if !ok {
			return gate.Profile{}, fmt.Errorf("%w: unknown profile %q", gate.ErrInvalidProfile, fallback)
		}

		return p, nil
	}

	pf := *c.Profile
	if pf.Base == "" && len(pf.FocusBands) == 0 {
		pf.Base = fallback
	}

	return pf.Profile()
}
