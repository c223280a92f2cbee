// Package suggest proposes gate settings from an amplitude envelope.
//
// The suggester looks at the distribution of normalized envelope bins:
// a drum stem shows a dense cluster of bleed and noise bins and a sparse
// cluster of hits. The threshold is placed in the largest log-domain gap
// between the two when one exists, and above the upper percentiles
// otherwise. An optional spectral snapshot nudges the threshold by how
// clearly the focus bands stand out, and the run lengths of bins above
// the resulting opening level give the release time.
//
// Suggest is a pure function of its inputs.
package suggest

import (
	"errors"
	"math"
	"slices"

	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/measure/spectral"
	"github.com/cwbudde/algo-drumgate/measure/waveform"
)

var (
	// ErrInsufficientSignal is returned when the envelope has too few
	// usable bins or is too quiet to analyze.
	ErrInsufficientSignal = errors.New("suggest: insufficient signal")
	// ErrNoSeparableTransient is returned when neither the amplitude
	// distribution nor the spectral snapshot separates hits from bleed.
	ErrNoSeparableTransient = errors.New("suggest: no separable transient")
)

const (
	minPeakScale = 1e-4
	minSamples   = 12
	minMaxAmp    = 0.01

	// Gate-ability: any one lift is enough.
	minPeakLiftDB  = 6.0
	minTailLiftDB  = 4.0
	minFloorLiftDB = 8.0
	minFocusToOff  = 4.0

	gapSearchStart = 0.4
	minGapDB       = 3.0
	gapBodyRatio   = 1.3

	strongGapDB      = 4.5
	strongPeakLiftDB = 12.0
	strongTailLiftDB = 6.0
	strongSoften     = 0.7
	weakSoften       = 0.5

	minThresholdLinear = 0.00005
	maxThresholdOfPeak = 0.98

	minThresholdDB = -60.0
	maxThresholdDB = -1.0

	// Opening the gate a little further tolerates close-mic bleed.
	globalBiasDB = -6.0

	openLevelShare = 0.35
	minOpenLevel   = 0.01

	releaseShare = 0.85
	minRelease   = 0.12
	maxRelease   = 0.45
	holdStretch  = 2.2

	floorAboveNoiseDB  = 4.0
	floorBelowThreshDB = 12.0
	minFloorDB         = -90.0
	maxFloorDB         = -6.0
)

// Percentiles are nearest-rank percentiles of the normalized envelope.
type Percentiles struct {
	P10, P15, P50, P75, P90, P95, P99 float64
	Max                               float64
}

// Diagnostics records the intermediate values of one suggestion.
type Diagnostics struct {
	Samples     int
	PeakScale   float64
	Percentiles Percentiles
	Body        float64
	NoiseAnchor float64

	PeakLiftDB  float64
	TailLiftDB  float64
	FloorLiftDB float64

	GapDB    float64
	GapIndex int // index of the upper value in the sorted envelope
	UsesGap  bool
	Strong   bool

	ThresholdLinear  float64 // normalized, after softening
	SpectralAdjustDB float64
	OpenLevel        float64
	Segments         []int // run lengths in bins
}

// Suggest returns gate settings for the envelope w. profile and snap may
// be nil.
func Suggest(w waveform.Data, profile *gate.Profile, snap *spectral.Snapshot) (gate.Suggestion, error) {
	s, _, err := Analyze(w, profile, snap)

	return s, err
}

// Analyze is [Suggest] with the intermediate values. Diagnostics are
// filled as far as the analysis got when an error is returned.
func Analyze(w waveform.Data, profile *gate.Profile, snap *spectral.Snapshot) (gate.Suggestion, Diagnostics, error) {
	var d Diagnostics

	d.PeakScale = math.Max(w.Peak, minPeakScale)

	amps := make([]float64, 0, len(w.Bins))
	for _, v := range w.Bins {
		a := v / d.PeakScale
		if core.IsFinite(a) && a > 0 {
			amps = append(amps, a)
		}
	}

	d.Samples = len(amps)
	if len(amps) < minSamples {
		return gate.Suggestion{}, d, ErrInsufficientSignal
	}

	slices.Sort(amps)

	p := percentiles(amps)
	d.Percentiles = p

	if p.Max < minMaxAmp {
		return gate.Suggestion{}, d, ErrInsufficientSignal
	}

	d.Body = math.Max(p.P50, p.P75*0.9)
	d.PeakLiftDB = ratioDB(p.Max, d.Body)
	d.TailLiftDB = ratioDB(p.P99, p.P75)
	d.FloorLiftDB = ratioDB(p.P75, p.P10)

	gateable := d.PeakLiftDB >= minPeakLiftDB || d.TailLiftDB >= minTailLiftDB || d.FloorLiftDB >= minFloorLiftDB
	if !gateable && (snap == nil || snap.FocusToOffDB() < minFocusToOff) {
		return gate.Suggestion{}, d, ErrNoSeparableTransient
	}

	gapDB, split := largestGap(amps)
	lower, upper := amps[split-1], amps[split]
	d.GapDB, d.GapIndex = gapDB, split
	d.UsesGap = gapDB >= minGapDB && upper >= d.Body*gapBodyRatio
	d.NoiseAnchor = math.Max(p.P10, p.P15*0.8)

	var linear float64
	if d.UsesGap {
		mid := math.Max(lower+0.55*(upper-lower), d.Body*1.1)
		linear = math.Max(math.Min(upper*0.9, mid), d.NoiseAnchor*1.2)
	} else {
		linear = math.Max(max(p.P95*0.9, p.P90*1.1, d.Body*1.35), d.NoiseAnchor*1.2)
	}

	d.Strong = gapDB >= strongGapDB || d.PeakLiftDB >= strongPeakLiftDB || d.TailLiftDB >= strongTailLiftDB
	if d.Strong {
		linear *= strongSoften
	} else {
		linear *= weakSoften
	}

	linear = core.Clamp(linear, minThresholdLinear, p.Max*maxThresholdOfPeak)
	d.ThresholdLinear = linear

	thresholdDB := core.Clamp(core.LinearToDB(linear), minThresholdDB, maxThresholdDB)
	if profile != nil {
		thresholdDB += profile.ThresholdBias
	}

	if snap != nil {
		d.SpectralAdjustDB = spectralAdjustment(snap.FocusToOffDB(), snap.CrestDB())
		thresholdDB += d.SpectralAdjustDB
	}

	thresholdDB = core.Clamp(thresholdDB+globalBiasDB, minThresholdDB, maxThresholdDB)
	finalLinear := core.DBToLinear(thresholdDB)

	d.OpenLevel = math.Max(minOpenLevel, finalLinear/d.PeakScale*openLevelShare)
	d.Segments = segments(w.Bins, d.OpenLevel)

	return gate.Suggestion{
		ThresholdDB: thresholdDB,
		Release:     release(d.Segments, w.BinDuration, profile),
		FloorDB:     gate.Some(floorDB(d.NoiseAnchor, thresholdDB)),
	}, d, nil
}

// percentiles reads nearest-rank percentiles from sorted values.
func percentiles(sorted []float64) Percentiles {
	return Percentiles{
		P10: percentile(sorted, 0.10),
		P15: percentile(sorted, 0.15),
		P50: percentile(sorted, 0.50),
		P75: percentile(sorted, 0.75),
		P90: percentile(sorted, 0.90),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
		Max: sorted[len(sorted)-1],
	}
}

func percentile(sorted []float64, pct float64) float64 {
	i := int(math.Round(pct * float64(len(sorted)-1)))

	return sorted[min(max(i, 0), len(sorted)-1)]
}

// largestGap scans adjacent sorted pairs from 40% of the distribution up
// and returns the widest dB step with the index of its upper value.
func largestGap(sorted []float64) (gapDB float64, split int) {
	start := max(1, int(gapSearchStart*float64(len(sorted))))
	split = min(start, len(sorted)-1)

	for i := start; i < len(sorted); i++ {
		if g := ratioDB(sorted[i], sorted[i-1]); g > gapDB {
			gapDB, split = g, i
		}
	}

	return gapDB, split
}

func spectralAdjustment(focusToOffDB, crestDB float64) float64 {
	var adj float64

	switch {
	case focusToOffDB < 3:
		adj += 3
	case focusToOffDB < 6:
		adj += 1.5
	case focusToOffDB > 8:
		adj -= 2.5
	case focusToOffDB > 6.5:
		adj -= 1.5
	}

	switch {
	case crestDB > 14:
		adj -= 1
	case crestDB < 9:
		adj += 0.5
	}

	return adj
}

// segments returns the lengths of runs of consecutive bins at or above level.
func segments(bins []float64, level float64) []int {
	var runs []int

	run := 0

	for _, v := range bins {
		if v >= level {
			run++
			continue
		}

		if run > 0 {
			runs = append(runs, run)
			run = 0
		}
	}

	if run > 0 {
		runs = append(runs, run)
	}

	return runs
}

func release(runs []int, binDuration float64, profile *gate.Profile) gate.Optional {
	var r float64

	switch {
	case len(runs) > 0:
		r = core.Clamp(median(runs)*binDuration*releaseShare, minRelease, maxRelease)
	case profile != nil:
		r = profile.HoldRange.Midpoint()
	default:
		return gate.None()
	}

	if profile != nil {
		r = core.Clamp(r, profile.HoldRange.Min, profile.HoldRange.Max*holdStretch)
	}

	return gate.Some(r)
}

func median(runs []int) float64 {
	s := slices.Clone(runs)
	slices.Sort(s)

	n := len(s)
	if n%2 == 1 {
		return float64(s[n/2])
	}

	return float64(s[n/2-1]+s[n/2]) / 2
}

func floorDB(noiseAnchor, thresholdDB float64) float64 {
	noiseDB := core.LinearToDB(math.Max(noiseAnchor, minThresholdLinear))

	return core.Clamp(math.Min(noiseDB+floorAboveNoiseDB, thresholdDB-floorBelowThreshDB), minFloorDB, maxFloorDB)
}

func ratioDB(num, den float64) float64 {
	return core.RatioDB(num, den, core.Epsilon)
}
