package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

const defaultMaxDenominator = 4096

type config struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
	maxDen       int
}

func qualityConfig(q Quality) config {
	switch q {
	case QualityFast:
		return config{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0}
	case QualityBest:
		return config{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0}
	default:
		return config{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

// Option configures the resampler.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode. It resets
// taps, cutoff and Kaiser beta, so apply it before finer options.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		maxDen := cfg.maxDen
		*cfg = qualityConfig(q)
		cfg.maxDen = maxDen
	}
}

// WithTapsPerPhase overrides taps per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.tapsPerPhase = n
		}
	}
}

// WithMaxDenominator caps denominator size for rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func buildConfig(opts []Option) config {
	cfg := qualityConfig(QualityBalanced)
	cfg.maxDen = defaultMaxDenominator

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Resampler performs streaming rational sample-rate conversion.
type Resampler struct {
	up   int
	down int

	phases     [][]float64
	maxPhaseLn int

	phase      int
	inputIndex int
	totalIn    int
	history    []float64
	work       []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	phases, maxPhaseLn, err := designPolyphaseFIR(up, down, buildConfig(opts))
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:         up,
		down:       down,
		phases:     phases,
		maxPhaseLn: maxPhaseLn,
		history:    make([]float64, 0, max(0, maxPhaseLn-1)),
	}, nil
}

// NewForRates creates a resampler converting inRate to outRate. Integral
// rates are reduced exactly; others are approximated by a ratio whose
// denominator is capped by [WithMaxDenominator].
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	up, down := rationalFor(inRate, outRate, buildConfig(opts).maxDen)

	return NewRational(up, down, opts...)
}

// Reset clears internal filter state.
func (r *Resampler) Reset() {
	r.phase = 0
	r.inputIndex = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts an input block into a newly allocated slice and keeps
// internal state for streaming.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	return r.ProcessInto(make([]float64, 0, r.PredictOutputLen(len(input))), input)
}

// ProcessInto converts an input block, writing the output into dst[:0]
// and returning the resulting slice. dst is grown only when its capacity
// is insufficient.
func (r *Resampler) ProcessInto(dst, input []float64) []float64 {
	out := dst[:0]
	if len(input) == 0 {
		return out
	}

	need := len(r.history) + len(input)
	if cap(r.work) < need {
		r.work = make([]float64, need, need+r.maxPhaseLn)
	}

	work := r.work[:need]
	copy(work, r.history)
	copy(work[len(r.history):], input)

	baseIndex := r.totalIn - len(r.history)
	lastAvail := r.totalIn + len(input) - 1

	for r.inputIndex <= lastAvail {
		var y float64

		for k, c := range r.phases[r.phase] {
			idx := r.inputIndex - k
			if idx < baseIndex {
				break
			}

			y += c * work[idx-baseIndex]
		}

		out = append(out, y)

		r.phase += r.down
		r.inputIndex += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += len(input)

	keep := min(max(0, r.maxPhaseLn-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return out
}

// PredictOutputLen returns the number of samples the next Process call
// produces for inputLen input samples.
func (r *Resampler) PredictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	lastAvail := r.totalIn + inputLen - 1
	i := r.inputIndex
	phase := r.phase

	count := 0
	for i <= lastAvail {
		count++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return count
}

// Ratio returns reduced up/down conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}
