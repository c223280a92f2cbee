package spectral

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drumgate/audiofile"
	"github.com/cwbudde/algo-drumgate/dsp/filter/biquad"
	"github.com/cwbudde/algo-drumgate/gate"
	timestats "github.com/cwbudde/algo-drumgate/stats/time"
)

// Analyzer defaults.
const (
	DefaultMaxSeconds       = 90.0
	DefaultTargetSampleRate = 22050.0
	DefaultBlockFrames      = 4096
)

// residualShare is the fraction of the strongest weighted band magnitude
// credited to the focus bands when computing the off-band residual.
const residualShare = 0.5

var (
	// ErrNoUsableBand is returned when no focus band yields a filter.
	ErrNoUsableBand = errors.New("spectral: no usable focus band")
	// ErrNoFrames is returned when the source produced no samples.
	ErrNoFrames = errors.New("spectral: no frames analyzed")
	// ErrDecode wraps open, conversion and read failures.
	ErrDecode = errors.New("spectral: decode failed")
)

type config struct {
	maxSeconds   float64
	targetRate   float64
	blockFrames  int
	sidechain    []EQStage
	spectrum     bool
	spectrumSize int
	open         audiofile.Opener
	log          logrus.FieldLogger
}

// Option configures an [Analyzer].
type Option func(*config)

// WithMaxSeconds limits the analyzed duration. Values <= 0 analyze the
// whole source.
func WithMaxSeconds(seconds float64) Option {
	return func(c *config) {
		c.maxSeconds = seconds
	}
}

// WithTargetSampleRate sets the analysis rate. Non-positive values are ignored.
func WithTargetSampleRate(hz float64) Option {
	return func(c *config) {
		if hz > 0 && !math.IsInf(hz, 0) {
			c.targetRate = hz
		}
	}
}

// WithBlockFrames sets the decode block size in frames.
func WithBlockFrames(frames int) Option {
	return func(c *config) {
		if frames > 0 {
			c.blockFrames = frames
		}
	}
}

// WithSidechain replaces the sidechain EQ stages. An empty slice disables
// the sidechain.
func WithSidechain(stages []EQStage) Option {
	cp := append([]EQStage(nil), stages...)

	return func(c *config) {
		c.sidechain = cp
	}
}

// WithSpectrum enables or disables the long-term spectrum descriptors.
func WithSpectrum(enabled bool) Option {
	return func(c *config) {
		c.spectrum = enabled
	}
}

// WithOpener sets how AnalyzeFile opens paths.
func WithOpener(open audiofile.Opener) Option {
	return func(c *config) {
		if open != nil {
			c.open = open
		}
	}
}

// WithLogger sets the logger for progress and failure messages.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// Analyzer produces [Snapshot]s from audio sources. It holds no per-run
// state and may be used from several goroutines at once.
type Analyzer struct {
	cfg config
}

// NewAnalyzer returns an analyzer with defaults overridden by opts.
func NewAnalyzer(opts ...Option) *Analyzer {
	cfg := config{
		maxSeconds:   DefaultMaxSeconds,
		targetRate:   DefaultTargetSampleRate,
		blockFrames:  DefaultBlockFrames,
		sidechain:    DefaultSidechain(),
		spectrum:     true,
		spectrumSize: DefaultSpectrumSize,
		open:         audiofile.Open,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.log == nil {
		cfg.log = discardLogger()
	}

	return &Analyzer{cfg: cfg}
}

// AnalyzeFile opens path and analyzes it against profile.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, profile gate.Profile) (Snapshot, error) {
	dec, err := a.cfg.open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer dec.Close()

	snap, err := a.Analyze(ctx, dec, profile)
	if err != nil {
		a.cfg.log.WithFields(logrus.Fields{
			"path":    path,
			"profile": profile.Name,
			"error":   err,
		}).Warn("spectral analysis failed")

		return Snapshot{}, err
	}

	return snap, nil
}

// Analyze streams dec and returns its snapshot. Cancelling ctx ends the
// stream early; whatever was decoded so far is analyzed. Any read error
// discards the run.
func (a *Analyzer) Analyze(ctx context.Context, dec audiofile.Decoder, profile gate.Profile) (Snapshot, error) {
	f := dec.Format()
	rate := a.cfg.targetRate

	conv, err := audiofile.NewMonoConverter(f.SampleRate, f.Channels, rate)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	run, err := a.newRun(profile, rate)
	if err != nil {
		return Snapshot{}, err
	}

	maxFrames := 0
	if a.cfg.maxSeconds > 0 {
		maxFrames = int(a.cfg.maxSeconds * rate)
	}

	_, err = audiofile.StreamMono(ctx, dec, conv, a.cfg.blockFrames, maxFrames, run.consume)

	switch {
	case err == nil:
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		a.cfg.log.WithFields(logrus.Fields{
			"profile": profile.Name,
			"frames":  run.frames,
		}).Debug("analysis interrupted, using decoded prefix")
	default:
		return Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if run.frames == 0 {
		return Snapshot{}, ErrNoFrames
	}

	snap := run.snapshot(rate)

	a.cfg.log.WithFields(logrus.Fields{
		"profile":        profile.Name,
		"seconds":        snap.Seconds(),
		"focus_to_off":   snap.FocusToOffDB(),
		"crest_db":       snap.CrestDB(),
		"centroid_hz":    snap.CentroidHz,
		"usable_bands":   len(run.bands),
		"source_rate_hz": f.SampleRate,
	}).Debug("spectral snapshot")

	return snap, nil
}

// run holds the mutable state of one analysis.
type run struct {
	bands     []Accumulator
	sidechain *biquad.Chain
	broadband timestats.Level
	offband   timestats.Level
	spectrum  *longTermSpectrum
	frames    int
}

func (a *Analyzer) newRun(profile gate.Profile, rate float64) (*run, error) {
	r := &run{bands: make([]Accumulator, 0, len(profile.FocusBands))}

	for _, b := range profile.FocusBands {
		acc, err := NewAccumulator(b, rate)
		if err != nil {
			a.cfg.log.WithFields(logrus.Fields{
				"low_hz":  b.LowHz,
				"high_hz": b.HighHz,
				"error":   err,
			}).Debug("skipping focus band")

			continue
		}

		r.bands = append(r.bands, acc)
	}

	if len(r.bands) == 0 {
		return nil, fmt.Errorf("%w: profile %q", ErrNoUsableBand, profile.Name)
	}

	sc, err := NewSidechain(a.cfg.sidechain, rate)
	if err != nil {
		return nil, err
	}

	r.sidechain = sc

	if a.cfg.spectrum {
		sp, err := newLongTermSpectrum(a.cfg.spectrumSize)
		if err != nil {
			return nil, err
		}

		r.spectrum = sp
	}

	return r, nil
}

func (r *run) consume(mono []float64) error {
	r.sidechain.ProcessBlock(mono)

	for _, x := range mono {
		r.broadband.Add(x)

		focusMax := 0.0
		for i := range r.bands {
			focusMax = math.Max(focusMax, r.bands[i].Consume(x))
		}

		r.offband.Add(math.Max(0, math.Abs(x)-focusMax*residualShare))
	}

	r.frames += len(mono)

	if r.spectrum != nil {
		return r.spectrum.Write(mono)
	}

	return nil
}

func (r *run) snapshot(rate float64) Snapshot {
	var focusSum, focusPeak float64
	for i := range r.bands {
		focusSum += r.bands[i].SumSquares()
		focusPeak = math.Max(focusPeak, r.bands[i].Peak())
	}

	snap := Snapshot{
		FocusRMS:      math.Sqrt(focusSum / float64(r.frames)),
		FocusPeak:     focusPeak,
		OffbandRMS:    r.offband.RMSOver(r.frames),
		BroadbandRMS:  r.broadband.RMSOver(r.frames),
		BroadbandPeak: r.broadband.Peak(),
		Frames:        r.frames,
		SampleRate:    rate,
	}

	if r.spectrum != nil {
		snap.CentroidHz, snap.RolloffHz = r.spectrum.Descriptors(rate)
	}

	return snap
}
