package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drumgate/audiofile"
	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/gate/suggest"
	"github.com/cwbudde/algo-drumgate/internal/cli"
	"github.com/cwbudde/algo-drumgate/internal/config"
	"github.com/cwbudde/algo-drumgate/measure/spectral"
	"github.com/cwbudde/algo-drumgate/measure/waveform"
)

type options struct {
	cfg       config.Config
	profile   gate.Profile
	renderDir string
}

// runner analyzes files one after another and prints a report per file.
type runner struct {
	out      io.Writer
	log      logrus.FieldLogger
	opts     options
	open     audiofile.Opener
	analyzer *spectral.Analyzer
}

func newRunner(out io.Writer, log logrus.FieldLogger, opts options) *runner {
	open := audiofile.LoggingOpener(audiofile.Open, log)
	analyzerOpts := append(opts.cfg.AnalyzerOptions(),
		spectral.WithOpener(open),
		spectral.WithLogger(log),
	)

	return &runner{
		out:      out,
		log:      log,
		opts:     opts,
		open:     open,
		analyzer: spectral.NewAnalyzer(analyzerOpts...),
	}
}

// result is the outcome for one file.
type result struct {
	path       string
	suggestion gate.Suggestion
	diag       suggest.Diagnostics
	snap       *spectral.Snapshot
	rendered   string
	render     renderStats
}

// run processes files and returns how many produced a suggestion.
func (r *runner) run(ctx context.Context, files []string) int {
	ok := 0

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		res, err := r.file(ctx, path)
		if err != nil {
			r.log.WithFields(logrus.Fields{"path": path}).WithError(err).Debug("no suggestion")
			r.printFailure(path, err)

			continue
		}

		ok++

		r.print(res)
	}

	return ok
}

func (r *runner) file(ctx context.Context, path string) (result, error) {
	res := result{path: path}
	profile := r.opts.profile

	dec, err := r.open(path)
	if err != nil {
		return res, err
	}

	w, err := waveform.FromDecoder(ctx, dec, r.opts.cfg.WaveformOptions()...)
	_ = dec.Close()

	if err != nil {
		return res, err
	}

	if r.opts.cfg.Analysis.Spectral {
		snap, err := r.analyzer.AnalyzeFile(ctx, path, profile)
		if err != nil {
			// The envelope alone still yields a suggestion.
			r.log.WithFields(logrus.Fields{"path": path}).WithError(err).Warn("spectral snapshot unavailable")
		} else {
			res.snap = &snap
		}
	}

	res.suggestion, res.diag, err = suggest.Analyze(w, &profile, res.snap)
	if err != nil {
		return res, err
	}

	r.log.WithFields(logrus.Fields{
		"path":      path,
		"bins":      len(w.Bins),
		"uses_gap":  res.diag.UsesGap,
		"gap_db":    res.diag.GapDB,
		"strong":    res.diag.Strong,
		"segments":  len(res.diag.Segments),
		"threshold": res.suggestion.ThresholdDB,
	}).Debug("suggestion")

	if r.opts.renderDir != "" {
		dst := filepath.Join(r.opts.renderDir, gatedName(path))
		settings := res.suggestion.Apply(gate.DefaultSettings())

		stats, err := renderGated(ctx, r.open, path, dst, settings, &profile)
		if err != nil {
			r.log.WithFields(logrus.Fields{"path": path, "out": dst}).WithError(err).Warn("render failed")
		} else {
			res.rendered, res.render = dst, stats
		}
	}

	return res, nil
}

func gatedName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	return strings.TrimSuffix(base, ext) + ".gated.wav"
}

func (r *runner) print(res result) {
	s := res.suggestion

	fmt.Fprintln(r.out, cli.TitleStyle.Render(res.path))
	cli.KeyValue(r.out, "profile", r.opts.profile.Name)
	cli.KeyValue(r.out, "threshold", fmt.Sprintf("%.1f dB", s.ThresholdDB))

	if s.Release.Valid {
		cli.KeyValue(r.out, "release", fmt.Sprintf("%.0f ms", s.Release.Value*1000))
	} else {
		cli.KeyValue(r.out, "release", "keep current")
	}

	if s.FloorDB.Valid {
		cli.KeyValue(r.out, "floor", fmt.Sprintf("%.1f dB", s.FloorDB.Value))
	}

	d := res.diag
	separation := fmt.Sprintf("peak lift %.1f dB, tail lift %.1f dB", d.PeakLiftDB, d.TailLiftDB)

	if d.UsesGap {
		separation = fmt.Sprintf("gap %.1f dB, ", d.GapDB) + separation
	}

	if d.Strong {
		separation += ", strong"
	}

	cli.KeyValue(r.out, "separation", separation)
	cli.KeyValue(r.out, "hits", fmt.Sprintf("%d", len(d.Segments)))

	if res.snap != nil {
		sp := fmt.Sprintf("focus/off %.1f dB, crest %.1f dB", res.snap.FocusToOffDB(), res.snap.CrestDB())
		if res.snap.CentroidHz > 0 {
			sp += fmt.Sprintf(", centroid %.0f Hz", res.snap.CentroidHz)
		}

		cli.KeyValue(r.out, "spectral", sp)

		if d.SpectralAdjustDB != 0 {
			cli.KeyValue(r.out, "adjusted", fmt.Sprintf("%+.1f dB", d.SpectralAdjustDB))
		}
	}

	if res.rendered != "" {
		cli.KeyValue(r.out, "rendered", fmt.Sprintf("%s (max reduction %.1f dB)", res.rendered, res.render.maxReductionDB()))
	}

	fmt.Fprintln(r.out)
}

func (r *runner) printFailure(path string, err error) {
	reason := err.Error()

	switch {
	case errors.Is(err, suggest.ErrInsufficientSignal):
		reason = "too little signal to analyze"
	case errors.Is(err, suggest.ErrNoSeparableTransient):
		reason = "no transient stands out from the bleed"
	case errors.Is(err, audiofile.ErrUnsupportedFormat):
		reason = "unsupported file format"
	}

	fmt.Fprintln(r.out, cli.TitleStyle.Render(path))
	fmt.Fprintf(r.out, "  %s\n\n", cli.WarnStyle.Render(reason))
}
