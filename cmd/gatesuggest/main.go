// Command gatesuggest analyzes drum stems and suggests noise gate settings.
//
// Usage:
//
//	gatesuggest [flags] <files> ...
//
// For every file it extracts the amplitude envelope, measures how clearly
// the instrument's focus bands stand out from the rest of the spectrum and
// prints a threshold, release and floor that can be written straight into
// the gate. With --render-dir the suggestion is applied through the
// real-time host and a gated copy of the file is written.
//
// Examples:
//
//	gatesuggest --profile kick kick.wav
//	gatesuggest -p snare --max-seconds 30 --verbose snare_top.wav snare_bottom.wav
//	gatesuggest --profile-file floortom.toml --render-dir gated/ tom3.wav
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/internal/cli"
	"github.com/cwbudde/algo-drumgate/internal/config"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version     bool     `short:"v" help:"Show version information."`
	Profile     string   `short:"p" default:"snare" help:"Built-in drum profile (${profiles})."`
	ProfileFile string   `type:"existingfile" help:"TOML drum profile, overrides --profile."`
	Config      string   `short:"c" type:"path" help:"TOML analysis config (optional)."`
	MaxSeconds  float64  `help:"Seconds analyzed per file, 0 keeps the configured value."`
	SampleRate  float64  `help:"Analysis sample rate in Hz, 0 keeps the configured value."`
	NoSpectral  bool     `help:"Skip the spectral snapshot and suggest from the envelope only."`
	RenderDir   string   `type:"path" help:"Write gated copies of the inputs to this directory."`
	Verbose     bool     `help:"Log analysis details."`
	Files       []string `arg:"" name:"files" help:"WAV files to analyze." type:"existingfile" optional:""`
}

func main() {
	args := &CLI{}
	kctx := kong.Parse(args,
		kong.Name("gatesuggest"),
		kong.Description("Drum stem noise gate suggestions"),
		kong.UsageOnError(),
		kong.Vars{"profiles": strings.Join(gate.BuiltinNames(), ", ")},
		kong.Help(cli.StyledHelpPrinter("gatesuggest")),
	)

	if args.Version {
		cli.PrintVersion("gatesuggest", version)
		os.Exit(0)
	}

	if len(args.Files) == 0 {
		cli.PrintError("no input files specified")
		_ = kctx.PrintUsage(false)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if args.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	opts, err := args.options()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := newRunner(os.Stdout, log, opts)
	if r.run(ctx, args.Files) == 0 {
		stop()
		os.Exit(1)
	}
}

// options resolves the config file, the flag overrides and the profile.
func (c *CLI) options() (options, error) {
	cfg := config.Default()

	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return options{}, err
		}

		cfg = loaded
	}

	if c.MaxSeconds > 0 {
		cfg.Analysis.MaxSeconds = c.MaxSeconds
	}

	if c.SampleRate > 0 {
		cfg.Analysis.TargetSampleRate = c.SampleRate
	}

	if c.NoSpectral {
		cfg.Analysis.Spectral = false
	}

	var (
		profile gate.Profile
		err     error
	)

	if c.ProfileFile != "" {
		profile, err = gate.LoadProfile(c.ProfileFile)
	} else {
		profile, err = cfg.ResolveProfile(c.Profile)
	}

	if err != nil {
		return options{}, fmt.Errorf("profile: %w", err)
	}

	return options{cfg: cfg, profile: profile, renderDir: c.RenderDir}, nil
}
