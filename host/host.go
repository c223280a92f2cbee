package host

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/gate"
)

var (
	// ErrNotInitialized is returned by [New] before [Initialize].
	ErrNotInitialized = errors.New("host: not initialized")
	// ErrInvalidFormat is returned by [Host.AllocateResources].
	ErrInvalidFormat = errors.New("host: invalid format")
)

// Processor is the gate processor driven by a host. Reconfigure and
// Process are called from the render callback and must not allocate or
// block.
type Processor interface {
	Reconfigure(s gate.Settings, sampleRate float64, profile *gate.Profile) error
	Process(buf [][]float64, frames int)
}

// Allocator is implemented by processors that size their state when the
// host format is negotiated.
type Allocator interface {
	Allocate(channels int, sampleRate float64) error
}

// Status is the result of one render call.
type Status int

// Render statuses. Upstream statuses other than StatusOK are returned
// unchanged.
const (
	StatusOK Status = iota
	StatusNoData
	StatusEndOfStream
	StatusError
	StatusNotAllocated
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoData:
		return "no data"
	case StatusEndOfStream:
		return "end of stream"
	case StatusError:
		return "error"
	case StatusNotAllocated:
		return "not allocated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PullFunc fills the first frames samples of every channel of out with the
// next upstream block.
type PullFunc func(out [][]float64, frames int) Status

// Format is the negotiated stream format.
type Format struct {
	SampleRate float64
	Channels   int
}

// DefaultFormat is assumed until resources are allocated.
var DefaultFormat = Format{SampleRate: 48000, Channels: 2}

// Validate reports whether the format can be rendered.
func (f Format) Validate() error {
	if !core.IsFinite(f.SampleRate) || f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidFormat, f.SampleRate)
	}

	if f.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.Channels)
	}

	return nil
}

// Option configures a [Host].
type Option func(*config)

type config struct {
	registry  *Registry
	processor Processor
}

// WithRegistry builds the processor from r instead of [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithProcessor uses p instead of a registry-built processor.
func WithProcessor(p Processor) Option {
	return func(c *config) { c.processor = p }
}

// Host bridges render pulls to a gate processor.
//
// Update, the Params methods and Settings may be called from any goroutine.
// Render, AllocateResources, DeallocateResources and LastApplied belong to
// the audio side and must not run concurrently with each other.
type Host struct {
	proc    Processor
	params  *Params
	profile atomic.Pointer[gate.Profile]

	// render state
	format      Format
	allocated   bool
	last        gate.Settings
	lastProfile *gate.Profile

	failures atomic.Uint64
}

// New builds a host around the registered drum gate. It fails with
// [ErrNotInitialized] until [Initialize] has registered the component.
func New(opts ...Option) (*Host, error) {
	cfg := config{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, ok := cfg.registry.Lookup(ComponentName)
	if !ok {
		return nil, ErrNotInitialized
	}

	proc := cfg.processor
	if proc == nil {
		p, err := c.Factory()
		if err != nil {
			return nil, fmt.Errorf("host: build %s: %w", c.Name, err)
		}

		proc = p
	}

	return &Host{
		proc:   proc,
		params: NewParams(),
		format: DefaultFormat,
	}, nil
}

// Params returns the parameter table.
func (h *Host) Params() *Params { return h.params }

// Update writes settings and profile for the next render call. The profile
// is copied; nil clears it. Settings are clamped to the parameter ranges
// and published as one value set after the profile.
func (h *Host) Update(s gate.Settings, profile *gate.Profile) {
	if profile != nil {
		p := *profile
		p.FocusBands = append([]gate.Band(nil), profile.FocusBands...)
		h.profile.Store(&p)
	} else {
		h.profile.Store(nil)
	}

	h.params.SetValues(ValuesFromSettings(s))
}

// Settings returns the settings currently held by the parameter table.
func (h *Host) Settings() gate.Settings {
	return h.params.Snapshot().Settings()
}

// Profile returns the published profile, nil if none.
func (h *Host) Profile() *gate.Profile {
	return h.profile.Load()
}

// AllocateResources negotiates the stream format. It sizes the processor
// when it implements [Allocator] and primes it with the current settings.
// It may allocate and must not be called from the render callback.
func (h *Host) AllocateResources(f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}

	h.allocated = false

	if a, ok := h.proc.(Allocator); ok {
		if err := a.Allocate(f.Channels, f.SampleRate); err != nil {
			return fmt.Errorf("host: allocate: %w", err)
		}
	}

	s := h.Settings()
	profile := h.profile.Load()

	if err := h.proc.Reconfigure(s, f.SampleRate, profile); err != nil {
		return fmt.Errorf("host: prime processor: %w", err)
	}

	h.format = f
	h.last = s
	h.lastProfile = profile
	h.allocated = true

	return nil
}

// DeallocateResources returns the host to the unallocated state.
func (h *Host) DeallocateResources() {
	h.allocated = false
	h.last = gate.Settings{}
	h.lastProfile = nil
}

// Allocated reports whether resources are allocated.
func (h *Host) Allocated() bool { return h.allocated }

// Format returns the negotiated format, [DefaultFormat] before allocation.
func (h *Host) Format() Format { return h.format }

// LastApplied returns the settings the processor was last configured with.
func (h *Host) LastApplied() gate.Settings { return h.last }

// ReconfigureFailures counts render calls whose reconfiguration failed.
func (h *Host) ReconfigureFailures() uint64 { return h.failures.Load() }

// Render pulls one block into out and gates it in place.
//
// A failed pull is returned as is. The parameter table is the source of
// truth for the block: when its values or the published profile differ
// from what was last applied, the processor is reconfigured first. A
// failed reconfiguration keeps the previous configuration and is retried
// on the next call. A bypassed host leaves the pulled block untouched.
func (h *Host) Render(out [][]float64, frames int, pull PullFunc) Status {
	if !h.allocated {
		return StatusNotAllocated
	}

	if st := pull(out, frames); st != StatusOK {
		return st
	}

	s := h.params.cur.Load().Settings()
	profile := h.profile.Load()

	if s != h.last || profile != h.lastProfile {
		if err := h.proc.Reconfigure(s, h.format.SampleRate, profile); err != nil {
			h.failures.Add(1)
		} else {
			h.last = s
			h.lastProfile = profile
		}
	}

	if s.Active {
		h.proc.Process(out, frames)
	}

	return StatusOK
}
