package host

import (
	"errors"
	"sync"
	"testing"

	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/internal/testutil"
)

// countingProcessor records every call the host makes.
type countingProcessor struct {
	allocChannels int
	allocRate     float64
	reconfigs     int
	processed     int
	failures      int // remaining Reconfigure calls to fail

	settings []gate.Settings
	rate     float64
	profile  *gate.Profile
}

var errScripted = errors.New("scripted failure")

func (p *countingProcessor) Allocate(channels int, sampleRate float64) error {
	p.allocChannels, p.allocRate = channels, sampleRate
	return nil
}

func (p *countingProcessor) Reconfigure(s gate.Settings, sampleRate float64, profile *gate.Profile) error {
	p.reconfigs++

	if p.failures > 0 {
		p.failures--
		return errScripted
	}

	p.settings = append(p.settings, s)
	p.rate, p.profile = sampleRate, profile

	return nil
}

func (p *countingProcessor) Process(buf [][]float64, frames int) {
	p.processed++

	for _, ch := range buf {
		for i := range ch[:frames] {
			ch[i] *= 0.5
		}
	}
}

func (p *countingProcessor) last() gate.Settings {
	return p.settings[len(p.settings)-1]
}

func newTestHost(t *testing.T, opts ...Option) (*Host, *countingProcessor) {
	t.Helper()
	Initialize()

	proc := &countingProcessor{}

	h, err := New(append([]Option{WithProcessor(proc)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return h, proc
}

func okPull(out [][]float64, frames int) Status {
	for _, ch := range out {
		for i := range ch[:frames] {
			ch[i] = 1
		}
	}

	return StatusOK
}

func stereo(frames int) [][]float64 {
	return [][]float64{make([]float64, frames), make([]float64, frames)}
}

func TestNewRequiresInitialize(t *testing.T) {
	if _, err := New(WithRegistry(NewRegistry())); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("New() on empty registry error = %v, want ErrNotInitialized", err)
	}

	Initialize()
	Initialize()

	if names := DefaultRegistry().Names(); len(names) != 1 || names[0] != ComponentName {
		t.Fatalf("registry names = %v", names)
	}

	h, err := New()
	if err != nil {
		t.Fatalf("New() after Initialize error = %v", err)
	}

	if h.Format() != DefaultFormat || h.Allocated() {
		t.Fatalf("fresh host format=%+v allocated=%v", h.Format(), h.Allocated())
	}
}

func TestAllocateResources(t *testing.T) {
	h, proc := newTestHost(t)

	for _, f := range []Format{{0, 2}, {-1, 2}, {48000, 0}} {
		if err := h.AllocateResources(f); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("AllocateResources(%+v) error = %v, want ErrInvalidFormat", f, err)
		}
	}

	if proc.reconfigs != 0 {
		t.Fatal("invalid format reached the processor")
	}

	if err := h.AllocateResources(Format{SampleRate: 44100, Channels: 1}); err != nil {
		t.Fatalf("AllocateResources() error = %v", err)
	}

	if proc.allocChannels != 1 || proc.allocRate != 44100 {
		t.Fatalf("Allocate(%d, %v)", proc.allocChannels, proc.allocRate)
	}

	if proc.reconfigs != 1 || proc.rate != 44100 {
		t.Fatalf("priming: reconfigs=%d rate=%v", proc.reconfigs, proc.rate)
	}

	if h.LastApplied() != gate.DefaultSettings() {
		t.Fatalf("LastApplied() = %+v, want defaults", h.LastApplied())
	}

	h.DeallocateResources()

	if st := h.Render(stereo(8), 8, okPull); st != StatusNotAllocated {
		t.Fatalf("Render after deallocate = %v", st)
	}
}

func TestRenderBeforeAllocate(t *testing.T) {
	h, proc := newTestHost(t)

	pulled := false
	st := h.Render(stereo(4), 4, func([][]float64, int) Status {
		pulled = true
		return StatusOK
	})

	if st != StatusNotAllocated || pulled || proc.processed != 0 {
		t.Fatalf("status=%v pulled=%v processed=%d", st, pulled, proc.processed)
	}
}

func TestRenderPropagatesPullStatus(t *testing.T) {
	for _, want := range []Status{StatusNoData, StatusEndOfStream, StatusError, Status(42)} {
		t.Run(want.String(), func(t *testing.T) {
			h, proc := newTestHost(t)
			if err := h.AllocateResources(DefaultFormat); err != nil {
				t.Fatal(err)
			}

			h.Update(gate.Settings{ThresholdDB: -20, Attack: 0.01, Release: 0.1, Active: true}, nil)

			got := h.Render(stereo(4), 4, func([][]float64, int) Status { return want })
			if got != want {
				t.Fatalf("Render() = %v, want %v", got, want)
			}

			if proc.reconfigs != 1 || proc.processed != 0 {
				t.Fatalf("failed pull continued: reconfigs=%d processed=%d", proc.reconfigs, proc.processed)
			}
		})
	}
}

func TestRenderReconfiguresOnlyOnChange(t *testing.T) {
	h, proc := newTestHost(t)
	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	buf := stereo(16)

	for range 5 {
		if st := h.Render(buf, 16, okPull); st != StatusOK {
			t.Fatalf("Render() = %v", st)
		}
	}

	if proc.reconfigs != 1 || proc.processed != 5 {
		t.Fatalf("unchanged settings: reconfigs=%d processed=%d", proc.reconfigs, proc.processed)
	}

	s := gate.Settings{ThresholdDB: -28, Attack: 0.004, Release: 0.3, FloorDB: gate.Some(-50), Active: true}
	h.Update(s, nil)
	h.Render(buf, 16, okPull)
	h.Render(buf, 16, okPull)

	if proc.reconfigs != 2 || proc.last() != s || h.LastApplied() != s {
		t.Fatalf("after update: reconfigs=%d last=%+v", proc.reconfigs, proc.last())
	}

	h.Update(s, nil)
	h.Render(buf, 16, okPull)

	if proc.reconfigs != 2 {
		t.Fatalf("equal update reconfigured again: %d", proc.reconfigs)
	}
}

func TestRenderReadsParameterTable(t *testing.T) {
	h, proc := newTestHost(t)
	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	h.Update(gate.DefaultSettings(), nil)

	// Automation writes straight into the table.
	if err := h.Params().SetValue(ParamThreshold, -12); err != nil {
		t.Fatal(err)
	}

	if err := h.Params().SetValue(ParamFloor, gate.MinFloorDB); err != nil {
		t.Fatal(err)
	}

	h.Render(stereo(8), 8, okPull)

	got := proc.last()
	if got.ThresholdDB != -12 || got.FloorDB.Valid {
		t.Fatalf("applied %+v, want threshold -12 and no floor", got)
	}
}

func TestBypassLeavesBlockUntouched(t *testing.T) {
	Initialize()

	h, err := New()
	if err != nil {
		t.Fatal(err)
	}

	if err := h.AllocateResources(Format{SampleRate: 48000, Channels: 2}); err != nil {
		t.Fatal(err)
	}

	s := gate.Settings{ThresholdDB: -20, Attack: 0.001, Release: 0.05, FloorDB: gate.None(), Active: false}
	h.Update(s, &gate.Snare)

	left := testutil.DeterministicNoise(1, 0.01, 512)
	right := testutil.DeterministicNoise(2, 0.01, 512)
	pull := func(out [][]float64, frames int) Status {
		copy(out[0][:frames], left)
		copy(out[1][:frames], right)

		return StatusOK
	}

	buf := stereo(512)
	for range 4 {
		if st := h.Render(buf, 512, pull); st != StatusOK {
			t.Fatalf("Render() = %v", st)
		}

		testutil.RequireBitIdentical(t, buf[0], left)
		testutil.RequireBitIdentical(t, buf[1], right)
	}

	// Switching the gate on mutes the quiet noise.
	if err := h.Params().SetValue(ParamBypass, 0); err != nil {
		t.Fatal(err)
	}

	h.Render(buf, 512, pull)

	if buf[0][511] != 0 || buf[1][511] != 0 {
		t.Fatalf("active gate passed bleed: %v %v", buf[0][511], buf[1][511])
	}
}

func TestReconfigureFailureRetries(t *testing.T) {
	h, proc := newTestHost(t)
	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	before := h.LastApplied()
	s := gate.Settings{ThresholdDB: -33, Attack: 0.01, Release: 0.2, FloorDB: gate.Some(-60), Active: true}

	proc.failures = 1
	h.Update(s, nil)

	if st := h.Render(stereo(8), 8, okPull); st != StatusOK {
		t.Fatalf("Render() = %v", st)
	}

	if h.LastApplied() != before || h.ReconfigureFailures() != 1 || proc.processed != 1 {
		t.Fatalf("after failure: last=%+v failures=%d processed=%d",
			h.LastApplied(), h.ReconfigureFailures(), proc.processed)
	}

	h.Render(stereo(8), 8, okPull)

	if h.LastApplied() != s || proc.reconfigs != 3 {
		t.Fatalf("retry: last=%+v reconfigs=%d", h.LastApplied(), proc.reconfigs)
	}
}

func TestProfileChangeReconfigures(t *testing.T) {
	h, proc := newTestHost(t)
	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	s := h.Settings()
	h.Update(s, &gate.Kick)
	h.Render(stereo(8), 8, okPull)

	if proc.reconfigs != 2 || proc.profile == nil || proc.profile.Name != "kick" {
		t.Fatalf("profile not applied: reconfigs=%d profile=%v", proc.reconfigs, proc.profile)
	}

	if proc.profile == &gate.Kick {
		t.Fatal("host published the caller's profile instead of a copy")
	}

	h.Render(stereo(8), 8, okPull)

	if proc.reconfigs != 2 {
		t.Fatalf("same profile reconfigured again: %d", proc.reconfigs)
	}
}

func TestRenderZeroAllocs(t *testing.T) {
	Initialize()

	h, err := New()
	if err != nil {
		t.Fatal(err)
	}

	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	h.Update(gate.DefaultSettings(), &gate.Toms)

	src := testutil.DrumHits(100, 48000, 0.8, 0.1, 0.02, 256)
	pull := func(out [][]float64, frames int) Status {
		for _, ch := range out {
			copy(ch[:frames], src)
		}

		return StatusOK
	}
	buf := stereo(256)

	allocs := testing.AllocsPerRun(200, func() {
		h.Render(buf, 256, pull)
	})
	if allocs != 0 {
		t.Fatalf("Render allocated %v times per call", allocs)
	}
}

func TestConcurrentUpdateIsAtomic(t *testing.T) {
	h, proc := newTestHost(t)
	if err := h.AllocateResources(DefaultFormat); err != nil {
		t.Fatal(err)
	}

	a := gate.Settings{ThresholdDB: -20, Attack: 0.002, Release: 0.1, FloorDB: gate.Some(-40), Active: true}
	b := gate.Settings{ThresholdDB: -50, Attack: 0.2, Release: 1.2, FloorDB: gate.None(), Active: false}

	var wg sync.WaitGroup

	done := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}

			if i%2 == 0 {
				h.Update(a, &gate.Kick)
			} else {
				h.Update(b, nil)
			}
		}
	}()

	buf := stereo(32)
	for range 2000 {
		h.Render(buf, 32, okPull)
	}

	close(done)
	wg.Wait()

	for i, s := range proc.settings[1:] {
		if s != a && s != b {
			t.Fatalf("reconfigure %d saw a torn value set: %+v", i+1, s)
		}
	}
}

func TestFormatValidate(t *testing.T) {
	if err := DefaultFormat.Validate(); err != nil {
		t.Fatalf("DefaultFormat invalid: %v", err)
	}
}

func BenchmarkRenderStereo256(b *testing.B) {
	Initialize()

	h, _ := New()
	_ = h.AllocateResources(DefaultFormat)
	h.Update(gate.DefaultSettings(), &gate.Snare)

	src := testutil.DrumHits(180, 48000, 0.8, 0.2, 0.03, 256)
	pull := func(out [][]float64, frames int) Status {
		for _, ch := range out {
			copy(ch[:frames], src)
		}

		return StatusOK
	}
	buf := stereo(256)

	b.ReportAllocs()

	for b.Loop() {
		h.Render(buf, 256, pull)
	}
}
