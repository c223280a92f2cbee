package spectral

import (
	"fmt"

	"github.com/cwbudde/algo-drumgate/dsp/core"
)

// Snapshot summarizes one analysis run. Levels are linear; the focus
// values aggregate all bands with their weights applied.
type Snapshot struct {
	FocusRMS      float64
	FocusPeak     float64
	OffbandRMS    float64
	BroadbandRMS  float64
	BroadbandPeak float64

	Frames     int     // analyzed frames at SampleRate
	SampleRate float64 // analysis rate

	// Long-term spectrum descriptors, 0 when spectrum analysis was off.
	CentroidHz float64
	RolloffHz  float64
}

// FocusToOffDB returns 20*log10(FocusRMS/OffbandRMS) with both sides
// floored at 1e-6.
func (s Snapshot) FocusToOffDB() float64 {
	return core.RatioDB(s.FocusRMS, s.OffbandRMS, core.Epsilon)
}

// CrestDB returns the focus peak-to-RMS ratio in dB with both sides
// floored at 1e-6.
func (s Snapshot) CrestDB() float64 {
	return core.RatioDB(s.FocusPeak, s.FocusRMS, core.Epsilon)
}

// Seconds returns the analyzed duration.
func (s Snapshot) Seconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}

	return float64(s.Frames) / s.SampleRate
}

func (s Snapshot) String() string {
	return fmt.Sprintf("focus/off=%.1fdB crest=%.1fdB broadband=%.1fdBFS frames=%d",
		s.FocusToOffDB(), s.CrestDB(), core.LinearToDB(s.BroadbandRMS), s.Frames)
}
