package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-drumgate/gate"
)

const (
	// Default gate parameters
	defaultGateThresholdDB = gate.DefaultThresholdDB
	defaultGateRatio       = 100.0
	defaultGateKneeDB      = 3.0
	defaultGateAttack      = gate.DefaultAttack
	defaultGateHold        = 0.0
	defaultGateRelease     = gate.DefaultRelease
	defaultGateFloorDB     = gate.DefaultFloorDB

	// Gate parameter validation ranges, times in seconds
	minGateRatio   = 1.0
	maxGateRatio   = 100.0
	minGateAttack  = 0.0001
	maxGateAttack  = 1.0
	minGateHold    = 0.0
	maxGateHold    = 5.0
	minGateRelease = 0.001
	maxGateRelease = 5.0
	minGateKneeDB  = 0.0
	maxGateKneeDB  = 24.0

	// log2Of10Div20 converts decibels to the log2 domain: log2(10) / 20
	log2Of10Div20 = 0.166096404744

	// hardMuteGain is the gain below which a gate without a floor outputs
	// exact zeros.
	hardMuteGain = 1e-6
)

// GateMetrics holds metering information for visualization and analysis.
type GateMetrics struct {
	InputPeak     float64 // Maximum detector level since last reset
	OutputPeak    float64 // Maximum output level since last reset
	GainReduction float64 // Minimum gain (maximum attenuation) since last reset
}

// Gate implements a soft-knee noise gate with log2-domain gain calculation
// and a hold stage.
//
// Signals below the threshold are attenuated by the expansion ratio down to
// the floor. With no floor the closed gate mutes completely. The default
// ratio of 100:1 with a narrow knee behaves like a hard drum gate.
//
// Parameters:
//   - Threshold: level below which gating is applied
//   - Ratio: expansion ratio (1:1 = no gating, higher = more aggressive)
//   - Knee: soft knee width for smooth transition
//   - Attack: gate opening speed in seconds
//   - Hold: minimum time in seconds the gate stays open after the level drops
//   - Release: gate closing speed in seconds
//   - Floor: gain of the closed gate, absent for a hard mute
//
// Gate is mono. [GateBank] links one detector across channels.
//
// This implementation is single-threaded and not thread-safe. None of its
// methods allocate once constructed.
type Gate struct {
	// User-configurable parameters
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attack      float64
	hold        float64
	release     float64
	floorDB     gate.Optional

	sampleRate float64

	// Envelope follower state
	peakLevel float64

	// Hold counter state
	holdCounter int

	// Computed coefficients
	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	floorLin         float64 // 0 for a hard mute
	holdSamples      int

	metrics GateMetrics
}

// NewGate creates a drum gate with the default settings of a fresh host.
//
// Sample rate must be positive and finite.
func NewGate(sampleRate float64) (*Gate, error) {
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	g := &Gate{
		thresholdDB: defaultGateThresholdDB,
		ratio:       defaultGateRatio,
		kneeDB:      defaultGateKneeDB,
		attack:      defaultGateAttack,
		hold:        defaultGateHold,
		release:     defaultGateRelease,
		floorDB:     gate.Some(defaultGateFloorDB),
		sampleRate:  sampleRate,
		metrics:     GateMetrics{GainReduction: 1.0},
	}

	g.updateCoefficients()

	return g, nil
}

// SetThreshold sets the gate threshold in dB.
func (g *Gate) SetThreshold(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("gate threshold must be finite: %f", dB)
	}

	g.thresholdDB = dB
	g.updateCoefficients()

	return nil
}

// SetRatio sets the expansion ratio in [1, 100].
func (g *Gate) SetRatio(ratio float64) error {
	if !inRange(ratio, minGateRatio, maxGateRatio) {
		return fmt.Errorf("gate ratio must be in [%f, %f]: %f",
			minGateRatio, maxGateRatio, ratio)
	}

	g.ratio = ratio
	g.updateCoefficients()

	return nil
}

// SetKnee sets the soft-knee width in dB, 0 for a hard knee.
func (g *Gate) SetKnee(kneeDB float64) error {
	if !inRange(kneeDB, minGateKneeDB, maxGateKneeDB) {
		return fmt.Errorf("gate knee must be in [%f, %f]: %f",
			minGateKneeDB, maxGateKneeDB, kneeDB)
	}

	g.kneeDB = kneeDB
	g.updateCoefficients()

	return nil
}

// SetAttack sets the attack time in seconds.
func (g *Gate) SetAttack(seconds float64) error {
	if !inRange(seconds, minGateAttack, maxGateAttack) {
		return fmt.Errorf("gate attack must be in [%f, %f]: %f",
			minGateAttack, maxGateAttack, seconds)
	}

	g.attack = seconds
	g.updateTimeConstants()

	return nil
}

// SetHold sets the hold time in seconds.
func (g *Gate) SetHold(seconds float64) error {
	if !inRange(seconds, minGateHold, maxGateHold) {
		return fmt.Errorf("gate hold must be in [%f, %f]: %f",
			minGateHold, maxGateHold, seconds)
	}

	g.hold = seconds
	g.updateTimeConstants()

	return nil
}

// SetRelease sets the release time in seconds.
func (g *Gate) SetRelease(seconds float64) error {
	if !inRange(seconds, minGateRelease, maxGateRelease) {
		return fmt.Errorf("gate release must be in [%f, %f]: %f",
			minGateRelease, maxGateRelease, seconds)
	}

	g.release = seconds
	g.updateTimeConstants()

	return nil
}

// SetFloor sets the closed-gate level in dB. An absent floor mutes.
func (g *Gate) SetFloor(floorDB gate.Optional) error {
	if floorDB.Valid && !inRange(floorDB.Value, gate.MinFloorDB, 0) {
		return fmt.Errorf("gate floor must be in [%f, 0]: %f", gate.MinFloorDB, floorDB.Value)
	}

	if !floorDB.Valid {
		floorDB = gate.None()
	}

	g.floorDB = floorDB
	g.updateCoefficients()

	return nil
}

// SetSampleRate updates sample rate and recalculates time constants.
func (g *Gate) SetSampleRate(sampleRate float64) error {
	if !validSampleRate(sampleRate) {
		return fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	g.sampleRate = sampleRate
	g.updateTimeConstants()

	return nil
}

// Threshold returns the current threshold in dB.
func (g *Gate) Threshold() float64 { return g.thresholdDB }

// Ratio returns the current expansion ratio.
func (g *Gate) Ratio() float64 { return g.ratio }

// Knee returns the current knee width in dB.
func (g *Gate) Knee() float64 { return g.kneeDB }

// Attack returns the current attack time in seconds.
func (g *Gate) Attack() float64 { return g.attack }

// Hold returns the current hold time in seconds.
func (g *Gate) Hold() float64 { return g.hold }

// Release returns the current release time in seconds.
func (g *Gate) Release() float64 { return g.release }

// Floor returns the closed-gate level in dB.
func (g *Gate) Floor() gate.Optional { return g.floorDB }

// SampleRate returns the current sample rate in Hz.
func (g *Gate) SampleRate() float64 { return g.sampleRate }

// ProcessSample processes one sample through the gate.
func (g *Gate) ProcessSample(input float64) float64 {
	output := input * g.Gain(math.Abs(input))
	g.updateOutputPeak(math.Abs(output))

	return output
}

// ProcessInPlace applies gating to buf in place.
func (g *Gate) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = g.ProcessSample(buf[i])
	}
}

// Gain advances the detector by one sample of the given level and returns
// the gain to apply to that sample.
func (g *Gate) Gain(level float64) float64 {
	if level > g.peakLevel {
		g.peakLevel += (level - g.peakLevel) * g.attackCoeff
	} else {
		g.peakLevel = level + (g.peakLevel-level)*g.releaseCoeff
	}

	gain := g.calculateGain(g.peakLevel)

	// Hold keeps the gate open after the level drops.
	if gain >= 1.0 {
		g.holdCounter = g.holdSamples
	} else if g.holdCounter > 0 {
		g.holdCounter--
		gain = 1.0
	}

	if level > g.metrics.InputPeak {
		g.metrics.InputPeak = level
	}

	if gain < g.metrics.GainReduction {
		g.metrics.GainReduction = gain
	}

	return gain
}

// CalculateOutputLevel computes the steady-state output level for a given
// input magnitude, without envelope or hold dynamics.
func (g *Gate) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)

	return inputMagnitude * g.calculateGain(inputMagnitude)
}

// Reset clears envelope follower, hold counter, and metrics.
func (g *Gate) Reset() {
	g.peakLevel = 0
	g.holdCounter = 0
	g.ResetMetrics()
}

// Metrics returns current metering values.
func (g *Gate) Metrics() GateMetrics {
	return g.metrics
}

// ResetMetrics clears metering state.
func (g *Gate) ResetMetrics() {
	g.metrics = GateMetrics{GainReduction: 1.0}
}

func (g *Gate) updateOutputPeak(level float64) {
	if level > g.metrics.OutputPeak {
		g.metrics.OutputPeak = level
	}
}

func (g *Gate) updateCoefficients() {
	g.thresholdLog2 = g.thresholdDB * log2Of10Div20
	g.kneeWidthLog2 = g.kneeDB * log2Of10Div20

	if g.kneeDB > 0 {
		g.invKneeWidthLog2 = 1.0 / g.kneeWidthLog2
	} else {
		g.invKneeWidthLog2 = 0
	}

	if g.floorDB.Valid {
		g.floorLin = mathPower10(g.floorDB.Value / 20.0)
	} else {
		g.floorLin = 0
	}

	g.updateTimeConstants()
}

func (g *Gate) updateTimeConstants() {
	// Attack: 1 - exp(-ln2 / (attack_sec * sample_rate))
	g.attackCoeff = 1.0 - math.Exp(-math.Ln2/(g.attack*g.sampleRate))

	// Release: exp(-ln2 / (release_sec * sample_rate))
	g.releaseCoeff = math.Exp(-math.Ln2 / (g.release * g.sampleRate))

	g.holdSamples = int(g.hold * g.sampleRate)
}

// calculateGain computes the gate gain for a detector level using the
// log2-domain soft knee on the undershoot side of the threshold.
func (g *Gate) calculateGain(peakLevel float64) float64 {
	if peakLevel <= 0 {
		return g.floorLin
	}

	// Undershoot: how far below threshold (positive = below)
	undershoot := g.thresholdLog2 - mathLog2(peakLevel)

	var effectiveUndershoot float64

	halfWidth := g.kneeWidthLog2 * 0.5

	switch {
	case g.kneeDB <= 0 && undershoot <= 0:
		return 1.0
	case g.kneeDB <= 0:
		effectiveUndershoot = undershoot
	case undershoot < -halfWidth:
		return 1.0
	case undershoot > halfWidth:
		effectiveUndershoot = undershoot
	default:
		scratch := undershoot + halfWidth
		effectiveUndershoot = scratch * scratch * 0.5 * g.invKneeWidthLog2
	}

	gain := mathPower2(-effectiveUndershoot * (g.ratio - 1.0))

	if gain < g.floorLin {
		return g.floorLin
	}

	if g.floorLin == 0 && gain < hardMuteGain {
		return 0
	}

	return gain
}

func validSampleRate(sampleRate float64) bool {
	return sampleRate > 0 && !math.IsNaN(sampleRate) && !math.IsInf(sampleRate, 0)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
