package resample

import (
	"errors"
	"fmt"
	"math"
)

var (
	errTapsPerPhase = errors.New("resample: taps per phase must be > 0")
	errCutoffScale  = errors.New("resample: cutoff scale must be in (0,1]")
)

// designPolyphaseFIR designs a Kaiser-windowed sinc lowpass for an up/down
// converter and splits it into up phases. Tap k of the prototype lands in
// phase k%up. The prototype is scaled to a DC gain of up so that every
// phase passes DC at unity.
func designPolyphaseFIR(up, down int, cfg config) ([][]float64, int, error) {
	if up <= 0 || down <= 0 {
		return nil, 0, ErrInvalidRatio
	}

	if cfg.tapsPerPhase <= 0 {
		return nil, 0, errTapsPerPhase
	}

	if cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		return nil, 0, errCutoffScale
	}

	// Cutoff in cycles per sample of the upsampled stream.
	fc := cfg.cutoffScale * 0.5 / float64(max(up, down))
	if fc <= 0 || fc >= 0.5 {
		return nil, 0, fmt.Errorf("resample: invalid cutoff %.6f", fc)
	}

	length := cfg.tapsPerPhase * up
	half := 0.5 * float64(length-1)
	invBeta := 1 / besselI0(cfg.kaiserBeta)

	phases := make([][]float64, up)
	for p := range phases {
		phases[p] = make([]float64, 0, cfg.tapsPerPhase)
	}

	var dc float64

	for k := range length {
		t := float64(k) - half

		w := 1.0
		if length > 1 && cfg.kaiserBeta != 0 {
			r := t / half
			w = besselI0(cfg.kaiserBeta*math.Sqrt(math.Max(0, 1-r*r))) * invBeta
		}

		h := 2 * fc * normalizedSinc(2*fc*t) * w
		phases[k%up] = append(phases[k%up], h)
		dc += h
	}

	if dc == 0 {
		return nil, 0, errors.New("resample: designed zero-sum filter")
	}

	gain := float64(up) / dc
	longest := 0

	for _, phase := range phases {
		for i := range phase {
			phase[i] *= gain
		}

		longest = max(longest, len(phase))
	}

	return phases, longest, nil
}

// rationalFor returns up/down with up/down ≈ outRate/inRate and down no
// larger than maxDen. Integral rates reduce exactly when they fit.
func rationalFor(inRate, outRate float64, maxDen int) (up, down int) {
	if maxDen <= 0 {
		maxDen = defaultMaxDenominator
	}

	if inRate == math.Trunc(inRate) && outRate == math.Trunc(outRate) &&
		inRate <= math.MaxInt32 && outRate <= math.MaxInt32 {
		u, d := int(outRate), int(inRate)
		g := gcd(u, d)

		if d/g <= maxDen {
			return u / g, d / g
		}
	}

	return convergent(outRate/inRate, maxDen)
}

// convergent returns the last continued-fraction convergent of v whose
// denominator does not exceed maxDen.
func convergent(v float64, maxDen int) (num, den int) {
	if !(v > 0) || math.IsInf(v, 0) {
		return 1, 1
	}

	// h and k hold the two previous numerators and denominators.
	h0, h1 := 0.0, 1.0
	k0, k1 := 1.0, 0.0
	x := v

	for {
		a := math.Floor(x)
		h := a*h1 + h0
		k := a*k1 + k0

		if k > float64(maxDen) {
			break
		}

		h0, h1 = h1, h
		k0, k1 = k1, k

		frac := x - a
		if frac < 1e-12 {
			break
		}

		x = 1 / frac
	}

	num, den = int(math.Round(h1)), int(math.Round(k1))
	if num <= 0 || den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	a, b = max(a, -a), max(b, -b)
	for b != 0 {
		a, b = b, a%b
	}

	return max(a, 1)
}

func normalizedSinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// besselI0 evaluates the zeroth-order modified Bessel function of the
// first kind by its power series.
func besselI0(x float64) float64 {
	q := x * x / 4
	sum, term := 1.0, 1.0

	for k := 1.0; k < 64; k++ {
		term *= q / (k * k)
		sum += term

		if term < sum*1e-16 {
			break
		}
	}

	return sum
}
