package biquad

// Chain runs biquad sections in series, as used for sidechain EQs.
type Chain struct {
	sections []Section
}

// NewChain builds a cascade with one section per coefficient set, in order.
func NewChain(coeffs ...Coefficients) *Chain {
	sections := make([]Section, 0, len(coeffs))
	for _, c := range coeffs {
		sections = append(sections, NewSection(c))
	}

	return &Chain{sections: sections}
}

// Len returns the number of sections.
func (c *Chain) Len() int { return len(c.sections) }

// Stable reports whether every section is stable.
func (c *Chain) Stable() bool {
	for i := range c.sections {
		if !c.sections[i].Stable() {
			return false
		}
	}

	return true
}

// ProcessSample filters one sample through every section.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in place, one section at a time.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears the state of every section.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// MagnitudeDB returns the magnitude response of the cascade in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	var db float64
	for i := range c.sections {
		db += c.sections[i].MagnitudeDB(freqHz, sampleRate)
	}

	return db
}
