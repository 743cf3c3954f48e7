package main

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Probe samples the pressure at one grid cell after every step.
type Probe struct {
	at      gridPoint
	samples []float64
}

// ProbeStats summarizes a recorded pressure trace.
type ProbeStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	RMS   float64
	Last  float64
}

// AttachProbe starts recording the pressure at grid index (x, y, z).
// Indices outside the grid read the nearest edge node.
func (s *Simulator) AttachProbe(x, y, z int) *Probe {
	p := &Probe{at: gridPoint{x: x, y: y, z: z}}
	s.probes = append(s.probes, p)
	return p
}

func (p *Probe) reset() {
	p.samples = p.samples[:0]
}

func (p *Probe) record(g *Grid) {
	p.samples = append(p.samples, g.Node(p.at.x, p.at.y, p.at.z).Pressure)
}

// Samples returns the recorded trace, one value per step.
func (p *Probe) Samples() []float64 {
	return p.samples
}

// Stats returns summary statistics of the trace. The zero value is
// returned for an empty trace.
func (p *Probe) Stats() ProbeStats {
	n := len(p.samples)
	if n == 0 {
		return ProbeStats{}
	}
	return ProbeStats{
		Count: n,
		Min:   floats.Min(p.samples),
		Max:   floats.Max(p.samples),
		Mean:  floats.Sum(p.samples) / float64(n),
		RMS:   floats.Norm(p.samples, 2) / math.Sqrt(float64(n)),
		Last:  p.samples[n-1],
	}
}

// Spectrum returns the one-sided magnitude spectrum of the trace. dt is the
// sampling interval in seconds; freqs are in Hz.
func (p *Probe) Spectrum(dt float64) (freqs, mags []float64) {
	n := len(p.samples)
	if n == 0 || dt <= 0 {
		return nil, nil
	}
	coeffs := fft.FFTReal(p.samples)
	bins := n/2 + 1
	freqs = make([]float64, bins)
	mags = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		mags[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return freqs, mags
}
