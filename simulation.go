package main

import (
	"context"
	"strings"

	"github.com/cpmech/gosl/io"
)

// SimState is the lifecycle stage of a Simulator.
type SimState int

const (
	Unconfigured SimState = iota
	Initialized
	Running
	Complete
)

func (s SimState) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Complete:
		return "complete"
	}
	return io.Sf("SimState(%d)", int(s))
}

// Simulator owns the configuration and the two staggered grids. Pressure
// lives in one grid, velocity in the other; both are allocated by Init and
// updated in place by Step.
type Simulator struct {
	cfg    Config
	active Config
	state  SimState

	pressure Grid
	velocity Grid

	probes    []*Probe
	gpuSolver *openCLFieldSolver
}

// NewSimulator returns a Simulator carrying the default parameters.
func NewSimulator() *Simulator {
	return &Simulator{cfg: *NewConfig()}
}

// Config returns the parameters used by the next Init.
func (s *Simulator) Config() *Config {
	return &s.cfg
}

// State reports the lifecycle stage.
func (s *Simulator) State() SimState {
	return s.state
}

// PressureGrid returns the pressure-carrying grid.
func (s *Simulator) PressureGrid() *Grid { return &s.pressure }

// VelocityGrid returns the velocity-carrying grid.
func (s *Simulator) VelocityGrid() *Grid { return &s.velocity }

// Init sizes both grids for a 1 m cube at the configured spacing and resets
// their counters. It may be called again at any time to start over with the
// current parameters.
func (s *Simulator) Init() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	n := s.cfg.GridSize()
	if n < 1 {
		return &ValidationError{Field: "spacing", Value: s.cfg.SpacingCM(), Limit: maxSpacingCM, Unit: "cm", Reason: "too coarse"}
	}
	if float64(n)*float64(n)*float64(n) > maxGridNodes {
		return &ValidationError{Field: "spacing", Value: s.cfg.SpacingCM(), Limit: minSpacingCM, Unit: "cm", Reason: io.Sf("too fine for a %d^3 grid", n)}
	}
	s.active = s.cfg
	s.pressure.Resize(n, n, n, 0)
	s.velocity.Resize(n, n, n, 0)
	for _, p := range s.probes {
		p.reset()
	}
	if s.gpuSolver != nil {
		s.gpuSolver.reset()
	}
	s.state = Initialized
	return nil
}

// Source injects the pressure impulse at the configured source location.
func (s *Simulator) Source() error {
	if s.state != Initialized {
		return ErrNotInitialized
	}
	x, y, z := s.active.SourceIndex()
	s.pressure.Source(newImpulse(x, y, z, impulsePressure))
	s.state = Running
	if s.IsFullTime() {
		s.state = Complete
	}
	return nil
}

// Step advances one physical time step: velocity from pressure, then
// pressure from the new velocity.
func (s *Simulator) Step() error {
	if s.state != Running && s.state != Complete {
		return ErrNotRunning
	}
	ratio := s.active.TimeSpaceRatio()
	if s.gpuSolver != nil {
		if err := s.gpuSolver.Step(&s.velocity, &s.pressure, ratio); err != nil {
			return err
		}
	} else {
		s.velocity.UpdateVelocity(&s.pressure, ratio)
		s.pressure.UpdatePressure(&s.velocity, ratio)
	}
	for _, p := range s.probes {
		p.record(&s.pressure)
	}
	if s.IsFullTime() {
		s.state = Complete
	}
	return nil
}

// IsFullTime reports whether the pressure grid has reached the configured
// duration. It is false until a source has been injected.
func (s *Simulator) IsFullTime() bool {
	if s.state < Running {
		return false
	}
	return float64(s.pressure.Time())*s.active.TimeStepS() >= s.active.MaxDurationS()
}

// Elapsed is the physical time of the pressure grid in seconds.
func (s *Simulator) Elapsed() float64 {
	return float64(s.pressure.Time()) * s.active.TimeStepS()
}

// Run steps until IsFullTime, calling onStep after each step. The context
// is checked between steps only.
func (s *Simulator) Run(ctx context.Context, onStep func(*Simulator) error) error {
	for !s.IsFullTime() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
		if onStep != nil {
			if err := onStep(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// SliceIndex converts a display depth in centimeters into a z index.
func (s *Simulator) SliceIndex(zCM float64) int {
	cfg := &s.active
	if s.state == Unconfigured {
		cfg = &s.cfg
	}
	return int(zCM / (cmPerM * cfg.SpacingM()))
}

// Text renders the current time, the depth of slice z, and the slice.
func (s *Simulator) Text(z int) string {
	var sb strings.Builder
	sb.WriteString(io.Sf("\ntime = %.6g msecs Pressure at z = %.6g cm\n\n",
		float64(s.pressure.Time())*s.active.TimeStepMS(),
		float64(z)*s.active.SpacingM()*cmPerM))
	sb.WriteString(s.pressure.Text(z))
	return sb.String()
}

// EnableOpenCL moves Step onto an OpenCL device and returns its name.
func (s *Simulator) EnableOpenCL() (string, error) {
	solver, err := newOpenCLFieldSolver()
	if err != nil {
		return "", err
	}
	s.Close()
	s.gpuSolver = solver
	return solver.DeviceName(), nil
}

// Close releases the OpenCL solver if one was enabled.
func (s *Simulator) Close() {
	if s.gpuSolver != nil {
		s.gpuSolver.Close()
		s.gpuSolver = nil
	}
}
