package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/alecthomas/kong"
	"github.com/cpmech/gosl/io"
)

// applySource validates and applies an optional x,y,z source location.
func (p *RunParams) applySource(cfg *Config) error {
	switch len(p.Source) {
	case 0:
		return nil
	case 3:
		cfg.SetSourceLocationCM(p.Source[0], p.Source[1], p.Source[2])
		return nil
	}
	return &ValidationError{Field: "source", Reason: io.Sf("not an x,y,z triple (%d values)", len(p.Source))}
}

func (p *RunParams) checkDisplayZ() error {
	if p.DisplayZ < 0 || p.DisplayZ > domainSizeM*cmPerM {
		return &ValidationError{Field: "display z", Value: p.DisplayZ, Limit: domainSizeM * cmPerM, Unit: "cm", Reason: "outside 0 to 100"}
	}
	return nil
}

// configure fills the simulator's Config from the flags and, when given,
// the legacy parameter file. It returns the export path to use.
func (c *runCmd) configure(sim *Simulator) (string, error) {
	cfg := sim.Config()
	if err := c.checkDisplayZ(); err != nil {
		return "", err
	}
	if err := cfg.SetSpacingCM(c.Spacing); err != nil {
		return "", err
	}
	if err := cfg.SetTimeStepMS(c.TimeStep); err != nil {
		return "", err
	}
	cfg.SetMaxDurationMS(c.Duration)
	if err := c.applySource(cfg); err != nil {
		return "", err
	}
	export := c.Export
	if c.Params != "" {
		pf, err := ReadParamFile(c.Params)
		if err != nil {
			return "", err
		}
		if err := pf.Apply(cfg); err != nil {
			return "", err
		}
		if export == "" {
			export = pf.PressureFile
		}
	}
	return export, nil
}

func (c *runCmd) Run(ctx context.Context) error {
	if c.CPUProfile != "" {
		stop, err := startCPUProfile(c.CPUProfile)
		if err != nil {
			return err
		}
		defer stop()
	}

	sim := NewSimulator()
	defer sim.Close()
	export, err := c.configure(sim)
	if err != nil {
		return err
	}
	if c.OpenCL {
		name, err := sim.EnableOpenCL()
		if err != nil {
			return err
		}
		log.Printf("OpenCL solver enabled (device: %s)", name)
	}
	var probe *Probe
	switch len(c.Probe) {
	case 0:
	case 3:
		probe = sim.AttachProbe(c.Probe[0], c.Probe[1], c.Probe[2])
	default:
		return &ValidationError{Field: "probe", Reason: io.Sf("not an x,y,z triple (%d values)", len(c.Probe))}
	}

	if err := sim.Init(); err != nil {
		return err
	}
	if err := sim.Source(); err != nil {
		return err
	}
	n := sim.Config().GridSize()
	sx, sy, sz := sim.Config().SourceIndex()
	log.Printf("Grid %dx%dx%d, source at (%d, %d, %d), coupling %g", n, n, n, sx, sy, sz, sim.Config().TimeSpaceRatio())

	z := sim.SliceIndex(c.DisplayZ)
	var onStep func(*Simulator) error
	if c.Every {
		io.Pf("%s", sim.Text(z))
		onStep = func(s *Simulator) error {
			io.Pf("%s", s.Text(z))
			return nil
		}
	}
	if err := sim.Run(ctx, onStep); err != nil {
		return err
	}
	if !c.Every {
		io.Pf("%s", sim.Text(z))
	}

	if probe != nil {
		st := probe.Stats()
		log.Printf("Probe recorded %d samples (min %.3g max %.3g mean %.3g rms %.3g last %.3g)",
			st.Count, st.Min, st.Max, st.Mean, st.RMS, st.Last)
		freqs, mags := probe.Spectrum(sim.Config().TimeStepS())
		for i := range freqs {
			io.Pf("%10.4g Hz %12.4g\n", freqs[i], mags[i])
		}
	}
	if export != "" {
		if err := exportFile(export, sim); err != nil {
			return err
		}
		log.Printf("Pressure field written to %s", export)
	}
	return nil
}

func (c *sweepCmd) Run(ctx context.Context) error {
	if err := c.checkDisplayZ(); err != nil {
		return err
	}
	if len(c.Source) != 0 && len(c.Source) != 3 {
		return &ValidationError{Field: "source", Reason: io.Sf("not an x,y,z triple (%d values)", len(c.Source))}
	}
	runs := make([]RunSpec, len(c.Spacings))
	for i, sp := range c.Spacings {
		runs[i] = RunSpec{
			Name:       io.Sf("spacing %g cm", sp),
			SpacingCM:  sp,
			TimeStepMS: c.TimeStep,
			DurationMS: c.Duration,
			SourceCM:   c.Source,
			DisplayZCM: c.DisplayZ,
		}
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results, err := Sweep(ctx, workers, runs, func(r RunResult) {
		log.Printf("Finished %s: %d steps, %.6g ms, peak %.3g", r.Spec.Name, r.Steps, r.ElapsedMS, r.Peak)
	})
	if err != nil {
		return err
	}
	for _, r := range results {
		io.Pf("\n== %s ==%s", r.Spec.Name, r.Slice)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx := kong.Parse(&cli,
		kong.Name("soundsim"),
		kong.Description("Finite-difference time-domain acoustic pressure simulator."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(); err != nil {
		log.Fatal(err)
	}
}
