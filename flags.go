package main

// Command line surface. Values are validated by Config when they are
// applied, not when they are parsed.
var cli struct {
	Run   runCmd   `cmd:"" default:"withargs" help:"Run one simulation and print the pressure slice."`
	Sweep sweepCmd `cmd:"" help:"Run independent simulations over several grid spacings in parallel."`
}

// RunParams are the parameters shared by both commands.
type RunParams struct {
	TimeStep float64   `name:"time-step" default:"1" help:"Time step (ms)."`
	Duration float64   `name:"duration" default:"10" help:"Simulated duration (ms)."`
	Source   []float64 `name:"source" help:"Source location x,y,z (cm). Defaults to grid index 1,1,1."`
	DisplayZ float64   `name:"display-z" default:"10" help:"Depth of the displayed slice (cm), 0 to 100."`
}

type runCmd struct {
	RunParams `embed:""`

	Spacing    float64 `name:"spacing" default:"10" help:"Grid spacing (cm)."`
	Params     string  `name:"params" type:"path" help:"Legacy parameter file; overrides spacing, time step, and duration."`
	Every      bool    `name:"every" help:"Print the slice after every step, not just at the end."`
	Export     string  `name:"export" type:"path" help:"Write the final pressure field; .nc selects NetCDF, anything else the raw layout."`
	Probe      []int   `name:"probe" help:"Record pressure at grid index x,y,z and report its spectrum."`
	OpenCL     bool    `name:"opencl" help:"Step on an OpenCL device (binary must be built with -tags opencl)."`
	CPUProfile string  `name:"cpuprofile" type:"path" help:"Write a CPU profile of the run."`
}

type sweepCmd struct {
	RunParams `embed:""`

	Spacings []float64 `name:"spacings" default:"10,5,2.5" help:"Grid spacings to run (cm)."`
	Workers  int       `name:"workers" default:"0" help:"Concurrent runs; 0 uses every CPU."`
}
