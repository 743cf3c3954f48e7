//go:build !opencl

package main

import "errors"

type openCLFieldSolver struct{}

func newOpenCLFieldSolver() (*openCLFieldSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLFieldSolver) Step(velocity, pressure *Grid, ratio float64) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLFieldSolver) reset() {}

func (s *openCLFieldSolver) Close() {}

func (s *openCLFieldSolver) DeviceName() string { return "" }
