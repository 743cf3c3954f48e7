package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	goio "io"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// pressureSnapshot copies the pressure grid into a (z, y, x) array whose
// element order matches the grid storage.
func pressureSnapshot(g *Grid) *sparse.DenseArray {
	nx, ny, nz := g.Dims()
	data := sparse.ZerosDense(nz, ny, nx)
	g.Pressures(func(x, y, z int, p float64) {
		data.Set(p, z, y, x)
	})
	return data
}

// axisCoords returns the cell positions along one axis in meters.
func axisCoords(n int, spacing float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * spacing
	}
	return out
}

// WriteNetCDF writes the current pressure field, its axes, and the run
// parameters as a NetCDF classic file.
func WriteNetCDF(rw cdf.ReaderWriterAt, s *Simulator) error {
	if s.State() < Initialized {
		return ErrNotInitialized
	}
	g := s.PressureGrid()
	nx, ny, nz := g.Dims()
	spacing := s.active.SpacingM()

	h := cdf.NewHeader([]string{"z", "y", "x"}, []int{nz, ny, nx})
	for _, axis := range []string{"x", "y", "z"} {
		h.AddVariable(axis, []string{axis}, []float64{0})
		h.AddAttribute(axis, "units", "m")
	}
	h.AddVariable("pressure", []string{"z", "y", "x"}, []float64{0})
	h.AddAttribute("pressure", "units", "Pa")
	h.AddAttribute("", "time_s", []float64{s.Elapsed()})
	h.AddAttribute("", "spacing_m", []float64{spacing})
	h.AddAttribute("", "time_step_s", []float64{s.active.TimeStepS()})
	h.Define()

	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("creating netcdf header: %w", err)
	}
	axes := map[string]int{"x": nx, "y": ny, "z": nz}
	for _, axis := range []string{"x", "y", "z"} {
		if err := writeVariable(f, axis, axisCoords(axes[axis], spacing)); err != nil {
			return err
		}
	}
	return writeVariable(f, "pressure", pressureSnapshot(g).Elements)
}

// writeVariable writes all of data into variable name. The writer reports
// io.EOF when the last value fills the variable, so only a short count is
// treated as a failure in that case.
func writeVariable(f *cdf.File, name string, data []float64) error {
	n, err := f.Writer(name, nil, nil).Write(data)
	if err != nil && !errors.Is(err, goio.EOF) {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if n != len(data) {
		return fmt.Errorf("writing %s: wrote %d of %d values", name, n, len(data))
	}
	return nil
}

// WriteBinary writes the legacy raw export: node counts, the bounding box,
// then every pressure x fastest, all little endian.
func WriteBinary(w goio.Writer, s *Simulator) error {
	if s.State() < Initialized {
		return ErrNotInitialized
	}
	g := s.PressureGrid()
	nx, ny, nz := g.Dims()
	spacing := s.active.SpacingM()
	header := []int32{int32(nx), int32(ny), int32(nz)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing dimensions: %w", err)
	}
	box := []float64{
		0, 0, 0,
		float64(nx) * spacing, float64(ny) * spacing, float64(nz) * spacing,
	}
	if err := binary.Write(w, binary.LittleEndian, box); err != nil {
		return fmt.Errorf("writing bounding box: %w", err)
	}
	data := pressureSnapshot(g)
	if err := binary.Write(w, binary.LittleEndian, data.Elements); err != nil {
		return fmt.Errorf("writing pressure: %w", err)
	}
	return nil
}

// exportFile writes the pressure field to path, choosing NetCDF for .nc
// files and the raw layout otherwise. A failed write leaves no file behind.
func exportFile(path string, s *Simulator) error {
	f, err := os.Create(path)
	if err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	if filepath.Ext(path) == ".nc" {
		err = WriteNetCDF(f, s)
	} else {
		err = WriteBinary(f, s)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return &ResourceError{Path: path, Err: err}
	}
	return nil
}
