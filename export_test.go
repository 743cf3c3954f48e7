package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/ctessum/cdf"
)

// finishedTestSimulator runs the three step impulse case to completion.
func finishedTestSimulator(tst *testing.T) *Simulator {
	sim := newTestSimulator(tst, 6)
	if err := sim.Init(); err != nil {
		tst.Fatalf("Init: %v", err)
	}
	if err := sim.Source(); err != nil {
		tst.Fatalf("Source: %v", err)
	}
	if err := sim.Run(context.Background(), nil); err != nil {
		tst.Fatalf("Run: %v", err)
	}
	return sim
}

func Test_export01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export01. netcdf round trip")

	sim := finishedTestSimulator(tst)
	path := filepath.Join(tst.TempDir(), "pressure.nc")
	if err := exportFile(path, sim); err != nil {
		tst.Fatalf("exportFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		tst.Fatalf("open: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		tst.Fatalf("cdf.Open: %v", err)
	}
	chk.Ints(tst, "pressure dims", ff.Header.Lengths("pressure"), []int{10, 10, 10})
	chk.Ints(tst, "x dims", ff.Header.Lengths("x"), []int{10})

	r := ff.Reader("pressure", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		tst.Fatalf("read pressure: %v", err)
	}
	data := buf.([]float64)
	chk.Int(tst, "values", len(data), 1000)
	g := sim.PressureGrid()
	for _, at := range [][3]int{{4, 4, 1}, {5, 4, 1}, {3, 3, 1}, {4, 1, 1}, {0, 0, 0}, {4, 4, 2}} {
		x, y, z := at[0], at[1], at[2]
		chk.Float64(tst, "pressure", 1e-15, data[flatIndex(x, y, z, 10, 10)], g.Node(x, y, z).Pressure)
	}

	r = ff.Reader("x", nil, nil)
	buf = r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		tst.Fatalf("read x: %v", err)
	}
	chk.Array(tst, "x", 1e-12, buf.([]float64), []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9})

	ts, ok := ff.Header.GetAttribute("", "time_s").([]float64)
	if !ok || len(ts) != 1 {
		tst.Fatalf("time_s attribute: %v", ff.Header.GetAttribute("", "time_s"))
	}
	chk.Float64(tst, "time_s", 1e-15, ts[0], 0.006)
}

func Test_export02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export02. raw layout")

	sim := finishedTestSimulator(tst)
	var buf bytes.Buffer
	if err := WriteBinary(&buf, sim); err != nil {
		tst.Fatalf("WriteBinary: %v", err)
	}
	chk.Int(tst, "bytes", buf.Len(), 3*4+6*8+1000*8)

	dims := make([]int32, 3)
	box := make([]float64, 6)
	data := make([]float64, 1000)
	for _, dst := range []any{dims, box, data} {
		if err := binary.Read(&buf, binary.LittleEndian, dst); err != nil {
			tst.Fatalf("binary.Read: %v", err)
		}
	}
	chk.Ints(tst, "dims", []int{int(dims[0]), int(dims[1]), int(dims[2])}, []int{10, 10, 10})
	chk.Array(tst, "box", 1e-12, box, []float64{0, 0, 0, 1, 1, 1})
	chk.Float64(tst, "source neighbor", 1e-9, data[flatIndex(5, 4, 1, 10, 10)], 425130.1752832)
}

func Test_export03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export03. failures")

	sim := NewSimulator()
	if err := WriteBinary(&bytes.Buffer{}, sim); !errors.Is(err, ErrNotInitialized) {
		tst.Errorf("WriteBinary before Init: %v", err)
	}

	// a failed write removes the partial file
	dir := tst.TempDir()
	for _, name := range []string{"early.raw", "early.nc"} {
		path := filepath.Join(dir, name)
		if err := exportFile(path, sim); !errors.Is(err, ErrResource) || !errors.Is(err, ErrNotInitialized) {
			tst.Errorf("exportFile %s before Init: %v", name, err)
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			tst.Errorf("%s left on disk: %v", name, err)
		}
	}

	sim = finishedTestSimulator(tst)
	path := filepath.Join(tst.TempDir(), "missing", "pressure.raw")
	err := exportFile(path, sim)
	if !errors.Is(err, ErrResource) {
		tst.Fatalf("exportFile into a missing directory: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		tst.Errorf("cause not kept: %v", err)
	}
}

func Test_export04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export04. netcdf right after the impulse")

	sim := newTestSimulator(tst, 6)
	if err := sim.Init(); err != nil {
		tst.Fatalf("Init: %v", err)
	}
	if err := sim.Source(); err != nil {
		tst.Fatalf("Source: %v", err)
	}
	path := filepath.Join(tst.TempDir(), "impulse.nc")
	if err := exportFile(path, sim); err != nil {
		tst.Fatalf("exportFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		tst.Fatalf("open: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		tst.Fatalf("cdf.Open: %v", err)
	}
	for _, axis := range []string{"x", "y", "z"} {
		r := ff.Reader(axis, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			tst.Fatalf("read %s: %v", axis, err)
		}
		vals := buf.([]float64)
		chk.Int(tst, axis+" values", len(vals), 10)
		chk.Float64(tst, axis+" last", 1e-12, vals[9], 0.9)
	}
	r := ff.Reader("pressure", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		tst.Fatalf("read pressure: %v", err)
	}
	data := buf.([]float64)
	chk.Float64(tst, "impulse", 1e-15, data[flatIndex(4, 4, 1, 10, 10)], impulsePressure)
	chk.Float64(tst, "last cell", 1e-15, data[len(data)-1], 0)
}
