package main

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_config01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config01. defaults and unit round trip")

	c := NewConfig()
	chk.Float64(tst, "spacing cm", 1e-12, c.SpacingCM(), defaultSpacingCM)
	chk.Float64(tst, "time step ms", 1e-12, c.TimeStepMS(), defaultTimeStepMS)
	chk.Float64(tst, "duration ms", 1e-12, c.MaxDurationMS(), defaultMaxDurationMS)

	if err := c.SetSpacingCM(2.5); err != nil {
		tst.Fatalf("SetSpacingCM: %v", err)
	}
	if err := c.SetTimeStepMS(0.5); err != nil {
		tst.Fatalf("SetTimeStepMS: %v", err)
	}
	c.SetMaxDurationMS(6)
	chk.Float64(tst, "spacing m", 1e-15, c.SpacingM(), 0.025)
	chk.Float64(tst, "spacing cm", 1e-12, c.SpacingCM(), 2.5)
	chk.Float64(tst, "time step s", 1e-15, c.TimeStepS(), 0.0005)
	chk.Float64(tst, "time step ms", 1e-12, c.TimeStepMS(), 0.5)
	chk.Float64(tst, "duration s", 1e-15, c.MaxDurationS(), 0.006)
	chk.Float64(tst, "space/time", 1e-9, c.SpaceTimeRatio(), 50)
	chk.Float64(tst, "time/space", 1e-12, c.TimeSpaceRatio(), 0.02)
	chk.Int(tst, "grid size", c.GridSize(), 40)
}

func Test_config02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config02. spacing and time step bounds")

	c := NewConfig()
	for _, cm := range []float64{minSpacingCM, 1, maxSpacingCM} {
		if err := c.SetSpacingCM(cm); err != nil {
			tst.Errorf("spacing %g cm rejected: %v", cm, err)
		}
	}
	if err := c.SetTimeStepMS(minTimeStepMS); err != nil {
		tst.Errorf("time step %g ms rejected: %v", minTimeStepMS, err)
	}

	c = NewConfig()
	bad := []float64{math.Nextafter(minSpacingCM, 0), 0, -1, math.Nextafter(maxSpacingCM, math.Inf(1)), 1e6, math.NaN()}
	for _, cm := range bad {
		err := c.SetSpacingCM(cm)
		if !errors.Is(err, ErrValidation) {
			tst.Errorf("spacing %g cm: expected validation error, got %v", cm, err)
		}
		chk.Float64(tst, "spacing unchanged", 1e-15, c.SpacingCM(), defaultSpacingCM)
	}
	for _, ms := range []float64{math.Nextafter(minTimeStepMS, 0), 0, -2, math.NaN()} {
		err := c.SetTimeStepMS(ms)
		if !errors.Is(err, ErrValidation) {
			tst.Errorf("time step %g ms: expected validation error, got %v", ms, err)
		}
		chk.Float64(tst, "time step unchanged", 1e-15, c.TimeStepMS(), defaultTimeStepMS)
	}

	var ve *ValidationError
	if err := c.SetSpacingCM(500); !errors.As(err, &ve) {
		tst.Fatalf("expected *ValidationError, got %T", err)
	}
	chk.String(tst, ve.Field, "spacing")
	chk.String(tst, ve.Reason, "too coarse")
	chk.Float64(tst, "limit", 1e-15, ve.Limit, maxSpacingCM)
	if err := c.SetSpacingCM(0.0001); !errors.As(err, &ve) {
		tst.Fatalf("expected *ValidationError, got %T", err)
	}
	chk.String(tst, ve.Reason, "too fine")
}

func Test_config03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config03. source index")

	c := NewConfig()
	x, y, z := c.SourceIndex()
	chk.Ints(tst, "fallback", []int{x, y, z}, []int{1, 1, 1})
	if _, _, _, ok := c.SourceLocationCM(); ok {
		tst.Errorf("source reported as set on a fresh config")
	}

	c.SetSourceLocationCM(40, 40, 10)
	x, y, z = c.SourceIndex()
	chk.Ints(tst, "10 cm spacing", []int{x, y, z}, []int{4, 4, 1})

	// the location is kept in centimeters, so a spacing change moves the index
	if err := c.SetSpacingCM(5); err != nil {
		tst.Fatalf("SetSpacingCM: %v", err)
	}
	x, y, z = c.SourceIndex()
	chk.Ints(tst, "5 cm spacing", []int{x, y, z}, []int{8, 8, 2})

	sx, sy, sz, ok := c.SourceLocationCM()
	if !ok {
		tst.Errorf("source not reported as set")
	}
	chk.Array(tst, "location", 1e-15, []float64{sx, sy, sz}, []float64{40, 40, 10})
}

func Test_config04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config04. validate")

	if err := NewConfig().Validate(); err != nil {
		tst.Errorf("defaults did not validate: %v", err)
	}
	var c Config
	if err := c.Validate(); !errors.Is(err, ErrValidation) {
		tst.Errorf("zero Config validated: %v", err)
	}
}
