package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Line layout of the legacy parameter file. Lines between the duration and
// the output name are reserved: sampling rate, source type, speed file,
// density file.
const (
	paramLineSpacing    = 0 // meters
	paramLineTimeStep   = 1 // milliseconds
	paramLineDuration   = 2 // seconds
	paramLineOutputFile = 7
	paramLineCount      = 8
)

// ParamFile is the content of a legacy parameter file.
type ParamFile struct {
	SpacingM     float64
	TimeStepMS   float64
	DurationS    float64
	PressureFile string
}

// ReadParamFile parses the legacy parameter file at path. An unreadable or
// truncated file is a ResourceError; an unparsable number is a
// ValidationError.
func ReadParamFile(path string) (*ParamFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	if len(lines) < paramLineCount {
		return nil, &ResourceError{Path: path, Err: chk.Err("expected %d lines, found %d", paramLineCount, len(lines))}
	}
	var pf ParamFile
	fields := []struct {
		line int
		name string
		dst  *float64
	}{
		{paramLineSpacing, "spacing", &pf.SpacingM},
		{paramLineTimeStep, "time step", &pf.TimeStepMS},
		{paramLineDuration, "duration", &pf.DurationS},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[f.line]), 64)
		if err != nil {
			return nil, &ValidationError{Field: f.name, Value: v, Reason: io.Sf("unparsable on line %d", f.line+1)}
		}
		*f.dst = v
	}
	pf.PressureFile = strings.TrimSpace(lines[paramLineOutputFile])
	return &pf, nil
}

// Apply copies the file's values into cfg. Nothing is applied unless every
// value is accepted.
func (pf *ParamFile) Apply(cfg *Config) error {
	next := *cfg
	if err := next.SetSpacingCM(pf.SpacingM * cmPerM); err != nil {
		return err
	}
	if err := next.SetTimeStepMS(pf.TimeStepMS); err != nil {
		return err
	}
	next.SetMaxDurationMS(pf.DurationS * msPerS)
	*cfg = next
	return nil
}
