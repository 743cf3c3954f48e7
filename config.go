package main

import (
	"math"
)

// Physical constants, validation limits, and defaults used by the pressure
// simulator. Spacing and time values in user units are centimeters and
// milliseconds; everything stored inside the engine is SI.
const (
	airDensity      = 1.225 // kg/m3
	airSoundSpeed   = 340.0 // m/s
	domainSizeM     = 1.0
	impulsePressure = 0.1

	minSpacingCM  = 0.001
	maxSpacingCM  = 100.0
	minTimeStepMS = 0.1
	maxGridNodes  = 1 << 27

	defaultSpacingCM     = 10.0
	defaultTimeStepMS    = 1.0
	defaultMaxDurationMS = 10.0
	defaultDisplayZCM    = 10.0

	cmPerM = 100.0
	msPerS = 1000.0
)

// fallbackSourceIndex is the impulse location used when no source location
// has been configured.
var fallbackSourceIndex = gridPoint{x: 1, y: 1, z: 1}

// Config holds the simulation parameters. Setters validate and convert on
// ingestion; a rejected value leaves the previous one in place.
type Config struct {
	spacingM     float64
	timeStepS    float64
	maxDurationS float64
	sourceCM     [3]float64
	sourceSet    bool
}

// NewConfig returns a Config carrying the defaults of the parameter form.
func NewConfig() *Config {
	return &Config{
		spacingM:     defaultSpacingCM / cmPerM,
		timeStepS:    defaultTimeStepMS / msPerS,
		maxDurationS: defaultMaxDurationMS / msPerS,
	}
}

// SetSpacingCM sets the grid spacing from a centimeter value.
func (c *Config) SetSpacingCM(cm float64) error {
	if err := checkSpacingCM(cm); err != nil {
		return err
	}
	c.spacingM = cm / cmPerM
	return nil
}

// SetTimeStepMS sets the time step from a millisecond value.
func (c *Config) SetTimeStepMS(ms float64) error {
	if err := checkTimeStepMS(ms); err != nil {
		return err
	}
	c.timeStepS = ms / msPerS
	return nil
}

// SetMaxDurationMS sets the simulated duration. Zero or negative values give
// a run that is complete as soon as the source is injected.
func (c *Config) SetMaxDurationMS(ms float64) {
	c.maxDurationS = ms / msPerS
}

// SetSourceLocationCM stores the impulse location in centimeters. It is only
// turned into grid indices on demand because the spacing may still change.
func (c *Config) SetSourceLocationCM(x, y, z float64) {
	c.sourceCM = [3]float64{x, y, z}
	c.sourceSet = true
}

// SpacingM, TimeStepS, and MaxDurationS return the stored SI values.
func (c *Config) SpacingM() float64     { return c.spacingM }
func (c *Config) TimeStepS() float64    { return c.timeStepS }
func (c *Config) MaxDurationS() float64 { return c.maxDurationS }

// SpacingCM, TimeStepMS, and MaxDurationMS convert back to user units.
func (c *Config) SpacingCM() float64     { return c.spacingM * cmPerM }
func (c *Config) TimeStepMS() float64    { return c.timeStepS * msPerS }
func (c *Config) MaxDurationMS() float64 { return c.maxDurationS * msPerS }

// SourceLocationCM returns the configured source location and whether one
// was ever set.
func (c *Config) SourceLocationCM() (x, y, z float64, ok bool) {
	return c.sourceCM[0], c.sourceCM[1], c.sourceCM[2], c.sourceSet
}

// SpaceTimeRatio is spacing (m) over time step (s).
func (c *Config) SpaceTimeRatio() float64 {
	return c.spacingM / c.timeStepS
}

// TimeSpaceRatio is time step (s) over spacing (m), the coupling
// coefficient consumed by the leapfrog update.
func (c *Config) TimeSpaceRatio() float64 {
	return c.timeStepS / c.spacingM
}

// SourceIndex converts the stored source location into grid indices using
// the current spacing.
func (c *Config) SourceIndex() (x, y, z int) {
	if !c.sourceSet {
		return fallbackSourceIndex.x, fallbackSourceIndex.y, fallbackSourceIndex.z
	}
	scale := cmPerM * c.spacingM
	return int(c.sourceCM[0] / scale), int(c.sourceCM[1] / scale), int(c.sourceCM[2] / scale)
}

// GridSize is the node count per axis for the fixed 1 m cube.
func (c *Config) GridSize() int {
	return int(math.Round(domainSizeM / c.spacingM))
}

// Validate reports a Config whose spacing or time step was never set.
// Values that went through the setters are already within bounds.
func (c *Config) Validate() error {
	if !(c.spacingM > 0) {
		return &ValidationError{Field: "spacing", Value: c.SpacingCM(), Limit: minSpacingCM, Unit: "cm", Reason: "not set"}
	}
	if !(c.timeStepS > 0) {
		return &ValidationError{Field: "time step", Value: c.TimeStepMS(), Limit: minTimeStepMS, Unit: "ms", Reason: "not set"}
	}
	return nil
}

func checkSpacingCM(cm float64) error {
	if math.IsNaN(cm) || cm < minSpacingCM {
		return &ValidationError{Field: "spacing", Value: cm, Limit: minSpacingCM, Unit: "cm", Reason: "too fine"}
	}
	if cm > maxSpacingCM {
		return &ValidationError{Field: "spacing", Value: cm, Limit: maxSpacingCM, Unit: "cm", Reason: "too coarse"}
	}
	return nil
}

func checkTimeStepMS(ms float64) error {
	if math.IsNaN(ms) || ms < minTimeStepMS {
		return &ValidationError{Field: "time step", Value: ms, Limit: minTimeStepMS, Unit: "ms", Reason: "too small"}
	}
	return nil
}
