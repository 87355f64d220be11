// Package sensors wraps the three environmental peripherals (thermal and
// humidity, barometric pressure, ambient color) behind simple read
// operations.
package sensors

import (
	"errors"
	"fmt"
	"time"
)

// ThermalSensor reports temperature and relative humidity.
type ThermalSensor interface {
	Begin() error
	ReadTemperature() (float64, error) // °C, raw (uncalibrated)
	ReadHumidity() (float64, error)    // % relative
}

// PressureSensor reports barometric pressure.
type PressureSensor interface {
	Begin() error
	ReadPressure() (float64, error) // kPa
}

// ColorSensor reports raw color channel counts. A sample is only valid once
// the peripheral signals availability.
type ColorSensor interface {
	Begin() error
	ColorAvailable() (bool, error)
	ReadColor() (r, g, b, a int, err error)
}

// ErrColorTimeout is returned when the color peripheral produces no sample
// within the caller's wait budget.
var ErrColorTimeout = errors.New("color sensor: no sample available before timeout")

// Some pressure sensor hardware revisions return garbage on the very first
// conversion after power-up; Init discards one reading after this delay.
const pressureSettle = 250 * time.Millisecond

const colorPollInterval = 5 * time.Millisecond

// Bank owns the three peripherals and enforces their startup order.
type Bank struct {
	thermal  ThermalSensor
	pressure PressureSensor
	color    ColorSensor

	settle    time.Duration
	colorPoll time.Duration
}

func NewBank(thermal ThermalSensor, pressure PressureSensor, color ColorSensor) *Bank {
	return &Bank{
		thermal:   thermal,
		pressure:  pressure,
		color:     color,
		settle:    pressureSettle,
		colorPoll: colorPollInterval,
	}
}

// Init performs the one-time startup handshake for each peripheral, in
// fixed order: thermal/humidity, pressure, color. Any failure is fatal to
// the caller; there is no partial operation.
func (b *Bank) Init() error {
	if err := b.thermal.Begin(); err != nil {
		return fmt.Errorf("thermal sensor init: %w", err)
	}
	if err := b.pressure.Begin(); err != nil {
		return fmt.Errorf("pressure sensor init: %w", err)
	}
	// Throwaway conversion; the value (and any transient error) is
	// deliberately discarded.
	time.Sleep(b.settle)
	b.pressure.ReadPressure()

	if err := b.color.Begin(); err != nil {
		return fmt.Errorf("color sensor init: %w", err)
	}
	return nil
}

// ReadTemperature returns the raw reading plus the calibration offset,
// applied exactly once. No clamping of the sensor's output range.
func (b *Bank) ReadTemperature(calibrationOffset float64) (float64, error) {
	t, err := b.thermal.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return t + calibrationOffset, nil
}

func (b *Bank) ReadHumidity() (float64, error) {
	return b.thermal.ReadHumidity()
}

func (b *Bank) ReadPressure() (float64, error) {
	return b.pressure.ReadPressure()
}

// ReadColor polls the peripheral until a new sample is available, then
// returns the four raw channel counts. The original hardware loop waited
// forever here; maxWait bounds the poll so a dead peripheral cannot stall
// the telemetry cycle indefinitely.
func (b *Bank) ReadColor(maxWait time.Duration) (r, g, bl, a int, err error) {
	deadline := time.Now().Add(maxWait)
	for {
		ok, err := b.color.ColorAvailable()
		if err != nil {
			return 0, 0, 0, 0, err
		}
		if ok {
			return b.color.ReadColor()
		}
		if time.Now().After(deadline) {
			return 0, 0, 0, 0, ErrColorTimeout
		}
		time.Sleep(b.colorPoll)
	}
}
