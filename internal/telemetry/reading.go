package telemetry

import (
	"fmt"
	"io"
	"math"
)

// Color holds one raw sample from the color sensor. Channel values are the
// sensor's native 12-bit counts (0-4097), not 8-bit RGB.
type Color struct {
	R       int `json:"r"`
	G       int `json:"g"`
	B       int `json:"b"`
	Ambient int `json:"ambient"` // clear channel, light intensity
}

// Reading is one environmental sample. Temperature already includes the
// calibration offset.
type Reading struct {
	Temperature float64 `json:"temperature_c"` // °C, calibrated
	Humidity    float64 `json:"humidity_pct"`  // % relative
	Pressure    float64 `json:"pressure_kpa"`  // kPa
	Color       Color   `json:"color"`
}

// WriteDebug renders the reading in the fixed console format used on the
// sender's debug serial line.
func (r Reading) WriteDebug(w io.Writer) {
	fmt.Fprintf(w, "Temperature: %.2f\n", r.Temperature)
	fmt.Fprintf(w, "Humidity: %.2f\n", r.Humidity)
	fmt.Fprintf(w, "Pressure: %.2f\n", r.Pressure)
	fmt.Fprintf(w, "Color (r, g, b, a): %d, %d, %d, %d\n",
		r.Color.R, r.Color.G, r.Color.B, r.Color.Ambient)
	fmt.Fprintln(w, "----------")
}

// CelsiusToFahrenheit converts for the receiver-side display.
func CelsiusToFahrenheit(c float64) float64 {
	return c*1.8 + 32
}

// EightBitColor downscales a raw 12-bit channel count (max 4097 at the
// sensor's 10 ms integration time) to the 0-255 range.
func EightBitColor(v int) int {
	return int(math.Round(float64(v) / (4097.0 / 255.0)))
}
