package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

const bme280Addr = 0x76

// BME280 is the thermal/humidity peripheral, read through the periph bmxx80
// driver over I2C.
type BME280 struct {
	busName string
	dev     *bmxx80.Dev
}

func NewBME280(busName string) *BME280 {
	return &BME280{busName: busName}
}

func (s *BME280) Begin() error {
	bus, err := openI2C(s.busName)
	if err != nil {
		return err
	}
	dev, err := bmxx80.NewI2C(bus, bme280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		return fmt.Errorf("bme280 init: %w", err)
	}
	s.dev = dev
	return nil
}

func (s *BME280) ReadTemperature() (float64, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return 0, fmt.Errorf("bme280 sense: %w", err)
	}
	return e.Temperature.Celsius(), nil
}

func (s *BME280) ReadHumidity() (float64, error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return 0, fmt.Errorf("bme280 sense: %w", err)
	}
	return float64(e.Humidity) / float64(physic.PercentRH), nil
}
