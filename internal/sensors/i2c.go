package sensors

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// All three peripherals share one I2C bus; open it once.
var (
	i2cBus     i2c.Bus
	i2cBusOnce sync.Once
	i2cBusErr  error
)

func openI2C(busName string) (i2c.Bus, error) {
	i2cBusOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			i2cBusErr = fmt.Errorf("periph host init: %w", err)
			return
		}
		bus, err := i2creg.Open(busName)
		if err != nil {
			i2cBusErr = fmt.Errorf("i2c bus open: %w", err)
			return
		}
		i2cBus = bus
	})
	return i2cBus, i2cBusErr
}

func readReg(dev *i2c.Dev, reg byte, buf []byte) error {
	return dev.Tx([]byte{reg}, buf)
}

func writeReg(dev *i2c.Dev, reg, value byte) error {
	return dev.Tx([]byte{reg, value}, nil)
}
