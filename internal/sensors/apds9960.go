package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// APDS9960 light/color sensor, ALS engine only.
const (
	apdsAddr = 0x39

	apdsRegEnable  = 0x80
	apdsRegAtime   = 0x81
	apdsRegControl = 0x8F
	apdsRegID      = 0x92
	apdsRegStatus  = 0x93
	apdsRegCDataL  = 0x94 // c, r, g, b: four 16-bit channels, little endian

	apdsIDValue = 0xAB
	apdsPowerOn = 0x01 // ENABLE PON
	apdsALSOn   = 0x02 // ENABLE AEN
	apdsAVALID  = 0x01 // STATUS: ALS data valid

	// 4 integration cycles (10 ms): channel counts saturate at 4097,
	// which is the scale the receiver's display conversion assumes.
	apdsAtimeValue = 0xFC
	apdsGain4x     = 0x01
)

type APDS9960 struct {
	busName string
	dev     *i2c.Dev
}

func NewAPDS9960(busName string) *APDS9960 {
	return &APDS9960{busName: busName}
}

func (s *APDS9960) Begin() error {
	bus, err := openI2C(s.busName)
	if err != nil {
		return err
	}
	dev := &i2c.Dev{Bus: bus, Addr: apdsAddr}

	var id [1]byte
	if err := readReg(dev, apdsRegID, id[:]); err != nil {
		return fmt.Errorf("apds9960 id: %w", err)
	}
	if id[0] != apdsIDValue {
		return fmt.Errorf("apds9960 id: got 0x%02X, want 0x%02X", id[0], apdsIDValue)
	}

	if err := writeReg(dev, apdsRegAtime, apdsAtimeValue); err != nil {
		return fmt.Errorf("apds9960 atime: %w", err)
	}
	if err := writeReg(dev, apdsRegControl, apdsGain4x); err != nil {
		return fmt.Errorf("apds9960 gain: %w", err)
	}
	if err := writeReg(dev, apdsRegEnable, apdsPowerOn|apdsALSOn); err != nil {
		return fmt.Errorf("apds9960 enable: %w", err)
	}
	s.dev = dev
	return nil
}

// ColorAvailable reports whether a new ALS sample has completed.
func (s *APDS9960) ColorAvailable() (bool, error) {
	var status [1]byte
	if err := readReg(s.dev, apdsRegStatus, status[:]); err != nil {
		return false, fmt.Errorf("apds9960 status: %w", err)
	}
	return status[0]&apdsAVALID != 0, nil
}

// ReadColor returns the raw red, green, blue and clear (ambient) counts.
func (s *APDS9960) ReadColor() (r, g, b, a int, err error) {
	var raw [8]byte
	if err := readReg(s.dev, apdsRegCDataL, raw[:]); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("apds9960 color read: %w", err)
	}
	ambient := int(raw[0]) | int(raw[1])<<8
	red := int(raw[2]) | int(raw[3])<<8
	green := int(raw[4]) | int(raw[5])<<8
	blue := int(raw[6]) | int(raw[7])<<8
	return red, green, blue, ambient, nil
}
