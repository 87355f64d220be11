package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// LPS22HB barometric pressure sensor, driven in one-shot mode.
const (
	lps22hbAddr = 0x5C

	lpsRegWhoAmI     = 0x0F
	lpsRegCtrl2      = 0x11
	lpsRegStatus     = 0x27
	lpsRegPressOutXL = 0x28

	lpsWhoAmIValue = 0xB1
	lpsOneShot     = 0x01 // CTRL_REG2 ONE_SHOT
	lpsPressReady  = 0x01 // STATUS P_DA
)

type LPS22HB struct {
	busName string
	dev     *i2c.Dev
}

func NewLPS22HB(busName string) *LPS22HB {
	return &LPS22HB{busName: busName}
}

func (s *LPS22HB) Begin() error {
	bus, err := openI2C(s.busName)
	if err != nil {
		return err
	}
	dev := &i2c.Dev{Bus: bus, Addr: lps22hbAddr}

	var id [1]byte
	if err := readReg(dev, lpsRegWhoAmI, id[:]); err != nil {
		return fmt.Errorf("lps22hb whoami: %w", err)
	}
	if id[0] != lpsWhoAmIValue {
		return fmt.Errorf("lps22hb whoami: got 0x%02X, want 0x%02X", id[0], lpsWhoAmIValue)
	}
	s.dev = dev
	return nil
}

// ReadPressure triggers a one-shot conversion and returns kPa.
func (s *LPS22HB) ReadPressure() (float64, error) {
	if err := writeReg(s.dev, lpsRegCtrl2, lpsOneShot); err != nil {
		return 0, fmt.Errorf("lps22hb one-shot: %w", err)
	}

	var status [1]byte
	for i := 0; ; i++ {
		if err := readReg(s.dev, lpsRegStatus, status[:]); err != nil {
			return 0, fmt.Errorf("lps22hb status: %w", err)
		}
		if status[0]&lpsPressReady != 0 {
			break
		}
		if i >= 100 {
			return 0, fmt.Errorf("lps22hb: conversion never completed")
		}
		time.Sleep(time.Millisecond)
	}

	var raw [3]byte
	if err := readReg(s.dev, lpsRegPressOutXL, raw[:]); err != nil {
		return 0, fmt.Errorf("lps22hb pressure read: %w", err)
	}

	// 24-bit two's complement, 4096 counts per hPa.
	counts := int32(raw[2])<<16 | int32(raw[1])<<8 | int32(raw[0])
	if counts&0x800000 != 0 {
		counts -= 0x1000000
	}
	hPa := float64(counts) / 4096.0
	return hPa / 10.0, nil // kPa
}
