package app

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/enviro-link/lora_telemetry/internal/config"
	"github.com/enviro-link/lora_telemetry/internal/payload"
	"github.com/enviro-link/lora_telemetry/internal/radio"
	"github.com/enviro-link/lora_telemetry/internal/sensors"
	"github.com/enviro-link/lora_telemetry/internal/telemetry"
)

// RunTelemetry drives the sender: sample the three sensors, encode the
// reading, transmit it to the receiver's address, echo it to the console,
// sleep, repeat. The delay is measured from the end of each cycle's work, so
// the actual period is the interval plus however long sampling took.
func RunTelemetry(cfg *config.Config) error {
	log.Println("starting environmental telemetry sender")

	bank := sensors.NewBank(
		sensors.NewBME280(cfg.I2CBus),
		sensors.NewLPS22HB(cfg.I2CBus),
		sensors.NewAPDS9960(cfg.I2CBus),
	)
	// A sensor that fails its startup handshake is fatal: no retry, no
	// partial operation. Remediation is fixing the hardware and restarting.
	if err := bank.Init(); err != nil {
		log.Printf("sensor init failed: %v", err)
		return err
	}
	log.Println("all sensors initialized")

	link, err := radio.Open(cfg)
	if err != nil {
		return err
	}
	defer link.Close()

	if err := link.Configure(cfg.DeviceAddress, cfg.NetworkID, cfg.RadioPasscode); err != nil {
		return err
	}
	log.Printf("radio configured: address=%d network=%d", cfg.DeviceAddress, cfg.NetworkID)

	interval := time.Duration(cfg.SampleInterval) * time.Millisecond
	colorWait := time.Duration(cfg.ColorReadTimeout) * time.Millisecond

	for {
		reading, err := captureReading(bank, cfg.TempCalibrationOffset, colorWait)
		if err != nil {
			if errors.Is(err, sensors.ErrColorTimeout) {
				log.Printf("skipping cycle: %v", err)
			} else {
				log.Printf("sensor read error: %v", err)
			}
			time.Sleep(interval)
			continue
		}

		record := payload.EncodeReading(reading)
		command := payload.SendCommand(record, cfg.ReceiverAddress)
		if err := link.Send(command); err != nil {
			// The link is fire-and-forget; log and drop.
			log.Printf("radio send error: %v", err)
		}

		reading.WriteDebug(os.Stdout)

		time.Sleep(interval)
	}
}

func captureReading(bank *sensors.Bank, tempOffset float64, colorWait time.Duration) (telemetry.Reading, error) {
	t, err := bank.ReadTemperature(tempOffset)
	if err != nil {
		return telemetry.Reading{}, err
	}
	h, err := bank.ReadHumidity()
	if err != nil {
		return telemetry.Reading{}, err
	}
	p, err := bank.ReadPressure()
	if err != nil {
		return telemetry.Reading{}, err
	}
	r, g, b, a, err := bank.ReadColor(colorWait)
	if err != nil {
		return telemetry.Reading{}, err
	}

	return telemetry.Reading{
		Temperature: t,
		Humidity:    h,
		Pressure:    p,
		Color:       telemetry.Color{R: r, G: g, B: b, Ambient: a},
	}, nil
}
