package app

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/enviro-link/lora_telemetry/internal/config"
	"github.com/enviro-link/lora_telemetry/internal/payload"
	"github.com/enviro-link/lora_telemetry/internal/radio"
	"github.com/enviro-link/lora_telemetry/internal/telemetry"
)

// RunReceiver drives the receiving side: configure the local transceiver,
// then read +RCV reports off the serial line forever, displaying each
// reading and republishing it as JSON to MQTT.
func RunReceiver(cfg *config.Config) error {
	log.Println("connecting to REYAX RYLR896 transceiver module")

	link, err := radio.Open(cfg)
	if err != nil {
		return err
	}
	defer link.Close()

	if err := link.Configure(cfg.DeviceAddress, cfg.NetworkID, cfg.RadioPasscode); err != nil {
		return err
	}
	if err := link.CheckConfig(); err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDReceiver)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("receiver connected to MQTT broker at %s", cfg.MQTTBroker)

	for {
		line, err := link.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "+RCV=") {
			log.Printf("radio: %s", line)
			continue
		}

		pkt, err := payload.ParseReceived(line)
		if err != nil {
			// Corrupt or truncated reception; skip it.
			log.Printf("receive parse error: %v", err)
			continue
		}

		displayPacket(pkt)

		body, err := json.Marshal(pkt.Reading)
		if err != nil {
			log.Printf("reading marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicReadings, 0, true, body); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error: %v", token.Error())
		}
	}
}

// displayPacket renders one reception the way the original demo console did:
// imperial temperature, kPa pressure, and the raw 12-bit color counts next
// to their 8-bit equivalents.
func displayPacket(pkt payload.Packet) {
	r := pkt.Reading
	fmt.Println("\n----------")
	fmt.Printf("Date/Time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("From address %d (RSSI %d dBm, SNR %d)\n", pkt.Address, pkt.RSSI, pkt.SNR)
	fmt.Printf("Temperature: %.2f°F\n", telemetry.CelsiusToFahrenheit(r.Temperature))
	fmt.Printf("Humidity: %.2f%%\n", r.Humidity)
	fmt.Printf("Barometric Pressure: %.2f kPa\n", r.Pressure)
	fmt.Printf("12-bit Color values (r,g,b,a): %d,%d,%d,%d\n",
		r.Color.R, r.Color.G, r.Color.B, r.Color.Ambient)
	fmt.Printf(" 8-bit Color values (r,g,b,a): %d,%d,%d,%d\n",
		telemetry.EightBitColor(r.Color.R),
		telemetry.EightBitColor(r.Color.G),
		telemetry.EightBitColor(r.Color.B),
		telemetry.EightBitColor(r.Color.Ambient))
}
