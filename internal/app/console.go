package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/enviro-link/lora_telemetry/internal/config"
	"github.com/enviro-link/lora_telemetry/internal/telemetry"
)

// RunConsole subscribes to the readings topic and prints one line per sample.
func RunConsole(cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicReadings, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r telemetry.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: reading unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ENV ]  T=%6.2f°C  H=%6.2f%%  P=%7.2fkPa  color=(%d, %d, %d, %d)\n",
			r.Temperature, r.Humidity, r.Pressure,
			r.Color.R, r.Color.G, r.Color.B, r.Color.Ambient,
		)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicReadings)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
