package main

import (
	"log"
	"os"

	"github.com/enviro-link/lora_telemetry/internal/app"
	"github.com/enviro-link/lora_telemetry/internal/config"
)

func main() {
	log.Println("starting enviro-link receiver (LoRa → MQTT)")

	configPath := "lora_config.txt"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReceiver(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
