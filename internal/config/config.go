package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration values. It is built once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	// Radio (RYLR896 over serial)
	RadioSerialPort string
	RadioBaudRate   int
	DeviceAddress   int    // this module's address, unique on the network
	ReceiverAddress int    // where the sender addresses its payloads
	NetworkID       int    // must match between sender and receiver
	RadioPasscode   string // AES128 network passcode, 32 hex digits

	// Sensors
	I2CBus                string // empty selects the first available bus
	TempCalibrationOffset float64
	ColorReadTimeout      int // milliseconds

	// Timing
	SampleInterval int // milliseconds

	// MQTT (receiver side)
	MQTTBroker           string
	MQTTClientIDReceiver string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	TopicReadings        string

	// Web server
	WebServerPort int
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Radio
	case "RADIO_SERIAL_PORT":
		c.RadioSerialPort = value
	case "RADIO_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RADIO_BAUD_RATE %q: %w", value, err)
		}
		c.RadioBaudRate = rate
	case "DEVICE_ADDRESS":
		addr, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DEVICE_ADDRESS %q: %w", value, err)
		}
		if addr < 0 || addr > 65535 {
			return fmt.Errorf("DEVICE_ADDRESS must be 0-65535, got %d", addr)
		}
		c.DeviceAddress = addr
	case "RECEIVER_ADDRESS":
		addr, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RECEIVER_ADDRESS %q: %w", value, err)
		}
		if addr < 0 || addr > 65535 {
			return fmt.Errorf("RECEIVER_ADDRESS must be 0-65535, got %d", addr)
		}
		c.ReceiverAddress = addr
	case "NETWORK_ID":
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid NETWORK_ID %q: %w", value, err)
		}
		if id < 0 || id > 16 {
			return fmt.Errorf("NETWORK_ID must be 0-16, got %d", id)
		}
		c.NetworkID = id
	case "RADIO_PASSCODE":
		if len(value) != 32 || !isHex(value) {
			return fmt.Errorf("RADIO_PASSCODE must be 32 hex digits, got %q", value)
		}
		c.RadioPasscode = value

	// Sensors
	case "I2C_BUS":
		c.I2CBus = value
	case "TEMP_CALIBRATION_OFFSET":
		offset, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMP_CALIBRATION_OFFSET %q: %w", value, err)
		}
		c.TempCalibrationOffset = offset
	case "COLOR_READ_TIMEOUT":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid COLOR_READ_TIMEOUT %q: %w", value, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("COLOR_READ_TIMEOUT must be positive, got %d", timeout)
		}
		c.ColorReadTimeout = timeout

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_RECEIVER":
		c.MQTTClientIDReceiver = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_READINGS":
		c.TopicReadings = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.MQTTClientIDReceiver == "" {
		c.MQTTClientIDReceiver = "enviro-receiver"
	}
	if c.MQTTClientIDConsole == "" {
		c.MQTTClientIDConsole = "enviro-console"
	}
	if c.MQTTClientIDWeb == "" {
		c.MQTTClientIDWeb = "enviro-web"
	}
	if c.TopicReadings == "" {
		c.TopicReadings = "enviro/readings"
	}
	if c.ColorReadTimeout == 0 {
		c.ColorReadTimeout = 3000
	}
	if c.WebServerPort == 0 {
		c.WebServerPort = 8080
	}
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.RadioSerialPort == "" {
		return fmt.Errorf("RADIO_SERIAL_PORT is required")
	}
	if c.RadioBaudRate == 0 {
		return fmt.Errorf("RADIO_BAUD_RATE is required")
	}
	if c.RadioPasscode == "" {
		return fmt.Errorf("RADIO_PASSCODE is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
