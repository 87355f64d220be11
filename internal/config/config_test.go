package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `# enviro-link test config
RADIO_SERIAL_PORT=/dev/ttyAMA0
RADIO_BAUD_RATE=115200
DEVICE_ADDRESS=2
RECEIVER_ADDRESS=116
NETWORK_ID=6
RADIO_PASSCODE=92A0ECEC9000DA0DCF0CAAB0ABA2E0EF
SAMPLE_INTERVAL=2000
TEMP_CALIBRATION_OFFSET=-4.5
MQTT_BROKER=tcp://localhost:1883
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lora_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.RadioSerialPort != "/dev/ttyAMA0" {
		t.Errorf("RadioSerialPort = %q; want /dev/ttyAMA0", cfg.RadioSerialPort)
	}
	if cfg.RadioBaudRate != 115200 {
		t.Errorf("RadioBaudRate = %d; want 115200", cfg.RadioBaudRate)
	}
	if cfg.DeviceAddress != 2 || cfg.ReceiverAddress != 116 {
		t.Errorf("addresses = %d/%d; want 2/116", cfg.DeviceAddress, cfg.ReceiverAddress)
	}
	if cfg.NetworkID != 6 {
		t.Errorf("NetworkID = %d; want 6", cfg.NetworkID)
	}
	if cfg.TempCalibrationOffset != -4.5 {
		t.Errorf("TempCalibrationOffset = %v; want -4.5", cfg.TempCalibrationOffset)
	}
	if cfg.SampleInterval != 2000 {
		t.Errorf("SampleInterval = %d; want 2000", cfg.SampleInterval)
	}
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TopicReadings != "enviro/readings" {
		t.Errorf("TopicReadings default = %q; want enviro/readings", cfg.TopicReadings)
	}
	if cfg.ColorReadTimeout != 3000 {
		t.Errorf("ColorReadTimeout default = %d; want 3000", cfg.ColorReadTimeout)
	}
	if cfg.WebServerPort != 8080 {
		t.Errorf("WebServerPort default = %d; want 8080", cfg.WebServerPort)
	}
	if cfg.MQTTClientIDReceiver == "" || cfg.MQTTClientIDConsole == "" || cfg.MQTTClientIDWeb == "" {
		t.Error("MQTT client id defaults not applied")
	}
}

func TestLoad_boundaryAddresses(t *testing.T) {
	content := strings.Replace(validConfig, "DEVICE_ADDRESS=2", "DEVICE_ADDRESS=0", 1)
	content = strings.Replace(content, "RECEIVER_ADDRESS=116", "RECEIVER_ADDRESS=65535", 1)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DeviceAddress != 0 || cfg.ReceiverAddress != 65535 {
		t.Errorf("addresses = %d/%d; want 0/65535", cfg.DeviceAddress, cfg.ReceiverAddress)
	}
}

func TestLoad_errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"unknown key",
			func(s string) string { return s + "BOGUS_KEY=1\n" },
			"unknown config key",
		},
		{
			"address out of range",
			func(s string) string { return strings.Replace(s, "DEVICE_ADDRESS=2", "DEVICE_ADDRESS=65536", 1) },
			"DEVICE_ADDRESS must be 0-65535",
		},
		{
			"network id out of range",
			func(s string) string { return strings.Replace(s, "NETWORK_ID=6", "NETWORK_ID=17", 1) },
			"NETWORK_ID must be 0-16",
		},
		{
			"short passcode",
			func(s string) string {
				return strings.Replace(s, "RADIO_PASSCODE=92A0ECEC9000DA0DCF0CAAB0ABA2E0EF", "RADIO_PASSCODE=ABC123", 1)
			},
			"RADIO_PASSCODE must be 32 hex digits",
		},
		{
			"non-hex passcode",
			func(s string) string {
				return strings.Replace(s, "RADIO_PASSCODE=92A0ECEC9000DA0DCF0CAAB0ABA2E0EF", "RADIO_PASSCODE=ZZA0ECEC9000DA0DCF0CAAB0ABA2E0EF", 1)
			},
			"RADIO_PASSCODE must be 32 hex digits",
		},
		{
			"missing serial port",
			func(s string) string { return strings.Replace(s, "RADIO_SERIAL_PORT=/dev/ttyAMA0\n", "", 1) },
			"RADIO_SERIAL_PORT is required",
		},
		{
			"missing sample interval",
			func(s string) string { return strings.Replace(s, "SAMPLE_INTERVAL=2000\n", "", 1) },
			"SAMPLE_INTERVAL is required",
		},
		{
			"missing broker",
			func(s string) string { return strings.Replace(s, "MQTT_BROKER=tcp://localhost:1883\n", "", 1) },
			"MQTT_BROKER is required",
		},
		{
			"garbage line",
			func(s string) string { return s + "not a key value pair\n" },
			"invalid config line",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.mutate(validConfig)))
			if err == nil {
				t.Fatal("Load() = nil error; want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load() error = %q; want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("Load() on a missing file = nil error; want error")
	}
}
