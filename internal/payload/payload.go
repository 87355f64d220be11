// Package payload builds and parses the pipe-delimited wire records carried
// over the RYLR896 link.
package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/enviro-link/lora_telemetry/internal/telemetry"
)

// EncodeReading serializes a reading as
// <temperature>|<humidity>|<pressure>|<r>|<g>|<b>|<a>, floats fixed at two
// decimal places so the receiver sees a stable format.
func EncodeReading(r telemetry.Reading) string {
	return fmt.Sprintf("%.2f|%.2f|%.2f|%d|%d|%d|%d",
		r.Temperature, r.Humidity, r.Pressure,
		r.Color.R, r.Color.G, r.Color.B, r.Color.Ambient)
}

// SendCommand wraps a record in the transceiver's send command. The length
// field must be the exact byte count of the unwrapped record: the receiving
// module uses it to frame the payload on its serial line, so a wrong count
// truncates or hangs the receiver.
func SendCommand(record string, targetAddress int) string {
	return fmt.Sprintf("AT+SEND=%d,%d,%s\r\n", targetAddress, len(record), record)
}

// Packet is one reception report from the transceiver.
type Packet struct {
	Address int // transmitter address
	Length  int // payload byte count as reported by the module
	Reading telemetry.Reading
	RSSI    int // dBm
	SNR     int
}

// ParseReceived parses a +RCV=<addr>,<len>,<record>,<rssi>,<snr> line as
// emitted by the receiving module. The record itself never contains commas,
// but RSSI/SNR follow it, so the record is cut from the tail end.
func ParseReceived(line string) (Packet, error) {
	body, ok := strings.CutPrefix(line, "+RCV=")
	if !ok {
		return Packet{}, fmt.Errorf("not a +RCV line: %q", line)
	}

	head := strings.SplitN(body, ",", 3)
	if len(head) != 3 {
		return Packet{}, fmt.Errorf("malformed +RCV line: %q", line)
	}

	addr, err := strconv.Atoi(head[0])
	if err != nil {
		return Packet{}, fmt.Errorf("bad address in %q: %w", line, err)
	}
	length, err := strconv.Atoi(head[1])
	if err != nil {
		return Packet{}, fmt.Errorf("bad length in %q: %w", line, err)
	}

	// head[2] is <record>,<rssi>,<snr>; RSSI and SNR are the last two fields.
	tail := head[2]
	i := strings.LastIndex(tail, ",")
	if i < 0 {
		return Packet{}, fmt.Errorf("missing SNR in %q", line)
	}
	j := strings.LastIndex(tail[:i], ",")
	if j < 0 {
		return Packet{}, fmt.Errorf("missing RSSI in %q", line)
	}
	record, rssiText, snrText := tail[:j], tail[j+1:i], tail[i+1:]

	if len(record) != length {
		return Packet{}, fmt.Errorf("length field %d does not match record size %d in %q",
			length, len(record), line)
	}

	rssi, err := strconv.Atoi(rssiText)
	if err != nil {
		return Packet{}, fmt.Errorf("bad RSSI in %q: %w", line, err)
	}
	snr, err := strconv.Atoi(snrText)
	if err != nil {
		return Packet{}, fmt.Errorf("bad SNR in %q: %w", line, err)
	}

	reading, err := decodeRecord(record)
	if err != nil {
		return Packet{}, fmt.Errorf("bad record in %q: %w", line, err)
	}

	return Packet{Address: addr, Length: length, Reading: reading, RSSI: rssi, SNR: snr}, nil
}

func decodeRecord(record string) (telemetry.Reading, error) {
	fields := strings.Split(record, "|")
	if len(fields) != 7 {
		return telemetry.Reading{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}

	var r telemetry.Reading
	var err error
	if r.Temperature, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return telemetry.Reading{}, fmt.Errorf("temperature: %w", err)
	}
	if r.Humidity, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return telemetry.Reading{}, fmt.Errorf("humidity: %w", err)
	}
	if r.Pressure, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return telemetry.Reading{}, fmt.Errorf("pressure: %w", err)
	}
	if r.Color.R, err = strconv.Atoi(fields[3]); err != nil {
		return telemetry.Reading{}, fmt.Errorf("red channel: %w", err)
	}
	if r.Color.G, err = strconv.Atoi(fields[4]); err != nil {
		return telemetry.Reading{}, fmt.Errorf("green channel: %w", err)
	}
	if r.Color.B, err = strconv.Atoi(fields[5]); err != nil {
		return telemetry.Reading{}, fmt.Errorf("blue channel: %w", err)
	}
	if r.Color.Ambient, err = strconv.Atoi(fields[6]); err != nil {
		return telemetry.Reading{}, fmt.Errorf("ambient channel: %w", err)
	}
	return r, nil
}
