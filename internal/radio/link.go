// Package radio drives a REYAX RYLR896 LoRa transceiver over its AT-command
// serial interface.
package radio

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/enviro-link/lora_telemetry/internal/config"
)

// The module gives no synchronous acknowledgment the sender waits on;
// the delay between configuration commands is a heuristic, not a guarantee.
const settleDelay = 1 * time.Second

// Link is a point-to-point LoRa link. It is fire-and-forget: the wire
// protocol has no delivery confirmation, so Send only surfaces local
// transport write errors.
type Link struct {
	rw     io.ReadWriter
	reader *bufio.Reader
	closer io.Closer
	settle time.Duration
}

// New wraps an already-open transport. Used directly in tests; production
// code goes through Open.
func New(rw io.ReadWriter) *Link {
	return &Link{rw: rw, reader: bufio.NewReader(rw), settle: settleDelay}
}

// Open opens the transceiver's serial port from configuration.
func Open(cfg *config.Config) (*Link, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.RadioSerialPort,
		BaudRate:              uint(cfg.RadioBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("radio serial open: %w", err)
	}
	log.Printf("radio serial port opened on %s at %d baud", opts.PortName, opts.BaudRate)

	l := New(port)
	l.closer = port
	return l, nil
}

// Close releases the serial port, if Open created it.
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Configure sets the module's address, network id and AES128 passcode, in
// that order, pausing after each command. It finishes with an AT+CPIN?
// read-back; the response is logged for a human watching the console, never
// parsed.
func (l *Link) Configure(address, networkID int, passcode string) error {
	commands := []string{
		fmt.Sprintf("AT+ADDRESS=%d\r\n", address),
		fmt.Sprintf("AT+NETWORKID=%d\r\n", networkID),
		fmt.Sprintf("AT+CPIN=%s\r\n", passcode),
	}
	for _, cmd := range commands {
		if err := l.Send(cmd); err != nil {
			return fmt.Errorf("radio configure: %w", err)
		}
		time.Sleep(l.settle)
	}

	if err := l.Send("AT+CPIN?\r\n"); err != nil {
		return fmt.Errorf("radio configure: %w", err)
	}
	if resp, err := l.ReadLine(); err != nil {
		log.Printf("radio: passcode read-back failed: %v", err)
	} else {
		log.Printf("radio: AES128 passcode set? %s", resp)
	}
	return nil
}

// Send writes a fully-formed AT command verbatim to the transport.
func (l *Link) Send(command string) error {
	if _, err := io.WriteString(l.rw, command); err != nil {
		return fmt.Errorf("radio write: %w", err)
	}
	return nil
}

// ReadLine blocks until the module emits one CRLF-terminated line and
// returns it without the terminator.
func (l *Link) ReadLine() (string, error) {
	line, err := l.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("radio read: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// CheckConfig queries the module's full configuration and logs each raw
// response. Purely an observability aid for whoever is reading the console.
func (l *Link) CheckConfig() error {
	queries := []struct {
		command string
		label   string
	}{
		{"AT", "module responding?"},
		{"AT+ADDRESS?", "address"},
		{"AT+VER?", "firmware version"},
		{"AT+NETWORKID?", "network id"},
		{"AT+IPR?", "UART baud rate"},
		{"AT+BAND?", "RF frequency"},
		{"AT+CRFOP?", "RF output power"},
		{"AT+MODE?", "work mode"},
		{"AT+PARAMETER?", "RF parameters"},
		{"AT+CPIN?", "AES128 passcode of the network"},
	}
	for _, q := range queries {
		if err := l.Send(q.command + "\r\n"); err != nil {
			return fmt.Errorf("radio check: %w", err)
		}
		resp, err := l.ReadLine()
		if err != nil {
			return fmt.Errorf("radio check %s: %w", q.command, err)
		}
		log.Printf("radio: %s %s", q.label, resp)
	}
	return nil
}
