package transport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jacobsa/go-serial/serial"
)

// SerialSource reads P1 lines from a serial device.
type SerialSource struct {
	port io.ReadWriteCloser
}

// OpenSerial opens the P1 device with 8N1 framing. The read timeout bounds
// how long a single ReadLine may stall before it reports ErrReadTimeout,
// which guards against a meter that stops transmitting mid-frame.
func OpenSerial(device string, baudrate uint, readTimeout time.Duration) (*SerialSource, error) {
	options := serial.OpenOptions{
		PortName:              device,
		BaudRate:              baudrate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(readTimeout / time.Millisecond),
	}

	port, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}
	return &SerialSource{port: port}, nil
}

// ReadLine accumulates bytes until '\n'. With MinimumReadSize 0 the driver
// reports an inter-character timeout as a zero-byte read or io.EOF; both are
// mapped to ErrReadTimeout since a live port has no real end of stream.
func (s *SerialSource) ReadLine() (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := s.port.Read(buf)
		if n == 0 {
			if err == nil || err == io.EOF {
				return "", ErrReadTimeout
			}
			return "", err
		}
		if buf[0] == '\n' {
			return line.String(), nil
		}
		line.WriteByte(buf[0])
	}
}

func (s *SerialSource) Close() error {
	return s.port.Close()
}
