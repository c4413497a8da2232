package transport

import "errors"

// ErrReadTimeout reports that the source produced no data within the
// configured read timeout. The caller should abandon the current frame and
// keep reading.
var ErrReadTimeout = errors.New("transport: read timed out")

// LineSource is a line-oriented byte source. The pipeline never depends on
// which implementation it is given; a file can stand in for the serial port.
type LineSource interface {
	// ReadLine blocks until a full line (terminated by '\n') is available,
	// the source ends, or the read timeout elapses. The returned line does
	// not include the trailing '\n'.
	ReadLine() (string, error)
	Close() error
}
