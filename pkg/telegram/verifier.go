package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc16"
)

var (
	ErrMissingTrailer    = errors.New("telegram: checksum trailer missing")
	ErrMalformedChecksum = errors.New("telegram: checksum is not valid hex")
)

// MismatchError reports a telegram whose transmitted checksum does not match
// the one computed over its body.
type MismatchError struct {
	Claimed  uint16
	Computed uint16
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("telegram: checksum mismatch: claimed %04X, computed %04X", e.Claimed, e.Computed)
}

// CRC16_ARC matches the DSMR specification (poly 0xA001 reflected, init 0)
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// Verify checks the telegram's trailer checksum against the CRC16 computed
// over everything up to and including the trailer marker. It returns the
// computed checksum. A telegram must never be decoded when err is non-nil.
func Verify(telegram string) (uint16, error) {
	marker := strings.Index(telegram, "!")
	if marker < 0 {
		return 0, ErrMissingTrailer
	}
	body := telegram[:marker+1]
	trailer := strings.TrimSpace(telegram[marker+1:])

	claimed, err := strconv.ParseUint(trailer, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedChecksum, trailer)
	}

	computed := crc16.Checksum([]byte(body), crcTable)
	if uint16(claimed) != computed {
		return computed, &MismatchError{Claimed: uint16(claimed), Computed: computed}
	}
	return computed, nil
}
