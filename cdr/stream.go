package cdr

import (
	"encoding/binary"
)

// Encapsulation identifiers of the 4-byte header preceding a CDR payload.
const (
	EncapsulationCDRBE uint16 = 0x0000
	EncapsulationCDRLE uint16 = 0x0001
)

// HeaderSize is the size of the encapsulation header.
const HeaderSize = 4

// Config selects the byte order of a stream and whether it carries an
// encapsulation header. With a header the reader takes the byte order from
// the stream and ignores ByteOrder.
type Config struct {
	ByteOrder     binary.ByteOrder
	Encapsulation bool
}

// DefaultConfig returns little-endian CDR without an encapsulation header.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
	}
}

func (c Config) order() binary.ByteOrder {
	if c.ByteOrder == nil {
		return binary.LittleEndian
	}
	return c.ByteOrder
}

func encapsulationID(order binary.ByteOrder) uint16 {
	if order == binary.BigEndian {
		return EncapsulationCDRBE
	}
	return EncapsulationCDRLE
}
