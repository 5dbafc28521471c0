package codec

import (
	"encoding/binary"

	"github.com/wippyai/rmw-cdr/cdr"
)

// Config holds codec configuration. The zero value is usable: default
// limits, little-endian, no encapsulation header.
type Config struct {
	// ByteOrder of written streams. Nil means little-endian. Readers of
	// encapsulated streams take the order from the header.
	ByteOrder binary.ByteOrder

	// Limits are the capacities assumed for unbounded strings and
	// sequences. Zero fields take the defaults (256 bytes, 101 elements).
	Limits Limits

	// Encapsulation prefixes streams with the 4-byte CDR header.
	Encapsulation bool
}

// DefaultConfig returns a configuration with all defaults spelled out.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
		Limits:    DefaultLimits(),
	}
}

// Stream returns the CDR stream configuration.
func (c Config) Stream() cdr.Config {
	order := c.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return cdr.Config{
		ByteOrder:     order,
		Encapsulation: c.Encapsulation,
	}
}

// HeaderSize returns the number of bytes preceding the stream origin.
func (c Config) HeaderSize() int {
	if c.Encapsulation {
		return cdr.HeaderSize
	}
	return 0
}
