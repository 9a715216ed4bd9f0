package abi

import (
	"fmt"
	"strconv"

	"github.com/wippyai/tisl/errors"
)

// DefaultSizeBits is the width of pointers and lengths unless configured.
const DefaultSizeBits = 64

// Config selects the width of the size wire type.
type Config struct {
	SizeBits int
}

// DefaultConfig returns the 64-bit configuration.
func DefaultConfig() Config {
	return Config{SizeBits: DefaultSizeBits}
}

// ParseSize builds a Config from an "abi-size" option value.
func ParseSize(value string) (Config, error) {
	bits, err := strconv.Atoi(value)
	if err != nil {
		return Config{}, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("abi size %q is not a number", value).
			Cause(err).
			Build()
	}
	cfg := Config{SizeBits: bits}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects sizes other than 32 and 64 bits.
func (c Config) Validate() error {
	switch c.SizeBits {
	case 0, 32, 64:
		return nil
	}
	return errors.InvalidInput(errors.PhaseConfig,
		fmt.Sprintf("abi size must be 32 or 64, got %d", c.SizeBits))
}

func (c Config) bits() int {
	if c.SizeBits == 0 {
		return DefaultSizeBits
	}
	return c.SizeBits
}

// SizeWidth is the byte width of the size wire type.
func (c Config) SizeWidth() int {
	return c.bits() / 8
}

// SizeWire returns the concrete wire type used for sizes.
func (c Config) SizeWire() Wire {
	if c.bits() == 32 {
		return WireI32
	}
	return WireI64
}
