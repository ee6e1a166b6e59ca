/*
NAME
  config.go

DESCRIPTION
  config.go defines Pipeline's tunable parameters and their defaults, and
  validates them before a run starts.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"github.com/pkg/errors"

	"github.com/ausocean/es2ts/container/ts"
	"github.com/ausocean/es2ts/esstream"
)

// Defaults for the CLI-configurable parameters.
const (
	DefaultVideoPID          = 0x68
	DefaultPMTPID            = 0x66
	DefaultTransportStreamID = 1
	DefaultProgramNumber     = 1
)

// Config holds everything Pipeline needs beyond the source and sink.
type Config struct {
	// VideoPID and PMTPID must be disjoint, non-reserved 13-bit PIDs.
	VideoPID uint16
	PMTPID   uint16

	// TransportStreamID and ProgramNumber are carried verbatim into the
	// PAT/PMT; the spec fixes both to 1 by default.
	TransportStreamID uint16
	ProgramNumber     uint16

	// ForcedType overrides auto-detection. esstream.Unknown means "do not
	// force a type".
	ForcedType esstream.StreamType

	// MaxUnits stops the run after that many ES units have been packaged.
	// Zero means unbounded.
	MaxUnits int

	// Resume marks the first video PES packet of this run as a
	// discontinuity, for a caller that is resuming a stream after a
	// previous run stopped with ErrBudgetReached. It has no effect on a
	// normal, non-resumed run.
	Resume bool
}

// DefaultConfig returns a Config populated with the spec's defaults.
func DefaultConfig() Config {
	return Config{
		VideoPID:          DefaultVideoPID,
		PMTPID:            DefaultPMTPID,
		TransportStreamID: DefaultTransportStreamID,
		ProgramNumber:     DefaultProgramNumber,
	}
}

// Validate checks PID ranges, collisions and MaxUnits, returning
// ErrInvalidConfig (wrapped with detail) on failure.
func (c Config) Validate() error {
	if c.VideoPID == ts.PATPID || c.VideoPID == ts.NullPID {
		return errors.Wrapf(ErrInvalidConfig, "video PID %#x is reserved", c.VideoPID)
	}
	if c.PMTPID == ts.PATPID || c.PMTPID == ts.NullPID {
		return errors.Wrapf(ErrInvalidConfig, "PMT PID %#x is reserved", c.PMTPID)
	}
	if c.VideoPID > 0x1FFF {
		return errors.Wrapf(ErrInvalidConfig, "video PID %#x exceeds 13 bits", c.VideoPID)
	}
	if c.PMTPID > 0x1FFF {
		return errors.Wrapf(ErrInvalidConfig, "PMT PID %#x exceeds 13 bits", c.PMTPID)
	}
	if c.VideoPID == c.PMTPID {
		return errors.Wrapf(ErrInvalidConfig, "video PID and PMT PID both %#x", c.VideoPID)
	}
	if c.MaxUnits < 0 {
		return errors.Wrapf(ErrInvalidConfig, "MaxUnits %d must be non-negative", c.MaxUnits)
	}
	return nil
}
