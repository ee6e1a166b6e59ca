/*
NAME
  unit.go

DESCRIPTION
  unit.go groups consecutive bytes between startcodes into ES units: an
  ordered byte sequence beginning with 00 00 01 <startcode_byte> and running
  up to, but not including, the next startcode or end of stream.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package esstream

import (
	"io"

	"github.com/ausocean/utils/logging"
)

// startUnitCap is the initial capacity given to a new unit's backing
// buffer. Growth beyond this is handled by append's own geometric growth,
// matching the teacher's preference (h264.Lex, h264.Extractor) for letting
// append manage buffer doubling rather than hand-rolled realloc.
const startUnitCap = 4 << 10

// LostSyncWarning is the log message UnitBuilder prefixes every warning
// with, as a single, greppable string. The warning is logged only by the
// first NextUnit call: when bytes before the first startcode are discarded,
// or when the input holds no startcode at all.
const LostSyncWarning = "lost sync"

// Unit is a single ES access unit: a startcode prefix plus its payload, up
// to but not including the next startcode.
type Unit struct {
	Data        []byte // Data begins with 00 00 01 <startcode_byte>.
	StartOffset int64  // Informational byte offset of this unit's startcode in the original stream; zero bytes beyond a three-byte prefix are not counted.
}

// DataLen returns the length of the unit's data.
func (u *Unit) DataLen() int { return len(u.Data) }

// Startcode returns the unit's startcode identifier byte.
func (u *Unit) Startcode() byte { return u.Data[3] }

// UnitBuilder is a stateful producer of whole ES units from a Scanner.
type UnitBuilder struct {
	scanner *Scanner
	log     logging.Logger

	started bool
	done    bool

	// pendingCode and havePending carry the startcode found while scanning
	// for the end of the previous unit forward into the next call to
	// NextUnit, since finding "where unit N ends" and "where unit N+1
	// begins" are the same scan.
	pendingCode byte
	havePending bool

	offset int64
}

// NewUnitBuilder returns a UnitBuilder reading startcodes from s.
func NewUnitBuilder(s *Scanner, log logging.Logger) *UnitBuilder {
	return &UnitBuilder{scanner: s, log: log}
}

// NextUnit returns the next whole ES unit, or io.EOF once the stream is
// exhausted. The first call locates the initial startcode, discarding (and
// logging as a warning) any leading bytes that precede it; a stream with no
// startcode at all yields io.EOF on the first call.
func (b *UnitBuilder) NextUnit() (*Unit, error) {
	if b.done {
		return nil, io.EOF
	}

	if !b.started {
		b.started = true
		skipped, code, err := b.scanner.Next(nil)
		if err != nil {
			if err == io.EOF {
				b.done = true
				if len(skipped) > 0 {
					b.log.Warning(LostSyncWarning+": no startcode found in input", "skippedBytes", len(skipped))
				} else {
					b.log.Warning(LostSyncWarning + ": no startcode found in input")
				}
				return nil, io.EOF
			}
			return nil, err
		}
		if len(skipped) > 0 {
			b.log.Warning(LostSyncWarning+": discarding leading bytes before first startcode", "skippedBytes", len(skipped))
		}
		b.offset = int64(len(skipped))
		b.pendingCode = code
		b.havePending = true
	}

	if !b.havePending {
		// Should not happen, but guards against misuse.
		return nil, io.EOF
	}

	unit := &Unit{
		Data:        make([]byte, 4, startUnitCap),
		StartOffset: b.offset,
	}
	unit.Data[0], unit.Data[1], unit.Data[2] = 0x00, 0x00, 0x01
	unit.Data[3] = b.pendingCode
	b.havePending = false

	payload, nextCode, err := b.scanner.Next(unit.Data)
	unit.Data = payload
	b.offset += int64(len(unit.Data))
	switch err {
	case nil:
		b.pendingCode = nextCode
		b.havePending = true
	case io.EOF:
		b.done = true
	default:
		return nil, err
	}
	return unit, nil
}
