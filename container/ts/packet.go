/*
NAME
  packet.go

DESCRIPTION
  packet.go fragments arbitrary byte sequences (a PES packet, or a PSI
  section prefixed with a pointer_field) into 188-byte MPEG-2 Transport
  Stream packets, maintaining one continuity counter per PID.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ts fragments PES packets and PSI sections into a standard
// 188-byte-aligned MPEG-2 Transport Stream.
package ts

import (
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

const (
	syncByte      = 0x47
	PacketSize    = 188
	payloadSize   = PacketSize - 4
	pusiMask      = 0x40
	afcPayload    = 0x10 // adaptation_field_control = 01
	afcAdaptation = 0x30 // adaptation_field_control = 11

	// Adaptation field flags byte bits (the byte immediately following
	// adaptation_field_length when the length is non-zero).
	discontinuityMask = 0x80
	randomAccessMask  = 0x40
)

// NullPID and PATPID are reserved per H.222.0.
const (
	PATPID  = 0x0000
	NullPID = 0x1FFF
)

// Packetizer writes PES packets and PSI sections onto a byte sink as
// 188-byte Transport Stream packets, owning the per-PID continuity counter
// table exclusively.
type Packetizer struct {
	dst io.Writer
	log logging.Logger
	cc  map[uint16]byte

	// pendingDiscontinuity is consumed by the next WritePES call, marking
	// its first TS packet as a discontinuity. Set via MarkDiscontinuity.
	pendingDiscontinuity bool
}

// NewPacketizer returns a Packetizer writing to dst.
func NewPacketizer(dst io.Writer, log logging.Logger) *Packetizer {
	return &Packetizer{
		dst: dst,
		log: log,
		cc:  make(map[uint16]byte),
	}
}

// WritePES fragments a complete PES packet's bytes onto pid, with PUSI=1 on
// the first TS packet and PUSI=0 on the rest. The first TS packet always
// carries random_access_indicator=1 (mirrors mts.Encoder.Write's RAI: pusi:
// every PES here is a whole ES access unit, so its first packet is always a
// clean access-unit boundary). If MarkDiscontinuity was called since the
// last WritePES, that first packet also carries discontinuity_indicator=1.
func (p *Packetizer) WritePES(pid uint16, pes []byte) error {
	discontinuity := p.pendingDiscontinuity
	p.pendingDiscontinuity = false
	return p.fragment(pid, pes, true, discontinuity)
}

// WritePSI fragments a PSI section (PAT or PMT) onto pid, prefixing it with
// the mandatory single pointer_field byte (always 0, since exactly one
// section starts in this payload). PSI traffic never carries RAI or a
// discontinuity marking.
func (p *Packetizer) WritePSI(pid uint16, section []byte) error {
	buf := make([]byte, 0, len(section)+1)
	buf = append(buf, 0x00)
	buf = append(buf, section...)
	return p.fragment(pid, buf, false, false)
}

// MarkDiscontinuity arranges for the next WritePES call's first TS packet
// to carry discontinuity_indicator=1, for a caller resuming a stream after
// a break (e.g. a previous run stopping on ErrBudgetReached). It has no
// effect on WritePSI.
func (p *Packetizer) MarkDiscontinuity() {
	p.pendingDiscontinuity = true
}

// CC returns the current continuity counter value for pid, the value the
// next payload-bearing packet on that PID will carry. It exists for tests
// that want to assert continuity without parsing output.
func (p *Packetizer) CC(pid uint16) byte {
	return p.cc[pid]
}

// fragment splits data into 188-byte TS packets on pid. The final packet is
// padded with a stuffing-only adaptation field when data does not fill a
// whole number of 184-byte payloads; degenerate adaptation_field_length
// values of 0 and 1 come out of the same arithmetic, with appendStuffing
// writing no flags byte when the length is 0.
// When rai or discontinuity is set, the first packet is forced to carry a
// (possibly otherwise unneeded) adaptation field so the flag has somewhere
// to live.
func (p *Packetizer) fragment(pid uint16, data []byte, rai, discontinuity bool) error {
	first := true
	for {
		avail := payloadSize
		forceAdaptation := first && (rai || discontinuity)
		if forceAdaptation {
			avail = payloadSize - 2 // room for a minimal one-flags-byte adaptation field.
		}

		n := len(data)
		if n > avail {
			n = avail
		}
		chunk := data[:n]
		data = data[n:]

		pkt := make([]byte, 0, PacketSize)
		pkt = append(pkt, syncByte)

		b1 := byte((pid >> 8) & 0x1F)
		if first {
			b1 |= pusiMask
		}
		pkt = append(pkt, b1, byte(pid))

		cc := p.ccFor(pid)
		if n == payloadSize {
			pkt = append(pkt, afcPayload|cc)
			pkt = append(pkt, chunk...)
		} else {
			pkt = append(pkt, afcAdaptation|cc)
			pkt = appendStuffing(pkt, n, first && rai)
			pkt = append(pkt, chunk...)
		}

		if len(pkt) != PacketSize {
			return errors.Errorf("ts: built %d-byte packet, want %d", len(pkt), PacketSize)
		}
		if first && discontinuity {
			if err := SetDiscontinuity(pkt); err != nil {
				return errors.Wrap(err, "ts: marking discontinuity failed")
			}
		}
		if _, err := p.dst.Write(pkt); err != nil {
			return errors.Wrap(err, "ts: sink write failed")
		}

		first = false
		if len(data) == 0 {
			return nil
		}
	}
}

// appendStuffing appends a stuffing-only adaptation field sized so that the
// packet ends up exactly PacketSize bytes once payloadLen payload bytes
// follow it. rai sets random_access_indicator in the flags byte; it has no
// effect when afl works out to 0, since there is then no flags byte at all.
func appendStuffing(buf []byte, payloadLen int, rai bool) []byte {
	afl := payloadSize - payloadLen - 1
	buf = append(buf, byte(afl))
	if afl == 0 {
		return buf
	}
	flags := byte(0x00)
	if rai {
		flags |= randomAccessMask
	}
	buf = append(buf, flags)
	for i := 0; i < afl-1; i++ {
		buf = append(buf, 0xFF)
	}
	return buf
}

// SetDiscontinuity sets the discontinuity_indicator bit in pkt's
// adaptation field, grounded on container/mts/discontinuity.go's
// DiscontinuityRepairer. pkt must be a full PacketSize-byte packet already
// carrying a non-zero-length adaptation field (adaptation_field_control
// 0b10 or 0b11 with adaptation_field_length > 0); there is nowhere to
// encode the flag otherwise.
func SetDiscontinuity(pkt []byte) error {
	if len(pkt) != PacketSize {
		return errors.Errorf("ts: packet is %d bytes, want %d", len(pkt), PacketSize)
	}
	afc := (pkt[3] >> 4) & 0x03
	if afc != 0x02 && afc != 0x03 {
		return errors.New("ts: packet carries no adaptation field")
	}
	if pkt[4] == 0 {
		return errors.New("ts: adaptation field is zero-length, no flags byte to set")
	}
	pkt[5] |= discontinuityMask
	return nil
}

// ccFor returns the PID's current continuity counter and advances it
// modulo 16, wrapping cleanly.
func (p *Packetizer) ccFor(pid uint16) byte {
	cc := p.cc[pid]
	p.cc[pid] = (cc + 1) & 0x0F
	return cc
}
