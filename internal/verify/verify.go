/*
NAME
  verify.go

DESCRIPTION
  verify.go is a test-only helper package: it parses this module's own
  Transport Stream output back apart with an independent, already-deployed
  parser (github.com/Comcast/gots/v2) so the pipeline test suite can check
  PID, PUSI, payload and PMT contents without re-implementing TS parsing.
  Grounded on the role gots plays in the teacher's own
  container/mts/encoder_test.go.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package verify parses Transport Stream bytes with an independent parser
// for use in tests. It is not part of the conversion pipeline itself.
package verify

import (
	"github.com/Comcast/gots/v2/packet"
	"github.com/pkg/errors"
)

// PacketSize is the fixed MPEG-2 TS packet size this package assumes when
// slicing a raw byte stream into packets.
const PacketSize = 188

// pusiMask is the payload_unit_start_indicator bit within a TS packet's
// second byte.
const pusiMask = 0x40

// Packets splits out into PacketSize-byte TS packets. It does not validate
// sync bytes; callers that need that should use gots directly.
func Packets(out []byte) [][]byte {
	var pkts [][]byte
	for i := 0; i+PacketSize <= len(out); i += PacketSize {
		pkts = append(pkts, out[i:i+PacketSize])
	}
	return pkts
}

// PIDPackets returns the subset of out's TS packets carrying pid, using
// gots' own PID parsing exactly as the teacher's encoder tests do.
func PIDPackets(out []byte, pid uint16) [][]byte {
	var got [][]byte
	for _, raw := range Packets(out) {
		var p packet.Packet
		copy(p[:], raw)
		if packet.Pid(&p) == pid {
			got = append(got, raw)
		}
	}
	return got
}

// PUSI reports whether tsPkt's payload_unit_start_indicator bit is set.
func PUSI(tsPkt []byte) bool {
	return tsPkt[1]&pusiMask != 0
}

// Payload returns tsPkt's payload, with any adaptation field stripped by
// gots.
func Payload(tsPkt []byte) ([]byte, error) {
	var p packet.Packet
	copy(p[:], tsPkt)
	payload, err := packet.Payload(&p)
	if err != nil {
		return nil, errors.Wrap(err, "verify: gots payload parse failed")
	}
	return payload, nil
}

// PMTStreamType extracts the stream_type byte of the single elementary
// stream described by a one-packet, unfragmented PMT section carried in
// tsPkt. It does not use gots' own psi parser, since that expects a
// reassembled multi-packet section buffer; here the PMT this module emits
// always fits in one packet, so the field offsets are read directly.
func PMTStreamType(tsPkt []byte, pmtPID uint16) (byte, error) {
	var p packet.Packet
	copy(p[:], tsPkt)
	if pid := packet.Pid(&p); pid != pmtPID {
		return 0, errors.Errorf("verify: PID %#x, want PMT PID %#x", pid, pmtPID)
	}
	payload, err := Payload(tsPkt)
	if err != nil {
		return 0, err
	}
	if len(payload) < 1 {
		return 0, errors.New("verify: PMT payload too short for a pointer_field")
	}
	section := payload[1:] // skip pointer_field.
	if len(section) < 13 {
		return 0, errors.New("verify: PMT section too short")
	}
	// program_info_length is a 12-bit field at offset 10-11; the single
	// elementary stream's stream_type byte starts right after it.
	programInfoLen := int(section[10]&0x0F)<<8 | int(section[11])
	idx := 12 + programInfoLen
	if idx >= len(section) {
		return 0, errors.New("verify: PMT section too short for stream_type")
	}
	return section[idx], nil
}
