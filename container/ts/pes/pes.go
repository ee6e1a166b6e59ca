/*
NAME
  pes.go

DESCRIPTION
  pes.go implements a minimal Packetized Elementary Stream packet builder:
  one ES unit per PES packet, no timestamps, fixed video stream_id, exactly
  as much header as H.222.0 requires and no more.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pes builds Packetized Elementary Stream packets around a single
// ES unit, without PTS/DTS, for direct fragmentation into a Transport
// Stream.
package pes

import "github.com/pkg/errors"

// StreamIDVideo is the stream_id New always uses: the spec fixes PES
// stream_id to 0xE0 for video regardless of the underlying codec; codec
// identity is carried in the PMT's stream_type instead. Pack accepts other
// stream_id values.
const StreamIDVideo = 0xE0

// headerTailLen is the byte count of flags1 + flags2 + PES_header_data_length,
// the three bytes that follow PES_packet_length and precede the payload.
const headerTailLen = 3

// maxPacketLength is the largest value PES_packet_length can hold before it
// must be written as 0 ("unbounded"), which H.222 permits only for video
// elementary streams.
const maxPacketLength = 0xFFFF

// Packet is a single PES packet wrapping one ES unit.
type Packet struct {
	StreamID byte
	Payload  []byte
}

// New returns a video PES packet (stream_id 0xE0) wrapping payload.
func New(payload []byte) *Packet {
	return &Packet{StreamID: StreamIDVideo, Payload: payload}
}

// Bytes appends the packet's wire representation to buf and returns the
// result, following the teacher's append-to-caller-buffer convention.
//
//	packet_start_code_prefix  3 bytes  00 00 01
//	stream_id                 1 byte   0xE0
//	PES_packet_length         2 bytes  N+3, or 0 if N+3 > 65535
//	flags1                    1 byte   0x80
//	flags2                    1 byte   0x00
//	PES_header_data_length    1 byte   0
//	payload                   N bytes
//
// A PES_packet_length of 0 ("unbounded") is only well-formed for a video
// elementary stream per H.222.0; the pipeline reaches Bytes through New,
// which always sets StreamID to StreamIDVideo, so that case never arises
// there, and Pack checks it before calling Bytes. A caller that builds a Packet directly with a
// different StreamID and an oversized Payload should use Pack instead,
// which rejects that combination with an error rather than silently
// emitting a non-conformant length.
func (p *Packet) Bytes(buf []byte) []byte {
	buf = append(buf, 0x00, 0x00, 0x01, p.StreamID)

	n := len(p.Payload) + headerTailLen
	if n > maxPacketLength {
		n = 0
	}
	buf = append(buf, byte(n>>8), byte(n))

	buf = append(buf, 0x80, 0x00, 0x00)
	buf = append(buf, p.Payload...)
	return buf
}

// Pack builds a PES packet for streamID wrapping payload and appends its
// bytes to buf, returning the result. Unlike Bytes, Pack refuses to build
// a packet that would need an unbounded PES_packet_length (payload longer
// than 65535 bytes once the 3-byte header tail is added) for any stream_id
// other than StreamIDVideo, since H.222.0 only permits that encoding for
// video elementary streams; emitting it for any other stream_id would be
// silently non-conformant rather than merely unusual.
func Pack(streamID byte, payload []byte, buf []byte) ([]byte, error) {
	if len(payload)+headerTailLen > maxPacketLength && streamID != StreamIDVideo {
		return nil, errors.Errorf(
			"pes: payload of %d bytes needs an unbounded PES_packet_length, only valid for stream_id %#x (video), got %#x",
			len(payload), StreamIDVideo, streamID)
	}
	p := &Packet{StreamID: streamID, Payload: payload}
	return p.Bytes(buf), nil
}

// Len returns the total encoded length of the packet, as Bytes would
// produce it.
func (p *Packet) Len() int {
	return 6 + headerTailLen + len(p.Payload)
}
