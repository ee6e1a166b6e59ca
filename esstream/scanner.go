/*
NAME
  scanner.go

DESCRIPTION
  scanner.go finds MPEG startcode prefixes (00 00 01 <sc>) in a Source,
  tolerating any number of leading zero bytes before the 01, per MPEG
  convention. It is modeled on codecutil.ByteScanner.ScanUntil from the
  teacher: bytes are accumulated into a caller-supplied buffer as they are
  scanned, rather than discarded, so the caller (ESUnitBuilder) recovers the
  exact payload of the unit that precedes the newly found startcode.

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

import "io"

// Scanner locates three-byte 00 00 01 startcode prefixes in a Source.
type Scanner struct {
	src *Source
}

// NewScanner returns a Scanner reading from src.
func NewScanner(src *Source) *Scanner {
	return &Scanner{src: src}
}

// Next scans the underlying Source until a startcode prefix is found,
// appending every byte that precedes the prefix to dst (exactly as
// codecutil.ByteScanner.ScanUntil appends to its dst), and returns the
// resulting slice along with the one-byte startcode identifier that
// follows the prefix.
//
// A run of two or more 0x00 bytes followed by 0x01 is accepted as a valid
// prefix, so "00 00 00 ... 00 01" works exactly as "00 00 01" does,
// matching MPEG convention (spec.md 4.2). The prefix bytes themselves, and
// the startcode identifier, are consumed from the Source but never
// appended to dst.
//
// If the Source is exhausted before a startcode is found, Next returns
// io.EOF; dst will contain whatever trailing bytes were read (including
// any zero run that turned out not to precede a 0x01).
func (s *Scanner) Next(dst []byte) (data []byte, code byte, err error) {
	var zeroRun int
	flush := func(extra byte, haveExtra bool) {
		for i := 0; i < zeroRun; i++ {
			dst = append(dst, 0x00)
		}
		zeroRun = 0
		if haveExtra {
			dst = append(dst, extra)
		}
	}
	for {
		b, err := s.src.ReadByte()
		if err != nil {
			if err == io.EOF {
				flush(0, false)
				return dst, 0, io.EOF
			}
			return dst, 0, err
		}
		switch {
		case b == 0x00:
			zeroRun++
		case b == 0x01 && zeroRun >= 2:
			zeroRun = 0
			code, err = s.src.ReadByte()
			if err != nil {
				if err == io.EOF {
					return dst, 0, io.ErrUnexpectedEOF
				}
				return dst, 0, err
			}
			return dst, code, nil
		default:
			flush(b, true)
		}
	}
}
