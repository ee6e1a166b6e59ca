/*
NAME
  source.go

DESCRIPTION
  source.go provides Source, a small buffered reader over a raw elementary
  stream that supports lookahead without consuming bytes, used by the
  Scanner and Detector.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package esstream provides detection, scanning and segmentation of a raw
// MPEG video elementary stream (H.262, H.264 or AVS) into access units
// delimited by startcodes.
package esstream

import (
	"io"

	"github.com/pkg/errors"
)

// minPeek is the minimum lookahead, in bytes, that a Source must support;
// spec requires at least 12 bytes for startcode detection and type
// heuristics, but the type detector wants a full DetectPeekBytes window, so
// the default buffer is sized for that instead.
const minPeek = 12

// defaultBufSize is the default size of a Source's read buffer, refilled by
// reload. Peek does not depend on it: growReload assembles a lookahead
// window of any size from successive 4096-byte reads.
const defaultBufSize = DetectPeekBytes + 4096

// Source is a finite, forward-only byte stream with a small lookahead
// buffer, modeled on codecutil.ByteScanner from the teacher: an owned
// buffer, a cursor into it, and a reload from the underlying io.Reader on
// exhaustion.
type Source struct {
	r        io.Reader
	closer   io.Closer
	buf      []byte
	off      int
	eof      bool
	seekable bool
}

// NewSource returns a Source reading from r. If r also implements
// io.Closer, Close will close it. seekable should be true only for sources
// that support random access (e.g. a file); stdin and TCP sources must pass
// false, which disables auto-detection per spec.
func NewSource(r io.Reader, seekable bool) *Source {
	c, _ := r.(io.Closer)
	return &Source{
		r:        r,
		closer:   c,
		buf:      make([]byte, 0, defaultBufSize),
		seekable: seekable,
	}
}

// Seekable reports whether this source supports the lookahead required for
// automatic stream-type detection. Non-seekable sources (stdin, TCP) force
// callers to either specify a type or accept the default.
func (s *Source) Seekable() bool { return s.seekable }

// ReadByte reads and consumes a single byte, returning io.EOF when the
// stream is exhausted.
func (s *Source) ReadByte() (byte, error) {
	if s.off >= len(s.buf) {
		if err := s.reload(); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.off]
	s.off++
	return b, nil
}

// Peek returns up to n bytes without consuming them. If fewer than n bytes
// remain before EOF, the returned slice is shorter than n and no error is
// returned; Peek only returns an error for a genuine read failure.
func (s *Source) Peek(n int) ([]byte, error) {
	for len(s.buf)-s.off < n && !s.eof {
		if err := s.growReload(); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "peek reload failed")
		}
	}
	end := s.off + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	return s.buf[s.off:end], nil
}

// Close releases the underlying reader, if it is closeable.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// reload discards consumed bytes and refills the buffer from the
// underlying reader, exactly as codecutil.ByteScanner.reload does.
func (s *Source) reload() error {
	if s.eof {
		return io.EOF
	}
	buf := s.buf[:cap(s.buf)]
	n, err := s.r.Read(buf)
	s.buf = buf[:n]
	s.off = 0
	if err != nil {
		if err != io.EOF {
			return err
		}
		s.eof = true
		if n == 0 {
			return io.EOF
		}
	}
	return nil
}

// growReload is like reload but appends to any unconsumed tail instead of
// discarding it, so that Peek can accumulate a window larger than one
// underlying Read.
func (s *Source) growReload() error {
	if s.eof {
		return io.EOF
	}
	tail := s.buf[s.off:]
	rest := make([]byte, len(tail), len(tail)+4096)
	copy(rest, tail)
	tmp := make([]byte, 4096)
	n, err := s.r.Read(tmp)
	rest = append(rest, tmp[:n]...)
	s.buf = rest
	s.off = 0
	if err != nil {
		if err != io.EOF {
			return err
		}
		s.eof = true
		if n == 0 {
			return io.EOF
		}
	}
	return nil
}
