/*
NAME
  file.go

DESCRIPTION
  file.go implements Sink over a local file, refusing to write once
  available disk space drops below a safety buffer.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sink

import (
	"os"
	"syscall"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"
)

// spaceBuffer is the minimum free disk space, in bytes, a File needs in
// order to write; below it, writes fail rather than risk filling the disk.
const spaceBuffer = 50 << 20 // 50MB.

// File is a Sink backed by a single local file, created once and appended
// to for the life of the run.
type File struct {
	f   *os.File
	log logging.Logger
}

// NewFile creates (or truncates) path and returns a File sink writing to
// it.
func NewFile(path string, log logging.Logger) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "sink: could not create output file")
	}
	return &File{f: f, log: log}, nil
}

// Write implements io.Writer.
func (s *File) Write(d []byte) (int, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs("/", &stat); err != nil {
		return 0, errors.Wrap(err, "sink: could not read disk space")
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < spaceBuffer {
		return 0, errors.Errorf("sink: only %d bytes free, below the %d byte safety buffer", available, spaceBuffer)
	}
	n, err := s.f.Write(d)
	if err != nil {
		return n, errors.Wrap(err, "sink: file write failed")
	}
	return n, nil
}

// Close implements io.Closer.
func (s *File) Close() error {
	return s.f.Close()
}
