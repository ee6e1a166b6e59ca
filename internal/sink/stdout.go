/*
NAME
  stdout.go

DESCRIPTION
  stdout.go implements Sink over the process's standard output.

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

import "os"

// Stdout is a Sink writing to the process's standard output. Close is a
// no-op: the process does not own stdout's lifetime.
type Stdout struct{}

// NewStdout returns a Stdout sink.
func NewStdout() Stdout { return Stdout{} }

// Write implements io.Writer.
func (Stdout) Write(d []byte) (int, error) { return os.Stdout.Write(d) }

// Close implements io.Closer.
func (Stdout) Close() error { return nil }
