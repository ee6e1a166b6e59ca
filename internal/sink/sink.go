/*
NAME
  sink.go

DESCRIPTION
  sink.go defines the byte sink capability the pipeline's core writes onto:
  a plain io.WriteCloser, with file, stdout and TCP implementations behind
  it so the core never knows which transport it is feeding.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sink provides the output transports the core TS byte stream can
// be written to: a file, standard output, or a TCP connection.
package sink

import "io"

// Sink is the write destination for a complete TS byte stream.
type Sink interface {
	io.Writer
	io.Closer
}
