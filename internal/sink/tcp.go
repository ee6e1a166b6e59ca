/*
NAME
  tcp.go

DESCRIPTION
  tcp.go implements Sink over a TCP connection, used by the -host CLI flag.

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
	"net"

	"github.com/pkg/errors"
)

// DefaultPort is used when the caller's host string carries no port.
const DefaultPort = "88"

// TCP is a Sink backed by a single outbound TCP connection.
type TCP struct {
	conn net.Conn
}

// NewTCP dials addr, which may be "host" (DefaultPort is appended) or
// "host:port".
func NewTCP(addr string) (*TCP, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, DefaultPort
	}
	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, errors.Wrap(err, "sink: TCP dial failed")
	}
	return &TCP{conn: conn}, nil
}

// Write implements io.Writer.
func (s *TCP) Write(d []byte) (int, error) {
	n, err := s.conn.Write(d)
	if err != nil {
		return n, errors.Wrap(err, "sink: TCP write failed")
	}
	return n, nil
}

// Close implements io.Closer.
func (s *TCP) Close() error {
	return s.conn.Close()
}
