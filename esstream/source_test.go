package esstream

import (
	"bytes"
	"io"
	"testing"
)

// chunkReader returns n bytes at a time, forcing Source to reload
// repeatedly, exercising the same multi-Read accumulation path a real
// socket or pipe would.
type chunkReader struct {
	data []byte
	n    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestSourceReadByte(t *testing.T) {
	s := NewSource(&chunkReader{data: []byte{1, 2, 3, 4, 5}, n: 2}, true)
	var got []byte
	for {
		b, err := s.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, b)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("got %v, want [1 2 3 4 5]", got)
	}
}

func TestSourcePeekDoesNotConsume(t *testing.T) {
	s := NewSource(bytes.NewReader([]byte{1, 2, 3, 4, 5}), true)
	peeked, err := s.Peek(3)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peeked, []byte{1, 2, 3}) {
		t.Errorf("peeked = %v, want [1 2 3]", peeked)
	}
	b, err := s.ReadByte()
	if err != nil || b != 1 {
		t.Errorf("ReadByte after Peek = %v, %v; want 1, nil", b, err)
	}
}

func TestSourcePeekPastEOFReturnsShortSlice(t *testing.T) {
	s := NewSource(bytes.NewReader([]byte{1, 2}), true)
	peeked, err := s.Peek(10)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peeked, []byte{1, 2}) {
		t.Errorf("peeked = %v, want [1 2]", peeked)
	}
}

func TestSourcePeekAcrossMultipleReads(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, 20)
	s := NewSource(&chunkReader{data: data, n: 3}, true)
	peeked, err := s.Peek(20)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peeked, data) {
		t.Errorf("peeked %d bytes, want %d matching bytes", len(peeked), len(data))
	}
}
