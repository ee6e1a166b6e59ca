package esstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/ausocean/utils/logging"
)

func newTestBuilder(t *testing.T, input []byte) *UnitBuilder {
	t.Helper()
	src := NewSource(bytes.NewReader(input), true)
	return NewUnitBuilder(NewScanner(src), (*logging.TestLogger)(t))
}

func TestUnitBuilderTwoUnits(t *testing.T) {
	input := append([]byte{0x00, 0x00, 0x01, 0xB3}, []byte{0x01, 0x02, 0x03, 0x04}...)
	input = append(input, 0x00, 0x00, 0x01, 0x00)
	input = append(input, 0x0A, 0x0B)

	b := newTestBuilder(t, input)

	u1, err := b.NextUnit()
	if err != nil {
		t.Fatalf("first NextUnit failed: %v", err)
	}
	want1 := []byte{0x00, 0x00, 0x01, 0xB3, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(u1.Data, want1) {
		t.Errorf("unit 1 = %x, want %x", u1.Data, want1)
	}

	u2, err := b.NextUnit()
	if err != nil {
		t.Fatalf("second NextUnit failed: %v", err)
	}
	want2 := []byte{0x00, 0x00, 0x01, 0x00, 0x0A, 0x0B}
	if !bytes.Equal(u2.Data, want2) {
		t.Errorf("unit 2 = %x, want %x", u2.Data, want2)
	}

	if _, err := b.NextUnit(); err != io.EOF {
		t.Errorf("third NextUnit err = %v, want io.EOF", err)
	}
}

func TestUnitBuilderDiscardsLeadingJunk(t *testing.T) {
	input := append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte{0x00, 0x00, 0x01, 0x00, 0x42}...)
	b := newTestBuilder(t, input)

	u, err := b.NextUnit()
	if err != nil {
		t.Fatalf("NextUnit failed: %v", err)
	}
	want := []byte{0x00, 0x00, 0x01, 0x00, 0x42}
	if !bytes.Equal(u.Data, want) {
		t.Errorf("unit = %x, want %x", u.Data, want)
	}
}

func TestUnitBuilderNoStartcodeAtAll(t *testing.T) {
	b := newTestBuilder(t, []byte{0x01, 0x02, 0x03})
	if _, err := b.NextUnit(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestUnitBuilderStartcodeWithNoFollowingBytes(t *testing.T) {
	b := newTestBuilder(t, []byte{0x00, 0x00, 0x01, 0x00})
	u, err := b.NextUnit()
	if err != nil {
		t.Fatalf("NextUnit failed: %v", err)
	}
	if len(u.Data) != 4 {
		t.Errorf("len(u.Data) = %d, want 4", len(u.Data))
	}
	if _, err := b.NextUnit(); err != io.EOF {
		t.Errorf("second NextUnit err = %v, want io.EOF", err)
	}
}

func TestUnitBuilderEmptyInput(t *testing.T) {
	b := newTestBuilder(t, nil)
	if _, err := b.NextUnit(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}
