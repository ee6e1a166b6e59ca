package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/es2ts/container/ts"
	"github.com/ausocean/es2ts/container/ts/psi"
	"github.com/ausocean/es2ts/esstream"
	"github.com/ausocean/es2ts/internal/verify"
)

func baseConfig() Config {
	return Config{
		VideoPID:          0x68,
		PMTPID:            0x66,
		TransportStreamID: 1,
		ProgramNumber:     1,
	}
}

func runPipeline(t *testing.T, es []byte, seekable bool, cfg Config) []byte {
	t.Helper()
	src := esstream.NewSource(bytes.NewReader(es), seekable)
	var sink bytes.Buffer
	p, err := New(src, &sink, (*logging.TestLogger)(t), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.Run(context.Background()); err != nil && !IsBudgetReached(err) {
		t.Fatalf("Run failed: %v", err)
	}
	return sink.Bytes()
}

// TestMinimalH262 packages one sequence header unit followed by one picture
// unit and checks the output opens with PAT, PMT, then video, with the
// PMT declaring H.262.
func TestMinimalH262(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0xB3}, []byte{0x01, 0x02, 0x03, 0x04}...)
	es = append(es, 0x00, 0x00, 0x01, 0x00)
	es = append(es, bytes.Repeat([]byte{0xAA}, 10)...)

	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	out := runPipeline(t, es, true, cfg)

	if len(out) == 0 || len(out)%ts.PacketSize != 0 {
		t.Fatalf("len(out) = %d, not a positive multiple of %d", len(out), ts.PacketSize)
	}
	pat := out[0:ts.PacketSize]
	pmt := out[ts.PacketSize : 2*ts.PacketSize]
	if !verify.PUSI(pat) {
		t.Error("PAT packet missing PUSI")
	}
	if !verify.PUSI(pmt) {
		t.Error("PMT packet missing PUSI")
	}
	if streamType, err := verify.PMTStreamType(pmt, cfg.PMTPID); err != nil {
		t.Fatalf("PMTStreamType failed: %v", err)
	} else if streamType != psi.StreamTypeH262 {
		t.Errorf("PMT stream_type = %#x, want %#x", streamType, psi.StreamTypeH262)
	}

	video := verify.PIDPackets(out, cfg.VideoPID)
	if len(video) == 0 {
		t.Fatal("no video packets emitted")
	}
	if !verify.PUSI(video[0]) {
		t.Error("first video packet missing PUSI")
	}
}

// TestLargeUnitFragments checks a 500-byte ES unit fragments across
// multiple video TS packets with exactly one PUSI=1 packet.
func TestLargeUnitFragments(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0x00}, bytes.Repeat([]byte{0x5A}, 500)...)

	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	out := runPipeline(t, es, true, cfg)

	video := verify.PIDPackets(out, cfg.VideoPID)
	if len(video) < 3 {
		t.Fatalf("got %d video packets for a 500-byte unit, want at least 3", len(video))
	}
	pusiCount := 0
	for i, v := range video {
		if verify.PUSI(v) {
			pusiCount++
			if i != 0 {
				t.Errorf("PUSI set on video packet %d, want only packet 0", i)
			}
		}
	}
	if pusiCount != 1 {
		t.Errorf("got %d PUSI=1 video packets, want exactly 1", pusiCount)
	}
}

// TestMaxUnitsCap checks that MaxUnits stops the run after exactly that
// many ES units, regardless of how many more remain in the input.
func TestMaxUnitsCap(t *testing.T) {
	var es []byte
	const totalUnits = 100
	for i := 0; i < totalUnits; i++ {
		es = append(es, 0x00, 0x00, 0x01, byte(i%0xB0))
		es = append(es, byte(i), byte(i+1))
	}

	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	cfg.MaxUnits = 5
	out := runPipeline(t, es, true, cfg)

	video := verify.PIDPackets(out, cfg.VideoPID)
	pusiCount := 0
	for _, v := range video {
		if verify.PUSI(v) {
			pusiCount++
		}
	}
	if pusiCount != cfg.MaxUnits {
		t.Errorf("got %d PES packets (by PUSI count), want %d", pusiCount, cfg.MaxUnits)
	}
}

// TestMaxUnitsCapReturnsErrBudgetReached checks that Run reports the
// budget stop as a distinguishable, non-nil error rather than silently
// returning nil like a normal end of input.
func TestMaxUnitsCapReturnsErrBudgetReached(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0x00}, []byte{0x01}...)
	es = append(es, 0x00, 0x00, 0x01, 0x00, 0x02)

	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	cfg.MaxUnits = 1

	src := esstream.NewSource(bytes.NewReader(es), true)
	var sink bytes.Buffer
	p, err := New(src, &sink, (*logging.TestLogger)(t), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = p.Run(context.Background())
	if !IsBudgetReached(err) {
		t.Fatalf("Run err = %v, want ErrBudgetReached", err)
	}
}

// TestResumeMarksDiscontinuity checks that Config.Resume causes the first
// video TS packet of the run to carry discontinuity_indicator=1.
func TestResumeMarksDiscontinuity(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0x00}, bytes.Repeat([]byte{0x11}, 8)...)

	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	cfg.Resume = true
	out := runPipeline(t, es, true, cfg)

	video := verify.PIDPackets(out, cfg.VideoPID)
	if len(video) == 0 {
		t.Fatal("no video packets emitted")
	}
	first := video[0]
	afc := (first[3] >> 4) & 0x03
	if afc != 0x03 {
		t.Fatalf("adaptation_field_control = %#x, want 0b11 (first packet must carry an adaptation field)", afc)
	}
	if first[5]&0x80 == 0 {
		t.Error("discontinuity_indicator not set on first video packet after Resume")
	}
}

// TestForcedTypeOverride checks that an explicit ForcedType wins over what
// auto-detection of the same input would otherwise pick.
func TestForcedTypeOverride(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0xB3}, bytes.Repeat([]byte{0x00}, 4)...)

	cfg := baseConfig()
	cfg.ForcedType = esstream.H264
	out := runPipeline(t, es, true, cfg)

	pmtPkt := out[ts.PacketSize : 2*ts.PacketSize]
	streamType, err := verify.PMTStreamType(pmtPkt, cfg.PMTPID)
	if err != nil {
		t.Fatalf("PMTStreamType failed: %v", err)
	}
	if streamType != psi.StreamTypeH264 {
		t.Errorf("PMT stream_type = %#x, want %#x (forced H264)", streamType, psi.StreamTypeH264)
	}
}

// TestNonSeekableDefaultsH262 checks that a non-seekable source with no
// forced type falls back to H.262, per spec.
func TestNonSeekableDefaultsH262(t *testing.T) {
	es := append([]byte{0x00, 0x00, 0x01, 0x67}, bytes.Repeat([]byte{0x00}, 4)...) // looks like H.264 SPS.

	cfg := baseConfig()
	out := runPipeline(t, es, false, cfg)

	pmtPkt := out[ts.PacketSize : 2*ts.PacketSize]
	streamType, err := verify.PMTStreamType(pmtPkt, cfg.PMTPID)
	if err != nil {
		t.Fatalf("PMTStreamType failed: %v", err)
	}
	if streamType != psi.StreamTypeH262 {
		t.Errorf("PMT stream_type = %#x, want %#x (default H262 on non-seekable input)", streamType, psi.StreamTypeH262)
	}
}

// TestEmptyInput checks that an empty ES still produces a valid PAT+PMT
// bootstrap and nothing else.
func TestEmptyInput(t *testing.T) {
	cfg := baseConfig()
	cfg.ForcedType = esstream.H262
	out := runPipeline(t, nil, true, cfg)

	if len(out) != 2*ts.PacketSize {
		t.Fatalf("len(out) = %d, want %d (PAT+PMT only)", len(out), 2*ts.PacketSize)
	}
	if video := verify.PIDPackets(out, cfg.VideoPID); len(video) != 0 {
		t.Errorf("got %d video packets for empty input, want 0", len(video))
	}
}
