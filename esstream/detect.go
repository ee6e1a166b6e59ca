/*
NAME
  detect.go

DESCRIPTION
  detect.go classifies a fresh ES source as H.262, H.264, AVS or Unknown by
  inspecting the startcode bytes in a short lookahead window, without
  consuming the source.

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

// StreamType identifies the codec family of an ES.
type StreamType int

const (
	Unknown StreamType = iota
	H262
	H264
	AVS
)

// String implements fmt.Stringer.
func (t StreamType) String() string {
	switch t {
	case H262:
		return "H262"
	case H264:
		return "H264"
	case AVS:
		return "AVS"
	default:
		return "Unknown"
	}
}

// DefaultStreamType is applied when the caller has neither forced a type
// nor can auto-detect one (non-seekable source).
const DefaultStreamType = H262

const (
	// DetectPeekStartcodes is the maximum number of startcodes the
	// detector inspects before giving up. The boundary is not precisely
	// specified upstream; 16 startcodes or DetectPeekBytes, whichever
	// comes first, comfortably spans a sequence header plus a couple of
	// pictures for any of the three codecs.
	DetectPeekStartcodes = 16

	// DetectPeekBytes is the maximum number of leading bytes the detector
	// will buffer while looking for those startcodes.
	DetectPeekBytes = 4096
)

// Startcode identifiers used for classification.
const (
	mpeg2SeqHeaderSC = 0xB3 // H.262 sequence_header_code
	avsSeqStartSC    = 0xB0 // AVS video_sequence_start_code
)

// Detector classifies a Source's codec family from its leading startcodes.
type Detector struct {
	src *Source
}

// NewDetector returns a Detector reading from src. src must not have been
// consumed yet; Detect only peeks.
func NewDetector(src *Source) *Detector {
	return &Detector{src: src}
}

// Detect classifies the stream. Non-seekable sources (stdin, TCP) cannot be
// safely peeked ahead of the pipeline that will later consume them from the
// same Source, so detection is skipped and DefaultStreamType is returned,
// matching the CLI's documented fallback.
func (d *Detector) Detect() (StreamType, error) {
	if !d.src.Seekable() {
		return DefaultStreamType, nil
	}
	window, err := d.src.Peek(DetectPeekBytes)
	if err != nil {
		return Unknown, err
	}
	for _, sc := range leadingStartcodes(window, DetectPeekStartcodes) {
		if t := classify(sc); t != Unknown {
			return t, nil
		}
	}
	return Unknown, nil
}

// classify maps a single startcode byte to a codec family, or Unknown if
// the byte alone is not conclusive (e.g. extension or user-data codes),
// leaving the caller to consider the next startcode.
func classify(sc byte) StreamType {
	switch {
	case sc == avsSeqStartSC:
		return AVS
	case sc == mpeg2SeqHeaderSC:
		return H262
	case isH264NAL(sc):
		return H264
	case sc <= 0xAF:
		// picture_start_code (0x00) or a slice_start_code (0x01..0xAF)
		// per MPEG-2 convention.
		return H262
	default:
		return Unknown
	}
}

// isH264NAL reports whether sc looks like an H.264 NAL unit header byte
// (forbidden_zero_bit=0) carrying one of the NAL unit types that appear
// early in a conformant stream: non-IDR slice (1), IDR slice (5), SPS (7),
// PPS (8), access unit delimiter (9).
func isH264NAL(sc byte) bool {
	if sc&0x80 != 0 {
		return false
	}
	switch sc & 0x1F {
	case 1, 5, 7, 8, 9:
		return true
	default:
		return false
	}
}

// leadingStartcodes scans buf for up to max occurrences of the three-byte
// prefix 00 00 01 (tolerant of longer zero runs) and returns the startcode
// identifier byte that follows each. It never consumes from a Source; it
// only inspects the already-peeked window.
func leadingStartcodes(buf []byte, max int) []byte {
	var codes []byte
	var zeroRun int
	for i := 0; i < len(buf) && len(codes) < max; i++ {
		b := buf[i]
		switch {
		case b == 0x00:
			zeroRun++
		case b == 0x01 && zeroRun >= 2:
			zeroRun = 0
			if i+1 < len(buf) {
				codes = append(codes, buf[i+1])
				i++
			}
		default:
			zeroRun = 0
		}
	}
	return codes
}
