/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go orchestrates the end-to-end conversion of an ES byte stream
  into a Transport Stream: detect (or accept a forced) codec, emit PAT and
  PMT, then loop building ES units, wrapping each in a PES packet and
  fragmenting it onto the video PID, until the source is exhausted or an
  optional unit budget is reached.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline wires esstream, container/ts/pes, container/ts and
// container/ts/psi together into the ES-to-TS conversion the rest of this
// module exists to perform.
package pipeline

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/es2ts/container/ts"
	"github.com/ausocean/es2ts/container/ts/pes"
	"github.com/ausocean/es2ts/container/ts/psi"
	"github.com/ausocean/es2ts/esstream"
)

// Pipeline converts one ES source into one TS sink per cfg.
type Pipeline struct {
	cfg  Config
	src  *esstream.Source
	sink io.Writer
	log  logging.Logger

	pkt *ts.Packetizer

	// unitsWritten counts ES units packaged so far, checked against
	// cfg.MaxUnits after every unit.
	unitsWritten int
}

// New returns a Pipeline reading from src and writing to sink. cfg is
// validated immediately; a Pipeline is never returned with an invalid
// configuration.
func New(src *esstream.Source, sink io.Writer, log logging.Logger, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:  cfg,
		src:  src,
		sink: sink,
		log:  log,
		pkt:  ts.NewPacketizer(sink, log),
	}, nil
}

// Run executes the full conversion. It resolves the stream type, emits PAT
// and PMT, then packages ES units until the source is exhausted, ctx is
// cancelled, or cfg.MaxUnits is reached. Reaching the budget is reported as
// ErrBudgetReached rather than nil, so a caller that cares can distinguish
// "stopped early on purpose" from "ran to completion" with IsBudgetReached;
// a caller that doesn't care can ignore it the same way. Resources are
// released on every exit path by the caller, who owns src and sink; Run
// itself performs no closing.
func (p *Pipeline) Run(ctx context.Context) error {
	streamType, err := p.resolveStreamType()
	if err != nil {
		return err
	}
	p.log.Info("resolved stream type", "type", streamType.String())

	if err := p.emitPSI(streamType); err != nil {
		return err
	}

	if p.cfg.Resume {
		p.pkt.MarkDiscontinuity()
	}

	scanner := esstream.NewScanner(p.src)
	builder := esstream.NewUnitBuilder(scanner, p.log)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		unit, err := builder.NextUnit()
		if err == io.EOF {
			p.log.Info("input exhausted", "unitsWritten", p.unitsWritten)
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrMalformedInput, err.Error())
		}
		if err != nil {
			return errors.Wrap(ErrIO, err.Error())
		}

		if err := p.writeUnit(unit); err != nil {
			return err
		}

		p.unitsWritten++
		if p.cfg.MaxUnits > 0 && p.unitsWritten >= p.cfg.MaxUnits {
			p.log.Info("unit budget reached, stopping", "maxUnits", p.cfg.MaxUnits)
			return ErrBudgetReached
		}
	}
}

// resolveStreamType returns cfg.ForcedType if set, otherwise runs
// esstream.Detector over p.src.
func (p *Pipeline) resolveStreamType() (esstream.StreamType, error) {
	if p.cfg.ForcedType != esstream.Unknown {
		return p.cfg.ForcedType, nil
	}
	detector := esstream.NewDetector(p.src)
	t, err := detector.Detect()
	if err != nil {
		return esstream.Unknown, errors.Wrap(ErrIO, err.Error())
	}
	if t == esstream.Unknown {
		return esstream.Unknown, ErrUnknownStreamType
	}
	return t, nil
}

// emitPSI writes the PAT then the PMT, in that order, as the first two TS
// packets of the output.
func (p *Pipeline) emitPSI(streamType esstream.StreamType) error {
	pat := psi.BuildPAT(p.cfg.TransportStreamID, p.cfg.ProgramNumber, p.cfg.PMTPID)
	if err := p.pkt.WritePSI(ts.PATPID, pat); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}

	pmt := psi.BuildPMT(p.cfg.ProgramNumber, p.cfg.VideoPID, streamTypeByte(streamType), p.cfg.VideoPID)
	if err := p.pkt.WritePSI(p.cfg.PMTPID, pmt); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// writeUnit wraps unit in a PES packet (one ES unit per PES, per the core
// policy) and fragments it onto the video PID.
func (p *Pipeline) writeUnit(unit *esstream.Unit) error {
	pesPkt := pes.New(unit.Data)
	buf := pesPkt.Bytes(make([]byte, 0, pesPkt.Len()))
	if err := p.pkt.WritePES(p.cfg.VideoPID, buf); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// streamTypeByte maps an esstream.StreamType to the PMT stream_type byte
// the spec assigns it.
func streamTypeByte(t esstream.StreamType) byte {
	switch t {
	case esstream.H264:
		return psi.StreamTypeH264
	case esstream.AVS:
		return psi.StreamTypeAVS
	default:
		return psi.StreamTypeH262
	}
}
