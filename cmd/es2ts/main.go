/*
NAME
  main.go

DESCRIPTION
  es2ts converts a raw H.262, H.264 or AVS elementary stream into a
  single-program MPEG-2 Transport Stream.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main provides the es2ts command-line converter.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/es2ts/esstream"
	"github.com/ausocean/es2ts/internal/sink"
	"github.com/ausocean/es2ts/pipeline"
)

// Logging configuration.
const (
	logPath      = "es2ts.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 7 // days
)

func main() {
	var (
		pidFlag    = flag.String("pid", "", "video PID, decimal or 0x-hex")
		pmtFlag    = flag.String("pmt", "", "PMT PID, decimal or 0x-hex")
		h262Flag   = flag.Bool("h262", false, "force H.262 (MPEG-2) input")
		h264Flag   = flag.Bool("h264", false, "force H.264/AVC input")
		avcFlag    = flag.Bool("avc", false, "alias for -h264")
		avsFlag    = flag.Bool("avs", false, "force AVS input")
		stdinFlag  = flag.Bool("stdin", false, "read the ES from standard input")
		stdoutFlag = flag.Bool("stdout", false, "write the TS to standard output")
		hostFlag   = flag.String("host", "", "TCP destination host[:port], default port 88")
		inFlag     = flag.String("in", "", "input ES file path")
		outFlag    = flag.String("out", "", "output TS file path")
		maxFlag    = flag.Int("max", 0, "stop after this many ES units (0 = unbounded)")
		verbose    = flag.Bool("v", false, "verbose progress logging")
		quiet      = flag.Bool("q", false, "suppress all but error logging")
		logfile    = flag.String("logfile", logPath, "log file path")
	)
	flag.Parse()

	level := int8(logging.Info)
	switch {
	case *verbose:
		level = logging.Debug
	case *quiet:
		level = logging.Error
	}
	fileLog := &lumberjack.Logger{
		Filename:   *logfile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	var logWriter io.Writer = fileLog
	if *stdinFlag || *stdoutFlag {
		logWriter = os.Stderr
	}
	log := logging.New(level, logWriter, *quiet)

	if err := run(log, runArgs{
		pid:    *pidFlag,
		pmt:    *pmtFlag,
		h262:   *h262Flag,
		h264:   *h264Flag || *avcFlag,
		avs:    *avsFlag,
		stdin:  *stdinFlag,
		stdout: *stdoutFlag,
		host:   *hostFlag,
		in:     *inFlag,
		out:    *outFlag,
		max:    *maxFlag,
	}); err != nil {
		log.Error("es2ts failed", "error", err.Error())
		os.Exit(1)
	}
}

// runArgs collects the parsed CLI flags into one value so run stays
// testable without touching the flag package.
type runArgs struct {
	pid, pmt        string
	h262, h264, avs bool
	stdin, stdout   bool
	host, in, out   string
	max             int
}

func run(log logging.Logger, a runArgs) error {
	cfg := pipeline.DefaultConfig()
	cfg.MaxUnits = a.max

	if a.pid != "" {
		v, err := strconv.ParseInt(a.pid, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid -pid %q: %w", a.pid, err)
		}
		cfg.VideoPID = uint16(v)
	}
	if a.pmt != "" {
		v, err := strconv.ParseInt(a.pmt, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid -pmt %q: %w", a.pmt, err)
		}
		cfg.PMTPID = uint16(v)
	}

	switch {
	case a.h262:
		cfg.ForcedType = esstream.H262
	case a.h264:
		cfg.ForcedType = esstream.H264
	case a.avs:
		cfg.ForcedType = esstream.AVS
	}

	in, seekable, err := openInput(a)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(a, log)
	if err != nil {
		return err
	}
	defer out.Close()

	src := esstream.NewSource(in, seekable)
	p, err := pipeline.New(src, out, log, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := p.Run(ctx); err != nil && !pipeline.IsBudgetReached(err) {
		return err
	}
	return nil
}

// openInput resolves the -stdin / -in flags to a readable source and
// whether it supports the lookahead auto-detection needs.
func openInput(a runArgs) (io.ReadCloser, bool, error) {
	if a.stdin {
		return io.NopCloser(os.Stdin), false, nil
	}
	if a.in == "" {
		return nil, false, fmt.Errorf("one of -stdin or -in is required")
	}
	f, err := os.Open(a.in)
	if err != nil {
		return nil, false, fmt.Errorf("could not open input file: %w", err)
	}
	return f, true, nil
}

// openOutput resolves the -stdout / -host / -out flags to a sink.Sink.
func openOutput(a runArgs, log logging.Logger) (sink.Sink, error) {
	switch {
	case a.stdout:
		return sink.NewStdout(), nil
	case a.host != "":
		return sink.NewTCP(a.host)
	case a.out != "":
		return sink.NewFile(a.out, log)
	default:
		return nil, fmt.Errorf("one of -stdout, -host or -out is required")
	}
}
