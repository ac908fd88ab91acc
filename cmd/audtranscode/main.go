// SPDX-License-Identifier: EPL-2.0

// Command audtranscode converts audio files and adds seek tables to FLAC
// files.
//
//	audtranscode [global flags] transcode -to flac|opus|mp3|wav|aiff [flags] <input> <output>
//	audtranscode [global flags] seektable [-spec "1s;"] <file.flac>...
//
// The exit code is 0 on success, 1 when an operation failed and 2 on a
// usage error.
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ik5/audtranscode/internal/config"
	"github.com/ik5/audtranscode/internal/logging"
	"github.com/ik5/audtranscode/internal/metrics"
	"github.com/ik5/audtranscode/seektable"
	"github.com/ik5/audtranscode/transcode"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage: audtranscode [global flags] <command> [flags] args

commands:
  transcode -to flac|opus|mp3|wav|aiff [-bits N] [-rate N] [-bitrate N] <input> <output>
  seektable [-spec "1s;"] <file.flac>...

global flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env carries what every command needs.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	stdout  io.Writer
	stderr  io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("audtranscode", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to YAML configuration file")
	logLevel := global.String("log-level", "", "Log level: debug, info, warn or error")
	logFormat := global.String("log-format", "", "Log format: text or json")
	metricsFile := global.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
			return exitFailure
		}
		cfg = loaded
	}
	cfg.Logging.Level = cmp.Or(*logLevel, cfg.Logging.Level)
	cfg.Logging.Format = cmp.Or(*logFormat, cfg.Logging.Format)
	cfg.Metrics.Textfile = cmp.Or(*metricsFile, cfg.Metrics.Textfile)

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid logging flags: %v\n", err)
		return exitUsage
	}

	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	e := &env{cfg: cfg, logger: logger, metrics: metrics.New(), stdout: stdout, stderr: stderr}

	var code int
	switch cmd := global.Arg(0); cmd {
	case "transcode":
		code = e.transcode(global.Args()[1:])
	case "seektable":
		code = e.seekTable(global.Args()[1:])
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return exitUsage
	}

	if path := cfg.Metrics.Textfile; path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			logger.Error("Failed to write metrics", slog.String("path", path), slog.Any("error", err))
			code = max(code, exitFailure)
		}
	}

	return code
}

func (e *env) transcode(args []string) int {
	tc := e.cfg.Transcode

	fs := flag.NewFlagSet("transcode", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	to := fs.String("to", tc.Target, "Target codec: flac, opus, mp3, wav or aiff")
	bits := fs.Int("bits", tc.BitsPerSample, "Output bits per sample, 0 inherits from the input")
	rate := fs.Int("rate", tc.SampleRate, "Output sample rate, 0 inherits from the input")
	bitrate := fs.Int("bitrate", tc.Bitrate, "Lossy bitrate in bits per second, 0 for the codec default")
	blockSize := fs.Int("block-size", tc.FLACBlockSize, "FLAC samples per frame")
	keep := fs.Bool("keep-partial", tc.KeepPartial, "Keep the output file when the transcode fails")
	withTable := fs.Bool("seektable", false, "Add a seek table to FLAC output")
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "usage: audtranscode transcode [flags] <input> <output>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}

	target, err := transcode.ParseTarget(*to)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return exitUsage
	}

	in, out := fs.Arg(0), fs.Arg(1)
	res, err := transcode.Run(in, out, target, *bits, *rate, *bitrate,
		transcode.WithLogger(e.logger),
		transcode.WithMetrics(e.metrics),
		transcode.WithFLACBlockSize(*blockSize),
		transcode.WithOpusFrameSize(tc.OpusFrameSize()),
		transcode.WithKeepPartial(*keep),
	)
	if err != nil {
		return exitFailure
	}

	fmt.Fprintf(e.stdout, "%s -> %s: %s, %d samples, %d packets\n",
		in, out, res.Output, res.SamplesEncoded, res.Packets)

	if *withTable && target == transcode.TargetFLAC {
		return e.addSeekTable(out, e.cfg.SeekTable.Spec)
	}

	return exitOK
}

func (e *env) seekTable(args []string) int {
	fs := flag.NewFlagSet("seektable", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	spec := fs.String("spec", e.cfg.SeekTable.Spec, `Seek points: "X", "<sample>", "<n>x" or "<sec>s", separated by ';'`)
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "usage: audtranscode seektable [-spec spec] <file.flac>...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	code := exitOK
	for _, path := range fs.Args() {
		code = max(code, e.addSeekTable(path, *spec))
	}

	return code
}

func (e *env) addSeekTable(path, spec string) int {
	report, err := seektable.Add(path,
		seektable.WithSpec(spec),
		seektable.WithLogger(e.logger),
		seektable.WithMetrics(e.metrics),
	)
	if err != nil {
		return exitFailure
	}

	fmt.Fprintf(e.stdout, "%s: %d seek points over %d frames\n", path, report.Points, report.Frames)

	return exitOK
}
