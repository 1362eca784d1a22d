/*
DESCRIPTION
  clipcrab is the main entrypoint: it wires up logging and Config the way
  cmd/rv/main.go wires up its own lumberjack logger, probes the source
  file's duration, stands up the worker pool, drives the coordinator to
  completion, and exits non-zero on fatal error. Grounded on
  original_source/src/main.rs for the CLI surface and state-machine drive
  loop, and on cmd/rv/main.go for the logging/config wiring idiom.

AUTHORS
  clipcrab contributors
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/guineawheek/clipcrab/config"
	"github.com/guineawheek/clipcrab/ingest/shell"
	"github.com/guineawheek/clipcrab/ingest/timeparse"
	"github.com/guineawheek/clipcrab/project/coordinator"
	"github.com/guineawheek/clipcrab/project/plot"
	"github.com/guineawheek/clipcrab/project/pool"
)

// Logging configuration, matching cmd/rv/main.go's constants.
const (
	logPath      = "clipcrab.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

const pkg = "clipcrab: "

func usage() {
	fmt.Fprintln(os.Stderr, "usage: clipcrab <fname> <out_dir> <workers> [-start-ts HH:MM:SS] [-debug-plots dir]")
}

func main() {
	startTs := flag.String("start-ts", "", "skip analysis before this offset (SS, MM:SS, or HH:MM:SS)")
	debugPlots := flag.String("debug-plots", "", "if set, write one diagnostic timeline PNG per match to this directory")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 3 {
		usage()
		os.Exit(2)
	}
	fname := flag.Arg(0)
	outDir := flag.Arg(1)
	workersArg := flag.Arg(2)
	// Flags may also follow the positional arguments, as in the usage line.
	flag.CommandLine.Parse(flag.Args()[3:])
	workers, err := strconv.ParseUint(workersArg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clipcrab: bad workers argument %q: %v\n", workersArg, err)
		os.Exit(2)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	cfg := config.Config{
		SourceFile:   fname,
		OutDir:       outDir,
		Workers:      workers,
		DebugPlotDir: *debugPlots,
		Logger:       log,
	}
	if *startTs != "" {
		us, err := timeparse.Parse(*startTs)
		if err != nil {
			log.Fatal(pkg+"bad -start-ts", "error", err.Error())
		}
		cfg.StartUs = us
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(pkg+"invalid configuration", "error", err.Error())
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		log.Fatal(pkg+"could not create output directory", "error", err.Error())
	}

	log.Info("probing source duration", "file", cfg.SourceFile)
	durationUs, err := shell.VideoDurationUs(cfg.SourceFile)
	if err != nil {
		log.Fatal(pkg+"could not probe source duration", "error", err.Error())
	}
	log.Info("source duration", "us", durationUs)

	log.Debug("starting worker pool", "workers", cfg.Workers)
	p, err := pool.New(cfg.SourceFile, cfg.OutDir, int(cfg.Workers), log)
	if err != nil {
		log.Fatal(pkg+"could not start worker pool", "error", err.Error())
	}
	defer p.Close()

	coord := coordinator.New(log, cfg.StartUs, durationUs, config.SampleIntervalUs)

	log.Info("scanning source for matches")
	if err := p.Run(coord); err != nil {
		log.Fatal(pkg+"worker pool error", "error", err.Error())
	}

	if cfg.DebugPlotDir != "" {
		log.Info("writing diagnostic timeline plots", "dir", cfg.DebugPlotDir)
		for _, m := range coord.Matches() {
			if err := plot.Render(cfg.DebugPlotDir, m); err != nil {
				log.Warning(pkg+"could not render diagnostic plot", "match", m.Key.String(), "error", err.Error())
			}
		}
	}

	log.Info("done")
}
