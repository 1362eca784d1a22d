/*
DESCRIPTION
  clipdetect runs a single detector against one decoded frame or image file
  and prints its result as JSON, for tuning detectors without a full run.
  Grounded on original_source/clipcrab-detect/src/main.rs.

AUTHORS
  clipcrab contributors
*/

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"github.com/guineawheek/clipcrab/detect/qr"
	"github.com/guineawheek/clipcrab/detect/season/s2025"
	"github.com/guineawheek/clipcrab/ingest/seek"
	"github.com/guineawheek/clipcrab/ingest/timeparse"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: clipdetect <qr|season2025> image <fname>")
	fmt.Fprintln(os.Stderr, "       clipdetect <qr|season2025> frame <fname> <start-ts>")
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 3 {
		usage()
		os.Exit(2)
	}

	detectorName, subcmd := args[0], args[1]

	var frame gocv.Mat
	switch subcmd {
	case "image":
		frame = gocv.IMRead(args[2], gocv.IMReadColor)
		if frame.Empty() {
			fmt.Fprintf(os.Stderr, "clipdetect: could not read image %s\n", args[2])
			os.Exit(1)
		}
	case "frame":
		if len(args) < 4 {
			usage()
			os.Exit(2)
		}
		startUs, err := timeparse.Parse(args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "clipdetect: bad start timestamp %q: %v\n", args[3], err)
			os.Exit(2)
		}
		sk, err := seek.New(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "clipdetect: %v\n", err)
			os.Exit(1)
		}
		defer sk.Close()
		frame = gocv.NewMat()
		if err := sk.ExtractFrame(startUs, &frame); err != nil {
			fmt.Fprintf(os.Stderr, "clipdetect: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
	defer frame.Close()

	var result interface{}
	switch detectorName {
	case "qr":
		det, ok := qr.Detect(frame)
		if !ok {
			result = nil
		} else {
			result = det
		}
	case "season2025":
		detector, err := s2025.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "clipdetect: could not build season2025 detector: %v\n", err)
			os.Exit(1)
		}
		defer detector.Close()

		det, ok := detector.Detect(frame)
		if !ok {
			result = nil
		} else {
			result = det
		}
	default:
		usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "clipdetect: could not encode result: %v\n", err)
		os.Exit(1)
	}
}
