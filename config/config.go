/*
DESCRIPTION
  config.go provides the runtime Config for a clipcrab run: the CLI-derived
  settings (source file, output directory, worker count, start offset) plus
  the shared Logger every component logs through.
*/

// Package config provides clipcrab's runtime configuration and the
// resolution-agnostic season-2025 geometry constants detect/season/s2025
// is built from, in the style of github.com/ausocean/av/revid/config: a
// validated settings struct plus a LogInvalidField helper for defaulted
// fields.
package config

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// Config holds settings for a single clipcrab run.
type Config struct {
	// SourceFile is the path to the multi-hour source recording.
	SourceFile string

	// OutDir receives one {MatchKey}.mkv clip per detected match.
	OutDir string

	// Workers is the number of worker goroutines analyzing frames and
	// emitting clips concurrently.
	Workers uint64

	// StartUs skips analysis before this many microseconds into the
	// recording (from the -start-ts flag).
	StartUs int64

	// DebugPlotDir, if non-empty, causes one diagnostic timeline PNG per
	// match to be written there after clustering (see project/plot).
	DebugPlotDir string

	// Logger is used by every component in this module. Config itself
	// never logs to anything else.
	Logger logging.Logger
}

// Validate checks that the fields required to start a run are present and
// sane, defaulting what can be defaulted and logging when it does.
func (c *Config) Validate() error {
	if c.SourceFile == "" {
		return fmt.Errorf("config: source file is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("config: output directory is required")
	}
	if c.Workers == 0 {
		c.LogInvalidField("Workers", uint64(1))
		c.Workers = 1
	}
	if c.StartUs < 0 {
		c.LogInvalidField("StartUs", int64(0))
		c.StartUs = 0
	}
	return nil
}

// LogInvalidField logs that field was bad or unset and is being defaulted
// to def, matching the revid/config idiom this package is patterned on.
func (c *Config) LogInvalidField(field string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(field+" bad or unset, defaulting", field, def)
}
