/*
DESCRIPTION
  config_test.go provides testing for Config.Validate's defaulting
  behavior, in the style of revid/config's config_test.go.
*/

package config

import "testing"

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidateRequiresSourceAndOutDir(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	if err := c.Validate(); err == nil {
		t.Error("Validate with no SourceFile/OutDir: want error, got nil")
	}

	c = Config{SourceFile: "in.mp4", Logger: &dumbLogger{}}
	if err := c.Validate(); err == nil {
		t.Error("Validate with no OutDir: want error, got nil")
	}
}

func TestValidateDefaultsWorkers(t *testing.T) {
	c := Config{SourceFile: "in.mp4", OutDir: "out", Logger: &dumbLogger{}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Workers != 1 {
		t.Errorf("Workers = %d, want defaulted 1", c.Workers)
	}
}

func TestValidateClampsNegativeStart(t *testing.T) {
	c := Config{SourceFile: "in.mp4", OutDir: "out", StartUs: -5, Logger: &dumbLogger{}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.StartUs != 0 {
		t.Errorf("StartUs = %d, want clamped to 0", c.StartUs)
	}
}

func TestValidatePreservesExplicitFields(t *testing.T) {
	c := Config{SourceFile: "in.mp4", OutDir: "out", Workers: 4, StartUs: 7_000_000, Logger: &dumbLogger{}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Workers != 4 || c.StartUs != 7_000_000 {
		t.Errorf("Validate changed explicit fields: got Workers=%d StartUs=%d", c.Workers, c.StartUs)
	}
}
