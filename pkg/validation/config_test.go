package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestConfigValidatorCollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("LayoutConfig")
	cv.PositiveFloat("Width", 0).
		PositiveFloat("Height", -1).
		RangeFloat("VelocityDecay", 0.4, 0, 1)

	if len(cv.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(cv.Errors()), cv.Errors())
	}
	err := cv.Validate()
	if err == nil {
		t.Fatal("Validate() returned nil")
	}
	if !strings.Contains(err.Error(), "LayoutConfig.Width") || !strings.Contains(err.Error(), "LayoutConfig.Height") {
		t.Errorf("joined error missing a field: %v", err)
	}
}

func TestConfigValidatorFloatRangesRejectNaN(t *testing.T) {
	nan := math.NaN()
	cv := NewConfigValidator("C").
		PositiveFloat("a", nan).
		NonNegativeFloat("b", nan).
		RangeFloat("c", nan, 0, 1).
		OpenRangeFloat("d", nan, 0, 1)

	if len(cv.Errors()) != 4 {
		t.Errorf("got %d errors, want 4", len(cv.Errors()))
	}
}

func TestConfigValidatorOpenRange(t *testing.T) {
	if NewConfigValidator("C").OpenRangeFloat("decay", 1, 0, 1).Validate() == nil {
		t.Error("upper bound should be excluded")
	}
	if err := NewConfigValidator("C").OpenRangeFloat("decay", 0.5, 0, 1).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigValidatorIntsAndDurations(t *testing.T) {
	cv := NewConfigValidator("StoreConfig").
		Positive("SeedCount", 0).
		NonNegative("Buffer", -1).
		NonNegativeDuration("Latency", -time.Second).
		MaxDuration("Latency", 10*time.Second, 5*time.Second).
		Required("Name", "")

	if len(cv.Errors()) != 5 {
		t.Errorf("got %d errors, want 5: %v", len(cv.Errors()), cv.Errors())
	}
}

func TestConfigValidatorOneOf(t *testing.T) {
	allowed := []string{"debug", "info"}
	if NewConfigValidator("Log").OneOf("Level", "info", allowed).HasErrors() {
		t.Error("info should be allowed")
	}
	if !NewConfigValidator("Log").OneOf("Level", "trace", allowed).HasErrors() {
		t.Error("trace should be rejected")
	}
}

type badConfig struct{}

func (badConfig) Validate() error { return errors.New("broken") }

func TestConfigValidatorCustomAndNested(t *testing.T) {
	sentinel := errors.New("viewport too small")
	cv := NewConfigValidator("Config").
		Custom("Viewport", func() error { return sentinel }).
		Nested("Layout", badConfig{})

	err := cv.Validate()
	if !errors.Is(err, sentinel) {
		t.Errorf("Validate() should wrap custom error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Config.Layout: broken") {
		t.Errorf("nested error not prefixed: %v", err)
	}
}

func TestDefaultOr(t *testing.T) {
	if DefaultOr("", "docgraph.log") != "docgraph.log" {
		t.Error("empty string should fall back")
	}
	if DefaultOr(3.5, 1.0) != 3.5 {
		t.Error("non-zero value should be kept")
	}
}
