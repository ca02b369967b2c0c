package validation

import (
	"errors"
	"fmt"
	"time"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) addf(format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s."+format, append([]any{cv.name}, args...)...))
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.addf("%s: required field is empty", field)
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.addf("%s: value %d must be positive", field, value)
	}
	return cv
}

// NonNegative validates that an int field is non-negative (>= 0).
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value < 0 {
		cv.addf("%s: value %d must be non-negative", field, value)
	}
	return cv
}

// PositiveFloat validates that a float field is positive (> 0).
func (cv *ConfigValidator) PositiveFloat(field string, value float64) *ConfigValidator {
	if !(value > 0) {
		cv.addf("%s: value %g must be positive", field, value)
	}
	return cv
}

// NonNegativeFloat validates that a float field is non-negative (>= 0).
func (cv *ConfigValidator) NonNegativeFloat(field string, value float64) *ConfigValidator {
	if !(value >= 0) {
		cv.addf("%s: value %g must be non-negative", field, value)
	}
	return cv
}

// RangeFloat validates min <= value <= max. NaN always fails.
func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if !(value >= min && value <= max) {
		cv.addf("%s: value %g is outside range [%g, %g]", field, value, min, max)
	}
	return cv
}

// OpenRangeFloat validates min < value < max.
func (cv *ConfigValidator) OpenRangeFloat(field string, value, min, max float64) *ConfigValidator {
	if !(value > min && value < max) {
		cv.addf("%s: value %g is outside range (%g, %g)", field, value, min, max)
	}
	return cv
}

// NonNegativeDuration validates that a duration is not negative.
func (cv *ConfigValidator) NonNegativeDuration(field string, value time.Duration) *ConfigValidator {
	if value < 0 {
		cv.addf("%s: duration %v must be non-negative", field, value)
	}
	return cv
}

// MaxDuration validates that a duration does not exceed the maximum.
func (cv *ConfigValidator) MaxDuration(field string, value, max time.Duration) *ConfigValidator {
	if value > max {
		cv.addf("%s: duration %v exceeds maximum %v", field, value, max)
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.addf("%s: value %q must be one of %v", field, value, allowed)
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// Nested validates a sub-config and reports its errors under this validator.
func (cv *ConfigValidator) Nested(field string, config Validatable) *ConfigValidator {
	if err := config.Validate(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}

// Validatable is an interface for types that can validate themselves.
type Validatable interface {
	Validate() error
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
