package config

import (
	"errors"
	"fmt"
)

// MissingPropertyError reports a required key that resolved to no value.
type MissingPropertyError struct {
	Key Key
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s property is not present", e.Key)
}

// InvalidConfigError reports a key whose value breaks its rule, or a
// properties source that could not be read.
type InvalidConfigError struct {
	Key    Key
	Value  string
	Reason string
	Err    error
}

func (e *InvalidConfigError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	case e.Value == "":
		return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
	default:
		return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
	}
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}

// IsMissingPropertyError checks if the error is a missing property error.
func IsMissingPropertyError(err error) bool {
	var e *MissingPropertyError
	return errors.As(err, &e)
}

// IsInvalidConfigError checks if the error is an invalid value error.
func IsInvalidConfigError(err error) bool {
	var e *InvalidConfigError
	return errors.As(err, &e)
}

// IsConfigError checks if the error came from loading or validating configuration.
func IsConfigError(err error) bool {
	return IsMissingPropertyError(err) || IsInvalidConfigError(err)
}
