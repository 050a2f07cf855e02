// Package edrerr holds the error types shared by acquisition, query
// resolution and the HTTP layer.
package edrerr

import (
	"fmt"
	"strings"
)

// ConfigurationError reports conflicting or unusable startup options.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// AcquisitionError reports a failure to download, decode or validate the
// dataset file. It is always fatal.
type AcquisitionError struct {
	File string
	Msg  string
	Err  error
}

func (e *AcquisitionError) Error() string {
	var b strings.Builder
	b.WriteString("acquisition error")
	if e.File != "" {
		b.WriteString(" (" + e.File + ")")
	}
	b.WriteString(": " + e.Msg)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// ValidationError reports malformed caller input. Input carries the offending
// value verbatim.
type ValidationError struct {
	Loc   []string
	Msg   string
	Type  string
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (input %q)", strings.Join(e.Loc, "."), e.Msg, e.Input)
}

// BoundsError reports a coordinate outside the dataset's spatial extent.
type BoundsError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("coord %v out of bounds on %s axis. Min/max is %v/%v", e.Value, e.Axis, e.Min, e.Max)
}

// InstanceError reports an instance identifier that is not loaded.
type InstanceError struct {
	Given string
	Valid []string
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("instance %q not found, valid instances: %s", e.Given, strings.Join(e.Valid, ", "))
}
