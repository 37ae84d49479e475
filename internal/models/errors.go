package models

import (
	"errors"
	"fmt"
)

// ErrDataLoad matches every LoadError via errors.Is.
var ErrDataLoad = errors.New("data load failed")

// Load stages.
const (
	StageOpen   = "open"
	StageRead   = "read"
	StageHeader = "header"
	StageSchema = "schema"
	StageParse  = "parse"
)

// LoadError reports why the bridge table could not be built. The dashboard
// cannot run without a table, so callers treat it as fatal.
type LoadError struct {
	Stage  string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error at %s stage (%s): %v", e.Stage, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrDataLoad
}

// NewLoadError creates a new LoadError
func NewLoadError(stage, source string, err error) *LoadError {
	return &LoadError{
		Stage:  stage,
		Source: source,
		Err:    err,
	}
}
