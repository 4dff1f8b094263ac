package relerrors

import (
	"errors"
)

var (
	// ErrFileNotFound indicates a file wasn't found in the specified path.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFormat indicates an unexpected or invalid format was encountered.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidVersion indicates a version string could not be parsed.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrVersionRegression indicates a version that is not greater than the
	// latest published version.
	ErrVersionRegression = errors.New("version regression")

	// ErrDuplicate indicates a record that already exists.
	ErrDuplicate = errors.New("duplicate")

	// ErrUnknownRubric indicates a rubric that is not declared in the
	// project configuration.
	ErrUnknownRubric = errors.New("unknown rubric")

	// ErrInvalidArguments indicates invalid arguments were provided.
	ErrInvalidArguments = errors.New("invalid arguments")
)
