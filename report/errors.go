package report

import "errors"

// ErrIOFailure is returned when an output destination cannot be written
var ErrIOFailure = errors.New("report: output could not be written")
