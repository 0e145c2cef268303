package domain

import "errors"

var (
	// ErrSourceNotFound aborts a run before any processing when the survey file is missing.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrNoLocalityRecords aborts a run when the municipality filter removes every row.
	// It almost always means the target locality no longer matches the spreadsheet spelling.
	ErrNoLocalityRecords = errors.New("no records left after municipality filter")
)
