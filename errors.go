package kplr

import "errors"

var (
	// ErrTransport indicates a failed exchange with a remote archive: a
	// non-200 status, or the Exoplanet Archive's in-band "ERROR" marker
	// (that service reports application failures in the response body
	// rather than the status code). The wrapped message carries the status
	// or marker text.
	ErrTransport = errors.New("kplr: transport failure")

	// ErrNotFound indicates that a by-identity lookup (KOI, star, planet,
	// or data file search) matched no records.
	ErrNotFound = errors.New("kplr: not found")

	// ErrMalformedName indicates a planet name that does not match the
	// expected "Kepler-62b" / "62 b" pattern.
	ErrMalformedName = errors.New("kplr: malformed planet name")

	// ErrMissingField indicates that a record's row mapping lacks a field
	// required to construct or link the record.
	ErrMissingField = errors.New("kplr: missing field")

	// ErrNoTable indicates that no local file exists for a requested
	// offline table.
	ErrNoTable = errors.New("kplr: no local table")
)
