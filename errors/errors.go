// Package errors provides error handling for pidsym.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints printed by the CLI
//
// Usage:
//
//	// Wrap with context
//	if err := os.WriteFile(path, data, 0o644); err != nil {
//	    return errors.Wrapf(err, "failed to write %s", path)
//	}
//
//	// Classify with a sentinel, keeping the original message
//	return errors.Mark(err, errors.ErrCatalogLoad)
//
//	// Add hints for users
//	return errors.WithHint(err, "install rsvg-convert or use --converter oksvg")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the pidsym failure taxonomy.
// Check with errors.Is(); attach with errors.Mark() or errors.Wrap().
var (
	// ErrCatalogLoad: the symbol catalog JSON is missing, unreadable or malformed. Fatal.
	ErrCatalogLoad = New("catalog load failed")

	// ErrNoConverter: no PNG converter is available on this host. Non-fatal.
	ErrNoConverter = New("no svg converter available")

	// ErrConversion: a single SVG could not be rasterized. Non-fatal per file.
	ErrConversion = New("svg conversion failed")

	// ErrNameScrape: the companion SVG could not be read for titles. Non-fatal.
	ErrNameScrape = New("title scrape failed")

	// ErrUnknownFamily: the requested symbol family is not registered
	ErrUnknownFamily = New("unknown symbol family")

	// ErrInvalidConfig: configuration values are out of range or inconsistent
	ErrInvalidConfig = New("invalid configuration")

	// ErrDirtyWorktree: a source fixup target has uncommitted changes
	ErrDirtyWorktree = New("file has uncommitted changes")
)

// IsFatal reports whether err aborts an extraction run.
// Converter and scrape failures degrade the run instead.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsAny(err, ErrNoConverter, ErrConversion, ErrNameScrape)
}

// NewUnknownFamilyError reports an unregistered family name together with the known ones.
func NewUnknownFamilyError(name string, known []string) error {
	err := Wrapf(ErrUnknownFamily, "%q", name)
	return WithHintf(err, "known families: %v", known)
}

// NewInvalidConfigError creates an invalid-config error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
