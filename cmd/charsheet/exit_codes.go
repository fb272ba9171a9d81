package main

import (
	"context"
	"errors"
	"os"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/assets"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/dateutil"
	"github.com/alnah/go-charsheet/internal/store"
)

// Exit codes for the charsheet CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess      = 0 // Sheet written
	ExitGeneral      = 1 // General/unexpected error
	ExitUsage        = 2 // Invalid flags, config, or validation
	ExitIO           = 3 // File or character not found, permission denied
	ExitBrowser      = 4 // Browser/Chrome errors
	ExitUnauthorized = 5 // Caller does not own the character
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, charsheet.ErrUnauthorized) {
		return ExitUnauthorized
	}

	// Browser errors (exit 4)
	if errors.Is(err, charsheet.ErrRenderBackend) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, charsheet.ErrNotFound) ||
		errors.Is(err, charsheet.ErrFontLoad) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, charsheet.ErrInvalidSection) ||
		errors.Is(err, charsheet.ErrInvalidTemplate) ||
		errors.Is(err, store.ErrInvalidID) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
