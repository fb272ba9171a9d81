package charsheet

import (
	"errors"
	"fmt"

	"github.com/alnah/go-charsheet/internal/fonts"
)

// Sentinel errors for composition.
var (
	ErrUnauthorized = errors.New("caller does not own character")

	// ErrNotFound is the parent of every missing-input error.
	ErrNotFound          = errors.New("not found")
	ErrCharacterNotFound = fmt.Errorf("character %w", ErrNotFound)
	ErrTemplateNotFound  = fmt.Errorf("template %w", ErrNotFound)

	ErrInvalidTemplate = errors.New("invalid sheet template")
	ErrInvalidSection  = errors.New("invalid section")

	// ErrFontLoad is shared with the font loader so either name matches.
	ErrFontLoad = fonts.ErrFontLoad

	ErrSectionRender = errors.New("section render failed")
	ErrFill          = errors.New("filling character page failed")

	// Rendering backend errors. Each specific error also matches
	// ErrRenderBackend.
	ErrRenderBackend  = errors.New("render backend failed")
	ErrBrowserConnect = fmt.Errorf("%w: failed to connect to browser", ErrRenderBackend)
	ErrPageCreate     = fmt.Errorf("%w: failed to create browser page", ErrRenderBackend)
	ErrPageLoad       = fmt.Errorf("%w: failed to load page", ErrRenderBackend)
	ErrPDFGeneration  = fmt.Errorf("%w: PDF generation failed", ErrRenderBackend)
	ErrBackendClosed  = fmt.Errorf("%w: backend closed", ErrRenderBackend)
)

// SectionError reports a generated section that could not be rendered or
// merged. It matches both ErrSectionRender and the underlying cause.
type SectionError struct {
	Section Section
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s section: %v", e.Section, e.Err)
}

// Unwrap returns ErrSectionRender and the cause.
func (e *SectionError) Unwrap() []error {
	return []error{ErrSectionRender, e.Err}
}
