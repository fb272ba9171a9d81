package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("layout template not found")

	// ErrInvalidAssetName is returned for names containing separators or dots.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath is returned when an override directory cannot be opened.
	ErrInvalidBasePath = errors.New("invalid asset directory")

	ErrAssetRead = errors.New("reading asset")
)
