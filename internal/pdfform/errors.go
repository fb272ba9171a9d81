package pdfform

import "errors"

// Sentinel errors for form operations.
var (
	ErrMalformed     = errors.New("malformed PDF")
	ErrFieldNotFound = errors.New("form field not found")
	ErrFieldType     = errors.New("wrong form field type")
	ErrFieldExists   = errors.New("form field already exists")
	ErrPageIndex     = errors.New("page index out of range")
	ErrNoFont        = errors.New("no font for appearance streams")
)
