// Package yamlutil decodes the YAML documents charsheet reads: config files
// and character files.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a document at 1 MB.
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeError is a decoding failure. Error includes the offending source
// lines when the parser reports a position.
type DecodeError struct {
	Err    error
	Detail string
}

func (e *DecodeError) Error() string { return "yamlutil: " + e.Detail }

func (e *DecodeError) Unwrap() error { return e.Err }

// UnmarshalStrict decodes data into v. Unknown keys and duplicate keys are
// errors.
func UnmarshalStrict(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	err := yaml.UnmarshalWithOptions(data, v, yaml.Strict(), yaml.DisallowDuplicateKey())
	if err != nil {
		return &DecodeError{
			Err:    err,
			Detail: strings.TrimSpace(yaml.FormatError(err, false, true)),
		}
	}
	return nil
}
