// Package store serves characters from YAML files, one per character, named
// <id>.yaml inside a data directory.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/yamlutil"
)

// ErrInvalidID is returned for identifiers that could escape the data
// directory or that no file could be named after.
var ErrInvalidID = errors.New("invalid character id")

// MaxIDLength limits character identifiers.
const MaxIDLength = 128

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateID reports whether id is safe to use as a file name.
func ValidateID(id string) error {
	if len(id) == 0 || len(id) > MaxIDLength || !idRe.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Dir is a directory of character files. It implements both
// charsheet.CharacterLoader and charsheet.OwnerVerifier.
type Dir struct {
	path string
}

// Compile-time interface checks.
var (
	_ charsheet.CharacterLoader = (*Dir)(nil)
	_ charsheet.OwnerVerifier   = (*Dir)(nil)
)

// NewDir creates a store over path. The directory is not read until the
// first lookup.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the data directory.
func (d *Dir) Path() string { return d.path }

// LoadCharacter implements charsheet.CharacterLoader. A character whose file
// omits its id takes the id it was looked up by.
func (d *Dir) LoadCharacter(ctx context.Context, id string) (*charsheet.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	path, ok := d.find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", charsheet.ErrCharacterNotFound, id)
	}
	c, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = id
	}
	return c, nil
}

// VerifyOwner implements charsheet.OwnerVerifier. Ownership is an exact
// match of callerID against the file's owner; a file without an owner
// belongs to nobody. A missing character is owned by nobody either, so a
// caller cannot tell missing ids from other people's.
func (d *Dir) VerifyOwner(ctx context.Context, characterID, callerID string) (bool, error) {
	c, err := d.LoadCharacter(ctx, characterID)
	if errors.Is(err, charsheet.ErrCharacterNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.Owner != "" && c.Owner == callerID, nil
}

func (d *Dir) find(id string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(d.path, id+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// ReadFile decodes one character file. Unknown keys are rejected so typos
// in hand-written files surface instead of printing blanks.
func ReadFile(path string) (*charsheet.Character, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- id validated or path from user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", charsheet.ErrCharacterNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var c charsheet.Character
	if err := yamlutil.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}

// File serves a single character file regardless of the id asked for. It
// backs one-off prints, where the caller already holds the file.
type File struct {
	Character *charsheet.Character
}

// Compile-time interface checks.
var (
	_ charsheet.CharacterLoader = File{}
	_ charsheet.OwnerVerifier   = File{}
)

// LoadCharacter implements charsheet.CharacterLoader.
func (f File) LoadCharacter(ctx context.Context, _ string) (*charsheet.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Character, nil
}

// VerifyOwner implements charsheet.OwnerVerifier with the same rule as Dir.
func (f File) VerifyOwner(_ context.Context, _, callerID string) (bool, error) {
	if f.Character == nil {
		return false, nil
	}
	return f.Character.Owner != "" && f.Character.Owner == callerID, nil
}
