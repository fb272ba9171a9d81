package main

import (
	"io"
	"os"
	"time"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/config"
)

// renderBackend is the renderer a command owns for its lifetime.
type renderBackend interface {
	charsheet.Renderer
	Connected() bool
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the rendering backend.
type Environment struct {
	Now        func() time.Time
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *config.Config // nil = resolved from --config, CHARSHEET_CONFIG and defaults
	NewBackend func(charsheet.BackendOptions) renderBackend
}

// DefaultEnv returns the production environment with a headless Chrome
// backend.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewBackend: func(opts charsheet.BackendOptions) renderBackend {
			return charsheet.NewBackend(opts)
		},
	}
}
