package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/assets"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/hints"
)

// character is what a command needs to generate sheets: a way to load
// characters and to check who owns them.
type character interface {
	charsheet.CharacterLoader
	charsheet.OwnerVerifier
}

// newBackend starts the rendering backend described by cfg.
func newBackend(cfg *config.Config, env *Environment, logger *zap.Logger) renderBackend {
	return env.NewBackend(charsheet.BackendOptions{
		Timeout:    cfg.Render.Timeout,
		Workers:    cfg.Render.Workers,
		BrowserBin: cfg.Render.BrowserBin,
		NoSandbox:  cfg.Render.NoSandbox,
		Logger:     logger.Named("backend"),
	})
}

// newComposer wires a Composer from cfg.
func newComposer(cfg *config.Config, chars character, r charsheet.Renderer, logger *zap.Logger) (*charsheet.Composer, error) {
	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}

	opts := []charsheet.Option{
		charsheet.WithLogger(logger),
		charsheet.WithFontLoader(fonts.NewLoader(fontSource(cfg.Fonts))),
		charsheet.WithAssetLoader(loader),
	}
	if cfg.Render.Timeout > 0 {
		opts = append(opts, charsheet.WithRenderTimeout(cfg.Render.Timeout))
	}

	return charsheet.NewComposer(chars, chars, charsheet.TemplateFile(cfg.Template.Path), r, opts...)
}

// fontSource returns the configured font files, or nil for the built-in
// fonts.
func fontSource(f config.FontsConfig) fonts.Source {
	if f.Dir == "" {
		return nil
	}
	return fonts.DirSource{Dir: f.Dir, Regular: f.Regular, Bold: f.Bold}
}

// withHint appends an actionable hint to err when one applies.
func withHint(err error, cfg *config.Config) error {
	var hint string
	switch {
	case errors.Is(err, charsheet.ErrBrowserConnect):
		b := hints.DetectBrowser(os.Getenv)
		b.NoSandbox = b.NoSandbox || cfg.Render.NoSandbox
		if cfg.Render.BrowserBin != "" {
			b.BrowserBin = cfg.Render.BrowserBin
		}
		hint = hints.ForBrowserConnect(b)
	case errors.Is(err, context.DeadlineExceeded):
		hint = hints.ForTimeout()
	case errors.Is(err, charsheet.ErrTemplateNotFound):
		hint = hints.ForTemplateNotFound()
	case errors.Is(err, charsheet.ErrFontLoad):
		hint = hints.ForFontLoad(cfg.Fonts.Dir)
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
