package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/dateutil"
	"github.com/alnah/go-charsheet/internal/fileutil"
	"github.com/alnah/go-charsheet/internal/hints"
	"github.com/alnah/go-charsheet/internal/store"
)

// printTarget is the resolved character of a print command.
type printTarget struct {
	id     string
	caller string
	chars  character
}

// runPrint executes the print command.
func runPrint(ctx context.Context, args []string, env *Environment) error {
	f := &printFlags{}
	fs := buildPrintFlagSet(f)
	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: usage: charsheet print <file.yaml|id> [flags]", ErrNoInput)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: print takes one character, got %d", ErrUsage, len(positional))
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	f.render.apply(cfg)

	pcfg, err := buildPrintConfig(fs, f, cfg, env)
	if err != nil {
		return err
	}

	target, err := resolveTarget(positional[0], f.caller, cfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common)
	defer func() { _ = logger.Sync() }()

	backend := newBackend(cfg, env, logger)
	defer func() { _ = backend.Close() }()

	comp, err := newComposer(cfg, target.chars, backend, logger)
	if err != nil {
		return err
	}

	start := env.Now()
	pdf, err := comp.Generate(ctx, target.id, target.caller, pcfg)
	if err != nil {
		return withHint(err, cfg)
	}

	out := resolveOutputPath(f.output, target.id)
	if err := writePDF(out, pdf); err != nil {
		return err
	}

	logger.Debug("sheet written",
		zap.String("character", target.id),
		zap.String("path", out),
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", env.Now().Sub(start)),
	)
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s\n", out)
	}
	return nil
}

// buildPrintConfig merges print flags over the configured print defaults.
func buildPrintConfig(fs *flag.FlagSet, f *printFlags, cfg *config.Config, env *Environment) (charsheet.PrintConfig, error) {
	tags := cfg.Print.Sections
	if fs.Changed("sections") {
		tags = f.sections
	}
	sections, err := charsheet.ParseSections(tags)
	if err != nil {
		return charsheet.PrintConfig{}, err
	}

	date := cfg.Print.Date
	if fs.Changed("date") {
		date = f.date
	}
	stamp, err := dateutil.ResolveDate(date, env.Now())
	if err != nil {
		return charsheet.PrintConfig{}, err
	}

	pcfg := charsheet.PrintConfig{
		Sections:       sections,
		ReadOnly:       cfg.Print.ReadOnly,
		StrictSections: cfg.Print.StrictSections,
		Stamp:          stamp,
	}
	if fs.Changed("read-only") {
		pcfg.ReadOnly = f.readOnly
	}
	if fs.Changed("strict") {
		pcfg.StrictSections = f.strict
	}
	return pcfg, nil
}

// resolveTarget reads a character file, or points at the data directory
// when arg is a bare id. A file prints on behalf of its owner unless
// --caller says otherwise; an id always needs --caller.
func resolveTarget(arg, caller string, cfg *config.Config) (*printTarget, error) {
	if !looksLikeCharacterFile(arg) {
		if caller == "" {
			return nil, fmt.Errorf("%w: --caller is required when printing by id", ErrUsage)
		}
		return &printTarget{id: arg, caller: caller, chars: store.NewDir(cfg.Data.Dir)}, nil
	}

	c, err := store.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
	}
	if caller == "" {
		caller = c.Owner
	}
	return &printTarget{id: c.ID, caller: caller, chars: store.File{Character: c}}, nil
}

// looksLikeCharacterFile reports whether arg names a YAML file rather than
// a character id.
func looksLikeCharacterFile(arg string) bool {
	ext := strings.ToLower(filepath.Ext(arg))
	return ext == ".yaml" || ext == ".yml" || strings.ContainsAny(arg, `/\`)
}

// resolveOutputPath picks the PDF path: the flag, a file inside the flag
// when it is a directory, or <id>.pdf in the working directory.
func resolveOutputPath(flagOutput, id string) string {
	if flagOutput == "" {
		return id + ".pdf"
	}
	if info, err := os.Stat(flagOutput); err == nil && info.IsDir() {
		return filepath.Join(flagOutput, id+".pdf")
	}
	if strings.HasSuffix(flagOutput, "/") || strings.HasSuffix(flagOutput, string(filepath.Separator)) {
		return filepath.Join(flagOutput, id+".pdf")
	}
	return flagOutput
}

// writePDF replaces path with data, creating the parent directory.
func writePDF(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: creating %s: %v%s", ErrWritePDF, dir, err, hints.ForOutputDirectory())
		}
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}
