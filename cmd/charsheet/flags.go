package main

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-charsheet/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds flags for commands that render sheets.
type renderFlags struct {
	template string
	timeout  time.Duration
	workers  int
}

// printFlags holds flags for the print command.
type printFlags struct {
	common   commonFlags
	render   renderFlags
	output   string
	caller   string
	sections []string
	date     string
	readOnly bool
	strict   bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	render  renderFlags
	addr    string
	dataDir string
}

// fieldsFlags holds flags for the fields command.
type fieldsFlags struct {
	common   commonFlags
	template string
	json     bool
}

// addCommonFlags registers flags shared by every command.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addRenderFlags registers flags for the template and the browser.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.template, "template", "t", "", "character sheet PDF template")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-section render timeout (e.g. 30s, 1m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent browser tabs (0 = auto)")
}

// apply overrides cfg with the render flags that were set.
func (f renderFlags) apply(cfg *config.Config) {
	if f.template != "" {
		cfg.Template.Path = f.template
	}
	if f.timeout > 0 {
		cfg.Render.Timeout = f.timeout
	}
	if f.workers > 0 {
		cfg.Render.Workers = f.workers
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

// buildPrintFlagSet creates the print command's FlagSet bound to f.
func buildPrintFlagSet(f *printFlags) *flag.FlagSet {
	fs := newFlagSet("print")
	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default <character>.pdf)")
	fs.StringVar(&f.caller, "caller", "", "caller id checked against the character owner")
	fs.StringSliceVarP(&f.sections, "sections", "s", nil, "sections: CHARACTER,FEATURES,SPELLS,MAGIC_ITEMS")
	fs.StringVar(&f.date, "date", "", "stamp under section titles: \"auto\", \"auto:FORMAT\", or literal")
	fs.BoolVar(&f.readOnly, "read-only", false, "make form fields read-only")
	fs.BoolVar(&f.strict, "strict", false, "fail when a section cannot be rendered")
	addRenderFlags(fs, &f.render)
	addCommonFlags(fs, &f.common)
	return fs
}

// buildServeFlagSet creates the serve command's FlagSet bound to f.
func buildServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := newFlagSet("serve")
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8080)")
	fs.StringVarP(&f.dataDir, "data-dir", "d", "", "directory of <id>.yaml character files")
	addRenderFlags(fs, &f.render)
	addCommonFlags(fs, &f.common)
	return fs
}

// buildFieldsFlagSet creates the fields command's FlagSet bound to f.
func buildFieldsFlagSet(f *fieldsFlags) *flag.FlagSet {
	fs := newFlagSet("fields")
	fs.StringVarP(&f.template, "template", "t", "", "character sheet PDF template")
	fs.BoolVar(&f.json, "json", false, "output as JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// buildDoctorFlagSet creates the doctor command's FlagSet.
func buildDoctorFlagSet(f *commonFlags, jsonOut *bool) *flag.FlagSet {
	fs := newFlagSet("doctor")
	fs.BoolVar(jsonOut, "json", false, "output as JSON")
	addCommonFlags(fs, f)
	return fs
}
