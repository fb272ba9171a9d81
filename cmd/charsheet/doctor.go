package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/fileutil"
	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo   `json:"chrome"`
	Fonts    fontsInfo    `json:"fonts"`
	Template templateInfo `json:"template"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// fontsInfo holds font loading results.
type fontsInfo struct {
	Loaded  bool   `json:"loaded"`
	Source  string `json:"source"` // "embedded" or the font directory
	Regular string `json:"regular,omitempty"`
	Bold    string `json:"bold,omitempty"`

	// Uncovered lists the weights missing glyphs from coverageSample.
	Uncovered []string `json:"uncovered,omitempty"`
}

// coverageSample is text character sheets routinely print: digits, signs,
// accented Latin names and Cyrillic.
const coverageSample = "0123456789 +-/()[]½ ÀÉÎÕÜßçñ АБВГДЕЖЗИЙКЛМНОПРСТУФХЦЧШЩЮЯ абвгдежзийклмнопрстуфхцчшщюя"

// templateInfo holds sheet template results.
type templateInfo struct {
	Found    bool   `json:"found"`
	Path     string `json:"path"`
	Pages    int    `json:"pages,omitempty"`
	Fields   int    `json:"fields"`
	Mapped   int    `json:"mapped"`
	Strategy string `json:"strategy,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	var (
		common     commonFlags
		jsonOutput bool
	)
	if _, err := parseFlags(buildDoctorFlagSet(&common, &jsonOutput), args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runHelp([]string{"doctor"}, env)
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(common.config, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg, err := resolveConfig(configName, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = config.DefaultConfig()
	}
	if cfg.Render.BrowserBin != "" {
		result.Env.BrowserBin = cfg.Render.BrowserBin
	}
	if cfg.Render.NoSandbox {
		result.Env.NoSandbox = "1"
	}

	checkChrome(result)
	checkFonts(result, cfg.Fonts)
	checkTemplate(result, cfg.Template.Path)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; a managed Chromium will be downloaded on first render. Set ROD_BROWSER_BIN to use your own")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- path from config or rod lookup
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkFonts loads the configured font pair.
func checkFonts(result *doctorResult, f config.FontsConfig) {
	result.Fonts.Source = "embedded"
	if f.Dir != "" {
		result.Fonts.Source = f.Dir
	}

	set, err := fonts.NewLoader(fontSource(f)).Load()
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForFontLoad(f.Dir))
		return
	}
	result.Fonts.Loaded = true
	result.Fonts.Regular = set.Regular.PostScriptName()
	result.Fonts.Bold = set.Bold.PostScriptName()

	result.Fonts.Uncovered = uncoveredWeights(set, coverageSample)
	if len(result.Fonts.Uncovered) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Font (%s) lacks common sheet glyphs; names or descriptions may print as boxes",
			strings.Join(result.Fonts.Uncovered, ", ")))
	}
}

// uncoveredWeights returns the weights of set that cannot draw all of sample.
func uncoveredWeights(set *fonts.Set, sample string) []string {
	var out []string
	for _, w := range []fonts.Weight{fonts.Regular, fonts.Bold} {
		if !set.Face(w).Covers(sample) {
			out = append(out, w.String())
		}
	}
	return out
}

// checkTemplate opens the sheet template and counts the fields the alias
// table can fill.
func checkTemplate(result *doctorResult, path string) {
	result.Template.Path = path

	report, err := describeTemplate(path, charsheet.DefaultAliasTable)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Template.Found = true
	result.Template.Pages = report.Pages
	result.Template.Fields = len(report.Fields)
	result.Template.Strategy = report.Strategy
	for _, f := range report.Fields {
		if f.Key != "" {
			result.Template.Mapped++
		}
	}
	if result.Template.Fields > 0 && result.Template.Mapped == 0 {
		result.Warnings = append(result.Warnings,
			"Template has form fields but none match known names; the character page will print blank")
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	result.Env.CI = hints.DetectBrowser(os.Getenv).CI

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but sandbox not disabled. Set render.noSandbox or CHARSHEET_RENDER_NO_SANDBOX=true")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv(envContainer) == "1" {
		return true, envContainer + "=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that section pages can be staged in the temp directory.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTemp("charsheet-doctor-*.html", []byte("<p>ok</p>"))
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s (%v)", os.TempDir(), err))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "charsheet doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Fonts")
	if r.Fonts.Loaded {
		fmt.Fprintf(w, "  [OK] %s, %s (%s)\n", r.Fonts.Regular, r.Fonts.Bold, r.Fonts.Source)
		if len(r.Fonts.Uncovered) > 0 {
			fmt.Fprintf(w, "  [WARN] Missing glyphs: %s\n", strings.Join(r.Fonts.Uncovered, ", "))
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] Not loaded (%s)\n", r.Fonts.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Template")
	if r.Template.Found {
		fmt.Fprintf(w, "  [OK] %s: %d page(s)\n", r.Template.Path, r.Template.Pages)
		fmt.Fprintf(w, "  [OK] Fill: %s (%d of %d fields mapped)\n", r.Template.Strategy, r.Template.Mapped, r.Template.Fields)
	} else {
		fmt.Fprintf(w, "  [ERROR] Not usable: %s\n", r.Template.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to print")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
