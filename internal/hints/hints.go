// Package hints builds the short "hint:" lines appended to CLI errors.
// Every hint starts on its own line as "\n  hint: <text>".
package hints

import (
	"strings"

	"github.com/alnah/go-charsheet/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker. Tests
// replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// Browser is the render setup a browser failure happened under.
type Browser struct {
	CI         bool
	Container  bool
	NoSandbox  bool
	BrowserBin string
}

// DetectBrowser fills a Browser from the environment. Explicit
// configuration is merged in by the caller.
func DetectBrowser(getenv func(string) string) Browser {
	return Browser{
		CI: getenv("CI") != "" ||
			getenv("GITHUB_ACTIONS") != "" ||
			getenv("GITLAB_CI") != "" ||
			getenv("JENKINS_URL") != "" ||
			getenv("CIRCLECI") != "",
		Container:  IsInContainer() || getenv("CHARSHEET_CONTAINER") == "1",
		NoSandbox:  getenv("ROD_NO_SANDBOX") == "1",
		BrowserBin: getenv("ROD_BROWSER_BIN"),
	}
}

// ForBrowserConnect suggests the render settings that usually fix a
// browser that fails to start.
func ForBrowserConnect(b Browser) string {
	var out []string
	if (b.CI || b.Container) && !b.NoSandbox {
		out = append(out, "set render.noSandbox or CHARSHEET_RENDER_NO_SANDBOX=true inside containers and CI")
	}
	if b.BrowserBin == "" {
		out = append(out, "set render.browserBin to use an installed Chrome")
	} else {
		out = append(out, "check that "+b.BrowserBin+" starts")
	}
	return format(strings.Join(out, "; "))
}

// ForTimeout returns a hint for a render that ran out of time.
func ForTimeout() string {
	return format("long spell or feature lists take longer to print; raise --timeout")
}

// ForConfigNotFound suggests --config, or creating the user config file
// when it is among the searched paths.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, ".config/go-charsheet") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check that the parent directory exists and is writable")
}

// ForFontLoad returns a hint for missing or unreadable font files.
func ForFontLoad(dir string) string {
	if dir == "" {
		return format("set fonts.dir or CHARSHEET_FONTS_DIR to a directory with regular and bold TrueType files")
	}
	return format("check that " + dir + " holds the configured regular and bold .ttf files")
}

// ForTemplateNotFound returns a hint for a missing sheet template.
func ForTemplateNotFound() string {
	return format("set template.path or use --template /path/to/sheet.pdf")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
