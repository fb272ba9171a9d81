package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Template.Path != "CharacterSheet.pdf" {
		t.Errorf("Template.Path = %q, want %q", cfg.Template.Path, "CharacterSheet.pdf")
	}
	if cfg.Fonts.Dir != "" {
		t.Errorf("Fonts.Dir = %q, want empty", cfg.Fonts.Dir)
	}
	if cfg.Render.Timeout != DefaultTimeout {
		t.Errorf("Render.Timeout = %v, want %v", cfg.Render.Timeout, DefaultTimeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Print.StrictSections {
		t.Error("Print.StrictSections = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Fatalf("error = %v, want ErrFieldTooLong", err)
				}
				if !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error %q should name the field", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "template path too long",
			mutate:  func(c *Config) { c.Template.Path = strings.Repeat("a", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "font name too long",
			mutate:  func(c *Config) { c.Fonts.Bold = strings.Repeat("b", MaxFontNameLen+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Render.Timeout = -time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout above max",
			mutate:  func(c *Config) { c.Render.Timeout = MaxTimeout + time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:   "zero timeout allowed",
			mutate: func(c *Config) { c.Render.Timeout = 0 },
		},
		{
			name:    "workers above max",
			mutate:  func(c *Config) { c.Render.Workers = MaxWorkers + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Server.RateLimit = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative burst",
			mutate:  func(c *Config) { c.Server.RateBurst = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name: "too many origins",
			mutate: func(c *Config) {
				c.Server.AllowOrigins = make([]string, MaxOrigins+1)
			},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "origin too long",
			mutate:  func(c *Config) { c.Server.AllowOrigins = []string{strings.Repeat("o", MaxOriginLength+1)} },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "section name too long",
			mutate:  func(c *Config) { c.Print.Sections = []string{strings.Repeat("S", MaxSectionLength+1)} },
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
template:
  path: /srv/sheets/5e.pdf
fonts:
  dir: /srv/fonts
  regular: NotoSans-Regular.ttf
  bold: NotoSans-Bold.ttf
render:
  timeout: 45s
  workers: 3
  noSandbox: true
data:
  dir: /srv/characters
server:
  addr: 127.0.0.1:9000
  rateLimit: 0.5
  rateBurst: 2
  allowOrigins:
    - https://tavern.example
print:
  sections: [CHARACTER, SPELLS]
  readOnly: true
  strictSections: true
`)
		got, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() unexpected error: %v", err)
		}

		want := &Config{
			Template: TemplateConfig{Path: "/srv/sheets/5e.pdf"},
			Fonts:    FontsConfig{Dir: "/srv/fonts", Regular: "NotoSans-Regular.ttf", Bold: "NotoSans-Bold.ttf"},
			Render:   RenderConfig{Timeout: 45 * time.Second, Workers: 3, NoSandbox: true},
			Data:     DataConfig{Dir: "/srv/characters"},
			Server: ServerConfig{
				Addr:         "127.0.0.1:9000",
				RateLimit:    0.5,
				RateBurst:    2,
				AllowOrigins: []string{"https://tavern.example"},
			},
			Print: PrintConfig{Sections: []string{"CHARACTER", "SPELLS"}, ReadOnly: true, StrictSections: true, Date: "auto"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "data:\n  dir: ./party\n")
		got, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() unexpected error: %v", err)
		}
		if got.Data.Dir != "./party" {
			t.Errorf("Data.Dir = %q, want %q", got.Data.Dir, "./party")
		}
		if got.Template.Path != "CharacterSheet.pdf" {
			t.Errorf("Template.Path = %q, want default", got.Template.Path)
		}
		if got.Render.Timeout != DefaultTimeout {
			t.Errorf("Render.Timeout = %v, want default", got.Render.Timeout)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "templat:\n  path: x.pdf\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "render:\n  workers: 500\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestResolveConfigPath_NotFound(t *testing.T) {
	t.Parallel()

	_, err := resolveConfigPath("charsheet-no-such-config-xyz")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "charsheet-no-such-config-xyz.yaml") {
		t.Errorf("error %q should list tried paths", err)
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"work", false},
		{"./work.yaml", true},
		{"/etc/charsheet.yaml", true},
		{`C:\cfg\work.yaml`, true},
	}
	for _, tt := range tests {
		if got := isFilePath(tt.in); got != tt.want {
			t.Errorf("isFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ApplyEnv tests cannot run in parallel: t.Setenv modifies the process environment.
func TestApplyEnv(t *testing.T) {
	t.Setenv("CHARSHEET_TEMPLATE_PATH", "/env/sheet.pdf")
	t.Setenv("CHARSHEET_RENDER_TIMEOUT", "90s")
	t.Setenv("CHARSHEET_SERVER_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CHARSHEET_STRICT_SECTIONS", "true")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}

	if cfg.Template.Path != "/env/sheet.pdf" {
		t.Errorf("Template.Path = %q, want %q", cfg.Template.Path, "/env/sheet.pdf")
	}
	if cfg.Render.Timeout != 90*time.Second {
		t.Errorf("Render.Timeout = %v, want 90s", cfg.Render.Timeout)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Server.AllowOrigins); diff != "" {
		t.Errorf("AllowOrigins mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Print.StrictSections {
		t.Error("Print.StrictSections = false, want true")
	}
	if cfg.Data.Dir != "characters" {
		t.Errorf("Data.Dir = %q, want default kept", cfg.Data.Dir)
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	t.Setenv("CHARSHEET_RENDER_WORKERS", "not-a-number")

	err := ApplyEnv(DefaultConfig())
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("ApplyEnv() = %v, want ErrConfigParse", err)
	}
}

func TestKnownEnvVars(t *testing.T) {
	t.Parallel()

	names := KnownEnvVars()
	for _, want := range []string{
		"CHARSHEET_TEMPLATE_PATH",
		"CHARSHEET_FONTS_DIR",
		"CHARSHEET_RENDER_BROWSER_BIN",
		"CHARSHEET_DATA_DIR",
		"CHARSHEET_SERVER_RATE_LIMIT",
		"CHARSHEET_ASSETS_BASE_PATH",
		"CHARSHEET_STRICT_SECTIONS",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("KnownEnvVars() missing %q", want)
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "charsheet.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
