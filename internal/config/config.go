package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/alnah/go-charsheet/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "CHARSHEET_"

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxFontNameLen   = 255
	MaxAddrLength    = 255
	MaxOriginLength  = 2048
	MaxOrigins       = 32
	MaxSectionLength = 20
	MaxDateLength    = 64
	MaxWorkers       = 64
	MaxTimeout       = 10 * time.Minute
)

// DefaultTimeout bounds one section render when the caller sets no deadline.
const DefaultTimeout = 30 * time.Second

// Config holds all configuration for sheet generation and the HTTP server.
type Config struct {
	Template TemplateConfig `yaml:"template" envPrefix:"TEMPLATE_"`
	Fonts    FontsConfig    `yaml:"fonts" envPrefix:"FONTS_"`
	Render   RenderConfig   `yaml:"render" envPrefix:"RENDER_"`
	Data     DataConfig     `yaml:"data" envPrefix:"DATA_"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Assets   AssetsConfig   `yaml:"assets" envPrefix:"ASSETS_"`
	Print    PrintConfig    `yaml:"print"`
}

// TemplateConfig locates the fillable character-sheet PDF.
type TemplateConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// FontsConfig locates the regular and bold TrueType files. An empty Dir
// selects the built-in Go fonts.
type FontsConfig struct {
	Dir     string `yaml:"dir" env:"DIR"`
	Regular string `yaml:"regular" env:"REGULAR"`
	Bold    string `yaml:"bold" env:"BOLD"`
}

// RenderConfig tunes the headless browser backend.
type RenderConfig struct {
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Workers    int           `yaml:"workers" env:"WORKERS"` // 0 = derived from GOMAXPROCS
	BrowserBin string        `yaml:"browserBin" env:"BROWSER_BIN"`
	NoSandbox  bool          `yaml:"noSandbox" env:"NO_SANDBOX"`
}

// DataConfig locates the YAML character store.
type DataConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string   `yaml:"addr" env:"ADDR"`
	RateLimit    float64  `yaml:"rateLimit" env:"RATE_LIMIT"` // requests per second
	RateBurst    int      `yaml:"rateBurst" env:"RATE_BURST"`
	AllowOrigins []string `yaml:"allowOrigins" env:"ALLOW_ORIGINS" envSeparator:","`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" env:"BASE_PATH"` // empty = embedded assets
}

// PrintConfig holds print defaults applied when a request names none.
type PrintConfig struct {
	Sections       []string `yaml:"sections" env:"SECTIONS" envSeparator:","`
	ReadOnly       bool     `yaml:"readOnly" env:"READ_ONLY"`
	StrictSections bool     `yaml:"strictSections" env:"STRICT_SECTIONS"`
	Date           string   `yaml:"date" env:"DATE"` // "auto", "auto:FORMAT", a literal, or "" for none
}

// Validate checks field lengths and ranges. Called by LoadConfig, and
// available for callers who build a Config by hand.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"template.path", c.Template.Path, MaxPathLength},
		{"fonts.dir", c.Fonts.Dir, MaxPathLength},
		{"fonts.regular", c.Fonts.Regular, MaxFontNameLen},
		{"fonts.bold", c.Fonts.Bold, MaxFontNameLen},
		{"render.browserBin", c.Render.BrowserBin, MaxPathLength},
		{"data.dir", c.Data.Dir, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"print.date", c.Print.Date, MaxDateLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Render.Timeout < 0 || c.Render.Timeout > MaxTimeout {
		return fmt.Errorf("%w: render.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, c.Render.Timeout)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rateLimit must not be negative", ErrInvalidValue)
	}
	if c.Server.RateBurst < 0 {
		return fmt.Errorf("%w: server.rateBurst must not be negative", ErrInvalidValue)
	}
	if len(c.Server.AllowOrigins) > MaxOrigins {
		return fmt.Errorf("%w: server.allowOrigins has %d entries, max %d", ErrInvalidValue, len(c.Server.AllowOrigins), MaxOrigins)
	}
	for i, o := range c.Server.AllowOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.allowOrigins[%d]", i), o, MaxOriginLength); err != nil {
			return err
		}
	}
	for i, s := range c.Print.Sections {
		if err := validateFieldLength(fmt.Sprintf("print.sections[%d]", i), s, MaxSectionLength); err != nil {
			return err
		}
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Template: TemplateConfig{Path: "CharacterSheet.pdf"},
		Render:   RenderConfig{Timeout: DefaultTimeout},
		Data:     DataConfig{Dir: "characters"},
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 2,
			RateBurst: 4,
		},
		Print: PrintConfig{Date: "auto"},
	}
}

// ApplyEnv overrides cfg with CHARSHEET_* environment variables. Unset
// variables leave the current values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: environment: %v", ErrConfigParse, err)
	}
	return cfg.Validate()
}

// KnownEnvVars lists every environment variable ApplyEnv reads.
func KnownEnvVars() []string {
	params, err := env.GetFieldParamsWithOptions(&Config{}, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Key)
	}
	return names
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read as a path. Anything else is
// searched as a name in the current directory, then in the user config
// directory. Fields the file omits keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-charsheet/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-charsheet", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
