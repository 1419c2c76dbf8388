package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/pipeline"
	"github.com/alnah/go-mdpreview/internal/yamlutil"
)

// Sentinel errors for configuration operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field length limits for user-provided strings.
const (
	MaxOriginLength         = 2048
	MaxPathLength           = 4096
	MaxStyleLength          = 4096 // name or file path
	MaxHighlightStyleLength = 64
	MaxTitleLength          = 200
	MaxLangLength           = 35 // longest practical BCP 47 tag
	MaxTOCTitleLength       = 100
)

// Numeric bounds.
const (
	MaxWordsPerMinute = 2000
	MaxCacheSize      = 10000
	MaxDebounceMillis = 10000
	minTOCDepth       = 1
	maxTOCDepth       = 6
)

// Defaults applied by DefaultConfig.
const (
	DefaultWordsPerMinute = pipeline.DefaultWordsPerMinute
	DefaultCacheSize      = 128
	DefaultTOCMaxDepth    = 3
	DefaultDebounceMillis = 300
)

// configDirName is the directory searched under the user config dir.
const configDirName = "go-mdpreview"

// Config holds all configuration for mdpreview.
type Config struct {
	Markdown MarkdownConfig `yaml:"markdown" json:"markdown"`
	Metadata MetadataConfig `yaml:"metadata" json:"metadata"`
	Export   ExportConfig   `yaml:"export" json:"export"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Assets   AssetsConfig   `yaml:"assets" json:"assets"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// MarkdownConfig holds render options.
type MarkdownConfig struct {
	Breaks   bool   `yaml:"breaks" json:"breaks"`
	GFM      bool   `yaml:"gfm" json:"gfm"`
	Sanitize bool   `yaml:"sanitize" json:"sanitize"`
	Origin   string `yaml:"origin" json:"origin"` // page origin for external links
}

// Validate implements validation.Validatable.
func (m MarkdownConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Origin, validation.Length(0, MaxOriginLength), validation.By(isOrigin)),
	)
}

// MetadataConfig holds document statistics options.
type MetadataConfig struct {
	WordsPerMinute int `yaml:"wordsPerMinute" json:"wordsPerMinute"`
}

// Validate implements validation.Validatable.
func (m MetadataConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.WordsPerMinute, validation.Min(1), validation.Max(MaxWordsPerMinute)),
	)
}

// ExportConfig holds standalone document export options.
type ExportConfig struct {
	Style          string    `yaml:"style" json:"style"`                   // name or CSS file path
	HighlightStyle string    `yaml:"highlightStyle" json:"highlightStyle"` // chroma style name
	Title          string    `yaml:"title" json:"title"`
	Lang           string    `yaml:"lang" json:"lang"`
	TOC            TOCConfig `yaml:"toc" json:"toc"`
}

// Validate implements validation.Validatable.
func (e ExportConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Style, validation.Length(0, MaxStyleLength)),
		validation.Field(&e.HighlightStyle, validation.Length(0, MaxHighlightStyleLength)),
		validation.Field(&e.Title, validation.Length(0, MaxTitleLength)),
		validation.Field(&e.Lang, validation.Length(0, MaxLangLength)),
		validation.Field(&e.TOC),
	)
}

// TOCConfig holds table of contents options for export.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Title    string `yaml:"title" json:"title"`
	MaxDepth int    `yaml:"maxDepth" json:"maxDepth"` // 0 means default
}

// Validate implements validation.Validatable.
func (t TOCConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Length(0, MaxTOCTitleLength)),
		validation.Field(&t.MaxDepth, validation.Min(minTOCDepth), validation.Max(maxTOCDepth)),
	)
}

// CacheConfig holds preview cache options.
type CacheConfig struct {
	Size int `yaml:"size" json:"size"` // 0 disables the cache
}

// Validate implements validation.Validatable.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Size, validation.Min(0), validation.Max(MaxCacheSize)),
	)
}

// AssetsConfig configures custom asset loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" json:"basePath"` // "" = embedded styles only
}

// Validate implements validation.Validatable.
func (a AssetsConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BasePath, validation.Length(0, MaxPathLength)),
	)
}

// WatchConfig holds options for the watch command.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounceMillis" json:"debounceMillis"`
}

// Validate implements validation.Validatable.
func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.DebounceMillis, validation.Min(0), validation.Max(MaxDebounceMillis)),
	)
}

// isOrigin accepts an empty string or an absolute http(s) URL.
func isOrigin(value any) error {
	s, _ := value.(string)
	if !pipeline.ValidOrigin(s) {
		return validation.NewError("validation_invalid_origin", "must be an absolute http or https URL")
	}
	return nil
}

// Validate checks every section. Zero numeric values mean "use the default"
// and always pass.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.Markdown),
		validation.Field(&c.Metadata),
		validation.Field(&c.Export),
		validation.Field(&c.Cache),
		validation.Field(&c.Assets),
		validation.Field(&c.Watch),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with neutral defaults.
func DefaultConfig() *Config {
	return &Config{
		Markdown: MarkdownConfig{Breaks: true, GFM: true, Sanitize: true},
		Metadata: MetadataConfig{WordsPerMinute: DefaultWordsPerMinute},
		Export:   ExportConfig{TOC: TOCConfig{MaxDepth: DefaultTOCMaxDepth}},
		Cache:    CacheConfig{Size: DefaultCacheSize},
		Watch:    WatchConfig{DebounceMillis: DefaultDebounceMillis},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or ends with .yaml/.yml, it's treated as a path.
// Otherwise, it searches for {name}.yaml and {name}.yml in the current directory
// and then in the user config directory (~/.config/go-mdpreview/ on Linux).
// Fields absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	if isConfigPath(nameOrPath) {
		configPath = nameOrPath
	} else {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config: %w", err)
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

// isConfigPath reports whether s names a file rather than a config name.
func isConfigPath(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return fileutil.IsFilePath(s) || ext == ".yaml" || ext == ".yml"
}

// SearchPaths lists the candidate files LoadConfig tries for a config name.
func SearchPaths(name string) []string {
	dirs := []string{"."}
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(configDir, configDirName))
	}

	paths := make([]string, 0, len(dirs)*2)
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			paths = append(paths, filepath.Join(dir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, path := range paths {
		if fileutil.FileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q (searched: %v)", ErrConfigNotFound, name, paths)
}
