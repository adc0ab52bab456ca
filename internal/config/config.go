// Package config loads deckparse settings from the environment, an optional
// .env file and an optional deckparse.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFile is the config file read when Load is given no path.
const DefaultFile = "deckparse.yaml"

// Config holds every deckparse setting.
type Config struct {
	Extract ExtractConfig `mapstructure:"extract"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// ExtractConfig controls how presentations are extracted and rendered.
type ExtractConfig struct {
	Workers    int    `mapstructure:"workers"`
	Format     string `mapstructure:"format"`
	ProbeMedia bool   `mapstructure:"probe_media"`
	OCR        bool   `mapstructure:"ocr"`
	OCRLang    string `mapstructure:"ocr_lang"`
}

// WatchConfig drives the drop-folder watcher.
type WatchConfig struct {
	Dir       string `mapstructure:"dir"`
	OutputDir string `mapstructure:"output_dir"`
}

var formats = map[string]bool{
	"json": true, "text": true, "txt": true, "markdown": true, "md": true, "html": true,
}

// Validate reports settings no command can run with.
func (c *Config) Validate() error {
	if c.Extract.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Extract.Workers)
	}
	if !formats[strings.ToLower(c.Extract.Format)] {
		return fmt.Errorf("unknown output format %q", c.Extract.Format)
	}
	return nil
}

// Load reads .env into the process environment, then the config file at path
// (DefaultFile when empty). Both files are optional. Environment variables
// override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found, using system environment variables")
	}

	if path == "" {
		path = DefaultFile
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DECKPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	mappings := []struct {
		key, env string
	}{
		{"extract.workers", "DECKPARSE_WORKERS"},
		{"extract.format", "DECKPARSE_FORMAT"},
		{"extract.probe_media", "DECKPARSE_PROBE_MEDIA"},
		{"extract.ocr", "DECKPARSE_OCR"},
		{"extract.ocr_lang", "DECKPARSE_OCR_LANG"},
		{"watch.dir", "DECKPARSE_WATCH_DIR"},
		{"watch.output_dir", "DECKPARSE_OUTPUT_DIR"},
	}
	for _, m := range mappings {
		if err := v.BindEnv(m.key, m.env); err != nil {
			return nil, err
		}
	}

	v.SetDefault("extract.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("extract.format", "json")
	v.SetDefault("extract.probe_media", true)
	v.SetDefault("extract.ocr", false)
	v.SetDefault("extract.ocr_lang", "eng")
	v.SetDefault("watch.dir", "inbox")
	v.SetDefault("watch.output_dir", "outbox")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
