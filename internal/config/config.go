package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the dsssgen configuration
type Config struct {
	filename string

	// Generator section
	filterDelay     int
	excessBandwidth float64
	prototype       string

	// Output section
	outputPath      string
	compress        bool
	bursts          int
	workers         int
	gapSamples      int
	chunkSamples    int
	analyzeSpectrum bool

	// Archive section
	archiveEnabled bool
	archivePath    string
	archiveDebug   bool

	// Metrics section
	metricsTextfile string

	// Log section
	logDebug bool
}

// file layout of the YAML document; pointers tell absent keys from zero values
type fileConfig struct {
	Generator struct {
		FilterDelay     *int     `yaml:"filter_delay"`
		ExcessBandwidth *float64 `yaml:"excess_bandwidth"`
		Prototype       *string  `yaml:"prototype"`
	} `yaml:"generator"`
	Output struct {
		Path         *string `yaml:"path"`
		Compress     *bool   `yaml:"compress"`
		Bursts       *int    `yaml:"bursts"`
		Workers      *int    `yaml:"workers"`
		GapSamples   *int    `yaml:"gap_samples"`
		ChunkSamples *int    `yaml:"chunk_samples"`
		Spectrum     *bool   `yaml:"spectrum"`
	} `yaml:"output"`
	Archive struct {
		Enabled *bool   `yaml:"enabled"`
		Path    *string `yaml:"path"`
		Debug   *bool   `yaml:"debug"`
	} `yaml:"archive"`
	Metrics struct {
		Textfile *string `yaml:"textfile"`
	} `yaml:"metrics"`
	Log struct {
		Debug *bool `yaml:"debug"`
	} `yaml:"log"`
}

// NewConfig creates a new configuration instance
func NewConfig(filename string) *Config {
	return &Config{
		filename: filename,
		// Set reasonable defaults
		filterDelay:     7,
		excessBandwidth: 0.3,
		prototype:       "kaiser",

		outputPath:   "bursts.cf32",
		bursts:       1,
		workers:      1,
		chunkSamples: 4096,

		// Archive defaults
		archiveEnabled: false,
		archivePath:    "data/bursts.db",
	}
}

// Load loads configuration from the specified file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %v", c.filename, err)
	}

	return c.parseYAML(data)
}

// LoadFromString loads configuration from a string (useful for testing)
func (c *Config) LoadFromString(data string) error {
	return c.parseYAML([]byte(data))
}

func (c *Config) parseYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	setInt(&c.filterDelay, fc.Generator.FilterDelay)
	setFloat(&c.excessBandwidth, fc.Generator.ExcessBandwidth)
	if fc.Generator.Prototype != nil {
		c.prototype = strings.ToLower(strings.TrimSpace(*fc.Generator.Prototype))
	}

	setString(&c.outputPath, fc.Output.Path)
	setBool(&c.compress, fc.Output.Compress)
	setInt(&c.bursts, fc.Output.Bursts)
	setInt(&c.workers, fc.Output.Workers)
	setInt(&c.gapSamples, fc.Output.GapSamples)
	setInt(&c.chunkSamples, fc.Output.ChunkSamples)
	setBool(&c.analyzeSpectrum, fc.Output.Spectrum)

	setBool(&c.archiveEnabled, fc.Archive.Enabled)
	setString(&c.archivePath, fc.Archive.Path)
	setBool(&c.archiveDebug, fc.Archive.Debug)

	setString(&c.metricsTextfile, fc.Metrics.Textfile)
	setBool(&c.logDebug, fc.Log.Debug)

	return nil
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	if c.filterDelay < 1 {
		return fmt.Errorf("generator.filter_delay must be positive, got %d", c.filterDelay)
	}
	if c.excessBandwidth <= 0 || c.excessBandwidth > 1 {
		return fmt.Errorf("generator.excess_bandwidth must be in (0,1], got %g", c.excessBandwidth)
	}
	if c.outputPath == "" {
		return fmt.Errorf("output.path must be set")
	}
	if c.bursts < 1 {
		return fmt.Errorf("output.bursts must be positive, got %d", c.bursts)
	}
	if c.workers < 1 {
		return fmt.Errorf("output.workers must be positive, got %d", c.workers)
	}
	if c.gapSamples < 0 {
		return fmt.Errorf("output.gap_samples must not be negative, got %d", c.gapSamples)
	}
	if c.chunkSamples < 1 {
		return fmt.Errorf("output.chunk_samples must be positive, got %d", c.chunkSamples)
	}
	if c.archiveEnabled && c.archivePath == "" {
		return fmt.Errorf("archive.path must be set when the archive is enabled")
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Setters for command-line overrides
func (c *Config) SetOutputPath(path string) { c.outputPath = path }
func (c *Config) SetBursts(n int)           { c.bursts = n }
func (c *Config) SetWorkers(n int)          { c.workers = n }
func (c *Config) SetAnalyzeSpectrum(b bool) { c.analyzeSpectrum = b }

// Getter methods for Generator section
func (c *Config) GetFilterDelay() int         { return c.filterDelay }
func (c *Config) GetExcessBandwidth() float64 { return c.excessBandwidth }
func (c *Config) GetPrototype() string        { return c.prototype }

// Getter methods for Output section
func (c *Config) GetOutputPath() string    { return c.outputPath }
func (c *Config) GetCompress() bool        { return c.compress }
func (c *Config) GetBursts() int           { return c.bursts }
func (c *Config) GetWorkers() int          { return c.workers }
func (c *Config) GetGapSamples() int       { return c.gapSamples }
func (c *Config) GetChunkSamples() int     { return c.chunkSamples }
func (c *Config) GetAnalyzeSpectrum() bool { return c.analyzeSpectrum }

// Getter methods for Archive section
func (c *Config) GetArchiveEnabled() bool { return c.archiveEnabled }
func (c *Config) GetArchivePath() string  { return c.archivePath }
func (c *Config) GetArchiveDebug() bool   { return c.archiveDebug }

// Getter methods for Metrics section
func (c *Config) GetMetricsTextfile() string { return c.metricsTextfile }

// Getter methods for Log section
func (c *Config) GetLogDebug() bool { return c.logDebug }
