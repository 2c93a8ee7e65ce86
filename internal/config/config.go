package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default dataset export of lukebarousse/data_jobs on Hugging Face.
const defaultDatasetURL = "https://huggingface.co/datasets/lukebarousse/data_jobs/resolve/main/data_jobs.csv"

// Config is the root configuration for a jobmarket analysis run.
type Config struct {
	Dataset DatasetConfig
	Output  OutputConfig
	Sample  SampleConfig
	TopN    TopNConfig
}

// DatasetConfig controls where the dataset comes from and how it is cached.
type DatasetConfig struct {
	URL       string        // CSV source URL
	CachePath string        // sqlite cache file, "" disables caching
	Timeout   time.Duration // per-download HTTP timeout
}

// OutputConfig holds the directories derived artifacts are written into.
type OutputConfig struct {
	ChartsDir  string `yaml:"charts_dir"`
	ExportsDir string `yaml:"exports_dir"`
}

// SampleConfig controls the stratified sample written alongside the exports.
type SampleConfig struct {
	Size int   `yaml:"size"` // target row count
	Seed int64 `yaml:"seed"` // rand seed, fixed for reproducible output
}

// TopNConfig sets how many entries each frequency table keeps.
type TopNConfig struct {
	Categories int `yaml:"categories"`
	Companies  int `yaml:"companies"`
	Locations  int `yaml:"locations"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Dataset rawDatasetConfig `yaml:"dataset"`
	Output  OutputConfig     `yaml:"output"`
	Sample  SampleConfig     `yaml:"sample"`
	TopN    TopNConfig       `yaml:"top_n"`
}

type rawDatasetConfig struct {
	URL       string `yaml:"url"`
	CachePath string `yaml:"cache_path"`
	Timeout   string `yaml:"timeout"`
}

// Default returns the configuration used when no config file exists, so a
// bare `jobmarket` invocation runs the full analysis with the stock dataset.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			URL:       defaultDatasetURL,
			CachePath: "dataset.db",
			Timeout:   5 * time.Minute,
		},
		Output: OutputConfig{
			ChartsDir:  "plots",
			ExportsDir: "exports",
		},
		Sample: SampleConfig{
			Size: 10000,
			Seed: 1,
		},
		TopN: TopNConfig{
			Categories: 10,
			Companies:  5,
			Locations:  5,
		},
	}
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Fields left empty in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if raw.Dataset.URL != "" {
		cfg.Dataset.URL = raw.Dataset.URL
	}
	if raw.Dataset.CachePath != "" {
		cfg.Dataset.CachePath = raw.Dataset.CachePath
	}
	if raw.Dataset.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Dataset.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse dataset.timeout %q: %w", raw.Dataset.Timeout, err)
		}
		cfg.Dataset.Timeout = timeout
	}

	if raw.Output.ChartsDir != "" {
		cfg.Output.ChartsDir = raw.Output.ChartsDir
	}
	if raw.Output.ExportsDir != "" {
		cfg.Output.ExportsDir = raw.Output.ExportsDir
	}

	if raw.Sample.Size != 0 {
		cfg.Sample.Size = raw.Sample.Size
	}
	if raw.Sample.Seed != 0 {
		cfg.Sample.Seed = raw.Sample.Seed
	}

	if raw.TopN.Categories != 0 {
		cfg.TopN.Categories = raw.TopN.Categories
	}
	if raw.TopN.Companies != 0 {
		cfg.TopN.Companies = raw.TopN.Companies
	}
	if raw.TopN.Locations != 0 {
		cfg.TopN.Locations = raw.TopN.Locations
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Dataset.URL == "" {
		return fmt.Errorf("dataset.url must not be empty")
	}
	if cfg.Dataset.Timeout <= 0 {
		return fmt.Errorf("dataset.timeout must be positive, got %v", cfg.Dataset.Timeout)
	}
	if cfg.Sample.Size <= 0 {
		return fmt.Errorf("sample.size must be positive, got %d", cfg.Sample.Size)
	}
	if cfg.TopN.Categories <= 0 || cfg.TopN.Companies <= 0 || cfg.TopN.Locations <= 0 {
		return fmt.Errorf("top_n entries must all be positive, got %+v", cfg.TopN)
	}
	return nil
}
