package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// DST detection modes for curated abbreviations.
const (
	DSTDatabase = "database"
	DSTJanuary  = "january"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Base is the default base city label or IANA zone (e.g. "New York").
	Base string `yaml:"base" json:"base"`

	// Use24h selects "15:04" over "3:04 PM".
	Use24h bool `yaml:"use_24h" json:"use_24h"`

	// RangeSeparator is placed between start and end times.
	RangeSeparator string `yaml:"range_separator" json:"range_separator"`

	// ShowLabels prefixes every segment of a line with its city label.
	ShowLabels bool `yaml:"show_labels" json:"show_labels"`

	// DSTDetection picks how curated zones decide standard vs daylight:
	//   - "database" (default): the timezone database's own flag
	//   - "january": compare with the offset in January (northern zones only)
	DSTDetection string `yaml:"dst_detection" json:"dst_detection"`

	// Participants is the default participant list.
	Participants []model.Participant `yaml:"participants" json:"participants"`

	// Abbreviations adds to or overrides the built-in curated labels.
	Abbreviations tz.Table `yaml:"abbreviations,omitempty" json:"abbreviations,omitempty"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Base:           "New York",
		Use24h:         false,
		RangeSeparator: "–",
		DSTDetection:   DSTDatabase,
		Participants: []model.Participant{
			{Label: "Tokyo", Zone: "Asia/Tokyo"},
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if strings.TrimSpace(c.Base) == "" {
		c.Base = "New York"
	}
	if c.RangeSeparator == "" {
		c.RangeSeparator = "–"
	}
	switch strings.ToLower(c.DSTDetection) {
	case DSTDatabase, DSTJanuary:
		c.DSTDetection = strings.ToLower(c.DSTDetection)
	default:
		c.DSTDetection = DSTDatabase
	}
	if c.Participants == nil {
		c.Participants = []model.Participant{}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Detector returns the DST detector selected by DSTDetection.
func (c *Config) Detector() tz.DSTDetector {
	if c.DSTDetection == DSTJanuary {
		return tz.DetectByJanuary
	}
	return tz.DetectByDatabase
}

// AbbreviationTable returns the built-in curated table merged with the
// configured overrides.
func (c *Config) AbbreviationTable() tz.Table {
	return tz.DefaultTable().Merge(c.Abbreviations)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory with 0700 if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	tmp, err := os.CreateTemp(dir, ".mtgplan-config-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp config")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp config")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp config")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return errors.Wrap(os.Rename(tmpName, path), "replace config")
}
