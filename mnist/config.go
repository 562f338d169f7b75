package mnist

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "http://yann.lecun.com/exdb/mnist/"
	DefaultCacheDir = "./dataset/"
)

// Config Where dataset comes from and where it is kept
type Config struct {
	// BaseURL is joined with Resource.Filename() to get download URL
	BaseURL string `yaml:"base_url"`
	// CacheDir holds compressed files exactly as downloaded
	CacheDir string `yaml:"cache_dir"`
	// Strict makes parsing reject record counts other than canonical 60000/10000
	Strict bool `yaml:"strict"`
	// Timeout bounds every single download. Zero means no timeout
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig Returns configuration pointing to the canonical dataset location
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		CacheDir: DefaultCacheDir,
	}
}

// LoadConfig Reads YAML config from path. Fields absent in file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "Can't parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate Checks config is usable. Empty BaseURL and CacheDir are replaced with defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.Errorf("base_url must be http(s) URL (got '%s')", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must be >= 0 (got %s)", c.Timeout)
	}
	return nil
}

// url Download location of r
func (c *Config) url(r Resource) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + r.Filename()
}
