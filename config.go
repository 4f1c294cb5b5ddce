package kplr

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
)

// Default archive endpoints. The Exoplanet Archive serves the cumulative
// KOI catalog; MAST serves stellar, confirmed-planet, and data-set search
// tables plus the data files themselves.
const (
	// DefaultCatalogURL is the Exoplanet Archive API endpoint.
	DefaultCatalogURL = "http://exoplanetarchive.ipac.caltech.edu/cgi-bin/nstedAPI/nph-nstedAPI"

	// DefaultSurveyURL is the MAST search endpoint. The %s verb is replaced
	// by the table category (for example "kic10" or "data_search").
	DefaultSurveyURL = "http://archive.stsci.edu/kepler/%s/search.php"

	// DefaultDataURL is the base URL for MAST data file downloads.
	DefaultDataURL = "http://archive.stsci.edu/pub/kepler"

	// DefaultHTTPTimeout bounds each archive request. The archives impose
	// no timeout of their own; this is the client-side knob.
	DefaultHTTPTimeout = 60 * time.Second
)

// Config holds client configuration. The zero value is not usable; start
// from NewConfig or ConfigFromEnv and chain With* methods:
//
//	cfg := kplr.NewConfig().
//		WithDataRoot("/var/kepler").
//		WithLogger(logger)
//	client := kplr.New(cfg)
type Config struct {
	// DataRoot is the root of the local cache tree. Downloaded files land
	// under <DataRoot>/data, offline tables are read from
	// <DataRoot>/data/tables.
	DataRoot string `env:"KPLR_ROOT"`

	// CatalogURL is the Exoplanet Archive endpoint.
	CatalogURL string `env:"KPLR_CATALOG_URL" env-default:"http://exoplanetarchive.ipac.caltech.edu/cgi-bin/nstedAPI/nph-nstedAPI"`

	// SurveyURL is the MAST search endpoint template with a %s placeholder
	// for the table category.
	SurveyURL string `env:"KPLR_SURVEY_URL" env-default:"http://archive.stsci.edu/kepler/%s/search.php"`

	// DataURL is the base URL for data file downloads.
	DataURL string `env:"KPLR_DATA_URL" env-default:"http://archive.stsci.edu/pub/kepler"`

	// HTTPTimeout bounds each archive request. Zero disables the timeout.
	HTTPTimeout time.Duration `env:"KPLR_HTTP_TIMEOUT" env-default:"60s"`

	httpClient *http.Client
	clientOnce sync.Once
	logger     *zap.Logger
	logOnce    sync.Once
}

// NewConfig returns a Config with default endpoints, a 60 second HTTP
// timeout, and the data root resolved from $KPLR_ROOT or ~/.kplr.
func NewConfig() *Config {
	return &Config{
		DataRoot:    defaultDataRoot(),
		CatalogURL:  DefaultCatalogURL,
		SurveyURL:   DefaultSurveyURL,
		DataURL:     DefaultDataURL,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// ConfigFromEnv builds a Config from KPLR_* environment variables, falling
// back to the same defaults as NewConfig for unset variables.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.DataRoot == "" {
		cfg.DataRoot = defaultDataRoot()
	}
	return cfg, nil
}

// defaultDataRoot resolves $KPLR_ROOT, falling back to ~/.kplr. When the
// home directory cannot be determined the cache tree is rooted in the
// working directory.
func defaultDataRoot() string {
	if root := os.Getenv("KPLR_ROOT"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kplr"
	}
	return filepath.Join(home, ".kplr")
}

// WithDataRoot sets the local cache root.
func (c *Config) WithDataRoot(root string) *Config {
	c.DataRoot = root
	return c
}

// WithCatalogURL overrides the Exoplanet Archive endpoint.
func (c *Config) WithCatalogURL(u string) *Config {
	c.CatalogURL = u
	return c
}

// WithSurveyURL overrides the MAST search endpoint template. The template
// must contain one %s verb for the table category.
func (c *Config) WithSurveyURL(u string) *Config {
	c.SurveyURL = u
	return c
}

// WithDataURL overrides the base URL for data file downloads.
func (c *Config) WithDataURL(u string) *Config {
	c.DataURL = u
	return c
}

// WithHTTPTimeout sets the per-request timeout. It has no effect when a
// custom HTTP client is installed with WithHTTPClient.
func (c *Config) WithHTTPTimeout(d time.Duration) *Config {
	c.HTTPTimeout = d
	return c
}

// WithHTTPClient installs a custom HTTP client for all archive requests
// and data file downloads.
func (c *Config) WithHTTPClient(hc *http.Client) *Config {
	c.httpClient = hc
	return c
}

// WithLogger installs a structured logger. The default logger discards
// everything.
func (c *Config) WithLogger(l *zap.Logger) *Config {
	c.logger = l
	return c
}

// client returns the configured HTTP client, building one from HTTPTimeout
// on first use. Clients and their records share the Config across
// goroutines, so the lazy build is synchronized.
func (c *Config) client() *http.Client {
	c.clientOnce.Do(func() {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: c.HTTPTimeout}
		}
	})
	return c.httpClient
}

// log returns the configured logger, defaulting to a no-op logger.
func (c *Config) log() *zap.Logger {
	c.logOnce.Do(func() {
		if c.logger == nil {
			c.logger = zap.NewNop()
		}
	})
	return c.logger
}
