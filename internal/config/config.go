// Package config loads couchctl configuration from an HCL file and the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pkg/errors"

	"github.com/sofa-go/couchdb"
	"github.com/sofa-go/couchdb/chttp"
)

// Defaults.
const (
	DefaultURL      = "http://127.0.0.1:5984"
	DefaultLogLevel = "info"
)

// Environment variables that override the configuration file.
const (
	EnvURL         = "COUCHCTL_URL"
	EnvDatabase    = "COUCHCTL_DATABASE"
	EnvLogLevel    = "COUCHCTL_LOG_LEVEL"
	EnvRawEnvelope = "COUCHCTL_RAW_ENVELOPE"
)

// Config is the couchctl configuration.
type Config struct {
	// URL is the server base URL. It may embed user:pass@ credentials.
	URL string `hcl:"url,optional"`

	// Database is the target database. Required.
	Database string `hcl:"database,optional"`

	// LogLevel is one of trace, debug, info, warn, error or off.
	LogLevel string `hcl:"log_level,optional"`

	// RawEnvelope disables error-envelope detection on responses.
	RawEnvelope bool `hcl:"raw_envelope,optional"`

	// Auth configures an authentication method other than URL credentials.
	Auth *Auth `hcl:"auth,block"`
}

// Auth is an authentication block:
//
//	auth "cookie" {
//	  username = "admin"
//	  password = "secret"
//	}
type Auth struct {
	// Type is basic, cookie or proxy.
	Type     string   `hcl:"type,label"`
	Username string   `hcl:"username,optional"`
	Password string   `hcl:"password,optional"`
	Secret   string   `hcl:"secret,optional"`
	Roles    []string `hcl:"roles,optional"`
}

// Load reads the configuration file at path, applies environment overrides
// and defaults, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.Errorf("configuration file not found: %s", path)
		}
		if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse configuration file")
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvURL); ok {
		c.URL = v
	}
	if v, ok := os.LookupEnv(EnvDatabase); ok {
		c.Database = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvRawEnvelope); ok {
		raw, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvRawEnvelope)
		}
		c.RawEnvelope = raw
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.Errorf("database is required (set it in the config file or %s)", EnvDatabase)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return errors.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Auth != nil {
		switch strings.ToLower(c.Auth.Type) {
		case "basic", "cookie":
			if c.Auth.Username == "" {
				return errors.Errorf("%s auth requires a username", c.Auth.Type)
			}
		case "proxy":
			if c.Auth.Username == "" || c.Auth.Secret == "" {
				return errors.New("proxy auth requires a username and a secret")
			}
		default:
			return errors.Errorf("unknown auth type %q", c.Auth.Type)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// Client returns the client configuration.
func (c *Config) Client() couchdb.Config {
	return couchdb.Config{URL: c.URL, Database: c.Database}
}

// Authenticator returns the configured authenticator, or nil if there is no
// auth block.
func (c *Config) Authenticator() chttp.Authenticator {
	if c.Auth == nil {
		return nil
	}
	switch strings.ToLower(c.Auth.Type) {
	case "cookie":
		return &chttp.CookieAuth{Username: c.Auth.Username, Password: c.Auth.Password}
	case "proxy":
		return &chttp.ProxyAuth{Username: c.Auth.Username, Secret: c.Auth.Secret, Roles: c.Auth.Roles}
	}
	return &chttp.BasicAuth{Username: c.Auth.Username, Password: c.Auth.Password}
}
