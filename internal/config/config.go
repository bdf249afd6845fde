package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: PORTFOLIO_SERVER__PORT sets server.port.
const EnvPrefix = "PORTFOLIO_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PORTFOLIO_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.Content.DBPath == "" {
		cfg.Content.DBPath = DefaultDBPath()
	}

	return cfg, nil
}

// envKey maps PORTFOLIO_CONTENT__DB_PATH to content.db_path.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path. Tokens are
// written only if set, with owner-only permissions.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	perm := os.FileMode(0o644)
	if c.CMS.Token != "" || c.Studio.Token != "" {
		perm = 0o600
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validSources = map[ContentSource]bool{
	SourceLocal: true,
	SourceCMS:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("site.url %q must be an absolute http(s) URL", c.Site.URL)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}

	if !validSources[c.Content.Source] {
		return fmt.Errorf("invalid content.source %q: must be one of local, cms", c.Content.Source)
	}
	if c.Content.FetchTimeout < 0 {
		return fmt.Errorf("content.fetch_timeout must be non-negative")
	}

	if c.Content.Source == SourceCMS && c.CMS.ProjectID == "" {
		return fmt.Errorf("cms.project_id is required when content.source is cms")
	}

	if c.Studio.Enabled {
		if c.Content.Source != SourceLocal {
			return fmt.Errorf("studio edits the local store and requires content.source local")
		}
		if c.Studio.Token == "" {
			return fmt.Errorf("studio.token is required when the studio is enabled")
		}
	}

	if c.Nav.Offset < 0 {
		return fmt.Errorf("nav.offset must be non-negative")
	}

	return nil
}
