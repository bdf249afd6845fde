package config

import "time"

// ContentSource selects where pages read their content from.
type ContentSource string

const (
	SourceLocal ContentSource = "local"
	SourceCMS   ContentSource = "cms"
)

// Config is the top-level portfolio configuration, corresponding to
// portfolio.yml.
type Config struct {
	Site    SiteConfig    `yaml:"site" koanf:"site"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Content ContentConfig `yaml:"content" koanf:"content"`
	CMS     CMSConfig     `yaml:"cms" koanf:"cms"`
	Studio  StudioConfig  `yaml:"studio" koanf:"studio"`
	Nav     NavConfig     `yaml:"nav" koanf:"nav"`
}

// SiteConfig holds the owner details and page copy.
type SiteConfig struct {
	Title        string   `yaml:"title" koanf:"title"`
	Description  string   `yaml:"description" koanf:"description"`
	URL          string   `yaml:"url" koanf:"url"`
	Brand        string   `yaml:"brand" koanf:"brand"`
	Greeting     string   `yaml:"greeting" koanf:"greeting"`
	Headline     string   `yaml:"headline" koanf:"headline"`
	Highlight    string   `yaml:"highlight" koanf:"highlight"`
	Intro        string   `yaml:"intro" koanf:"intro"`
	About        string   `yaml:"about" koanf:"about"`
	ContactIntro string   `yaml:"contact_intro" koanf:"contact_intro"`
	Email        string   `yaml:"email" koanf:"email"`
	Phone        string   `yaml:"phone" koanf:"phone"`
	Location     string   `yaml:"location" koanf:"location"`
	Technologies []string `yaml:"technologies" koanf:"technologies"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" koanf:"host"`
	Port            int           `yaml:"port" koanf:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	CORSAllowAll    bool          `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	RequestTimeout  time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// ContentConfig selects the content source and the local store.
type ContentConfig struct {
	Source ContentSource `yaml:"source" koanf:"source"`
	// DBPath is the SQLite file. Empty means the XDG data home.
	DBPath       string        `yaml:"db_path" koanf:"db_path"`
	Seed         []string      `yaml:"seed" koanf:"seed"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`
}

// CMSConfig holds the hosted content store settings.
type CMSConfig struct {
	ProjectID  string        `yaml:"project_id" koanf:"project_id"`
	Dataset    string        `yaml:"dataset" koanf:"dataset"`
	APIVersion string        `yaml:"api_version" koanf:"api_version"`
	UseCDN     bool          `yaml:"use_cdn" koanf:"use_cdn"`
	Token      string        `yaml:"token,omitempty" koanf:"token"`
	Timeout    time.Duration `yaml:"timeout" koanf:"timeout"`
}

// StudioConfig controls the authoring API.
type StudioConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Token   string `yaml:"token,omitempty" koanf:"token"`
}

// NavConfig tunes the section highlighter.
type NavConfig struct {
	// Offset is the sticky header height in CSS pixels.
	Offset float64 `yaml:"offset" koanf:"offset"`
}
