package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/jvesely/portfolio/internal/scroll"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "portfolio.yml"

// DefaultSeedPatterns select the content bundles imported by seed.
var DefaultSeedPatterns = []string{"content/**/*.yml", "content/**/*.yaml"}

// DefaultDBPath returns the SQLite file under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "portfolio", "portfolio.db")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:        "Portfolio Jirka Veselý",
			Description:  "Full-stack vývojář",
			URL:          "http://localhost:8080",
			Brand:        "Jirka Veselý",
			Greeting:     "Ahoj, jsem Jirka",
			Headline:     "Tvořím moderní weby a aplikace,",
			Highlight:    "které posunou tvůj projekt.",
			Intro:        "Specializuji se na moderní webové technologie, headless CMS a tvorbu digitálních řešení. Dodám ti profesionální prezentaci, kterou si zvládneš snadno spravovat.",
			About:        "Jsem Jiří Veselý, vývojář, který spojuje technické znalosti s praktickým přístupem. Pomáhám firmám i jednotlivcům vytvářet moderní webové projekty, které dobře fungují i vypadají.",
			ContactIntro: "Máš nápad na projekt nebo potřebuješ pomoct s webem? Napiš mi.",
			Technologies: []string{"Go", "Next.js", "React", "TypeScript", "Sanity", "Tailwind"},
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Content: ContentConfig{
			Source:       SourceLocal,
			Seed:         append([]string(nil), DefaultSeedPatterns...),
			FetchTimeout: 5 * time.Second,
		},
		CMS: CMSConfig{
			Dataset:    "production",
			APIVersion: "2025-01-01",
			UseCDN:     true,
			Timeout:    10 * time.Second,
		},
		Nav: NavConfig{
			Offset: scroll.DefaultOffset,
		},
	}
}
