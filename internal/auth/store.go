// Package auth stores the portfolio's secrets outside the config file:
// the studio API token and the hosted content store read token.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// TokenCredentials stores a single bearer token.
type TokenCredentials struct {
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Credentials holds all stored secrets.
type Credentials struct {
	Studio *TokenCredentials `json:"studio,omitempty"`
	CMS    *TokenCredentials `json:"cms,omitempty"`
}

const (
	StudioTokenEnv = "PORTFOLIO_STUDIO_TOKEN"
	CMSTokenEnv    = "PORTFOLIO_CMS_TOKEN"
)

// CredentialPath returns the path to the credentials file under the XDG
// config home.
func CredentialPath() string {
	return filepath.Join(xdg.ConfigHome, "portfolio", "credentials.json")
}

// Load reads credentials from path. Returns empty credentials if the file
// doesn't exist.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials to path with restricted permissions.
func Save(path string, creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// GenerateToken returns a random 32-byte token, hex encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// StudioToken resolves the studio token: the configured value first, then
// the environment, then stored credentials.
func StudioToken(path, configured string) string {
	return resolve(configured, StudioTokenEnv, path, func(c *Credentials) *TokenCredentials { return c.Studio })
}

// CMSToken resolves the hosted content store token the same way.
func CMSToken(path, configured string) string {
	return resolve(configured, CMSTokenEnv, path, func(c *Credentials) *TokenCredentials { return c.CMS })
}

func resolve(configured, envVar, path string, pick func(*Credentials) *TokenCredentials) string {
	if configured != "" {
		return configured
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	creds, err := Load(path)
	if err != nil {
		return ""
	}
	if tc := pick(creds); tc != nil {
		return tc.Token
	}
	return ""
}
