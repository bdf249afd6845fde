package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissing(t *testing.T) {
	creds, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.Studio != nil || creds.CMS != nil {
		t.Errorf("expected empty credentials, got %+v", creds)
	}
}

func TestSaveAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio", "credentials.json")

	if err := Save(path, &Credentials{
		Studio: &TokenCredentials{Token: "stored-studio"},
		CMS:    &TokenCredentials{Token: "stored-cms"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	if got := StudioToken(path, ""); got != "stored-studio" {
		t.Errorf("stored studio token: got %q", got)
	}
	if got := CMSToken(path, ""); got != "stored-cms" {
		t.Errorf("stored cms token: got %q", got)
	}

	t.Setenv(StudioTokenEnv, "env-studio")
	if got := StudioToken(path, ""); got != "env-studio" {
		t.Errorf("env should win over stored, got %q", got)
	}
	if got := StudioToken(path, "configured"); got != "configured" {
		t.Errorf("configured should win, got %q", got)
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateToken()
	if len(a) != 64 || a == b {
		t.Errorf("unexpected tokens %q %q", a, b)
	}
}
