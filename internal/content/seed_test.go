package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleSeed = `
projects:
  - title: E-shop pro květinářství
    short_description: Online obchod
    order: 1
    features: [košík, platby]
services:
  - title: Webové stránky
skills:
  - name: Go
    emoji: "🐹"
    level: advanced
---
testimonials:
  - name: Jana Nováková
    company: Květiny s.r.o.
    quote: Skvělá spolupráce.
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeBundle(t *testing.T) {
	b, err := DecodeBundle(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}
	if b.Len() != 4 {
		t.Errorf("expected 4 documents, got %d", b.Len())
	}
	if len(b.Projects[0].Features) != 2 || *b.Projects[0].Order != 1 {
		t.Errorf("unexpected project %+v", b.Projects[0])
	}
}

func TestDecodeBundleRejectsUnknownKeys(t *testing.T) {
	if _, err := DecodeBundle(strings.NewReader("projects:\n  - titel: typo\n")); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestReadBundlesGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "skills:\n  - name: Go\n")
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.yaml"), "skills:\n  - name: SQL\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "skills: []\n")

	b, files, err := ReadBundles([]string{
		filepath.Join(dir, "**", "*.yaml"),
		filepath.Join(dir, "a.yaml"),
	})
	if err != nil {
		t.Fatalf("ReadBundles: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 unique files, got %v", files)
	}
	if len(b.Skills) != 2 {
		t.Errorf("expected 2 skills, got %d", len(b.Skills))
	}
}

func TestImportIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		b, err := DecodeBundle(strings.NewReader(sampleSeed))
		if err != nil {
			t.Fatal(err)
		}
		var calls int
		stats, err := s.Import(ctx, b, func(done, total int, label string) {
			calls++
			if done > total {
				t.Errorf("progress %d/%d", done, total)
			}
		})
		if err != nil {
			t.Fatalf("Import #%d: %v", i, err)
		}
		if stats.Total() != 4 || calls != 4 {
			t.Errorf("import #%d: stats %+v, %d progress calls", i, stats, calls)
		}
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for typ, n := range counts {
		if n != 1 {
			t.Errorf("expected one %s after re-import, got %d", typ, n)
		}
	}

	p, err := s.ProjectBySlug(ctx, "e-shop-pro-kvetinarstvi")
	if err != nil {
		t.Fatalf("derived slug not stored: %v", err)
	}
	if p.ID != SeedID(TypeProject, "e-shop-pro-kvetinarstvi") {
		t.Errorf("unexpected seeded ID %s", p.ID)
	}
}

func TestImportValidatesBeforeWriting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := Bundle{
		Skills:   []Skill{{Name: "Go"}},
		Services: []Service{{Title: ""}},
	}
	if _, err := s.Import(ctx, b, nil); err == nil {
		t.Fatal("expected validation error")
	}
	skills, err := s.Skills(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 0 {
		t.Errorf("nothing should be written, got %d skills", len(skills))
	}
}

func TestWatchDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.yaml")
	writeFile(t, path, "skills: []\n")

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{filepath.Join(dir, "*.yaml")}, 20*time.Millisecond, nil, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			writeFile(t, path, "skills:\n  - name: Go\n")
		case <-deadline:
			cancel()
			<-done
			t.Fatal("no change detected")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
