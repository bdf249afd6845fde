package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jvesely/portfolio/internal/content"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{ProjectID: "abc123", Dataset: "production", Token: "secret"}, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresProject(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without project ID")
	}
}

func TestNewHosts(t *testing.T) {
	c, _ := New(Config{ProjectID: "abc123", UseCDN: true})
	if c.baseURL != "https://abc123.apicdn.sanity.io" {
		t.Errorf("unexpected CDN base %s", c.baseURL)
	}
	c, _ = New(Config{ProjectID: "abc123"})
	if c.baseURL != "https://abc123.api.sanity.io" {
		t.Errorf("unexpected API base %s", c.baseURL)
	}
}

func TestSkillsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2025-01-01/data/query/production" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if q := r.URL.Query().Get("query"); !strings.Contains(q, `_type == "skill"`) {
			t.Errorf("unexpected query %q", q)
		}
		w.Write([]byte(`{"ms":3,"result":[
			{"_id":"s1","_createdAt":"2024-01-01T10:00:00Z","name":"Go","emoji":"🐹","level":"expert","order":1},
			{"_id":"s2","_createdAt":"2024-01-02T10:00:00Z","name":"SQL"}
		]}`))
	})

	skills, err := c.Skills(context.Background())
	if err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(skills))
	}
	if skills[0].Level != content.LevelExpert || *skills[0].Order != 1 {
		t.Errorf("unexpected skill %+v", skills[0])
	}
	if skills[1].Order != nil {
		t.Errorf("expected nil order, got %v", *skills[1].Order)
	}
}

func TestProjectBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("$slug")
		if slug == `"missing"` {
			w.Write([]byte(`{"result":null}`))
			return
		}
		if slug != `"e-shop"` {
			t.Errorf("unexpected slug parameter %q", slug)
		}
		w.Write([]byte(`{"result":{
			"_id":"p1","title":"E-shop","slug":{"current":"e-shop"},
			"description":[{"_type":"block","children":[{"text":"První "},{"text":"odstavec"}]},{"_type":"block","children":[{"text":"Druhý"}]}],
			"mainImage":{"asset":{"_ref":"image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"}},
			"workflow":["Analýza","Návrh"],
			"year":2024
		}}`))
	})

	p, err := c.ProjectBySlug(context.Background(), "e-shop")
	if err != nil {
		t.Fatalf("ProjectBySlug: %v", err)
	}
	if p.Slug != "e-shop" || p.Year != 2024 || len(p.Workflow) != 2 {
		t.Errorf("unexpected project %+v", p)
	}
	if p.Description != "První odstavec\n\nDruhý" {
		t.Errorf("unexpected description %q", p.Description)
	}
	wantImage := "https://cdn.sanity.io/images/abc123/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg"
	if p.MainImage == nil || p.MainImage.URL != wantImage {
		t.Errorf("unexpected image %+v", p.MainImage)
	}

	if _, err := c.ProjectBySlug(context.Background(), "missing"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"expected '}' following object body","type":"queryParseError"}}`))
	})

	_, err := c.Services(context.Background())
	if err == nil || !strings.Contains(err.Error(), "expected '}'") {
		t.Errorf("expected API error description, got %v", err)
	}
}

func TestImageURL(t *testing.T) {
	got, err := ImageURL("p", "d", "image-abc-10x20-png")
	if err != nil || got != "https://cdn.sanity.io/images/p/d/abc-10x20.png" {
		t.Errorf("ImageURL = %q, %v", got, err)
	}
	for _, ref := range []string{"file-abc-pdf", "image-abc", "image-abc-png", "image--"} {
		if _, err := ImageURL("p", "d", ref); err == nil {
			t.Errorf("ImageURL(%q) should fail", ref)
		}
	}
}
