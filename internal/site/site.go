// Package site renders the portfolio pages: the single-page landing site
// and the per-project case studies.
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/consent"
	"github.com/jvesely/portfolio/internal/content"
	"github.com/jvesely/portfolio/internal/scroll"
	"github.com/jvesely/portfolio/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Config holds the owner details and copy shown on the pages.
type Config struct {
	Title        string
	Description  string
	URL          string
	Brand        string
	Greeting     string
	Headline     string
	Highlight    string
	Intro        string
	About        string
	ContactIntro string
	Email        string
	Phone        string
	Location     string
	Technologies []string
	Sections     []scroll.Section
	ScrollOffset float64
	FetchTimeout time.Duration
}

// MessageStore persists contact form submissions.
type MessageStore interface {
	SaveMessage(ctx context.Context, m content.Message) (*content.Message, error)
}

// Site serves the rendered pages.
type Site struct {
	cfg      Config
	src      content.Source
	messages MessageStore
	md       *Markdown
	pages    map[string]*template.Template
	css      []byte
	logger   *zap.Logger
}

var pageNames = []string{"home", "project", "notfound", "unavailable"}

// New parses the templates and prepares a site backed by src. messages may
// be nil, in which case the contact form is disabled.
func New(cfg Config, src content.Source, messages MessageStore, logger *zap.Logger) (*Site, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Sections) == 0 {
		cfg.Sections = scroll.DefaultSections
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = content.DefaultFetchTimeout
	}

	s := &Site{
		cfg:      cfg,
		src:      src,
		messages: messages,
		md:       NewMarkdown(),
		pages:    make(map[string]*template.Template, len(pageNames)),
		logger:   logger,
	}

	funcs := template.FuncMap{
		"markdown": s.md.Render,
		"add1":     func(i int) int { return i + 1 },
		"year":     func() int { return time.Now().Year() },
		"initial": func(name string) string {
			for _, r := range strings.TrimSpace(name) {
				return strings.ToUpper(string(r))
			}
			return "?"
		},
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		s.pages[name] = t
	}

	var css bytes.Buffer
	if err := WriteHighlightCSS(&css); err != nil {
		return nil, fmt.Errorf("generating highlight css: %w", err)
	}
	s.css = css.Bytes()

	return s, nil
}

// RegisterRoutes mounts the pages, form handlers, static assets and the
// public content API. Theme and consent routes are included.
func (s *Site) RegisterRoutes(r chi.Router) {
	static, _ := fs.Sub(staticFS, "static")

	r.Group(func(r chi.Router) {
		r.Use(theme.Middleware)
		theme.RegisterRoutes(r, s.logger)
		consent.RegisterRoutes(r, s.logger)

		r.Get("/", s.handleHome)
		r.Get("/projekty/{slug}", s.handleProject)
		r.Post("/kontakt", s.handleContact)
	})

	r.Get("/static/highlight.css", s.handleHighlightCSS)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/api/content/{kind}", s.handleContentAPI)

	r.NotFound(theme.Middleware(http.HandlerFunc(s.handleNotFound)).ServeHTTP)
}

// pageData is passed to every page template.
type pageData struct {
	Site       Config
	Title      string
	Theme      theme.Theme
	ThemeClass string
	Consent    consent.View
	Nav        []scroll.Section
	Active     string
	MenuOpen   bool
	Offset     float64
	Epsilon    float64
	Path       string
	// Anchors prefixes nav links: "" on the landing page, "/" elsewhere.
	Anchors string
	Home    *homePage
	Project *projectPage
}

type homePage struct {
	content.Home
	About template.HTML
	Form  contactForm
}

type contactForm struct {
	Name     string
	Email    string
	Message  string
	Errors   map[string]string
	Sent     bool
	Disabled bool
}

type projectPage struct {
	content.ProjectDetail
	DescriptionHTML template.HTML
	GoalHTML        template.HTML
	ResultsHTML     template.HTML
}

func (s *Site) newPage(w http.ResponseWriter, r *http.Request, title string) *pageData {
	p := theme.FromContext(r.Context())
	d := &pageData{
		Site:       s.cfg,
		Title:      title,
		Theme:      p.Theme(),
		ThemeClass: p.HTMLClass(),
		Consent:    consent.ViewFor(w, r, s.logger),
		Nav:        s.cfg.Sections,
		Active:     scroll.Resolve(s.cfg.Sections, nil, s.cfg.ScrollOffset, 0),
		MenuOpen:   r.URL.Query().Get("menu") == "open",
		Offset:     s.cfg.ScrollOffset,
		Epsilon:    scroll.Epsilon,
		Path:       r.URL.Path,
		Anchors:    "/",
	}
	if d.Title == "" {
		d.Title = s.cfg.Title
	} else if s.cfg.Title != "" {
		d.Title = title + " | " + s.cfg.Title
	}
	return d
}

// render executes a page into a buffer so a template error never leaves a
// half-written response.
func (s *Site) render(w http.ResponseWriter, status int, page string, data *pageData) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Site) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(s.css)
}
