package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/content"
)

func (s *Site) homeData(r *http.Request) *homePage {
	return &homePage{
		Home:  content.LoadHome(r.Context(), s.src, s.cfg.FetchTimeout, s.logger),
		About: s.md.Render(s.cfg.About),
		Form:  contactForm{Disabled: s.messages == nil},
	}
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(w, r, "")
	data.Anchors = ""
	data.Home = s.homeData(r)
	data.Home.Form.Sent = r.URL.Query().Get("odeslano") == "1"
	s.render(w, http.StatusOK, "home", data)
}

func (s *Site) handleProject(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := s.src.ProjectBySlug(r.Context(), slug)
	if errors.Is(err, content.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("loading project", zap.String("slug", slug), zap.Error(err))
		s.render(w, http.StatusServiceUnavailable, "unavailable", s.newPage(w, r, "Projekt není dostupný"))
		return
	}

	data := s.newPage(w, r, p.Title)
	data.Project = &projectPage{
		ProjectDetail:   *p,
		DescriptionHTML: s.md.Render(p.Description),
		GoalHTML:        s.md.Render(p.Goal),
		ResultsHTML:     s.md.Render(p.Results),
	}
	s.render(w, http.StatusOK, "project", data)
}

func (s *Site) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "notfound", s.newPage(w, r, "Stránka nenalezena"))
}

// honeypotField is left empty by people and filled in by form bots.
const honeypotField = "web"

func (s *Site) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.messages == nil {
		http.Error(w, "contact form is disabled", http.StatusServiceUnavailable)
		return
	}

	form := contactForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	if r.PostFormValue(honeypotField) != "" {
		s.logger.Info("contact form honeypot triggered", zap.String("remote", r.RemoteAddr))
		http.Redirect(w, r, "/?odeslano=1#kontakt", http.StatusSeeOther)
		return
	}

	_, err := s.messages.SaveMessage(r.Context(), content.Message{
		Name:       form.Name,
		Email:      form.Email,
		Message:    form.Message,
		RemoteAddr: r.RemoteAddr,
	})

	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Errors = make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			form.Errors[f.Field] = f.Message
		}
		data := s.newPage(w, r, "")
		data.Anchors = ""
		data.Home = s.homeData(r)
		data.Home.Form = form
		s.render(w, http.StatusUnprocessableEntity, "home", data)
	case err != nil:
		s.logger.Error("saving contact message", zap.Error(err))
		http.Error(w, "message could not be saved", http.StatusInternalServerError)
	default:
		s.logger.Info("contact message received", zap.String("email", form.Email))
		http.Redirect(w, r, "/?odeslano=1#kontakt", http.StatusSeeOther)
	}
}

func (s *Site) handleContentAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		items any
		err   error
	)
	switch kind := chi.URLParam(r, "kind"); kind {
	case "projects":
		items, err = s.src.Projects(ctx)
	case "services":
		items, err = s.src.Services(ctx)
	case "testimonials":
		items, err = s.src.Testimonials(ctx)
	case "skills":
		items, err = s.src.Skills(ctx)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown content kind " + kind})
		return
	}
	if err != nil {
		s.logger.Error("content api", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "content unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
