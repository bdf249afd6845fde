package consent

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/redirect"
)

// SettingsParam is the query parameter that opens the settings dialog.
const SettingsParam = "cookies"

// View is the consent UI state a page needs to render.
type View struct {
	Banner   bool
	Settings bool
	Draft    Draft
	// Return is the local path the consent forms redirect back to.
	Return string
}

// ViewFor initialises a Store from the request cookies and derives the
// banner/dialog state. The dialog opens with ?cookies=settings.
func ViewFor(w http.ResponseWriter, r *http.Request, logger *zap.Logger) View {
	s := New(NewCookieKV(w, r), logger)
	s.Init()
	if r.URL.Query().Get(SettingsParam) == "settings" {
		// Only valid while prompting; a resolved visitor just gets no banner.
		_ = s.OpenCustomization()
	}
	return View{
		Banner:   s.BannerVisible(),
		Settings: s.SettingsOpen(),
		Draft:    s.Draft(),
		Return:   r.URL.Path,
	}
}

// RegisterRoutes mounts the consent form handlers and the JSON status API.
func RegisterRoutes(r chi.Router, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Post("/consent/accept", handleAction(logger, func(s *Store, _ *http.Request) (Record, error) {
		return s.AcceptAll()
	}))
	r.Post("/consent/reject", handleAction(logger, func(s *Store, _ *http.Request) (Record, error) {
		return s.RejectNonEssential()
	}))
	r.Post("/consent/save", handleAction(logger, func(s *Store, req *http.Request) (Record, error) {
		if err := s.OpenCustomization(); err != nil {
			return Record{}, err
		}
		if err := s.SetAnalytics(req.PostFormValue("analytics") == "on"); err != nil {
			return Record{}, err
		}
		if err := s.SetMarketing(req.PostFormValue("marketing") == "on"); err != nil {
			return Record{}, err
		}
		return s.SavePreferences()
	}))
	r.Get("/api/consent", handleStatus(logger))
}

type actionFunc func(s *Store, r *http.Request) (Record, error)

func handleAction(logger *zap.Logger, act actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		s := New(NewCookieKV(w, r), logger)
		s.Init()
		rec, err := act(s, r)
		switch {
		case errors.Is(err, ErrInvalidTransition):
			// Stale page from an already resolved visitor.
			logger.Debug("ignoring consent action", zap.Error(err))
		case err != nil:
			logger.Error("consent action failed", zap.Error(err))
			http.Error(w, "consent could not be saved", http.StatusInternalServerError)
			return
		default:
			logger.Info("consent resolved",
				zap.Bool("analytics", rec.Analytics),
				zap.Bool("marketing", rec.Marketing),
				zap.Bool("degraded", s.Degraded()))
		}

		redirect.Back(w, r)
	}
}

type statusResponse struct {
	State  State   `json:"state"`
	Banner bool    `json:"banner"`
	Record *Record `json:"record,omitempty"`
}

func handleStatus(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := New(NewCookieKV(w, r), logger)
		resp := statusResponse{State: s.Init(), Banner: s.BannerVisible()}
		if rec, ok := s.Record(); ok {
			resp.Record = &rec
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

