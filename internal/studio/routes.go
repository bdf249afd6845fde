// Package studio is the authoring surface for portfolio content: a
// bearer-token protected JSON API over the content store and a websocket
// hub that notifies preview clients after every change.
package studio

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/content"
)

const maxBodyBytes = 1 << 20

// RoutesDeps holds the dependencies needed to register the studio routes.
type RoutesDeps struct {
	Store   *content.Store
	Hub     *Hub
	Token   string
	SiteURL string
	Logger  *zap.Logger
}

// RegisterRoutes wires up the studio API and the preview websocket. It
// returns an error when no token is configured.
func RegisterRoutes(r chi.Router, deps RoutesDeps) error {
	if deps.Token == "" {
		return errors.New("studio: token is required")
	}
	if deps.Store == nil {
		return errors.New("studio: content store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Hub == nil {
		deps.Hub = NewHub(deps.Logger, nil)
	}
	h := &routeHandler{deps: deps}

	r.Route("/studio", func(r chi.Router) {
		r.Use(h.requireToken)
		r.Get("/ws", deps.Hub.ServeHTTP)
		r.Route("/api", func(r chi.Router) {
			r.Get("/schema", h.schema)
			r.Get("/documents", h.listDocuments)
			r.Post("/documents", h.createDocument)
			r.Get("/documents/{id}", h.getDocument)
			r.Put("/documents/{id}", h.updateDocument)
			r.Delete("/documents/{id}", h.deleteDocument)
			r.Get("/documents/{id}/preview-url", h.previewURL)
			r.Get("/messages", h.listMessages)
		})
	})
	return nil
}

type routeHandler struct {
	deps RoutesDeps
}

// requireToken accepts the token as a bearer header, or as the token query
// parameter for websocket clients that cannot set headers.
func (h *routeHandler) requireToken(next http.Handler) http.Handler {
	want := []byte(h.deps.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query().Get("token")
		if auth := r.Header.Get("Authorization"); auth != "" {
			scheme, token, _ := strings.Cut(auth, " ")
			if strings.EqualFold(scheme, "Bearer") {
				got = strings.TrimSpace(token)
			}
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="studio"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *routeHandler) schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Schemas)
}

func (h *routeHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	types := content.DocTypes
	if q := r.URL.Query().Get("type"); q != "" {
		typ, ok := content.ParseDocType(q)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown document type %q", q)})
			return
		}
		types = []content.DocType{typ}
	}

	docs := []content.Document{}
	for _, typ := range types {
		list, err := h.deps.Store.List(r.Context(), typ)
		if err != nil {
			h.fail(w, "listing documents", err)
			return
		}
		docs = append(docs, list...)
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *routeHandler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "getting document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *routeHandler) createDocument(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("type")
	typ, ok := content.ParseDocType(q)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown document type %q", q)})
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.save(r, typ, "", body)
	if err != nil {
		h.fail(w, "creating document", err)
		return
	}
	h.respondSaved(w, r, "create", id, http.StatusCreated)
}

func (h *routeHandler) updateDocument(w http.ResponseWriter, r *http.Request) {
	existing, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "updating document", err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.save(r, existing.Type, existing.ID, body)
	if err != nil {
		h.fail(w, "updating document", err)
		return
	}
	h.respondSaved(w, r, "update", id, http.StatusOK)
}

func (h *routeHandler) respondSaved(w http.ResponseWriter, r *http.Request, action, id string, status int) {
	doc, err := h.deps.Store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "reading saved document", err)
		return
	}
	h.deps.Hub.Broadcast(Event{Action: action, DocumentID: doc.ID, DocType: doc.Type, Slug: doc.Slug})
	h.deps.Logger.Info("studio document saved",
		zap.String("action", action),
		zap.String("id", doc.ID),
		zap.String("type", string(doc.Type)),
	)
	writeJSON(w, status, doc)
}

func (h *routeHandler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.deps.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "deleting document", err)
		return
	}
	if err := h.deps.Store.Delete(ctx, doc.ID); err != nil {
		h.fail(w, "deleting document", err)
		return
	}
	h.deps.Hub.Broadcast(Event{Action: "delete", DocumentID: doc.ID, DocType: doc.Type, Slug: doc.Slug})
	h.deps.Logger.Info("studio document deleted", zap.String("id", doc.ID), zap.String("type", string(doc.Type)))
	w.WriteHeader(http.StatusNoContent)
}

// previewURL returns the public page of a project. Other document types
// have no page of their own.
func (h *routeHandler) previewURL(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "preview url", err)
		return
	}
	if doc.Type != content.TypeProject || doc.Slug == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("%s documents have no preview page", doc.Type)})
		return
	}
	base := strings.TrimRight(h.deps.SiteURL, "/")
	writeJSON(w, http.StatusOK, map[string]string{"url": base + "/projekty/" + doc.Slug})
}

func (h *routeHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	msgs, err := h.deps.Store.ListMessages(r.Context(), limit)
	if err != nil {
		h.fail(w, "listing messages", err)
		return
	}
	if msgs == nil {
		msgs = []content.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// save decodes body as a document of typ, fills in a missing project slug,
// validates it and writes it under id (a new id when empty).
func (h *routeHandler) save(r *http.Request, typ content.DocType, id string, body []byte) (string, error) {
	ctx := r.Context()
	switch typ {
	case content.TypeProject:
		var p content.ProjectDetail
		if err := decodeStrict(body, &p); err != nil {
			return "", err
		}
		p.ID, p.CreatedAt = id, time.Time{}
		if strings.TrimSpace(p.Slug) == "" {
			p.Slug = content.Slugify(p.Title)
		}
		if err := content.ValidateProject(p); err != nil {
			return "", err
		}
		saved, err := h.deps.Store.SaveProject(ctx, p)
		if err != nil {
			return "", err
		}
		return saved.ID, nil
	case content.TypeService:
		var v content.Service
		if err := decodeStrict(body, &v); err != nil {
			return "", err
		}
		v.ID, v.CreatedAt = id, time.Time{}
		if err := content.ValidateService(v); err != nil {
			return "", err
		}
		saved, err := h.deps.Store.SaveService(ctx, v)
		if err != nil {
			return "", err
		}
		return saved.ID, nil
	case content.TypeTestimonial:
		var v content.Testimonial
		if err := decodeStrict(body, &v); err != nil {
			return "", err
		}
		v.ID, v.CreatedAt = id, time.Time{}
		if err := content.ValidateTestimonial(v); err != nil {
			return "", err
		}
		saved, err := h.deps.Store.SaveTestimonial(ctx, v)
		if err != nil {
			return "", err
		}
		return saved.ID, nil
	case content.TypeSkill:
		var v content.Skill
		if err := decodeStrict(body, &v); err != nil {
			return "", err
		}
		v.ID, v.CreatedAt = id, time.Time{}
		if err := content.ValidateSkill(v); err != nil {
			return "", err
		}
		saved, err := h.deps.Store.SaveSkill(ctx, v)
		if err != nil {
			return "", err
		}
		return saved.ID, nil
	}
	return "", fmt.Errorf("unsupported document type %q", typ)
}

// fail maps store and validation errors onto HTTP statuses.
func (h *routeHandler) fail(w http.ResponseWriter, op string, err error) {
	var verr *content.ValidationError
	var derr *decodeError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": derr.Error()})
	case errors.Is(err, content.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
	case errors.Is(err, content.ErrSlugTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.deps.Logger.Error(op, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("%s: %v", op, err)})
	}
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
