package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jvesely/portfolio/internal/db"
)

// ErrSlugTaken is returned when another project already uses a slug.
var ErrSlugTaken = errors.New("content: slug already in use")

// Document is a stored document with its type-specific body.
type Document struct {
	ID        string          `json:"id"`
	Type      DocType         `json:"type"`
	Slug      string          `json:"slug,omitempty"`
	Order     *int            `json:"order,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Body      json.RawMessage `json:"body"`
}

// Decode unmarshals the body and restores the column-backed fields.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Body, v); err != nil {
		return fmt.Errorf("decoding %s %s: %w", d.Type, d.ID, err)
	}
	switch doc := v.(type) {
	case *ProjectDetail:
		doc.ID, doc.Order, doc.CreatedAt = d.ID, d.Order, d.CreatedAt
	case *Project:
		doc.ID, doc.Order, doc.CreatedAt = d.ID, d.Order, d.CreatedAt
	case *Service:
		doc.ID, doc.Order, doc.CreatedAt = d.ID, d.Order, d.CreatedAt
	case *Testimonial:
		doc.ID, doc.Order, doc.CreatedAt = d.ID, d.Order, d.CreatedAt
	case *Skill:
		doc.ID, doc.Order, doc.CreatedAt = d.ID, d.Order, d.CreatedAt
	}
	return nil
}

// Store is the SQLite content store. It implements Source.
type Store struct {
	db *db.DB
}

// NewStore creates a new content store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

var _ Source = (*Store)(nil)

// SaveProject creates or replaces a project.
func (s *Store) SaveProject(ctx context.Context, p ProjectDetail) (*ProjectDetail, error) {
	prepare(&p.ID, &p.CreatedAt)
	if err := s.save(ctx, p.ID, TypeProject, p.Slug, p.Order, p.CreatedAt, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveService creates or replaces a service.
func (s *Store) SaveService(ctx context.Context, v Service) (*Service, error) {
	prepare(&v.ID, &v.CreatedAt)
	if err := s.save(ctx, v.ID, TypeService, "", v.Order, v.CreatedAt, v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveTestimonial creates or replaces a testimonial.
func (s *Store) SaveTestimonial(ctx context.Context, v Testimonial) (*Testimonial, error) {
	prepare(&v.ID, &v.CreatedAt)
	if err := s.save(ctx, v.ID, TypeTestimonial, "", v.Order, v.CreatedAt, v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveSkill creates or replaces a skill.
func (s *Store) SaveSkill(ctx context.Context, v Skill) (*Skill, error) {
	prepare(&v.ID, &v.CreatedAt)
	if err := s.save(ctx, v.ID, TypeSkill, "", v.Order, v.CreatedAt, v); err != nil {
		return nil, err
	}
	return &v, nil
}

func prepare(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

// save upserts a document. The creation time of an existing document is
// kept, and a document never changes type.
func (s *Store) save(ctx context.Context, id string, typ DocType, slug string, order *int, createdAt time.Time, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", typ, err)
	}

	var sortOrder sql.NullInt64
	if order != nil {
		sortOrder = sql.NullInt64{Int64: int64(*order), Valid: true}
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, type, slug, sort_order, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET slug = excluded.slug, sort_order = excluded.sort_order,
		   body = excluded.body, updated_at = excluded.updated_at
		 WHERE documents.type = excluded.type`,
		id, typ, slug, sortOrder, string(data), createdAt.UTC(), now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
		return fmt.Errorf("saving %s: %w", typ, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document %s already exists with another type", id)
	}
	return nil
}

const documentColumns = `id, type, slug, sort_order, body, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var d Document
	var sortOrder sql.NullInt64
	var body string
	if err := row.Scan(&d.ID, &d.Type, &d.Slug, &sortOrder, &body, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return Document{}, err
	}
	if sortOrder.Valid {
		n := int(sortOrder.Int64)
		d.Order = &n
	}
	d.Body = json.RawMessage(body)
	return d, nil
}

// Get returns a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return &d, nil
}

// List returns every document of typ in display order. Documents without
// an order value come last.
func (s *Store) List(ctx context.Context, typ DocType) ([]Document, error) {
	created := "ASC"
	if typ == TypeProject {
		created = "DESC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE type = ?
		 ORDER BY sort_order IS NULL, sort_order ASC, created_at `+created+`, id ASC`, typ)
	if err != nil {
		return nil, fmt.Errorf("listing %s documents: %w", typ, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Counts returns the number of documents per type.
func (s *Store) Counts(ctx context.Context) (map[DocType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM documents GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[DocType]int, len(DocTypes))
	for _, t := range DocTypes {
		counts[t] = 0
	}
	for rows.Next() {
		var t DocType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

func listAs[T any](ctx context.Context, s *Store, typ DocType) ([]T, error) {
	docs, err := s.List(ctx, typ)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Projects implements Source.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	details, err := listAs[ProjectDetail](ctx, s, TypeProject)
	if err != nil {
		return nil, err
	}
	out := make([]Project, len(details))
	for i, d := range details {
		out[i] = d.Project
	}
	return out, nil
}

// ProjectDetails returns every project with its case-study fields.
func (s *Store) ProjectDetails(ctx context.Context) ([]ProjectDetail, error) {
	return listAs[ProjectDetail](ctx, s, TypeProject)
}

// Services implements Source.
func (s *Store) Services(ctx context.Context) ([]Service, error) {
	return listAs[Service](ctx, s, TypeService)
}

// Testimonials implements Source.
func (s *Store) Testimonials(ctx context.Context) ([]Testimonial, error) {
	return listAs[Testimonial](ctx, s, TypeTestimonial)
}

// Skills implements Source.
func (s *Store) Skills(ctx context.Context) ([]Skill, error) {
	return listAs[Skill](ctx, s, TypeSkill)
}

// ProjectBySlug implements Source.
func (s *Store) ProjectBySlug(ctx context.Context, slug string) (*ProjectDetail, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE type = ? AND slug = ?`, TypeProject, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %q: %w", slug, err)
	}
	var p ProjectDetail
	if err := d.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
