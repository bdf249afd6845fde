package content

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Field limits enforced by the authoring rules.
const (
	MinTitleLength      = 3
	MaxTitleLength      = 120
	MaxShortDescription = 280
	MinQuoteLength      = 10
	MaxQuoteLength      = 1200
	MaxMessageLength    = 5000
	MaxNameLength       = 120
	MinSkillNameLength  = 2
	MaxSkillNameLength  = 50
	MaxSkillEmojiLength = 8
	minProjectYear      = 1990
	maxProjectYear      = 2100
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed rule of a document.
type ValidationError struct {
	Type   DocType      `json:"type"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Type, strings.Join(parts, "; "))
}

type validator struct {
	typ    DocType
	fields []FieldError
}

func (v *validator) add(field, format string, args ...any) {
	v.fields = append(v.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) required(field, value string, min, max int) {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	switch {
	case value == "":
		v.add(field, "is required")
	case n < min:
		v.add(field, "must be at least %d characters", min)
	case n > max:
		v.add(field, "must be at most %d characters", max)
	}
}

func (v *validator) optional(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, "must be at most %d characters", max)
	}
}

func (v *validator) link(field, value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.add(field, "must be an absolute http(s) URL")
	}
}

func (v *validator) order(order *int) {
	if order != nil && *order < 0 {
		v.add("order", "must not be negative")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Type: v.typ, Fields: v.fields}
}

// ValidateProject checks the authoring rules of a project.
func ValidateProject(p ProjectDetail) error {
	v := &validator{typ: TypeProject}
	v.required("title", p.Title, MinTitleLength, MaxTitleLength)
	switch {
	case p.Slug == "":
		v.add("slug", "is required")
	case !ValidSlug(p.Slug):
		v.add("slug", "must be lowercase words joined by dashes, at most %d characters", MaxSlugLength)
	}
	v.optional("short_description", p.ShortDescription, MaxShortDescription)
	v.link("url", p.URL)
	v.order(p.Order)
	if p.Year != 0 && (p.Year < minProjectYear || p.Year > maxProjectYear) {
		v.add("year", "must be between %d and %d", minProjectYear, maxProjectYear)
	}
	return v.err()
}

// ValidateService checks the authoring rules of a service.
func ValidateService(s Service) error {
	v := &validator{typ: TypeService}
	v.required("title", s.Title, MinTitleLength, MaxTitleLength)
	v.optional("short_description", s.ShortDescription, MaxShortDescription)
	v.order(s.Order)
	return v.err()
}

// ValidateTestimonial checks the authoring rules of a testimonial.
func ValidateTestimonial(t Testimonial) error {
	v := &validator{typ: TypeTestimonial}
	v.required("name", t.Name, 1, MaxNameLength)
	v.required("quote", t.Quote, MinQuoteLength, MaxQuoteLength)
	v.order(t.Order)
	return v.err()
}

// ValidateSkill checks the authoring rules of a skill.
func ValidateSkill(s Skill) error {
	v := &validator{typ: TypeSkill}
	v.required("name", s.Name, MinSkillNameLength, MaxSkillNameLength)
	v.optional("emoji", s.Emoji, MaxSkillEmojiLength)
	if !s.Level.Valid() {
		v.add("level", "unknown level %q", s.Level)
	}
	v.order(s.Order)
	return v.err()
}

// ValidateMessage checks a contact form submission.
func ValidateMessage(m Message) error {
	v := &validator{typ: "message"}
	v.required("name", m.Name, 1, MaxNameLength)
	v.required("message", m.Message, 1, MaxMessageLength)
	if strings.TrimSpace(m.Email) == "" {
		v.add("email", "is required")
	} else if _, err := mail.ParseAddress(m.Email); err != nil {
		v.add("email", "is not a valid address")
	}
	return v.err()
}
