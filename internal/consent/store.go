// Package consent decides whether the cookie preferences banner is shown
// and persists the visitor's choice.
package consent

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StorageKey is the single key the consent record is stored under.
const StorageKey = "cookie-consent-state"

// Record is the persisted consent choice. Necessary is always true.
type Record struct {
	Necessary bool `json:"necessary"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// Draft holds the toggles of the customization dialog.
type Draft struct {
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// DefaultDraft seeds the customization dialog. Analytics starts enabled.
var DefaultDraft = Draft{Analytics: true, Marketing: false}

// State is the position of a Store in the consent lifecycle.
type State int

const (
	StateUnknown State = iota
	StatePrompting
	StateCustomizing
	StateResolved
)

func (s State) String() string {
	switch s {
	case StatePrompting:
		return "prompting"
	case StateCustomizing:
		return "customizing"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unknown":
		*s = StateUnknown
	case "prompting":
		*s = StatePrompting
	case "customizing":
		*s = StateCustomizing
	case "resolved":
		*s = StateResolved
	default:
		return fmt.Errorf("consent: unknown state %q", text)
	}
	return nil
}

// ErrInvalidTransition is returned when an action is not available in the
// current state.
var ErrInvalidTransition = errors.New("consent: invalid transition")

// Store is the consent state machine for one browser.
type Store struct {
	kv     KV
	logger *zap.Logger

	state    State
	draft    Draft
	record   Record
	hasRec   bool
	degraded bool
}

// New returns a Store in StateUnknown. Call Init before any action.
func New(kv KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger, draft: DefaultDraft}
}

// Init reads the persisted record and enters Resolved when one exists,
// Prompting otherwise. A storage failure is treated as "no record".
func (s *Store) Init() State {
	if s.state != StateUnknown {
		return s.state
	}

	raw, found, err := s.kv.Get(StorageKey)
	if err != nil {
		s.degraded = true
		s.logger.Warn("consent storage unavailable, prompting", zap.Error(err))
		s.state = StatePrompting
		return s.state
	}
	if !found {
		s.state = StatePrompting
		return s.state
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Presence of the key is what resolves consent.
		s.logger.Debug("stored consent record is not valid JSON", zap.Error(err))
	} else {
		rec.Necessary = true
		s.record = rec
		s.hasRec = true
	}
	s.state = StateResolved
	return s.state
}

// State returns the current lifecycle state.
func (s *Store) State() State { return s.state }

// BannerVisible reports whether the consent bar is shown.
func (s *Store) BannerVisible() bool {
	return s.state == StatePrompting || s.state == StateCustomizing
}

// SettingsOpen reports whether the customization dialog is shown.
func (s *Store) SettingsOpen() bool { return s.state == StateCustomizing }

// Draft returns the customization toggles.
func (s *Store) Draft() Draft { return s.draft }

// Record returns the persisted or just-saved record. ok is false when no
// readable record exists.
func (s *Store) Record() (Record, bool) { return s.record, s.hasRec }

// Degraded reports whether storage failed during this session, meaning
// the prompt will reappear on the next load.
func (s *Store) Degraded() bool { return s.degraded }

// AcceptAll enables every category and resolves.
func (s *Store) AcceptAll() (Record, error) {
	return s.Save(true)
}

// RejectNonEssential disables analytics and marketing and resolves.
func (s *Store) RejectNonEssential() (Record, error) {
	if !s.BannerVisible() {
		return Record{}, s.invalid("reject")
	}
	return s.resolve(Record{Necessary: true})
}

// OpenCustomization shows the settings dialog. The draft starts as
// DefaultDraft and keeps its toggles across Back and reopening.
func (s *Store) OpenCustomization() error {
	if s.state != StatePrompting {
		return s.invalid("open customization")
	}
	s.state = StateCustomizing
	return nil
}

// SetAnalytics changes the analytics toggle of the draft.
func (s *Store) SetAnalytics(on bool) error {
	if s.state != StateCustomizing {
		return s.invalid("toggle analytics")
	}
	s.draft.Analytics = on
	return nil
}

// SetMarketing changes the marketing toggle of the draft.
func (s *Store) SetMarketing(on bool) error {
	if s.state != StateCustomizing {
		return s.invalid("toggle marketing")
	}
	s.draft.Marketing = on
	return nil
}

// Back closes the settings dialog without saving.
func (s *Store) Back() error {
	if s.state != StateCustomizing {
		return s.invalid("back")
	}
	s.state = StatePrompting
	return nil
}

// SavePreferences persists the draft.
func (s *Store) SavePreferences() (Record, error) {
	if s.state != StateCustomizing {
		return Record{}, s.invalid("save preferences")
	}
	return s.Save(false)
}

// Save persists everything enabled when acceptedAll is set, the draft
// otherwise. Necessary is always true.
func (s *Store) Save(acceptedAll bool) (Record, error) {
	if !s.BannerVisible() {
		return Record{}, s.invalid("save")
	}
	rec := Record{Necessary: true, Analytics: s.draft.Analytics, Marketing: s.draft.Marketing}
	if acceptedAll {
		rec.Analytics = true
		rec.Marketing = true
	}
	return s.resolve(rec)
}

// resolve writes rec once and enters Resolved. A failed write keeps the
// banner hidden for this session only.
func (s *Store) resolve(rec Record) (Record, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encoding consent record: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		s.degraded = true
		s.logger.Warn("consent record not persisted", zap.Error(err))
	}
	s.record = rec
	s.hasRec = true
	s.state = StateResolved
	return rec, nil
}

func (s *Store) invalid(action string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.state)
}
