package editor

import (
	"errors"
	"strings"

	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/views"
)

var (
	ErrConfigRequired      = errors.New("editor: view configuration required")
	ErrPlaceholderRequired = errors.New("editor: placeholder name required")
)

// Session edits one placeholder layout of a view configuration. The selected
// cell coordinates are fixed for the lifetime of the session.
type Session struct {
	Config      *views.ViewConfig
	Placeholder string
	LayoutKey   string
	X           int
	Y           int
	Layout      *layouts.Layout
	defaults    *layouts.Layout
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithLayoutKey edits the layout stored under key instead of the base key.
func WithLayoutKey(key string) SessionOption {
	return func(s *Session) {
		if key = strings.TrimSpace(key); key != "" {
			s.LayoutKey = key
		}
	}
}

// WithSelection selects the cell at (x, y).
func WithSelection(x, y int) SessionOption {
	return func(s *Session) {
		s.X = x
		s.Y = y
	}
}

// WithDefaultLayout seeds the session when nothing is stored under its key.
func WithDefaultLayout(layout *layouts.Layout) SessionOption {
	return func(s *Session) {
		s.defaults = layout
	}
}

// NewSession opens placeholder of vc for editing. No cell is selected unless
// WithSelection is given.
func NewSession(vc *views.ViewConfig, placeholder string, opts ...SessionOption) (*Session, error) {
	if vc == nil {
		return nil, ErrConfigRequired
	}
	placeholder = strings.TrimSpace(placeholder)
	if placeholder == "" {
		return nil, ErrPlaceholderRequired
	}
	s := &Session{
		Config:      vc,
		Placeholder: placeholder,
		LayoutKey:   placeholder,
		X:           -1,
		Y:           -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Cell returns the selected cell, or nil when the selection does not resolve.
func (s *Session) Cell() *layouts.Cell {
	return s.Layout.GetCell(s.X, s.Y)
}

func (s *Session) reload() error {
	stored, ok, err := s.Config.PlaceholderLayout(s.LayoutKey)
	if err != nil {
		return err
	}
	switch {
	case ok:
		s.Layout = stored
	case s.defaults != nil:
		s.Layout = s.defaults.Clone()
	default:
		s.Layout = layouts.New(s.Placeholder)
	}
	s.Layout.PlaceholderName = s.Placeholder
	return nil
}
