// Package prefs persists user preferences such as the theme mode.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/theme"
)

// ThemeModeKey is the preference key holding the theme mode.
const ThemeModeKey = "theme.mode"

// Repository is the key/value storage the store needs.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store persists the theme mode. It implements theme.Store.
type Store struct {
	repo   Repository
	logger zerolog.Logger
}

var _ theme.Store = (*Store)(nil)

// NewStore creates a Store over repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:   repo,
		logger: logging.Component("prefs"),
	}
}

// Load returns the saved mode. Missing, unreadable and malformed values all
// report false; only the unexpected ones are logged.
func (s *Store) Load(ctx context.Context) (theme.Mode, bool) {
	value, err := s.repo.Get(ctx, ThemeModeKey)
	if err != nil {
		if !errors.Is(err, db.ErrPreferenceNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read theme mode")
		}
		return "", false
	}

	mode, err := theme.ParseMode(value)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored theme mode is invalid")
		return "", false
	}
	return mode, true
}

// Save writes mode.
func (s *Store) Save(ctx context.Context, mode theme.Mode) error {
	if !mode.Valid() {
		return theme.ErrInvalidMode
	}
	if err := s.repo.Set(ctx, ThemeModeKey, string(mode)); err != nil {
		return fmt.Errorf("save theme mode: %w", err)
	}
	return nil
}
