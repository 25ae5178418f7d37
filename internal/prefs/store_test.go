package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/caredesk/internal/db"
	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/theme"
)

type failingRepo struct{}

func (failingRepo) Get(context.Context, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingRepo) Set(context.Context, string, string) error {
	return errors.New("storage unavailable")
}

func newDBStore(t *testing.T) (*Store, *db.PreferenceRepository) {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	repo := db.NewPreferenceRepository(database)
	return NewStore(repo), repo
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newDBStore(t)

	_, ok := store.Load(ctx)
	assert.False(t, ok, "nothing saved yet")

	require.NoError(t, store.Save(ctx, theme.ModeDark))
	mode, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, theme.ModeDark, mode)
}

func TestStoreIgnoresMalformedValue(t *testing.T) {
	ctx := context.Background()
	store, repo := newDBStore(t)

	require.NoError(t, repo.Set(ctx, ThemeModeKey, "sepia"))
	_, ok := store.Load(ctx)
	assert.False(t, ok)
}

func TestStoreSwallowsReadFailure(t *testing.T) {
	store := NewStore(failingRepo{})
	_, ok := store.Load(context.Background())
	assert.False(t, ok)
}

func TestStoreReportsWriteFailure(t *testing.T) {
	store := NewStore(failingRepo{})
	require.Error(t, store.Save(context.Background(), theme.ModeLight))
	require.ErrorIs(t, store.Save(context.Background(), theme.Mode("x")), theme.ErrInvalidMode)
}

func TestThemeStateWithDBStore(t *testing.T) {
	ctx := context.Background()
	store, _ := newDBStore(t)

	first := theme.NewState(store, theme.AppearanceLight, theme.WithLogger(logging.Discard()))
	first.Start(ctx)
	first.Wait()
	require.Equal(t, theme.ModeSystem, first.Mode())

	require.NoError(t, first.SetMode(theme.ModeDark))
	first.Wait()

	// A fresh state over the same storage comes back in dark mode.
	second := theme.NewState(store, theme.AppearanceLight, theme.WithLogger(logging.Discard()))
	second.Start(ctx)
	second.Wait()
	assert.Equal(t, theme.ModeDark, second.Mode())
	assert.Equal(t, theme.DarkPalette, second.Palette())
}

func TestThemeStateWithFailingStore(t *testing.T) {
	state := theme.NewState(NewStore(failingRepo{}), theme.AppearanceDark, theme.WithLogger(logging.Discard()))
	state.Start(context.Background())

	require.NoError(t, state.SetMode(theme.ModeLight))
	state.Wait()
	assert.Equal(t, theme.EffectiveLight, state.Effective())
}
