package services

import (
	"context"
	"path/filepath"
	"testing"

	"notepad/database"
	"notepad/events"
	"notepad/models"
	"notepad/provider"
	"notepad/storage"
	"notepad/validator"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== MOCKS ====================

// MockResolver is a mock implementation of the Resolver interface
type MockResolver struct {
	mock.Mock
}

// Ensure MockResolver implements Resolver interface
var _ Resolver = (*MockResolver)(nil)

func (m *MockResolver) Query(ctx context.Context, uri string, projection []string, selection string, args []any, sortOrder string) (*provider.Cursor, error) {
	a := m.Called(uri, projection, selection, args, sortOrder)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(*provider.Cursor), a.Error(1)
}

func (m *MockResolver) Insert(ctx context.Context, uri string, values models.Values) (events.Change, error) {
	a := m.Called(uri, values)
	return a.Get(0).(events.Change), a.Error(1)
}

func (m *MockResolver) Update(ctx context.Context, uri string, values models.Values, selection string, args []any) (events.Change, error) {
	a := m.Called(uri, values, selection, args)
	return a.Get(0).(events.Change), a.Error(1)
}

func (m *MockResolver) Delete(ctx context.Context, uri string, selection string, args []any) (events.Change, error) {
	a := m.Called(uri, selection, args)
	return a.Get(0).(events.Change), a.Error(1)
}

// MockPreferences is a mock implementation of the PreferenceStore interface
type MockPreferences struct {
	mock.Mock
}

var _ PreferenceStore = (*MockPreferences)(nil)

func (m *MockPreferences) GetString(bucket, key string) (string, error) {
	a := m.Called(bucket, key)
	return a.String(0), a.Error(1)
}

func (m *MockPreferences) PutString(bucket, key, value string) error {
	a := m.Called(bucket, key, value)
	return a.Error(0)
}

// ==================== HELPERS ====================

// setupTestProvider opens a migrated database in a temp dir
func setupTestProvider(t *testing.T) *provider.Provider {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	return provider.New(db, provider.NewSchema(provider.SchemaOptions{}), nil, nil)
}

func setupTestPrefs(t *testing.T) *storage.Preferences {
	t.Helper()

	prefs, err := storage.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { prefs.Close() })
	return prefs
}

func setupNoteService(t *testing.T) (*NoteService, *provider.Provider, *storage.Preferences, string) {
	t.Helper()

	p := setupTestProvider(t)
	prefs := setupTestPrefs(t)
	dir := filepath.Join(t.TempDir(), "exports")
	return NewNoteService(p, prefs, validator.New(), dir, nil), p, prefs, dir
}

func ptr[T any](v T) *T { return &v }
