package provider_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"notepad/database"
	"notepad/events"
	"notepad/models"
	"notepad/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestProvider(t *testing.T) (*provider.Provider, *events.Bus, *fakeClock) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus(16, nil)
	clock := &fakeClock{t: time.Date(2025, 10, 17, 9, 0, 0, 0, time.UTC)}

	p := provider.New(db, provider.NewSchema(provider.SchemaOptions{Untitled: "<Untitled>"}), bus, nil)
	p.SetClock(clock.now)
	return p, bus, clock
}

func insert(t *testing.T, p *provider.Provider, uri string, v models.Values) string {
	t.Helper()
	change, err := p.Insert(context.Background(), uri, v)
	require.NoError(t, err)
	return change.URI
}

func TestInsertNoteDefaults(t *testing.T) {
	p, _, clock := setupTestProvider(t)
	ctx := context.Background()

	uri := insert(t, p, models.NotesURI, models.Values{})
	assert.Equal(t, models.NoteURI(1), uri)

	c, err := p.Query(ctx, uri, nil, "", nil, "")
	require.NoError(t, err)
	require.True(t, c.MoveToFirst())

	assert.Equal(t, "<Untitled>", c.String(models.NoteColumnTitle))
	assert.Equal(t, "", c.String(models.NoteColumnNote))
	assert.False(t, c.IsNull(models.NoteColumnNote))
	assert.Equal(t, models.Millis(clock.t), c.Int64(models.NoteColumnCreated))
	assert.Equal(t, models.Millis(clock.t), c.Int64(models.NoteColumnModified))
}

func TestInsertTodoDefaults(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	uri := insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "buy milk"})
	assert.Equal(t, models.TodoURI(1), uri)

	c, err := p.Query(context.Background(), uri, nil, "", nil, "")
	require.NoError(t, err)
	require.True(t, c.MoveToFirst())

	assert.False(t, c.Bool(models.TodoColumnCompleted))
	assert.Equal(t, "buy milk", c.String(models.TodoColumnTitle))
	assert.Equal(t, "", c.String(models.TodoColumnContent))
	assert.True(t, c.IsNull(models.TodoColumnDueDate))
}

func TestInsertDoesNotMutateCallerValues(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	values := models.Values{models.NoteColumnTitle: "t"}
	insert(t, p, models.NotesURI, values)

	assert.Len(t, values, 1)
}

func TestInsertRejections(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		uri    string
		values models.Values
		want   error
	}{
		{"Item target", models.NoteURI(1), models.Values{}, provider.ErrInvalidTarget},
		{"Live folder", models.LiveFolderURI, models.Values{}, provider.ErrInvalidTarget},
		{"Unknown column", models.NotesURI, models.Values{"password": "x"}, provider.ErrInvalidColumn},
		{"Todo column on notes", models.NotesURI, models.Values{models.TodoColumnCompleted: true}, provider.ErrInvalidColumn},
		{"Duplicate id", models.NotesURI, models.Values{models.ColumnID: int64(1)}, provider.ErrWriteFailed},
	}

	insert(t, p, models.NotesURI, models.Values{models.ColumnID: int64(1)})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Insert(ctx, tt.uri, tt.values)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateThenQuery(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		collection string
		values     models.Values
		check      func(t *testing.T, c *provider.Cursor)
	}{
		{
			name:       "Note title and body",
			collection: models.NotesURI,
			values:     models.Values{models.NoteColumnTitle: "new", models.NoteColumnNote: "text"},
			check: func(t *testing.T, c *provider.Cursor) {
				assert.Equal(t, "new", c.String(models.NoteColumnTitle))
				assert.Equal(t, "text", c.String(models.NoteColumnNote))
			},
		},
		{
			name:       "Todo completion and due date",
			collection: models.TodosURI,
			values: models.Values{
				models.TodoColumnCompleted: true,
				models.TodoColumnDueDate:   time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			},
			check: func(t *testing.T, c *provider.Cursor) {
				assert.True(t, c.Bool(models.TodoColumnCompleted))
				assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), models.FromMillis(c.Int64(models.TodoColumnDueDate)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri := insert(t, p, tt.collection, models.Values{models.NoteColumnTitle: "old"})

			change, err := p.Update(ctx, uri, tt.values, "", nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), change.Count)
			assert.Equal(t, events.OpUpdate, change.Op)

			c, err := p.Query(ctx, uri, nil, "", nil, "")
			require.NoError(t, err)
			require.True(t, c.MoveToFirst())
			tt.check(t, c)
		})
	}
}

func TestDeleteThenQuery(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	for _, collection := range []string{models.NotesURI, models.TodosURI} {
		uri := insert(t, p, collection, models.Values{})
		other := insert(t, p, collection, models.Values{})

		change, err := p.Delete(ctx, uri, "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), change.Count)

		c, err := p.Query(ctx, uri, nil, "", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Count())

		c, err = p.Query(ctx, other, nil, "", nil, "")
		require.NoError(t, err)
		assert.Equal(t, 1, c.Count())
	}
}

func TestNoteUpdateAdvancesModified(t *testing.T) {
	p, _, clock := setupTestProvider(t)
	ctx := context.Background()

	uri := insert(t, p, models.NotesURI, models.Values{})
	modifiedAt := func() int64 {
		c, err := p.Query(ctx, uri, []string{models.NoteColumnModified}, "", nil, "")
		require.NoError(t, err)
		require.True(t, c.MoveToFirst())
		return c.Int64(models.NoteColumnModified)
	}
	first := modifiedAt()

	clock.advance(time.Minute)
	_, err := p.Update(ctx, uri, models.Values{models.NoteColumnTitle: "a"}, "", nil)
	require.NoError(t, err)
	second := modifiedAt()
	assert.Equal(t, first+time.Minute.Milliseconds(), second)

	// A clock that moves backwards, or a caller-supplied value, never rewinds it
	clock.advance(-time.Hour)
	_, err = p.Update(ctx, uri, models.Values{models.NoteColumnModified: int64(0)}, "", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, modifiedAt(), second)
}

func TestItemPredicateIsConjoined(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	uri := insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "a"})
	insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "b"})

	change, err := p.Update(ctx, uri, models.Values{models.TodoColumnContent: "x"}, "title = ?", []any{"b"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), change.Count)

	change, err = p.Delete(ctx, uri, "title = ?", []any{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), change.Count)

	c, err := p.Query(ctx, models.TodosURI, nil, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count())
}

func TestBulkDeleteCompletedTodos(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "done", models.TodoColumnCompleted: true})
	insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "open"})
	insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "done too", models.TodoColumnCompleted: 1})

	change, err := p.Delete(ctx, models.TodosURI, "completed = 1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), change.Count)
	assert.Equal(t, models.TodosURI, change.URI)

	c, err := p.Query(ctx, models.TodosURI, []string{models.TodoColumnTitle, models.TodoColumnCompleted}, "", nil, "")
	require.NoError(t, err)
	require.Equal(t, 1, c.Count())
	require.True(t, c.MoveToFirst())
	assert.Equal(t, "open", c.String(models.TodoColumnTitle))
	assert.False(t, c.Bool(models.TodoColumnCompleted))
}

func TestQueryProjectionAndSort(t *testing.T) {
	p, _, clock := setupTestProvider(t)
	ctx := context.Background()

	insert(t, p, models.NotesURI, models.Values{models.NoteColumnTitle: "older"})
	clock.advance(time.Second)
	insert(t, p, models.NotesURI, models.Values{models.NoteColumnTitle: "newer"})

	t.Run("Default sort is modified DESC", func(t *testing.T) {
		c, err := p.Query(ctx, models.NotesURI, []string{models.NoteColumnTitle}, "", nil, "")
		require.NoError(t, err)
		assert.Equal(t, []string{models.NoteColumnTitle}, c.Columns())
		require.True(t, c.Next())
		assert.Equal(t, "newer", c.String(models.NoteColumnTitle))
	})

	t.Run("Caller sort", func(t *testing.T) {
		c, err := p.Query(ctx, models.NotesURI, nil, "", nil, "title asc")
		require.NoError(t, err)
		assert.Equal(t, []string{"_id", "title", "note", "created", "modified"}, c.Columns())
		require.True(t, c.Next())
		assert.Equal(t, "newer", c.String(models.NoteColumnTitle))
		require.True(t, c.Next())
		assert.Equal(t, "older", c.String(models.NoteColumnTitle))
		assert.False(t, c.Next())
	})

	t.Run("Live folder projection", func(t *testing.T) {
		c, err := p.Query(ctx, models.LiveFolderURI, nil, "", nil, "")
		require.NoError(t, err)
		assert.Equal(t, []string{models.LiveFolderColumnID, models.LiveFolderColumnName}, c.Columns())
		require.True(t, c.Next())
		assert.Equal(t, "newer", c.String(models.LiveFolderColumnName))
	})

	t.Run("Live folder sorts by exposed name", func(t *testing.T) {
		c, err := p.Query(ctx, models.LiveFolderURI, nil, "", nil, "name DESC")
		require.NoError(t, err)
		require.True(t, c.Next())
		assert.Equal(t, "older", c.String(models.LiveFolderColumnName))
	})

	t.Run("Selection with args", func(t *testing.T) {
		c, err := p.Query(ctx, models.NotesURI, nil, "title LIKE ?", []any{"%old%"}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, c.Count())
	})

	rejections := []struct {
		name       string
		uri        string
		projection []string
		sort       string
		want       error
	}{
		{"Unmapped column", models.NotesURI, []string{"secret"}, "", provider.ErrInvalidColumn},
		{"Raw expression", models.NotesURI, []string{"count(*)"}, "", provider.ErrInvalidColumn},
		{"Live folder hides body", models.LiveFolderURI, []string{models.NoteColumnNote}, "", provider.ErrInvalidColumn},
		{"Todo column on notes", models.NotesURI, []string{models.TodoColumnCompleted}, "", provider.ErrInvalidColumn},
		{"Sort on unknown column", models.NotesURI, nil, "secret DESC", provider.ErrInvalidSortOrder},
		{"Sort with bad direction", models.NotesURI, nil, "title SIDEWAYS", provider.ErrInvalidSortOrder},
		{"Sort with injection", models.NotesURI, nil, "title; DROP TABLE notes", provider.ErrInvalidSortOrder},
		{"Live folder sort on hidden body", models.LiveFolderURI, nil, "note DESC", provider.ErrInvalidSortOrder},
		{"Live folder sort on source column", models.LiveFolderURI, nil, "title ASC", provider.ErrInvalidSortOrder},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Query(ctx, tt.uri, tt.projection, "", nil, tt.sort)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateWithoutValues(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()
	insert(t, p, models.TodosURI, models.Values{models.TodoColumnTitle: "buy milk"})
	insert(t, p, models.NotesURI, models.Values{models.NoteColumnTitle: "Groceries"})

	for _, uri := range []string{models.TodoURI(1), models.NoteURI(1), models.TodosURI} {
		_, err := p.Update(ctx, uri, models.Values{}, "", nil)
		assert.ErrorIs(t, err, provider.ErrNoValues, uri)
		assert.NotErrorIs(t, err, provider.ErrWriteFailed, uri)
	}
}

func TestLiveFolderIsReadOnly(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	_, err := p.Update(ctx, models.LiveFolderURI, models.Values{models.NoteColumnTitle: "x"}, "", nil)
	assert.ErrorIs(t, err, provider.ErrInvalidTarget)

	_, err = p.Delete(ctx, models.LiveFolderURI, "", nil)
	assert.ErrorIs(t, err, provider.ErrInvalidTarget)
}

func TestUnknownURIsFailUniformly(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	uris := []string{
		"content://com.google.provider.NotePad/folders",
		"content://other.authority/notes",
		"http://com.google.provider.NotePad/notes",
		"content://com.google.provider.NotePad/notes/abc",
		"content://com.google.provider.NotePad/notes/-1",
		"content://com.google.provider.NotePad/notes/+1",
		"content://com.google.provider.NotePad/notes/1/extra",
		"content://com.google.provider.NotePad/",
		"not a uri at all",
	}

	for _, uri := range uris {
		t.Run(uri, func(t *testing.T) {
			_, err := p.Query(ctx, uri, nil, "", nil, "")
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)

			_, err = p.Insert(ctx, uri, models.Values{})
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)

			_, err = p.Update(ctx, uri, models.Values{models.NoteColumnTitle: "x"}, "", nil)
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)

			_, err = p.Delete(ctx, uri, "", nil)
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)

			_, err = p.GetType(uri)
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)

			_, err = p.GetStreamTypes(uri, "*/*")
			assert.ErrorIs(t, err, provider.ErrInvalidTarget)
		})
	}
}

func TestGetType(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	tests := map[string]string{
		models.NotesURI:      models.NotesContentType,
		models.NoteURI(5):    models.NoteItemContentType,
		models.LiveFolderURI: models.NotesContentType,
		models.TodosURI:      models.TodosContentType,
		models.TodoURI(5):    models.TodoItemContentType,
	}
	for uri, want := range tests {
		got, err := p.GetType(uri)
		require.NoError(t, err)
		assert.Equal(t, want, got, uri)
	}
}

func TestMutationsEmitChanges(t *testing.T) {
	p, bus, _ := setupTestProvider(t)
	ctx := context.Background()

	c, err := p.Query(ctx, models.NotesURI, nil, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.NotesURI, c.NotificationURI())

	sub := c.Watch()
	defer sub.Close()

	var callbacks []events.Change
	bus.OnChange(func(ch events.Change) { callbacks = append(callbacks, ch) })

	uri := insert(t, p, models.NotesURI, models.Values{})
	_, err = p.Update(ctx, uri, models.Values{models.NoteColumnTitle: "x"}, "", nil)
	require.NoError(t, err)
	_, err = p.Delete(ctx, uri, "", nil)
	require.NoError(t, err)

	// Todo changes are not delivered to a notes cursor
	insert(t, p, models.TodosURI, models.Values{})

	var ops []events.Op
	for len(ops) < 3 {
		select {
		case ch := <-sub.C:
			assert.Equal(t, uri, ch.URI)
			ops = append(ops, ch.Op)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for change")
		}
	}
	assert.Equal(t, []events.Op{events.OpInsert, events.OpUpdate, events.OpDelete}, ops)

	select {
	case ch := <-sub.C:
		t.Fatalf("unexpected change %v", ch)
	default:
	}

	assert.Len(t, callbacks, 4)
}
