package provider_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"notepad/models"
	"notepad/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTypedStreamWritesNoteText(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	uri := insert(t, p, models.NotesURI, models.Values{
		models.NoteColumnTitle: "T",
		models.NoteColumnNote:  "B",
	})

	r, mimeType, err := p.OpenTypedStream(ctx, uri, "text/*")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "T\n\nB\n", string(data))
	assert.Equal(t, models.MIMETypeTextPlain, mimeType)
}

func TestOpenTypedStreamUTF8(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	uri := insert(t, p, models.NotesURI, models.Values{
		models.NoteColumnTitle: "笔记",
		models.NoteColumnNote:  "línea uno\nlínea dos",
	})

	r, _, err := p.OpenTypedStream(context.Background(), uri, "*/*")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "笔记\n\nlínea uno\nlínea dos\n", string(data))
}

func TestOpenTypedStreamReaderCanStopEarly(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	uri := insert(t, p, models.NotesURI, models.Values{
		models.NoteColumnNote: string(bytes.Repeat([]byte("x"), 64*1024)),
	})

	r, _, err := p.OpenTypedStream(context.Background(), uri, models.MIMETypeTextPlain)
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)

	// Closing the read end unblocks the producer
	require.NoError(t, r.Close())
}

func TestOpenTypedStreamErrors(t *testing.T) {
	p, _, _ := setupTestProvider(t)
	ctx := context.Background()

	todo := insert(t, p, models.TodosURI, models.Values{})
	note := insert(t, p, models.NotesURI, models.Values{})

	tests := []struct {
		name   string
		uri    string
		filter string
		want   error
	}{
		{"Missing note", models.NoteURI(99), "text/plain", provider.ErrNotFound},
		{"Filter does not match", note, "image/*", provider.ErrStreamUnsupported},
		{"Notes collection", models.NotesURI, "text/plain", provider.ErrStreamUnsupported},
		{"Todo item", todo, "text/plain", provider.ErrStreamUnsupported},
		{"Unknown target", "content://com.google.provider.NotePad/nope", "text/plain", provider.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, err := p.OpenTypedStream(ctx, tt.uri, tt.filter)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetStreamTypes(t *testing.T) {
	p, _, _ := setupTestProvider(t)

	tests := []struct {
		uri    string
		filter string
		want   []string
	}{
		{models.NoteURI(1), "text/plain", []string{"text/plain"}},
		{models.NoteURI(1), "TEXT/*", []string{"text/plain"}},
		{models.NoteURI(1), "*/*", []string{"text/plain"}},
		{models.NoteURI(1), "", []string{"text/plain"}},
		{models.NoteURI(1), "text/html", nil},
		{models.NotesURI, "*/*", nil},
		{models.LiveFolderURI, "*/*", nil},
		{models.TodosURI, "*/*", nil},
		{models.TodoURI(1), "*/*", nil},
	}

	for _, tt := range tests {
		got, err := p.GetStreamTypes(tt.uri, tt.filter)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.uri, tt.filter)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteNoteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, provider.WriteNoteText(&buf, "T", "B"))
	assert.Equal(t, "T\n\nB\n", buf.String())

	assert.Error(t, provider.WriteNoteText(failingWriter{}, "T", "B"))
}
