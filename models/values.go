package models

import (
	"strconv"
	"time"
)

// Values is a flat field set keyed by column name, used for inserts and updates.
type Values map[string]any

// Has reports whether the column is present, even when its value is nil.
func (v Values) Has(column string) bool {
	_, ok := v[column]
	return ok
}

// PutDefault sets column only when it is absent.
func (v Values) PutDefault(column string, value any) {
	if !v.Has(column) {
		v[column] = value
	}
}

// Millis converts a time to the stored Unix-millisecond form.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored timestamp back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ItemURI appends an id to a collection URI.
func ItemURI(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

// NoteURI returns the item URI for a note.
func NoteURI(id int64) string {
	return ItemURI(NotesURI, id)
}

// TodoURI returns the item URI for a todo.
func TodoURI(id int64) string {
	return ItemURI(TodosURI, id)
}
