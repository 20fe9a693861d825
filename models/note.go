package models

import "time"

type Note struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type Todo struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	DueAt     *time.Time `json:"due_at,omitempty"`
}

// NoteRequest is the body accepted when creating or saving a note.
type NoteRequest struct {
	Title *string `json:"title" validate:"omitempty,max=500"`
	Body  *string `json:"body"`
}

// TodoRequest is the body accepted when creating or editing a todo.
type TodoRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=500"`
	Content   *string `json:"content"`
	Completed *bool   `json:"completed"`
	DueDate   *int64  `json:"due_date" validate:"omitempty,gte=0"`
}

type CompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// NoteFields are the checked columns of a raw notes field set. Other keys
// pass through to the provider unchanged.
type NoteFields struct {
	Title    *string `json:"title" validate:"omitempty,max=500"`
	Created  *int64  `json:"created" validate:"omitempty,gte=0"`
	Modified *int64  `json:"modified" validate:"omitempty,gte=0"`
}

// TodoFields are the checked columns of a raw todos field set.
type TodoFields struct {
	Title   *string `json:"title" validate:"omitempty,max=500"`
	Created *int64  `json:"created" validate:"omitempty,gte=0"`
	DueDate *int64  `json:"due_date" validate:"omitempty,gte=0"`
}

// QueryOptions are the caller-controlled parts of a resolver query.
type QueryOptions struct {
	Projection string `query:"projection" validate:"omitempty,projection"`
	Sort       string `query:"sort" validate:"omitempty,sortorder"`
}

type NoteListOptions struct {
	Keyword string `query:"q" validate:"max=200"`
}

type TodoListOptions struct {
	Completed string `query:"completed" validate:"omitempty,oneof=true false"`
}

// CompletedFilter maps the query value onto the list filter. Empty means all.
func (o TodoListOptions) CompletedFilter() *bool {
	if o.Completed == "" {
		return nil
	}
	completed := o.Completed == "true"
	return &completed
}

// BackupRecord is one note in the serialized backup blob.
type BackupRecord struct {
	ID      int64  `json:"id" validate:"gte=0"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Time    int64  `json:"time" validate:"gte=0"`
}

// RestoreResult summarises a restore run.
type RestoreResult struct {
	Total    int `json:"total"`
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
}

// StreamRequest carries the MIME filter for a note text export.
type StreamRequest struct {
	Accept string `json:"accept" validate:"omitempty,mimetype"`
}
