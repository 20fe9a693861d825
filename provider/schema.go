package provider

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notepad/models"
)

// Kind is the routed target of a URI.
type Kind int

const (
	KindNotes Kind = iota + 1
	KindNoteItem
	KindLiveFolderNotes
	KindTodos
	KindTodoItem
)

func (k Kind) String() string {
	switch k {
	case KindNotes:
		return "notes"
	case KindNoteItem:
		return "note-item"
	case KindLiveFolderNotes:
		return "notes-live-folder"
	case KindTodos:
		return "todos"
	case KindTodoItem:
		return "todo-item"
	default:
		return "unknown"
	}
}

// Projection maps the column names a caller may request to SQL expressions.
type Projection struct {
	order []string
	exprs map[string]string
}

func newProjection(pairs ...string) Projection {
	p := Projection{exprs: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.order = append(p.order, pairs[i])
		p.exprs[pairs[i]] = pairs[i+1]
	}
	return p
}

// Columns lists the names the projection exposes, in declaration order.
func (p Projection) Columns() []string {
	return append([]string(nil), p.order...)
}

// Source returns the table column behind an exposed name.
func (p Projection) Source(name string) (string, bool) {
	expr, ok := p.exprs[name]
	if !ok {
		return "", false
	}
	return strings.SplitN(expr, " AS ", 2)[0], true
}

// Resolve turns requested names into select expressions. An empty request
// selects every exposed column.
func (p Projection) Resolve(requested []string) ([]string, error) {
	if len(requested) == 0 {
		requested = p.order
	}

	exprs := make([]string, 0, len(requested))
	for _, name := range requested {
		expr, ok := p.exprs[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// Table describes one stored entity.
type Table struct {
	Name          string
	CollectionURI string
	Columns       []string
	DefaultSort   string
	DirType       string
	ItemType      string

	columnSet map[string]bool
	defaults  func(v models.Values, now int64, untitled string)
}

// HasColumn reports whether column exists in the table.
func (t *Table) HasColumn(column string) bool {
	return t.columnSet[column]
}

// Route is the result of matching a URI.
type Route struct {
	URI        string
	Kind       Kind
	Table      *Table
	Projection Projection
	ID         int64
}

// IsItem reports whether the route addresses a single row.
func (r Route) IsItem() bool {
	return r.Kind == KindNoteItem || r.Kind == KindTodoItem
}

// ReadOnly reports whether mutations are rejected for this route.
func (r Route) ReadOnly() bool {
	return r.Kind == KindLiveFolderNotes
}

// ContentType is the collection or item type string for the route.
func (r Route) ContentType() string {
	if r.IsItem() {
		return r.Table.ItemType
	}
	return r.Table.DirType
}

type routeEntry struct {
	segments []string
	kind     Kind
}

// Schema is the immutable routing table and projection configuration. Build
// it once with NewSchema and share it.
type Schema struct {
	authority string
	untitled  string
	routes    []routeEntry
	notes     *Table
	todos     *Table

	notesProjection      Projection
	todosProjection      Projection
	liveFolderProjection Projection
}

type SchemaOptions struct {
	// Untitled is the placeholder title for inserts that omit one.
	Untitled string
}

func NewSchema(opts SchemaOptions) *Schema {
	untitled := opts.Untitled
	if untitled == "" {
		untitled = models.DefaultUntitled
	}

	notes := newTable(models.NotesTable, models.NotesURI,
		[]string{
			models.ColumnID,
			models.NoteColumnTitle,
			models.NoteColumnNote,
			models.NoteColumnCreated,
			models.NoteColumnModified,
		},
		models.NotesDefaultSortOrder,
		models.NotesContentType, models.NoteItemContentType,
		func(v models.Values, now int64, untitled string) {
			v.PutDefault(models.NoteColumnCreated, now)
			v.PutDefault(models.NoteColumnModified, now)
			v.PutDefault(models.NoteColumnTitle, untitled)
			v.PutDefault(models.NoteColumnNote, "")
		},
	)

	todos := newTable(models.TodosTable, models.TodosURI,
		[]string{
			models.ColumnID,
			models.TodoColumnTitle,
			models.TodoColumnContent,
			models.TodoColumnCompleted,
			models.TodoColumnCreated,
			models.TodoColumnDueDate,
		},
		models.TodosDefaultSortOrder,
		models.TodosContentType, models.TodoItemContentType,
		func(v models.Values, now int64, untitled string) {
			v.PutDefault(models.TodoColumnCreated, now)
			v.PutDefault(models.TodoColumnCompleted, int64(0))
			v.PutDefault(models.TodoColumnTitle, untitled)
			v.PutDefault(models.TodoColumnContent, "")
		},
	)

	return &Schema{
		authority: models.Authority,
		untitled:  untitled,
		routes: []routeEntry{
			{segments: []string{models.NotesPath}, kind: KindNotes},
			{segments: []string{models.NotesPath, "#"}, kind: KindNoteItem},
			{segments: strings.Split(models.LiveFolderPath, "/"), kind: KindLiveFolderNotes},
			{segments: []string{models.TodosPath}, kind: KindTodos},
			{segments: []string{models.TodosPath, "#"}, kind: KindTodoItem},
		},
		notes:                notes,
		todos:                todos,
		notesProjection:      identityProjection(notes.Columns),
		todosProjection:      identityProjection(todos.Columns),
		liveFolderProjection: newProjection(
			models.LiveFolderColumnID, models.ColumnID+" AS "+models.LiveFolderColumnID,
			models.LiveFolderColumnName, models.NoteColumnTitle+" AS "+models.LiveFolderColumnName,
		),
	}
}

func newTable(name, uri string, columns []string, sort, dirType, itemType string,
	defaults func(models.Values, int64, string)) *Table {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return &Table{
		Name:          name,
		CollectionURI: uri,
		Columns:       columns,
		DefaultSort:   sort,
		DirType:       dirType,
		ItemType:      itemType,
		columnSet:     set,
		defaults:      defaults,
	}
}

func identityProjection(columns []string) Projection {
	pairs := make([]string, 0, len(columns)*2)
	for _, c := range columns {
		pairs = append(pairs, c, c)
	}
	return newProjection(pairs...)
}

// Untitled returns the configured placeholder title.
func (s *Schema) Untitled() string {
	return s.untitled
}

// Match routes a content URI. Unrecognised URIs fail with ErrInvalidTarget.
func (s *Schema) Match(uri string) (Route, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Route{}, fmt.Errorf("%w: unknown URI %s", ErrInvalidTarget, uri)
	}
	if u.Scheme != models.Scheme || u.Host != s.authority {
		return Route{}, fmt.Errorf("%w: unknown URI %s", ErrInvalidTarget, uri)
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return Route{}, fmt.Errorf("%w: unknown URI %s", ErrInvalidTarget, uri)
	}
	segments := strings.Split(path, "/")

	for _, entry := range s.routes {
		id, ok := matchSegments(entry.segments, segments)
		if !ok {
			continue
		}
		return s.route(uri, entry.kind, id), nil
	}

	return Route{}, fmt.Errorf("%w: unknown URI %s", ErrInvalidTarget, uri)
}

func (s *Schema) route(uri string, kind Kind, id int64) Route {
	r := Route{URI: uri, Kind: kind, ID: id}
	switch kind {
	case KindNotes, KindNoteItem:
		r.Table = s.notes
		r.Projection = s.notesProjection
	case KindLiveFolderNotes:
		r.Table = s.notes
		r.Projection = s.liveFolderProjection
	case KindTodos, KindTodoItem:
		r.Table = s.todos
		r.Projection = s.todosProjection
	}
	return r
}

// matchSegments compares a pattern where "#" stands for a non-negative id.
func matchSegments(pattern, segments []string) (int64, bool) {
	if len(pattern) != len(segments) {
		return 0, false
	}

	var id int64
	for i, p := range pattern {
		if p != "#" {
			if p != segments[i] {
				return 0, false
			}
			continue
		}
		if !isDigits(segments[i]) {
			return 0, false
		}
		n, err := strconv.ParseInt(segments[i], 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	}
	return id, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// applyDefaults fills columns omitted by an insert.
func (s *Schema) applyDefaults(t *Table, v models.Values, now time.Time) {
	t.defaults(v, models.Millis(now), s.untitled)
}
