package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"notepad/events"
	"notepad/models"
)

// DBTX is the subset of *sql.DB the provider needs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Notifier receives every change descriptor and hands out subscriptions for
// cursors.
type Notifier interface {
	NotifyChange(c events.Change)
	Subscribe(uri string, descendants bool) *events.Subscription
}

// Provider executes routed requests against the relational store.
type Provider struct {
	db       DBTX
	schema   *Schema
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a provider. A nil notifier gets a private bus.
func New(db DBTX, schema *Schema, notifier Notifier, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = events.NewBus(0, logger)
	}
	return &Provider{
		db:       db,
		schema:   schema,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for default and modified timestamps.
func (p *Provider) SetClock(now func() time.Time) {
	p.now = now
}

func (p *Provider) Schema() *Schema {
	return p.schema
}

// ==================== QUERY ====================

// Query reads rows from the routed table through the target's projection.
func (p *Provider) Query(ctx context.Context, uri string, projection []string, selection string, args []any, sortOrder string) (*Cursor, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return nil, err
	}

	columns, err := route.Projection.Resolve(projection)
	if err != nil {
		return nil, err
	}

	orderBy, err := sortClause(route, sortOrder)
	if err != nil {
		return nil, err
	}

	where, whereArgs := whereClause(route, selection, args)

	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + route.Table.Name + where + " ORDER BY " + orderBy

	rows, err := p.db.QueryContext(ctx, query, whereArgs...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", uri, err)
	}
	defer rows.Close()

	cursor, err := readCursor(rows)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", uri, err)
	}
	cursor.notificationURI = uri
	cursor.notifier = p.notifier
	return cursor, nil
}

// GetType returns the collection or item content type for uri.
func (p *Provider) GetType(uri string) (string, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return "", err
	}
	return route.ContentType(), nil
}

// ==================== MUTATIONS ====================

// Insert adds a row to a collection target, filling defaulted columns. The
// returned change carries the new item's URI.
func (p *Provider) Insert(ctx context.Context, uri string, values models.Values) (events.Change, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return events.Change{}, err
	}
	if route.Kind != KindNotes && route.Kind != KindTodos {
		return events.Change{}, fmt.Errorf("%w: cannot insert into %s", ErrInvalidTarget, uri)
	}

	vals, err := normalizeValues(route.Table, values)
	if err != nil {
		return events.Change{}, err
	}
	p.schema.applyDefaults(route.Table, vals, p.now())

	columns := sortedKeys(vals)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		args[i] = vals[col]
	}

	query := "INSERT INTO " + route.Table.Name + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return events.Change{}, fmt.Errorf("%w: insert into %s: %w", ErrWriteFailed, uri, err)
	}
	id, err := res.LastInsertId()
	if err != nil || id <= 0 {
		return events.Change{}, fmt.Errorf("%w: failed to insert row into %s", ErrWriteFailed, uri)
	}

	change := events.Change{
		URI:   models.ItemURI(route.Table.CollectionURI, id),
		Op:    events.OpInsert,
		Count: 1,
		At:    p.now(),
	}
	p.notifier.NotifyChange(change)
	p.logger.Debug("row inserted", "uri", change.URI)
	return change, nil
}

// Update changes the given columns on matching rows. Note updates always
// advance the modified timestamp.
func (p *Provider) Update(ctx context.Context, uri string, values models.Values, selection string, args []any) (events.Change, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return events.Change{}, err
	}
	if route.ReadOnly() {
		return events.Change{}, fmt.Errorf("%w: %s is read-only", ErrInvalidTarget, uri)
	}

	if len(values) == 0 {
		return events.Change{}, fmt.Errorf("%w: %s", ErrNoValues, uri)
	}
	vals, err := normalizeValues(route.Table, values)
	if err != nil {
		return events.Change{}, err
	}

	touchModified := route.Table == p.schema.notes
	if touchModified {
		delete(vals, models.NoteColumnModified)
	}

	columns := sortedKeys(vals)
	sets := make([]string, 0, len(columns)+1)
	setArgs := make([]any, 0, len(columns)+1)
	for _, col := range columns {
		sets = append(sets, col+" = ?")
		setArgs = append(setArgs, vals[col])
	}
	if touchModified {
		sets = append(sets, models.NoteColumnModified+" = MAX(COALESCE("+models.NoteColumnModified+", 0), ?)")
		setArgs = append(setArgs, models.Millis(p.now()))
	}
	where, whereArgs := whereClause(route, selection, args)
	query := "UPDATE " + route.Table.Name + " SET " + strings.Join(sets, ", ") + where

	res, err := p.db.ExecContext(ctx, query, append(setArgs, whereArgs...)...)
	if err != nil {
		return events.Change{}, fmt.Errorf("%w: update %s: %w", ErrWriteFailed, uri, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return events.Change{}, fmt.Errorf("%w: update %s: %w", ErrWriteFailed, uri, err)
	}

	change := events.Change{URI: uri, Op: events.OpUpdate, Count: count, At: p.now()}
	p.notifier.NotifyChange(change)
	return change, nil
}

// Delete removes matching rows. On item targets the id predicate is combined
// with any selection.
func (p *Provider) Delete(ctx context.Context, uri string, selection string, args []any) (events.Change, error) {
	route, err := p.schema.Match(uri)
	if err != nil {
		return events.Change{}, err
	}
	if route.ReadOnly() {
		return events.Change{}, fmt.Errorf("%w: %s is read-only", ErrInvalidTarget, uri)
	}

	where, whereArgs := whereClause(route, selection, args)
	query := "DELETE FROM " + route.Table.Name + where

	res, err := p.db.ExecContext(ctx, query, whereArgs...)
	if err != nil {
		return events.Change{}, fmt.Errorf("%w: delete %s: %w", ErrWriteFailed, uri, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return events.Change{}, fmt.Errorf("%w: delete %s: %w", ErrWriteFailed, uri, err)
	}

	change := events.Change{URI: uri, Op: events.OpDelete, Count: count, At: p.now()}
	p.notifier.NotifyChange(change)
	p.logger.Debug("rows deleted", "uri", uri, "count", count)
	return change, nil
}

// ==================== SQL HELPERS ====================

func whereClause(route Route, selection string, args []any) (string, []any) {
	selection = strings.TrimSpace(selection)

	if !route.IsItem() {
		if selection == "" {
			return "", args
		}
		return " WHERE " + selection, args
	}

	clause := " WHERE " + models.ColumnID + " = ?"
	if selection != "" {
		clause += " AND (" + selection + ")"
	}
	return clause, append([]any{route.ID}, args...)
}

// sortClause accepts "col [ASC|DESC], ..." over the columns the route's
// projection exposes. Aliased names sort by their source column.
func sortClause(route Route, sortOrder string) (string, error) {
	sortOrder = strings.TrimSpace(sortOrder)
	if sortOrder == "" {
		return route.Table.DefaultSort, nil
	}

	terms := strings.Split(sortOrder, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, sortOrder)
		}
		column, ok := route.Projection.Source(fields[0])
		if !ok {
			return "", fmt.Errorf("%w: unknown column %q", ErrInvalidSortOrder, fields[0])
		}
		if len(fields) == 1 {
			out = append(out, column)
			continue
		}
		dir := strings.ToUpper(fields[1])
		if dir != "ASC" && dir != "DESC" {
			return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, sortOrder)
		}
		out = append(out, column+" "+dir)
	}
	return strings.Join(out, ", "), nil
}

// normalizeValues copies values, rejecting unknown columns and converting Go
// types to their stored form.
func normalizeValues(table *Table, values models.Values) (models.Values, error) {
	out := make(models.Values, len(values))
	for col, v := range values {
		if !table.HasColumn(col) {
			return nil, fmt.Errorf("%w: %q for table %s", ErrInvalidColumn, col, table.Name)
		}
		out[col] = storedValue(v)
	}
	return out, nil
}

func storedValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case *bool:
		if t == nil {
			return nil
		}
		return storedValue(*t)
	case time.Time:
		return models.Millis(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return models.Millis(*t)
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case int:
		return int64(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		return t.String()
	default:
		return v
	}
}

func sortedKeys(v models.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
