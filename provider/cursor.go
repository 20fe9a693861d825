package provider

import (
	"database/sql"
	"fmt"
	"strconv"

	"notepad/events"
)

// Cursor is a materialised query result that remembers which URI it was
// read from, so observers can re-query when that URI changes.
type Cursor struct {
	columns         []string
	index           map[string]int
	rows            [][]any
	pos             int
	notificationURI string
	notifier        Notifier
}

// NewCursor builds a detached cursor over in-memory rows.
func NewCursor(columns []string, rows [][]any) *Cursor {
	c := &Cursor{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		rows:    rows,
		pos:     -1,
	}
	for i, name := range columns {
		c.index[name] = i
	}
	return c
}

func readCursor(rows *sql.Rows) (*Cursor, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	c := NewCursor(columns, nil)
	for rows.Next() {
		vals := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		c.rows = append(c.rows, vals)
	}

	return c, rows.Err()
}

func (c *Cursor) Columns() []string {
	return append([]string(nil), c.columns...)
}

func (c *Cursor) Count() int {
	return len(c.rows)
}

// Next advances to the next row. A fresh cursor sits before the first row.
func (c *Cursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		c.pos = len(c.rows)
		return false
	}
	c.pos++
	return true
}

// MoveToFirst rewinds to the first row and reports whether one exists.
func (c *Cursor) MoveToFirst() bool {
	c.pos = -1
	return c.Next()
}

// ColumnIndex returns the position of a column or -1.
func (c *Cursor) ColumnIndex(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// Value returns the raw value of a column on the current row, or nil.
func (c *Cursor) Value(name string) any {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	i := c.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	return c.rows[c.pos][i]
}

func (c *Cursor) IsNull(name string) bool {
	return c.Value(name) == nil
}

func (c *Cursor) String(name string) string {
	switch v := c.Value(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func (c *Cursor) Int64(name string) int64 {
	switch v := c.Value(name).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (c *Cursor) Bool(name string) bool {
	return c.Int64(name) != 0
}

// Rows returns every row keyed by column name.
func (c *Cursor) Rows() []map[string]any {
	out := make([]map[string]any, 0, len(c.rows))
	for _, row := range c.rows {
		m := make(map[string]any, len(c.columns))
		for i, name := range c.columns {
			m[name] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// NotificationURI is the URI whose changes invalidate this cursor.
func (c *Cursor) NotificationURI() string {
	return c.notificationURI
}

// Watch subscribes to changes at or below the notification URI. The caller
// closes the subscription and re-issues the query on each change.
func (c *Cursor) Watch() *events.Subscription {
	if c.notifier == nil {
		return nil
	}
	return c.notifier.Subscribe(c.notificationURI, true)
}
