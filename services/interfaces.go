package services

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"notepad/events"
	"notepad/models"
	"notepad/provider"
)

// Resolver is the content-provider surface the services work through.
// Production uses *provider.Provider.
type Resolver interface {
	Query(ctx context.Context, uri string, projection []string, selection string, args []any, sortOrder string) (*provider.Cursor, error)
	Insert(ctx context.Context, uri string, values models.Values) (events.Change, error)
	Update(ctx context.Context, uri string, values models.Values, selection string, args []any) (events.Change, error)
	Delete(ctx context.Context, uri string, selection string, args []any) (events.Change, error)
}

// PreferenceStore holds small named string values.
// Production uses *storage.Preferences.
type PreferenceStore interface {
	GetString(bucket, key string) (string, error)
	PutString(bucket, key, value string) error
}

// RecordValidator checks decoded structs.
type RecordValidator interface {
	Validate(i interface{}) error
}

var _ Resolver = (*provider.Provider)(nil)

// idFromURI returns the trailing id segment of an item URI.
func idFromURI(uri string) (int64, error) {
	id, err := strconv.ParseInt(path.Base(uri), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item uri %q has no id: %w", uri, err)
	}
	return id, nil
}

func timeFromCursor(c *provider.Cursor, column string) time.Time {
	if c.IsNull(column) {
		return time.Time{}
	}
	return models.FromMillis(c.Int64(column))
}
