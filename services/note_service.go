package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"notepad/models"
	"notepad/provider"
	"notepad/storage"
)

// ExportFileName is the file written into the export directory.
const ExportFileName = "notes_export.txt"

var (
	noteListProjection   = []string{models.ColumnID, models.NoteColumnTitle, models.NoteColumnModified}
	noteEditorProjection = []string{models.ColumnID, models.NoteColumnTitle, models.NoteColumnNote, models.NoteColumnCreated, models.NoteColumnModified}
	noteBackupProjection = []string{models.ColumnID, models.NoteColumnTitle, models.NoteColumnNote, models.NoteColumnModified}
)

// NoteService handles the notes list and editor workflows
type NoteService struct {
	resolver  Resolver
	prefs     PreferenceStore
	validator RecordValidator
	exportDir string
	logger    *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(resolver Resolver, prefs PreferenceStore, validator RecordValidator, exportDir string, logger *slog.Logger) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteService{
		resolver:  resolver,
		prefs:     prefs,
		validator: validator,
		exportDir: exportDir,
		logger:    logger,
	}
}

// ==================== LIST / EDITOR ====================

// List returns note summaries, newest first. A non-empty keyword matches
// title or body.
func (ns *NoteService) List(ctx context.Context, keyword string) ([]models.Note, error) {
	selection, args := "", []any(nil)
	if kw := strings.TrimSpace(keyword); kw != "" {
		selection = models.NoteColumnTitle + " LIKE ? OR " + models.NoteColumnNote + " LIKE ?"
		args = []any{"%" + kw + "%", "%" + kw + "%"}
	}

	c, err := ns.resolver.Query(ctx, models.NotesURI, noteListProjection, selection, args, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]models.Note, 0, c.Count())
	for c.Next() {
		notes = append(notes, noteFromCursor(c))
	}
	return notes, nil
}

// Get retrieves a single note
func (ns *NoteService) Get(ctx context.Context, id int64) (*models.Note, error) {
	c, err := ns.resolver.Query(ctx, models.NoteURI(id), noteEditorProjection, "", nil, "")
	if err != nil {
		return nil, err
	}
	if !c.MoveToFirst() {
		return nil, fmt.Errorf("%w: %d", ErrNoteNotFound, id)
	}
	note := noteFromCursor(c)
	return &note, nil
}

// Create inserts a note. Nil fields take their defaults.
func (ns *NoteService) Create(ctx context.Context, title, body *string) (*models.Note, error) {
	change, err := ns.resolver.Insert(ctx, models.NotesURI, noteValues(title, body))
	if err != nil {
		return nil, err
	}
	id, err := idFromURI(change.URI)
	if err != nil {
		return nil, err
	}
	return ns.Get(ctx, id)
}

// Save updates the given fields of an existing note. With neither field set
// it returns the stored note unchanged.
func (ns *NoteService) Save(ctx context.Context, id int64, title, body *string) (*models.Note, error) {
	values := noteValues(title, body)
	if len(values) == 0 {
		return ns.Get(ctx, id)
	}
	change, err := ns.resolver.Update(ctx, models.NoteURI(id), values, "", nil)
	if err != nil {
		return nil, err
	}
	if change.Count == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoteNotFound, id)
	}
	return ns.Get(ctx, id)
}

func (ns *NoteService) Delete(ctx context.Context, id int64) error {
	change, err := ns.resolver.Delete(ctx, models.NoteURI(id), "", nil)
	if err != nil {
		return err
	}
	if change.Count == 0 {
		return fmt.Errorf("%w: %d", ErrNoteNotFound, id)
	}
	return nil
}

// ==================== EXPORT / BACKUP / RESTORE ====================

// Export writes every note into a single text file in the export directory
// and returns its path.
func (ns *NoteService) Export(ctx context.Context) (string, error) {
	c, err := ns.resolver.Query(ctx, models.NotesURI, []string{models.ColumnID, models.NoteColumnTitle, models.NoteColumnNote}, "", nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to read notes for export: %w", err)
	}

	var sb strings.Builder
	for c.Next() {
		title := c.String(models.NoteColumnTitle)
		if c.IsNull(models.NoteColumnTitle) {
			title = "Untitled"
		}
		sb.WriteString("========== Note: " + title + " ==========\n")
		sb.WriteString(c.String(models.NoteColumnNote))
		sb.WriteString("\n\n")
	}

	if err := os.MkdirAll(ns.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	file := filepath.Join(ns.exportDir, ExportFileName)
	if err := os.WriteFile(file, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	ns.logger.Info("notes exported", "path", file, "count", c.Count())
	return file, nil
}

// Backup serialises every note into the preferences store, replacing any
// previous backup. It returns the number of notes saved.
func (ns *NoteService) Backup(ctx context.Context) (int, error) {
	c, err := ns.resolver.Query(ctx, models.NotesURI, noteBackupProjection, "", nil, "")
	if err != nil {
		return 0, fmt.Errorf("failed to read notes for backup: %w", err)
	}

	records := make([]models.BackupRecord, 0, c.Count())
	for c.Next() {
		records = append(records, models.BackupRecord{
			ID:      c.Int64(models.ColumnID),
			Title:   c.String(models.NoteColumnTitle),
			Content: c.String(models.NoteColumnNote),
			Time:    c.Int64(models.NoteColumnModified),
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := ns.prefs.PutString(storage.BackupBucket, storage.BackupKey, string(data)); err != nil {
		return 0, fmt.Errorf("failed to store backup: %w", err)
	}

	ns.logger.Info("notes backed up", "count", len(records))
	return len(records), nil
}

// Restore re-inserts backed-up notes whose id no longer exists. Restored
// notes get new ids; their modified time is taken from the backup.
func (ns *NoteService) Restore(ctx context.Context) (models.RestoreResult, error) {
	var result models.RestoreResult

	data, err := ns.prefs.GetString(storage.BackupBucket, storage.BackupKey)
	if err != nil {
		return result, fmt.Errorf("failed to read backup: %w", err)
	}
	if data == "" {
		return result, ErrNoBackup
	}

	var records []models.BackupRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return result, fmt.Errorf("failed to decode backup: %w", err)
	}
	result.Total = len(records)

	for _, rec := range records {
		if ns.validator != nil {
			if err := ns.validator.Validate(rec); err != nil {
				ns.logger.Warn("skipping invalid backup record", "id", rec.ID, "error", err)
				result.Skipped++
				continue
			}
		}

		c, err := ns.resolver.Query(ctx, models.NotesURI, []string{models.ColumnID}, models.ColumnID+" = ?", []any{rec.ID}, "")
		if err != nil {
			return result, fmt.Errorf("failed to check note %d: %w", rec.ID, err)
		}
		if c.Count() > 0 {
			result.Skipped++
			continue
		}

		_, err = ns.resolver.Insert(ctx, models.NotesURI, models.Values{
			models.NoteColumnTitle:    rec.Title,
			models.NoteColumnNote:     rec.Content,
			models.NoteColumnModified: rec.Time,
		})
		if err != nil {
			return result, fmt.Errorf("failed to restore note %d: %w", rec.ID, err)
		}
		result.Restored++
	}

	ns.logger.Info("notes restored", "total", result.Total, "restored", result.Restored, "skipped", result.Skipped)
	return result, nil
}

// ==================== HELPERS ====================

func noteValues(title, body *string) models.Values {
	values := models.Values{}
	if title != nil {
		values[models.NoteColumnTitle] = *title
	}
	if body != nil {
		values[models.NoteColumnNote] = *body
	}
	return values
}

func noteFromCursor(c *provider.Cursor) models.Note {
	return models.Note{
		ID:         c.Int64(models.ColumnID),
		Title:      c.String(models.NoteColumnTitle),
		Body:       c.String(models.NoteColumnNote),
		CreatedAt:  timeFromCursor(c, models.NoteColumnCreated),
		ModifiedAt: timeFromCursor(c, models.NoteColumnModified),
	}
}
