package handlers

import (
	"strings"

	"notepad/app"
	"notepad/models"

	"github.com/gofiber/fiber/v2"
)

// NoteText streams a single note as plain text. The Accept header is the
// MIME filter.
func NoteText(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := trackTarget(c, contentURI(models.NotesPath+"/"+c.Params("id")))

		ranges := acceptRanges(c.Get(fiber.HeaderAccept))
		for _, r := range ranges {
			if err := a.Validator.Validate(models.StreamRequest{Accept: r}); err != nil {
				return validationFailed(c, err)
			}
		}

		filter, err := pickStreamFilter(a, uri, ranges)
		if err != nil {
			return providerError(c, "Failed to open note", err)
		}

		r, mimeType, err := a.Provider.OpenTypedStream(c.UserContext(), uri, filter)
		if err != nil {
			return providerError(c, "Failed to open note", err)
		}

		c.Set(fiber.HeaderContentType, mimeType+"; charset=utf-8")
		return c.SendStream(r)
	}
}

// ExportNotes writes every note to the export file
func ExportNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := a.Notes.Export(c.UserContext())
		if err != nil {
			return serverErrorWithDetails(c, "Failed to export notes", err)
		}
		return success(c, fiber.Map{"path": file})
	}
}

// BackupNotes saves every note into the preferences store
func BackupNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := a.Notes.Backup(c.UserContext())
		if err != nil {
			return serverErrorWithDetails(c, "Failed to back up notes", err)
		}
		return success(c, fiber.Map{"count": count})
	}
}

// RestoreNotes re-inserts backed-up notes that no longer exist
func RestoreNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.Notes.Restore(c.UserContext())
		if err != nil {
			return providerError(c, "Failed to restore notes", err)
		}
		return success(c, fiber.Map{
			"total":    result.Total,
			"restored": result.Restored,
			"skipped":  result.Skipped,
		})
	}
}

// acceptRanges returns the media ranges of an Accept header without
// parameters, in header order.
func acceptRanges(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		mt := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mt != "" {
			out = append(out, mt)
		}
	}
	return out
}

// pickStreamFilter picks the first range the note can be served as. When
// none match, the first range is returned so the open reports it.
func pickStreamFilter(a *app.App, uri string, ranges []string) (string, error) {
	if len(ranges) == 0 {
		return "", nil
	}
	for _, r := range ranges {
		types, err := a.Provider.GetStreamTypes(uri, r)
		if err != nil {
			return "", err
		}
		if len(types) > 0 {
			return r, nil
		}
	}
	return ranges[0], nil
}
