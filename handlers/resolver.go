package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"notepad/app"
	"notepad/models"
	"notepad/provider"
	"notepad/validator"

	"github.com/gofiber/fiber/v2"
)

// resolverURI maps the request path below /api onto a content URI and
// records it for the request log
func resolverURI(c *fiber.Ctx) string {
	return trackTarget(c, contentURI(strings.TrimPrefix(c.Path(), "/api")))
}

func isItemRequest(c *fiber.Ctx) bool {
	return c.Params("id") != ""
}

// Query runs a provider query for the request path
func Query(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts models.QueryOptions
		if err := c.QueryParser(&opts); err != nil {
			return badRequest(c, "Invalid query parameters")
		}
		if err := a.Validator.Validate(opts); err != nil {
			return validationFailed(c, err)
		}

		uri := resolverURI(c)
		route, err := a.Provider.Schema().Match(uri)
		if err != nil {
			return providerError(c, "Failed to query", err)
		}

		cur, err := a.Provider.Query(c.UserContext(), uri, splitProjection(opts.Projection), "", nil, opts.Sort)
		if err != nil {
			return providerError(c, "Failed to query", err)
		}

		if route.IsItem() && cur.Count() == 0 {
			return notFound(c, fmt.Sprintf("%s not found", uri))
		}

		return success(c, fiber.Map{
			"uri":     uri,
			"type":    route.ContentType(),
			"count":   cur.Count(),
			"columns": cur.Columns(),
			"rows":    cur.Rows(),
		})
	}
}

// Insert adds a row from a JSON field set
func Insert(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := resolverURI(c)
		values, err := fieldSet(a, uri, c.Body())
		if err != nil {
			return fieldSetError(c, err)
		}

		change, err := a.Provider.Insert(c.UserContext(), uri, values)
		if err != nil {
			return providerError(c, "Failed to insert", err)
		}

		return created(c, fiber.Map{
			"uri": change.URI,
			"id":  path.Base(change.URI),
		})
	}
}

// Update changes the given fields on the request target
func Update(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := resolverURI(c)
		values, err := fieldSet(a, uri, c.Body())
		if err != nil {
			return fieldSetError(c, err)
		}

		change, err := a.Provider.Update(c.UserContext(), uri, values, "", nil)
		if err != nil {
			return providerError(c, "Failed to update", err)
		}
		if isItemRequest(c) && change.Count == 0 {
			return notFound(c, fmt.Sprintf("%s not found", uri))
		}

		return success(c, fiber.Map{"uri": uri, "count": change.Count})
	}
}

// Delete removes the request target
func Delete(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := resolverURI(c)
		change, err := a.Provider.Delete(c.UserContext(), uri, "", nil)
		if err != nil {
			return providerError(c, "Failed to delete", err)
		}
		if isItemRequest(c) && change.Count == 0 {
			return notFound(c, fmt.Sprintf("%s not found", uri))
		}

		return success(c, fiber.Map{"uri": uri, "count": change.Count})
	}
}

// GetType reports the content type of any provider path
func GetType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uri := contentURI(c.Params("*"))
		t, err := a.Provider.GetType(uri)
		if err != nil {
			return providerError(c, "Failed to resolve type", err)
		}
		return success(c, fiber.Map{"uri": uri, "type": t})
	}
}

// fieldSet decodes a field set and checks its typed columns for the target
func fieldSet(a *app.App, uri string, body []byte) (models.Values, error) {
	route, err := a.Provider.Schema().Match(uri)
	if err != nil {
		return nil, err
	}

	values, err := decodeValues(body)
	if err != nil {
		return nil, err
	}

	var fields any
	switch route.Table.Name {
	case models.NotesTable:
		fields = &models.NoteFields{}
	case models.TodosTable:
		fields = &models.TodoFields{}
	}
	if fields == nil || len(values) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(body, fields); err != nil {
		return nil, fmt.Errorf("request body has a field of the wrong type")
	}
	if err := a.Validator.Validate(fields); err != nil {
		return nil, err
	}
	return values, nil
}

func fieldSetError(c *fiber.Ctx, err error) error {
	var errs validator.ValidationErrors
	switch {
	case errors.As(err, &errs):
		return validationFailed(c, err)
	case errors.Is(err, provider.ErrInvalidTarget):
		return providerError(c, "Failed to resolve target", err)
	default:
		return badRequest(c, err.Error())
	}
}

func splitProjection(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// decodeValues reads a flat JSON object. An empty body is an empty field set.
func decodeValues(body []byte) (models.Values, error) {
	values := models.Values{}
	if len(bytes.TrimSpace(body)) == 0 {
		return values, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	if values == nil {
		values = models.Values{}
	}

	for col, v := range values {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("field %q must be a scalar", col)
		}
	}
	return values, nil
}
