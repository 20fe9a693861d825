package handlers

import (
	"notepad/app"
	"notepad/models"

	"github.com/gofiber/fiber/v2"
)

// ==================== NOTES ====================

// ListNotes returns note summaries, optionally filtered by a keyword
func ListNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts models.NoteListOptions
		if err := c.QueryParser(&opts); err != nil {
			return badRequest(c, "Invalid query parameters")
		}
		if err := a.Validator.Validate(opts); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.NotesURI)

		notes, err := a.Notes.List(c.UserContext(), opts.Keyword)
		if err != nil {
			return providerError(c, "Failed to list notes", err)
		}
		return success(c, fiber.Map{"notes": notes, "count": len(notes)})
	}
}

func GetNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid note id")
		}
		trackTarget(c, models.NoteURI(id))

		note, err := a.Notes.Get(c.UserContext(), id)
		if err != nil {
			return providerError(c, "Failed to load note", err)
		}
		return success(c, fiber.Map{"note": note})
	}
}

// CreateNote inserts a note. Omitted fields take their defaults.
func CreateNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.NoteRequest
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.NotesURI)

		note, err := a.Notes.Create(c.UserContext(), req.Title, req.Body)
		if err != nil {
			return providerError(c, "Failed to create note", err)
		}
		return created(c, fiber.Map{"note": note})
	}
}

func SaveNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid note id")
		}

		var req models.NoteRequest
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.NoteURI(id))

		note, err := a.Notes.Save(c.UserContext(), id, req.Title, req.Body)
		if err != nil {
			return providerError(c, "Failed to save note", err)
		}
		return success(c, fiber.Map{"note": note})
	}
}

func DeleteNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid note id")
		}
		trackTarget(c, models.NoteURI(id))

		if err := a.Notes.Delete(c.UserContext(), id); err != nil {
			return providerError(c, "Failed to delete note", err)
		}
		return success(c, fiber.Map{"id": id, "deleted": true})
	}
}

// ==================== TODOS ====================

// ListTodos returns todos, optionally only the completed or open ones
func ListTodos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts models.TodoListOptions
		if err := c.QueryParser(&opts); err != nil {
			return badRequest(c, "Invalid query parameters")
		}
		if err := a.Validator.Validate(opts); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.TodosURI)

		todos, err := a.Todos.List(c.UserContext(), opts.CompletedFilter())
		if err != nil {
			return providerError(c, "Failed to list todos", err)
		}
		return success(c, fiber.Map{"todos": todos, "count": len(todos)})
	}
}

func GetTodo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid todo id")
		}
		trackTarget(c, models.TodoURI(id))

		todo, err := a.Todos.Get(c.UserContext(), id)
		if err != nil {
			return providerError(c, "Failed to load todo", err)
		}
		return success(c, fiber.Map{"todo": todo})
	}
}

func CreateTodo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.TodoRequest
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.TodosURI)

		todo, err := a.Todos.Create(c.UserContext(), req)
		if err != nil {
			return providerError(c, "Failed to create todo", err)
		}
		return created(c, fiber.Map{"todo": todo})
	}
}

// UpdateTodo changes the fields present in the body
func UpdateTodo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid todo id")
		}

		var req models.TodoRequest
		if err := parseBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}
		trackTarget(c, models.TodoURI(id))

		todo, err := a.Todos.Update(c.UserContext(), id, req)
		if err != nil {
			return providerError(c, "Failed to update todo", err)
		}
		return success(c, fiber.Map{"todo": todo})
	}
}

func DeleteTodo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid todo id")
		}
		trackTarget(c, models.TodoURI(id))

		if err := a.Todos.Delete(c.UserContext(), id); err != nil {
			return providerError(c, "Failed to delete todo", err)
		}
		return success(c, fiber.Map{"id": id, "deleted": true})
	}
}
