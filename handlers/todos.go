package handlers

import (
	"notepad/app"
	"notepad/models"

	"github.com/gofiber/fiber/v2"
)

// SetTodoCompleted toggles a single todo
func SetTodoCompleted(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c.Params("id"))
		if !ok {
			return badRequest(c, "Invalid todo id")
		}
		trackTarget(c, models.TodoURI(id))

		var req models.CompletedRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}

		if err := a.Todos.SetCompleted(c.UserContext(), id, *req.Completed); err != nil {
			return providerError(c, "Failed to update todo", err)
		}
		return success(c, fiber.Map{"id": id, "completed": *req.Completed})
	}
}

// ClearCompletedTodos deletes every completed todo
func ClearCompletedTodos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trackTarget(c, models.TodosURI)

		count, err := a.Todos.ClearCompleted(c.UserContext())
		if err != nil {
			return serverErrorWithDetails(c, "Failed to clear completed todos", err)
		}
		return success(c, fiber.Map{"count": count})
	}
}
