package setup

import (
	"notepad/app"
	"notepad/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "watchers": application.Bus.Len()})
	})

	api := fiberApp.Group("/api")

	api.Get("/changes", handlers.Changes(application))
	api.Get("/type/*", handlers.GetType(application))

	// Screen workflows, registered ahead of the :id routes
	api.Post("/notes/export", handlers.ExportNotes(application))
	api.Post("/notes/backup", handlers.BackupNotes(application))
	api.Post("/notes/restore", handlers.RestoreNotes(application))
	api.Get("/notes/:id/text", handlers.NoteText(application))
	api.Delete("/todos/completed", handlers.ClearCompletedTodos(application))
	api.Put("/todos/:id/completed", handlers.SetTodoCompleted(application))

	// Editor workflows go through the note and todo services
	editor := api.Group("/editor")
	editor.Get("/notes", handlers.ListNotes(application))
	editor.Post("/notes", handlers.CreateNote(application))
	editor.Get("/notes/:id", handlers.GetNote(application))
	editor.Put("/notes/:id", handlers.SaveNote(application))
	editor.Delete("/notes/:id", handlers.DeleteNote(application))
	editor.Get("/todos", handlers.ListTodos(application))
	editor.Post("/todos", handlers.CreateTodo(application))
	editor.Get("/todos/:id", handlers.GetTodo(application))
	editor.Put("/todos/:id", handlers.UpdateTodo(application))
	editor.Delete("/todos/:id", handlers.DeleteTodo(application))

	// Raw resolver surface
	for _, collection := range []string{"/notes", "/todos"} {
		api.Get(collection, handlers.Query(application))
		api.Post(collection, handlers.Insert(application))
		api.Delete(collection, handlers.Delete(application))

		api.Get(collection+"/:id", handlers.Query(application))
		api.Put(collection+"/:id", handlers.Update(application))
		api.Delete(collection+"/:id", handlers.Delete(application))
	}

	// Read-only; mutations reach the provider and are rejected there
	api.Get("/live_folders/notes", handlers.Query(application))
	api.Post("/live_folders/notes", handlers.Insert(application))
	api.Put("/live_folders/notes", handlers.Update(application))
	api.Delete("/live_folders/notes", handlers.Delete(application))
}
