package app

import (
	"log/slog"

	"notepad/config"
	"notepad/database"
	"notepad/events"
	"notepad/provider"
	"notepad/services"
	"notepad/storage"
	"notepad/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Config    *config.Config
	Provider  *provider.Provider
	Bus       *events.Bus
	Notes     *services.NoteService
	Todos     *services.TodoService
	Prefs     *storage.Preferences
	Validator *validator.Validator
	Logger    *slog.Logger
}

// New creates a new App instance with all dependencies
func New(cfg *config.Config, db *database.DB, prefs *storage.Preferences, logger *slog.Logger) *App {
	bus := events.NewBus(32, logger)
	schema := provider.NewSchema(provider.SchemaOptions{Untitled: cfg.Untitled})
	p := provider.New(db, schema, bus, logger)
	v := validator.New()

	return &App{
		Config:    cfg,
		Provider:  p,
		Bus:       bus,
		Notes:     services.NewNoteService(p, prefs, v, cfg.ExportDir, logger),
		Todos:     services.NewTodoService(p),
		Prefs:     prefs,
		Validator: v,
		Logger:    logger,
	}
}
