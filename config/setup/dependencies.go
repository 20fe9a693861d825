package setup

import (
	"log/slog"

	"notepad/app"
	"notepad/config"
	"notepad/database"
	"notepad/storage"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitPreferences opens the preferences store used for backups
func InitPreferences(path string, logger *slog.Logger) (*storage.Preferences, error) {
	prefs, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Info("preferences store opened", "path", path)
	return prefs, nil
}

// InitApp initializes the application with all dependencies
func InitApp(cfg *config.Config, db *database.DB, prefs *storage.Preferences, logger *slog.Logger) *app.App {
	application := app.New(cfg, db, prefs, logger)
	logger.Info("application initialized", "untitled_title", cfg.Untitled, "export_dir", cfg.ExportDir)
	return application
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application != nil {
		application.Bus.Close()
		logger.Info("change subscriptions closed")

		if application.Prefs != nil {
			if err := application.Prefs.Close(); err != nil {
				logger.Error("failed to close preferences", "error", err)
			}
		}
	}

	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
