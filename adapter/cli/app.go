package cli

import (
	"github.com/avelstrom/availsync/internal/availability/application/commands"
	"github.com/avelstrom/availsync/internal/availability/domain"
	"github.com/avelstrom/availsync/internal/availability/infrastructure/settings"
)

// App holds the CLI application dependencies.
type App struct {
	ReconcileHandler *commands.ReconcileHandler

	BookingRepo  domain.BookingRepository
	ProductRepo  domain.ProductRepository
	ResourceRepo domain.ResourceRepository

	Settings       domain.Settings
	SettingsWriter settings.Writer
}

var app *App

// SetApp sets the application dependencies for CLI commands.
func SetApp(a *App) {
	app = a
}

// GetApp returns the application dependencies.
func GetApp() *App {
	return app
}
