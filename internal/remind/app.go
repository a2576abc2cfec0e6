package remind

import (
	"github.com/colonyops/remind/internal/core/config"
	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/data/db"
)

// App is the central entry point for all remind operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Reminders *ReminderService
	Syncer    *Syncer

	Bus    *eventbus.EventBus
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	reminders *ReminderService,
	syncer *Syncer,
	bus *eventbus.EventBus,
	cfg *config.Config,
	database *db.DB,
) *App {
	return &App{
		Reminders: reminders,
		Syncer:    syncer,
		Bus:       bus,
		Config:    cfg,
		DB:        database,
	}
}
