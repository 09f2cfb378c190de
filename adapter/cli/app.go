package cli

import (
	boardCommands "github.com/davidrzs/Timeboard/internal/board/application/commands"
	boardQueries "github.com/davidrzs/Timeboard/internal/board/application/queries"
	calendarApp "github.com/davidrzs/Timeboard/internal/calendar/application"
	calendarQueries "github.com/davidrzs/Timeboard/internal/calendar/application/queries"
	schedulingApp "github.com/davidrzs/Timeboard/internal/scheduling/application"
	schedulingDomain "github.com/davidrzs/Timeboard/internal/scheduling/domain"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Board command handlers
	CreateTask    *boardCommands.CreateTaskHandler
	UpdateTask    *boardCommands.UpdateTaskHandler
	MoveTask      *boardCommands.MoveTaskHandler
	CompleteTask  *boardCommands.CompleteTaskHandler
	DeleteTask    *boardCommands.DeleteTaskHandler
	AddSubtask    *boardCommands.AddSubtaskHandler
	ToggleSubtask *boardCommands.ToggleSubtaskHandler
	DeleteSubtask *boardCommands.DeleteSubtaskHandler
	CreateProject *boardCommands.CreateProjectHandler

	// Queries
	Board  *boardQueries.BoardQuery
	Events *calendarQueries.EventsQuery

	// Calendar sync, nil when no provider is configured
	SyncEngine *calendarApp.SyncEngine

	// Scheduling
	Windows    schedulingDomain.WindowRepository
	Planner    *schedulingApp.Planner
	CommitPlan *schedulingApp.CommitPlanHandler

	CurrentUserID uuid.UUID
}

var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
