package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidrzs/Timeboard/adapter/cli"
	cliCalendar "github.com/davidrzs/Timeboard/adapter/cli/calendar"
	cliPlan "github.com/davidrzs/Timeboard/adapter/cli/plan"
	cliProject "github.com/davidrzs/Timeboard/adapter/cli/project"
	cliTask "github.com/davidrzs/Timeboard/adapter/cli/task"
	cliWindow "github.com/davidrzs/Timeboard/adapter/cli/window"
	"github.com/davidrzs/Timeboard/internal/app"
	"github.com/davidrzs/Timeboard/pkg/config"
	"github.com/davidrzs/Timeboard/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(&cli.App{
		CreateTask:    container.CreateTask,
		UpdateTask:    container.UpdateTask,
		MoveTask:      container.MoveTask,
		CompleteTask:  container.CompleteTask,
		DeleteTask:    container.DeleteTask,
		AddSubtask:    container.AddSubtask,
		ToggleSubtask: container.ToggleSubtask,
		DeleteSubtask: container.DeleteSubtask,
		CreateProject: container.CreateProject,
		Board:         container.Board,
		Events:        container.Events,
		SyncEngine:    container.SyncEngine,
		Windows:       container.WindowRepo,
		Planner:       container.Planner,
		CommitPlan:    container.CommitPlan,
		CurrentUserID: container.UserID,
	})

	cli.AddCommand(cliTask.Cmd)
	cli.AddCommand(cliProject.Cmd)
	cli.AddCommand(cliPlan.Cmd)
	cli.AddCommand(cliCalendar.Cmd)
	cli.AddCommand(cliWindow.Cmd)

	cli.Execute(ctx)
}
