// -----------------------------------------------------------------------
// Application wiring
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/handlers"
	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/services/broadcasts"
	"github.com/ternarybob/cursus/internal/services/config"
	"github.com/ternarybob/cursus/internal/services/datastore"
	"github.com/ternarybob/cursus/internal/services/events"
	"github.com/ternarybob/cursus/internal/services/pool"
	"github.com/ternarybob/cursus/internal/services/scheduler"
	"github.com/ternarybob/cursus/internal/services/xtrigger"
	"github.com/ternarybob/cursus/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Workflow *config.WorkflowConfig

	ctx       context.Context
	cancelCtx context.CancelFunc

	EventService interfaces.EventService
	RunDatabase  interfaces.RunDatabase

	Broadcasts *broadcasts.Service
	Xtriggers  *xtrigger.Service
	TaskPool   *pool.Service
	DataStore  *datastore.Service
	Scheduler  *scheduler.Scheduler

	APIHandler *handlers.APIHandler
	WSHandler  *handlers.WebSocketHandler
}

// New wires the scheduler application from configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	workflow, err := config.LoadWorkflowFile(cfg.Scheduler.WorkflowFile)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	app.Workflow = workflow

	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	app.RunDatabase = badger.NewRunStateStorage(db, logger)

	app.EventService = events.NewService(logger)
	app.Broadcasts = broadcasts.NewService(logger)
	app.Xtriggers = xtrigger.NewService(logger)
	app.TaskPool = pool.NewService(workflow, cfg.Scheduler.RunaheadLimit, logger)

	owner := cfg.Scheduler.WorkflowOwner
	if owner == "" {
		owner = os.Getenv("USER")
	}
	host := cfg.Server.Host
	app.DataStore = datastore.NewService(
		workflow,
		datastore.Options{
			Owner:          owner,
			WorkflowName:   workflow.Name,
			Host:           host,
			Port:           cfg.Server.Port,
			PubPort:        cfg.Server.Port,
			RuntimeVersion: common.GetVersion(),
			NEdgeDistance:  cfg.Scheduler.GraphWindowExtent,
		},
		app.TaskPool,
		app.RunDatabase,
		app.Broadcasts,
		logger,
	)

	app.WSHandler = handlers.NewWebSocketHandler(app.DataStore, cfg.WebSocket.PushRate, logger)
	app.Scheduler = scheduler.New(
		cfg,
		workflow,
		app.TaskPool,
		app.DataStore,
		app.Broadcasts,
		app.Xtriggers,
		app.RunDatabase,
		app.EventService,
		app.WSHandler,
		logger,
	)
	app.APIHandler = handlers.NewAPIHandler(app.Scheduler, logger)

	logger.Info().
		Str("workflow", workflow.Name).
		Str("workflow_file", cfg.Scheduler.WorkflowFile).
		Msg("Application wired")
	return app, nil
}

// Context returns the application context.
func (a *App) Context() context.Context { return a.ctx }

// Shutdown cancels the application context.
func (a *App) Shutdown() {
	a.cancelCtx()
	if a.EventService != nil {
		_ = a.EventService.Close()
	}
}
