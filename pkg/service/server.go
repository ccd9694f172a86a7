package service

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/erpforge/orchestrator-go/pkg/errors"
	"github.com/erpforge/orchestrator-go/pkg/stores"
	"github.com/erpforge/orchestrator-go/pkg/types"
)

/*
Server exposes the task store and the conversation gate over HTTP. It is
safe for concurrent use: requests share nothing beyond the backing
collection, which handles its own per-record atomicity.
*/
type Server struct {
	app    *fiber.App
	tasks  *TaskService
	col    stores.Collection
	driver string
	addr   string
}

/*
NewServer wires the fiber app, middleware and routes around the supplied
collection. The driver label only shows up in diagnostics output.
*/
func NewServer(col stores.Collection, driver, addr string) *Server {
	srv := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "orchestrator-go",
			ServerHeader: "Orchestrator-API",
		}),
		tasks:  NewTaskService(col),
		col:    col,
		driver: driver,
		addr:   addr,
	}

	srv.app.Use(cors.New(), logger.New())
	srv.app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	srv.app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	srv.app.Get("/", srv.handleRoot)
	srv.app.Get("/test", srv.handleDiagnostics)
	srv.app.Get("/schema", srv.handleSchema)
	srv.app.Get("/api/tasks", srv.handleListTasks)
	srv.app.Post("/api/tasks", srv.handleCreateTask)
	srv.app.Get("/api/tasks/:id", srv.handleGetTask)
	srv.app.Patch("/api/tasks/:id", srv.handleUpdateTask)
	srv.app.Post("/api/chat", srv.handleChat)

	return srv
}

func (srv *Server) Start() error {
	return srv.app.Listen(srv.addr, fiber.ListenConfig{DisableStartupMessage: true})
}

func (srv *Server) Shutdown() error {
	return srv.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (srv *Server) App() *fiber.App {
	return srv.app
}

func (srv *Server) handleRoot(ctx fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"message": "ERP Orchestrator API running"})
}

// handleDiagnostics reports degraded-mode status instead of failing when
// the storage collaborator is down.
func (srv *Server) handleDiagnostics(ctx fiber.Ctx) error {
	response := fiber.Map{
		"backend":           "running",
		"storage_driver":    srv.driver,
		"connection_status": "not connected",
		"collections":       []string{},
	}

	if apiErr := srv.col.Ping(ctx.Context()); apiErr != nil {
		response["storage"] = "error: " + apiErr.Message
	} else {
		response["storage"] = "connected"
		response["connection_status"] = "connected"
		response["collections"] = []string{srv.col.Name()}
	}

	return ctx.JSON(response)
}

func (srv *Server) handleSchema(ctx fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"collections": []fiber.Map{
			{
				"name":   TaskCollection,
				"fields": types.TaskSchema(),
			},
		},
	})
}

func (srv *Server) handleListTasks(ctx fiber.Ctx) error {
	limit := DefaultListLimit
	if q := ctx.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return writeError(ctx, errors.ErrBadRequest.WithMessagef("invalid limit: %s", q))
		}
		limit = n
	}

	tasks, apiErr := srv.tasks.List(ctx.Context(), limit)
	if apiErr != nil {
		return writeError(ctx, apiErr)
	}
	return ctx.JSON(tasks)
}

func (srv *Server) handleCreateTask(ctx fiber.Ctx) error {
	var req types.CreateTaskRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return writeError(ctx, errors.ErrBadRequest.WithMessagef("invalid request body: %v", err))
	}

	task, apiErr := srv.tasks.Create(ctx.Context(), req)
	if apiErr != nil {
		return writeError(ctx, apiErr)
	}
	return ctx.JSON(task)
}

func (srv *Server) handleGetTask(ctx fiber.Ctx) error {
	task, apiErr := srv.tasks.Get(ctx.Context(), ctx.Params("id"))
	if apiErr != nil {
		return writeError(ctx, apiErr)
	}
	return ctx.JSON(task)
}

func (srv *Server) handleUpdateTask(ctx fiber.Ctx) error {
	var req types.UpdateTaskRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return writeError(ctx, errors.ErrBadRequest.WithMessagef("invalid request body: %v", err))
	}

	task, apiErr := srv.tasks.Update(ctx.Context(), ctx.Params("id"), req)
	if apiErr != nil {
		return writeError(ctx, apiErr)
	}
	return ctx.JSON(task)
}

func (srv *Server) handleChat(ctx fiber.Ctx) error {
	var req types.ChatRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return writeError(ctx, errors.ErrBadRequest.WithMessagef("invalid request body: %v", err))
	}
	return ctx.JSON(Chat(req.History))
}

func writeError(ctx fiber.Ctx, apiErr *errors.ApiError) error {
	return ctx.Status(apiErr.Status).JSON(apiErr)
}
