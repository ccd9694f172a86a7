package service

// TaskService owns the task record semantics: defaults at creation and the
// partial-update protocol. It never holds state of its own; every durable
// byte lives in the backing collection, and each operation is a single
// write followed by a read-back of the same record.

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/erpforge/orchestrator-go/pkg/errors"
	"github.com/erpforge/orchestrator-go/pkg/stores"
	"github.com/erpforge/orchestrator-go/pkg/types"
)

// TaskCollection is the collection name for task records.
const TaskCollection = "task"

// DefaultListLimit caps List results when the caller supplies no limit.
const DefaultListLimit = 50

type TaskService struct {
	col stores.Collection
}

func NewTaskService(col stores.Collection) *TaskService {
	return &TaskService{col: col}
}

/*
Create materializes a new task: queued, zero progress, a generated UTC
start time, the default four-step pipeline when the caller supplies no
steps, an empty canvas and a seed log entry. The returned task is the
record as read back from the store, including its assigned id.
*/
func (s *TaskService) Create(ctx context.Context, req types.CreateTaskRequest) (types.Task, *errors.ApiError) {
	if apiErr := req.Validate(); apiErr != nil {
		return types.Task{}, apiErr
	}

	task := types.Task{
		Name:           req.Name,
		Status:         types.TaskStatusQueued,
		Progress:       0,
		User:           req.User,
		AssistantModel: req.AssistantModel,
		StartTime:      time.Now().UTC().Format(time.RFC3339),
		Steps:          req.Steps,
		Canvas:         []types.Block{},
		Logs:           []string{"Task created"},
	}
	if task.User == "" {
		task.User = types.DefaultUser
	}
	if task.AssistantModel == "" {
		task.AssistantModel = types.DefaultAssistantModel
	}
	if len(task.Steps) == 0 {
		task.Steps = types.DefaultSteps()
	}
	for i := range task.Steps {
		if task.Steps[i].Status == "" {
			task.Steps[i].Status = types.TaskStatusQueued
		}
	}

	doc, err := stores.ToDocument(&task)
	if err != nil {
		log.Error("failed to encode task", "error", err)
		return types.Task{}, errors.ErrInternal.WithMessagef("failed to encode task: %v", err)
	}
	delete(doc, "id")

	id, apiErr := s.col.Insert(ctx, doc)
	if apiErr != nil {
		return types.Task{}, apiErr
	}

	log.Info("task created", "task", id, "name", task.Name)

	// Read back so the response reflects exactly what was persisted.
	return s.fetch(ctx, id)
}

/*
Get returns a task by id. A malformed id is a Bad-Request before the store
is ever consulted; a well-formed id with no record is a Not-Found.
*/
func (s *TaskService) Get(ctx context.Context, id string) (types.Task, *errors.ApiError) {
	if apiErr := validateID(id); apiErr != nil {
		return types.Task{}, apiErr
	}
	return s.fetch(ctx, id)
}

/*
List returns up to limit tasks in insertion order. A non-positive limit
falls back to DefaultListLimit. An empty store yields an empty slice.
*/
func (s *TaskService) List(ctx context.Context, limit int) ([]types.Task, *errors.ApiError) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	docs, apiErr := s.col.FindMany(ctx, limit)
	if apiErr != nil {
		return nil, apiErr
	}

	tasks := make([]types.Task, 0, len(docs))
	for _, doc := range docs {
		task, apiErr := decodeTask(doc)
		if apiErr != nil {
			return nil, apiErr
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

/*
Update applies a sparse set of field changes to a task. Fields absent from
the request are left untouched. append_log is applied after any field
updates in the same request, so when logs is replaced wholesale and a line
is appended in one call, the appended line ends up on the replacement
value. Every successful update stamps updated_at on the stored record.
*/
func (s *TaskService) Update(ctx context.Context, id string, req types.UpdateTaskRequest) (types.Task, *errors.ApiError) {
	if apiErr := validateID(id); apiErr != nil {
		return types.Task{}, apiErr
	}
	if apiErr := req.Validate(); apiErr != nil {
		return types.Task{}, apiErr
	}

	update := stores.Update{Set: map[string]any{}}

	if req.Name != nil {
		update.Set["name"] = *req.Name
	}
	if req.Status != nil {
		update.Set["status"] = string(*req.Status)
	}
	if req.Progress != nil {
		update.Set["progress"] = *req.Progress
	}
	if req.User != nil {
		update.Set["user"] = *req.User
	}
	if req.AssistantModel != nil {
		update.Set["llm"] = *req.AssistantModel
	}
	if req.Duration != nil {
		update.Set["duration"] = *req.Duration
	}
	if req.Steps != nil {
		value, err := stores.ToValue(*req.Steps)
		if err != nil {
			return types.Task{}, errors.ErrInternal.WithMessagef("failed to encode steps: %v", err)
		}
		update.Set["steps"] = value
	}
	if req.Canvas != nil {
		value, err := stores.ToValue(*req.Canvas)
		if err != nil {
			return types.Task{}, errors.ErrInternal.WithMessagef("failed to encode canvas: %v", err)
		}
		update.Set["canvas"] = value
	}
	if req.Logs != nil {
		value, err := stores.ToValue(*req.Logs)
		if err != nil {
			return types.Task{}, errors.ErrInternal.WithMessagef("failed to encode logs: %v", err)
		}
		update.Set["logs"] = value
	}
	if req.AppendLog != nil && *req.AppendLog != "" {
		update.Push = map[string]any{"logs": *req.AppendLog}
	}

	// Audit stamp, persisted but not part of the external task shape.
	update.Set["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	if apiErr := s.col.Update(ctx, id, update); apiErr != nil {
		return types.Task{}, apiErr
	}

	log.Info("task updated", "task", id)

	return s.fetch(ctx, id)
}

func (s *TaskService) fetch(ctx context.Context, id string) (types.Task, *errors.ApiError) {
	doc, apiErr := s.col.FindOne(ctx, id)
	if apiErr != nil {
		return types.Task{}, apiErr
	}
	return decodeTask(doc)
}

// decodeTask maps a stored document onto the external task shape, lifting
// the store-assigned "_id" into the id field.
func decodeTask(doc stores.Document) (types.Task, *errors.ApiError) {
	id, _ := doc["_id"].(string)

	clean := stores.CloneDocument(doc)
	delete(clean, "_id")
	delete(clean, "updated_at")

	var task types.Task
	if err := stores.FromDocument(clean, &task); err != nil {
		log.Error("failed to decode task", "task", id, "error", err)
		return types.Task{}, errors.ErrInternal.WithMessagef("failed to decode task: %v", err)
	}
	task.ID = id

	if task.Steps == nil {
		task.Steps = []types.Step{}
	}
	if task.Canvas == nil {
		task.Canvas = []types.Block{}
	}
	if task.Logs == nil {
		task.Logs = []string{}
	}
	return task, nil
}

// validateID rejects ids the backing stores could never have assigned.
func validateID(id string) *errors.ApiError {
	if _, err := uuid.Parse(id); err != nil {
		return errors.ErrInvalidID
	}
	return nil
}
