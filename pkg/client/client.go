package client

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"

	"github.com/erpforge/orchestrator-go/pkg/types"
)

/*
Client is a typed HTTP client for the orchestrator API, used by the CLI
and by external Go callers.
*/
type Client struct {
	baseURL string
	conn    *fiberClient.Client
}

/*
NewClient creates a client bound to the given base URL.
*/
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		conn:    fiberClient.New().SetBaseURL(baseURL),
	}
}

func decode[T any](res *fiberClient.Response, out *T) error {
	if res.StatusCode() >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := res.JSON(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s", res.StatusCode(), apiErr.Message)
		}
		return fmt.Errorf("server returned %d", res.StatusCode())
	}
	return res.JSON(out)
}

/*
ListTasks returns up to limit tasks in insertion order. A non-positive
limit uses the server default.
*/
func (client *Client) ListTasks(limit int) ([]types.Task, error) {
	cfg := fiberClient.Config{}
	if limit > 0 {
		cfg.Param = map[string]string{"limit": strconv.Itoa(limit)}
	}

	res, err := client.conn.Get("/api/tasks", cfg)
	if err != nil {
		log.Error("failed to list tasks", "error", err)
		return nil, err
	}

	var tasks []types.Task
	if err := decode(res, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

/*
GetTask retrieves a single task by id.
*/
func (client *Client) GetTask(id string) (types.Task, error) {
	res, err := client.conn.Get("/api/tasks/" + id)
	if err != nil {
		log.Error("failed to get task", "task", id, "error", err)
		return types.Task{}, err
	}

	var task types.Task
	if err := decode(res, &task); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

/*
CreateTask creates a new task and returns it fully materialized.
*/
func (client *Client) CreateTask(req types.CreateTaskRequest) (types.Task, error) {
	res, err := client.conn.Post("/api/tasks", fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   req,
	})
	if err != nil {
		log.Error("failed to create task", "name", req.Name, "error", err)
		return types.Task{}, err
	}

	var task types.Task
	if err := decode(res, &task); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

/*
UpdateTask applies a partial update and returns the post-update task.
*/
func (client *Client) UpdateTask(id string, req types.UpdateTaskRequest) (types.Task, error) {
	res, err := client.conn.Patch("/api/tasks/"+id, fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   req,
	})
	if err != nil {
		log.Error("failed to update task", "task", id, "error", err)
		return types.Task{}, err
	}

	var task types.Task
	if err := decode(res, &task); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

/*
Chat sends the conversation history and returns the assistant reply with
the readiness signal.
*/
func (client *Client) Chat(history []types.ChatMessage) (types.ChatResponse, error) {
	res, err := client.conn.Post("/api/chat", fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   types.ChatRequest{History: history},
	})
	if err != nil {
		log.Error("failed to send chat", "error", err)
		return types.ChatResponse{}, err
	}

	var response types.ChatResponse
	if err := decode(res, &response); err != nil {
		return types.ChatResponse{}, err
	}
	return response, nil
}
