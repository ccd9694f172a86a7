package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	v "github.com/cohesivestack/valgo"
	"github.com/erpforge/orchestrator-go/pkg/errors"
)

/*
TaskStatus enumerates the mutually-exclusive states a task or step may be
in. New tasks and steps start out queued.
*/
type TaskStatus string

const (
	TaskStatusQueued   TaskStatus = "queued"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusComplete TaskStatus = "complete"
	TaskStatusError    TaskStatus = "error"
)

var taskStatuses = []string{
	string(TaskStatusQueued),
	string(TaskStatusRunning),
	string(TaskStatusComplete),
	string(TaskStatusError),
}

/*
BlockType enumerates the renderable units a canvas may contain. The store
treats block content as opaque; the type tag is for the rendering consumer.
*/
type BlockType string

const (
	BlockTypeHeading BlockType = "heading"
	BlockTypeText    BlockType = "text"
	BlockTypeTable   BlockType = "table"
	BlockTypeChart   BlockType = "chart"
	BlockTypeCode    BlockType = "code"
	BlockTypeCallout BlockType = "callout"
	BlockTypeImage   BlockType = "image"
	BlockTypeDivider BlockType = "divider"
	BlockTypeQuote   BlockType = "quote"
	BlockTypeList    BlockType = "list"
	BlockTypeEmbed   BlockType = "embed"
)

var blockTypes = []string{
	string(BlockTypeHeading),
	string(BlockTypeText),
	string(BlockTypeTable),
	string(BlockTypeChart),
	string(BlockTypeCode),
	string(BlockTypeCallout),
	string(BlockTypeImage),
	string(BlockTypeDivider),
	string(BlockTypeQuote),
	string(BlockTypeList),
	string(BlockTypeEmbed),
}

// Default attribution values for tasks created without them.
const (
	DefaultUser           = "You"
	DefaultAssistantModel = "Claude Sonnet 4.5"
)

/*
Step is one ordered sub-step of a task's pipeline. Steps have no identity
of their own; updates replace the whole sequence.
*/
type Step struct {
	Name     string     `json:"name"`
	Status   TaskStatus `json:"status"`
	LLM      string     `json:"llm,omitempty"`
	Progress *int       `json:"progress,omitempty"`
	Duration string     `json:"duration,omitempty"`
}

/*
BlockMetadata is the structured side-channel of a Block. Every field is
optional and only meaningful to the rendering consumer.
*/
type BlockMetadata struct {
	Level      *int     `json:"level,omitempty"`
	Formatting []string `json:"formatting,omitempty"`
	Language   string   `json:"language,omitempty"`
	Variant    string   `json:"variant,omitempty"`
	ChartType  string   `json:"chartType,omitempty"`
}

/*
Block is one renderable unit in a task's canvas. Content is an untyped
payload keyed by Type; its internal shape is not validated here.
*/
type Block struct {
	ID       string         `json:"id"`
	Type     BlockType      `json:"type"`
	Content  any            `json:"content"`
	Metadata *BlockMetadata `json:"metadata,omitempty"`
}

/*
Task is the central record: a unit of long-running automated work with an
ordered step pipeline, a canvas of rendered output blocks and an
append-only log.
*/
type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         TaskStatus `json:"status"`
	Progress       int        `json:"progress"`
	User           string     `json:"user"`
	AssistantModel string     `json:"llm"`
	StartTime      string     `json:"startTime,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	Steps          []Step     `json:"steps"`
	Canvas         []Block    `json:"canvas"`
	Logs           []string   `json:"logs"`
}

// DefaultSteps returns the pipeline skeleton used when a task is created
// without caller-supplied steps.
func DefaultSteps() []Step {
	return []Step{
		{Name: "Analyze Data", Status: TaskStatusQueued},
		{Name: "Write Summary", Status: TaskStatusQueued},
		{Name: "Gen Charts", Status: TaskStatusQueued},
		{Name: "Final Assembly", Status: TaskStatusQueued},
	}
}

func (t *Task) Bytes() []byte {
	b, err := json.Marshal(t)
	if err != nil {
		return []byte{}
	}
	return b
}

func (t *Task) Reader() io.Reader {
	return bytes.NewReader(t.Bytes())
}

func (t *Task) String() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	indent := "   "
	bullet := "│ "

	sb.WriteString(headerStyle.Render("Task") + "\n")
	sb.WriteString(bullet + labelStyle.Render("ID: ") + valueStyle.Render(t.ID) + "\n")
	sb.WriteString(bullet + labelStyle.Render("Name: ") + valueStyle.Render(t.Name) + "\n")
	sb.WriteString(bullet + labelStyle.Render("Status: ") + valueStyle.Render(string(t.Status)) + "\n")
	sb.WriteString(bullet + labelStyle.Render("Progress: ") + valueStyle.Render(fmt.Sprintf("%d%%", t.Progress)) + "\n")
	sb.WriteString(bullet + labelStyle.Render("User: ") + valueStyle.Render(t.User) + "\n")
	sb.WriteString(bullet + labelStyle.Render("Model: ") + valueStyle.Render(t.AssistantModel) + "\n")
	if t.StartTime != "" {
		sb.WriteString(bullet + labelStyle.Render("Started: ") + valueStyle.Render(t.StartTime) + "\n")
	}
	if t.Duration != "" {
		sb.WriteString(bullet + labelStyle.Render("Duration: ") + valueStyle.Render(t.Duration) + "\n")
	}

	if len(t.Steps) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Steps") + "\n")
		for i, step := range t.Steps {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Step %d: ", i+1)) + valueStyle.Render(step.Name) + "\n")
			sb.WriteString(bullet + indent + labelStyle.Render("Status: ") + valueStyle.Render(string(step.Status)) + "\n")
			if step.LLM != "" {
				sb.WriteString(bullet + indent + labelStyle.Render("LLM: ") + valueStyle.Render(step.LLM) + "\n")
			}
			if step.Progress != nil {
				sb.WriteString(bullet + indent + labelStyle.Render("Progress: ") + valueStyle.Render(fmt.Sprintf("%d%%", *step.Progress)) + "\n")
			}
			if step.Duration != "" {
				sb.WriteString(bullet + indent + labelStyle.Render("Duration: ") + valueStyle.Render(step.Duration) + "\n")
			}
		}
	}

	if len(t.Canvas) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Canvas") + "\n")
		for i, block := range t.Canvas {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Block %d: ", i+1)) + valueStyle.Render(string(block.Type)+" "+block.ID) + "\n")
		}
	}

	if len(t.Logs) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Logs") + "\n")
		for _, line := range t.Logs {
			sb.WriteString(bullet + valueStyle.Render(line) + "\n")
		}
	}

	return sb.String()
}

/*
CreateTaskRequest is the payload for creating a task. Only the name is
required; attribution fields and steps are defaulted when omitted.
*/
type CreateTaskRequest struct {
	Name           string `json:"name"`
	User           string `json:"user,omitempty"`
	AssistantModel string `json:"llm,omitempty"`
	Steps          []Step `json:"steps,omitempty"`
}

func (req *CreateTaskRequest) Validate() *errors.ApiError {
	val := v.Is(v.String(req.Name, "name").Not().Blank())
	for i, step := range req.Steps {
		validateStep(val, step, fmt.Sprintf("steps[%d]", i))
	}
	return asBadRequest(val)
}

func validateStep(val *v.Validation, step Step, name string) {
	val.Is(v.String(step.Name, name+".name").Not().Blank())
	if step.Status != "" {
		val.Is(v.String(string(step.Status), name+".status").InSlice(taskStatuses))
	}
	if step.Progress != nil {
		val.Is(v.Number(*step.Progress, name+".progress").Between(0, 100))
	}
}

func validateBlock(val *v.Validation, block Block, name string) {
	val.Is(v.String(block.ID, name+".id").Not().Blank())
	val.Is(v.String(string(block.Type), name+".type").InSlice(blockTypes))
	if block.Metadata != nil && block.Metadata.Level != nil {
		val.Is(v.Number(*block.Metadata.Level, name+".metadata.level").Between(1, 3))
	}
}

/*
UpdateTaskRequest is a sparse set of task fields to change. Only fields
explicitly present are applied; append_log appends a single entry to the
logs sequence on top of any other update in the same request.
*/
type UpdateTaskRequest struct {
	Name           *string     `json:"name,omitempty"`
	Status         *TaskStatus `json:"status,omitempty"`
	Progress       *int        `json:"progress,omitempty"`
	User           *string     `json:"user,omitempty"`
	AssistantModel *string     `json:"llm,omitempty"`
	Duration       *string     `json:"duration,omitempty"`
	Steps          *[]Step     `json:"steps,omitempty"`
	Canvas         *[]Block    `json:"canvas,omitempty"`
	Logs           *[]string   `json:"logs,omitempty"`
	AppendLog      *string     `json:"append_log,omitempty"`
}

func (req *UpdateTaskRequest) Validate() *errors.ApiError {
	val := v.New()
	if req.Status != nil {
		val.Is(v.String(string(*req.Status), "status").InSlice(taskStatuses))
	}
	if req.Progress != nil {
		val.Is(v.Number(*req.Progress, "progress").Between(0, 100))
	}
	if req.Steps != nil {
		for i, step := range *req.Steps {
			validateStep(val, step, fmt.Sprintf("steps[%d]", i))
		}
	}
	if req.Canvas != nil {
		for i, block := range *req.Canvas {
			validateBlock(val, block, fmt.Sprintf("canvas[%d]", i))
		}
	}
	return asBadRequest(val)
}

// asBadRequest flattens a failed validation into a Bad-Request error.
func asBadRequest(val *v.Validation) *errors.ApiError {
	if val.Valid() {
		return nil
	}
	var msgs []string
	for _, err := range val.Errors() {
		msgs = append(msgs, err.Messages()...)
	}
	return errors.ErrBadRequest.WithMessagef("%s", strings.Join(msgs, "; "))
}
