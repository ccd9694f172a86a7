package types

// TaskSchema returns a JSON-schema style description of the Task shape,
// served by the schema introspection endpoint for tooling.
func TaskSchema() map[string]any {
	statuses := make([]any, len(taskStatuses))
	for i, s := range taskStatuses {
		statuses[i] = s
	}
	kinds := make([]any, len(blockTypes))
	for i, b := range blockTypes {
		kinds[i] = b
	}

	step := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string"},
			"status":   map[string]any{"type": "string", "enum": statuses, "default": string(TaskStatusQueued)},
			"llm":      map[string]any{"type": "string"},
			"progress": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"duration": map[string]any{"type": "string"},
		},
		"required": []any{"name"},
	}

	block := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":      map[string]any{"type": "string"},
			"type":    map[string]any{"type": "string", "enum": kinds},
			"content": map[string]any{},
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"level":      map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					"formatting": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"language":   map[string]any{"type": "string"},
					"variant":    map[string]any{"type": "string"},
					"chartType":  map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"id", "type", "content"},
	}

	return map[string]any{
		"title": "Task",
		"type":  "object",
		"properties": map[string]any{
			"id":        map[string]any{"type": "string"},
			"name":      map[string]any{"type": "string"},
			"status":    map[string]any{"type": "string", "enum": statuses, "default": string(TaskStatusQueued)},
			"progress":  map[string]any{"type": "integer", "minimum": 0, "maximum": 100, "default": 0},
			"user":      map[string]any{"type": "string", "default": DefaultUser},
			"llm":       map[string]any{"type": "string", "default": DefaultAssistantModel},
			"startTime": map[string]any{"type": "string", "format": "date-time"},
			"duration":  map[string]any{"type": "string"},
			"steps":     map[string]any{"type": "array", "items": step},
			"canvas":    map[string]any{"type": "array", "items": block},
			"logs":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"name"},
	}
}
