package service

// The conversation gate is a deterministic keyword responder, not a
// model-backed agent. It is a pure function of the supplied history:
// callers replay the full conversation every turn and the gate remembers
// nothing between calls, so a "ready" verdict is only as durable as the
// caller's own handling of it.

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpforge/orchestrator-go/pkg/types"
)

// Gate replies.
const (
	chatPromptDefault = "Let's define what you want to create. Pick metrics and time period, then hit Create Task."
	chatPromptReady   = "Spec looks good. Click Create Task to start the pipeline."
	chatPromptScope   = "Great, noted. Anything else to include? You can add competitor analysis or forecast."
)

// chatQuickActions returns the fixed suggestion set attached to every
// reply, regardless of which rule fired.
func chatQuickActions() []types.QuickAction {
	return []types.QuickAction{
		{Label: "All metrics", Value: map[string]any{"metrics": "all"}, Selected: true},
		{Label: "Q4 2024", Value: map[string]any{"period": "Q4 2024"}, Selected: true},
		{Label: "Add charts", Value: map[string]any{"charts": true}, Selected: false},
	}
}

/*
Chat classifies the latest user turn and produces an assistant reply plus
the readiness signal that gates task creation. Rule order is the tie-break:
a "ready"/"create" match masks the metrics/period rule even when both
keyword sets are present in the same message.
*/
func Chat(history []types.ChatMessage) types.ChatResponse {
	ready := false
	content := chatPromptDefault

	if len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == types.ChatRoleUser {
			txt := strings.ToLower(last.Content)
			switch {
			case strings.Contains(txt, "ready") || strings.Contains(txt, "create"):
				content = chatPromptReady
				ready = true
			case strings.Contains(txt, "metrics") || strings.Contains(txt, "period"):
				content = chatPromptScope
			default:
				content = fmt.Sprintf("Got it: %s. Which metrics and time period should we use?", last.Content)
			}
		}
	}

	return types.ChatResponse{
		Message: types.ChatMessage{
			Role:         types.ChatRoleAssistant,
			Content:      content,
			QuickActions: chatQuickActions(),
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		},
		ReadyForTask: ready,
	}
}
