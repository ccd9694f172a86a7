package service

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/erpforge/orchestrator-go/pkg/types"
)

func userTurn(content string) types.ChatMessage {
	return types.ChatMessage{Role: types.ChatRoleUser, Content: content}
}

func TestChat(t *testing.T) {
	Convey("Given an empty history", t, func() {
		response := Chat(nil)

		Convey("The gate stays in gathering mode with the default prompt", func() {
			So(response.ReadyForTask, ShouldBeFalse)
			So(response.Message.Role, ShouldEqual, types.ChatRoleAssistant)
			So(response.Message.Content, ShouldEqual, chatPromptDefault)
		})
	})

	Convey("Given a history ending in an assistant message", t, func() {
		response := Chat([]types.ChatMessage{
			userTurn("metrics please"),
			{Role: types.ChatRoleAssistant, Content: "noted"},
		})

		Convey("Only user turns are classified", func() {
			So(response.ReadyForTask, ShouldBeFalse)
			So(response.Message.Content, ShouldEqual, chatPromptDefault)
		})
	})

	Convey("Given the last user message mentions metrics", t, func() {
		response := Chat([]types.ChatMessage{userTurn("I want metrics for Q4")})

		Convey("The gate acknowledges and solicits more scope", func() {
			So(response.ReadyForTask, ShouldBeFalse)
			So(response.Message.Content, ShouldEqual, chatPromptScope)
		})
	})

	Convey("Given the last user message mentions a period", t, func() {
		response := Chat([]types.ChatMessage{userTurn("the period is Q4 2024")})

		So(response.ReadyForTask, ShouldBeFalse)
		So(response.Message.Content, ShouldEqual, chatPromptScope)
	})

	Convey("Given the last user message says ready", t, func() {
		response := Chat([]types.ChatMessage{userTurn("ok I'm ready")})

		Convey("The gate signals readiness", func() {
			So(response.ReadyForTask, ShouldBeTrue)
			So(response.Message.Content, ShouldEqual, chatPromptReady)
		})
	})

	Convey("Given a message matching both the ready and metrics rules", t, func() {
		response := Chat([]types.ChatMessage{userTurn("ready with these metrics")})

		Convey("Rule order wins: readiness masks the scope rule", func() {
			So(response.ReadyForTask, ShouldBeTrue)
			So(response.Message.Content, ShouldEqual, chatPromptReady)
		})
	})

	Convey("Given an unrecognized user message", t, func() {
		response := Chat([]types.ChatMessage{userTurn("hello there")})

		Convey("The gate echoes the input and re-asks", func() {
			So(response.ReadyForTask, ShouldBeFalse)
			So(response.Message.Content, ShouldContainSubstring, "Got it: hello there")
			So(response.Message.Content, ShouldContainSubstring, "metrics and time period")
		})
	})

	Convey("Every reply carries the fixed quick actions", t, func() {
		for _, history := range [][]types.ChatMessage{
			nil,
			{userTurn("ready")},
			{userTurn("metrics")},
			{userTurn("hello")},
		} {
			response := Chat(history)
			So(response.Message.QuickActions, ShouldHaveLength, 3)
			So(response.Message.QuickActions[0].Label, ShouldEqual, "All metrics")
			So(response.Message.QuickActions[0].Selected, ShouldBeTrue)
			So(response.Message.QuickActions[1].Label, ShouldEqual, "Q4 2024")
			So(response.Message.QuickActions[1].Selected, ShouldBeTrue)
			So(response.Message.QuickActions[2].Label, ShouldEqual, "Add charts")
			So(response.Message.QuickActions[2].Selected, ShouldBeFalse)
			So(response.Message.Timestamp, ShouldNotBeEmpty)
		}
	})

	Convey("The gate keeps no memory between calls", t, func() {
		ready := Chat([]types.ChatMessage{userTurn("ready")})
		So(ready.ReadyForTask, ShouldBeTrue)

		// A later non-trigger turn reverts the apparent state.
		after := Chat([]types.ChatMessage{
			userTurn("ready"),
			{Role: types.ChatRoleAssistant, Content: chatPromptReady},
			userTurn("actually add something"),
		})
		So(after.ReadyForTask, ShouldBeFalse)
	})
}
