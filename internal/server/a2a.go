package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/rs/zerolog"

	"github.com/normanking/wikidex/internal/agent"
	"github.com/normanking/wikidex/internal/logging"
)

// ═══════════════════════════════════════════════════════════════════════════════
// KNOWLEDGE EXECUTOR (implements a2asrv.AgentExecutor)
// ═══════════════════════════════════════════════════════════════════════════════

// KnowledgeExecutor adapts the knowledge agent to the A2A AgentExecutor
// interface. A DataPart in the incoming message carries a structured request;
// plain text falls back to a document fetch for the message text.
type KnowledgeExecutor struct {
	agent *agent.Agent
	log   zerolog.Logger
}

// NewKnowledgeExecutor creates the executor around the agent.
func NewKnowledgeExecutor(ag *agent.Agent) *KnowledgeExecutor {
	return &KnowledgeExecutor{
		agent: ag,
		log:   logging.Component("a2a"),
	}
}

// Execute implements a2asrv.AgentExecutor. It routes the message through the
// agent and writes the lifecycle events to the queue.
func (e *KnowledgeExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	e.log.Debug().Str("task_id", string(reqCtx.TaskID)).Msg("executing task")

	workingEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, nil)
	if err := queue.Write(ctx, workingEvent); err != nil {
		return fmt.Errorf("failed to write state working: %w", err)
	}

	req := requestFromMessage(reqCtx.Message)
	res := e.agent.Query(ctx, req)

	if res.Status == agent.StatusError {
		errorMsg := a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{Text: res.Error})
		failEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, errorMsg)
		failEvent.Final = true
		return queue.Write(ctx, failEvent)
	}

	parts := []a2a.Part{a2a.TextPart{Text: summarizeResult(res)}}
	if payload := resultPayload(res); payload != nil {
		parts = append(parts, a2a.DataPart{Data: payload})
	}
	responseMsg := a2a.NewMessage(a2a.MessageRoleAgent, parts...)

	completeEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, responseMsg)
	completeEvent.Final = true
	if err := queue.Write(ctx, completeEvent); err != nil {
		return fmt.Errorf("failed to write state completed: %w", err)
	}

	e.log.Debug().
		Str("task_id", string(reqCtx.TaskID)).
		Str("operation", string(res.Operation)).
		Msg("task completed")
	return nil
}

// Cancel implements a2asrv.AgentExecutor.
func (e *KnowledgeExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	e.log.Debug().Str("task_id", string(reqCtx.TaskID)).Msg("canceling task")

	cancelEvent := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	cancelEvent.Final = true
	return queue.Write(ctx, cancelEvent)
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// requestFromMessage decodes an agent request from the message. Structured
// fields come from DataParts; when no query is carried there, the combined
// message text becomes the query.
func requestFromMessage(msg *a2a.Message) agent.Request {
	var req agent.Request
	if msg == nil {
		return req
	}

	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.DataPart:
			decodeRequestData(p.Data, &req)
		case *a2a.DataPart:
			decodeRequestData(p.Data, &req)
		}
	}

	if req.Query == "" {
		req.Query = strings.TrimSpace(extractTextFromMessage(msg))
	}
	return req
}

func decodeRequestData(data map[string]any, req *agent.Request) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	// Unknown keys are ignored so clients can send extra metadata
	_ = json.Unmarshal(raw, req)
}

func extractTextFromMessage(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var text string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			text += p.Text + " "
		case *a2a.TextPart:
			text += p.Text + " "
		}
	}
	return text
}

// summarizeResult produces the human-readable text part of a response.
func summarizeResult(res *agent.Result) string {
	switch res.Operation {
	case agent.OpListDocuments:
		return fmt.Sprintf("Listed %v stored documents", res.Metadata["total_found"])
	case agent.OpSearchContent:
		return fmt.Sprintf("Found %v matches for %q", res.Metadata["total_matches"], res.Query)
	case agent.OpGetStatistics:
		return "Collection statistics"
	case agent.OpFetchSections:
		return fmt.Sprintf("Returned %v sections of %q", res.Metadata["sections_returned"], res.Query)
	default:
		if cached, ok := res.Metadata["cached"].(bool); ok && cached {
			return fmt.Sprintf("Served %q from the document store", res.Query)
		}
		return fmt.Sprintf("Fetched %q from Wikipedia", res.Query)
	}
}

// resultPayload flattens the result envelope into a DataPart payload.
func resultPayload(res *agent.Result) map[string]any {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}
