package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/hub"
)

// RegisterWriteTools adds the mutating hub tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, h *hub.Hub) {
	s.AddTool(ingestNoteTool(), ingestNoteHandler(h))
	s.AddTool(setModeTool(), setModeHandler(h))
}

// --- ingest_note ---

func ingestNoteTool() mcp.Tool {
	return mcp.NewTool("ingest_note",
		mcp.WithDescription("Parse note text (checklist grammar: '- [ ]', '- [x]', 'TODO:', 'DONE:', section headers, 'DUE: YYYY-MM-DD') and reconcile the resulting task intents."),
		mcp.WithString("text",
			mcp.Description("Raw note text to parse"),
			mcp.Required(),
		),
	)
}

func ingestNoteHandler(h *hub.Hub) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := req.GetString("text", "")
		if text == "" {
			return toolError(fmt.Errorf("text is required"))
		}

		res, err := h.ParseAndReconcile(ctx, text, time.Now())
		deferred := errors.Is(err, application.ErrRemoteUnavailable)
		if err != nil && !deferred {
			return toolError(err)
		}

		if res == nil || len(res.Events) == 0 {
			return mcp.NewToolResultText("No task intents found in the note."), nil
		}
		var sb strings.Builder
		for _, ev := range res.Events {
			fmt.Fprintf(&sb, "%s  %s", ev.Action, ev.Task)
			if ev.SectionTitle != "" {
				fmt.Fprintf(&sb, "  [%s]", ev.SectionTitle)
			}
			sb.WriteString("\n")
		}
		if deferred {
			sb.WriteString("remote unavailable: changes queued for the next sync\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- set_mode ---

func setModeTool() mcp.Tool {
	return mcp.NewTool("set_mode",
		mcp.WithDescription("Switch the hub mode. Timer modes: deep_work (60m), sprint (30m), pomodoro (20m/10m). Others: idle, ambient, posture, ocr."),
		mcp.WithString("mode",
			mcp.Description("Mode name"),
			mcp.Required(),
		),
	)
}

func setModeHandler(h *hub.Hub) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("mode", "")
		st, err := h.SetModeByName(name)
		if err != nil {
			return toolError(err)
		}
		msg := fmt.Sprintf("mode set to %s", st.Mode)
		if total := domain.PhaseDuration(st); total > 0 {
			msg += fmt.Sprintf(" (%s %s timer started)", total, st.Phase)
		}
		return mcp.NewToolResultText(msg), nil
	}
}
