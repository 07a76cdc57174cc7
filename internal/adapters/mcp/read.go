package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pihub/internal/domain"
	"pihub/internal/hub"
)

// RegisterReadTools adds the read-only hub tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, h *hub.Hub) {
	s.AddTool(statusTool(), statusHandler(h))
	s.AddTool(weekTasksTool(), weekTasksHandler(h))
	s.AddTool(recentEventsTool(), recentEventsHandler(h))
}

// --- status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Current hub status: active mode and timer phase, this week's tasks, event totals and today's counters."),
	)
}

func statusHandler(h *hub.Hub) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st := h.Status()

		var sb strings.Builder
		fmt.Fprintf(&sb, "mode: %s", st.Mode.Mode)
		if st.Mode.Phase != domain.PhaseNone {
			fmt.Fprintf(&sb, " (%s", st.Mode.Phase)
			if total := domain.PhaseDuration(st.Mode); total > 0 {
				remaining := total - st.Timestamp.Sub(st.Mode.PhaseStarted)
				if remaining < 0 {
					remaining = 0
				}
				fmt.Fprintf(&sb, ", %s left", remaining.Round(time.Second))
			}
			sb.WriteString(")")
			if st.Mode.Warning {
				sb.WriteString(" [ending soon]")
			}
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "tasks created: %d, completed: %d (today: %d)\n",
			st.TaskTotals.Created, st.TaskTotals.Completed, st.CompletedToday)
		fmt.Fprintf(&sb, "posture checks: %d, session adjustments: %d\n",
			st.PostureTotals.Total, st.Adjustments)
		fmt.Fprintf(&sb, "tasks due this week: %d\n", len(st.Tasks))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- week_tasks ---

func weekTasksTool() mcp.Tool {
	return mcp.NewTool("week_tasks",
		mcp.WithDescription("List open tasks due in the current Monday-to-Sunday week, due date ascending."),
	)
}

func weekTasksHandler(h *hub.Hub) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := h.WeekTasks(50)
		if err != nil {
			return toolError(err)
		}
		if len(tasks) == 0 {
			return mcp.NewToolResultText("No tasks due this week."), nil
		}
		var sb strings.Builder
		for _, t := range tasks {
			fmt.Fprintf(&sb, "%s  [%s] %s", t.DueDate.Format(time.DateOnly), t.Label, t.Title)
			if t.PendingSync {
				sb.WriteString("  (pending sync)")
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- recent_events ---

func recentEventsTool() mcp.Tool {
	return mcp.NewTool("recent_events",
		mcp.WithDescription("Show recent task and posture events, most recent first."),
		mcp.WithString("kind",
			mcp.Description("Event kind: tasks or posture (default tasks)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum events to return (default 20)"),
		),
	)
}

func recentEventsHandler(h *hub.Hub) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind := req.GetString("kind", "tasks")
		limit := req.GetInt("limit", 20)

		switch kind {
		case "tasks":
			events, err := h.RecentTaskEvents(limit)
			if err != nil {
				return toolError(err)
			}
			if len(events) == 0 {
				return mcp.NewToolResultText("No task events yet."), nil
			}
			var sb strings.Builder
			for _, ev := range events {
				fmt.Fprintf(&sb, "%s  %s  %s", ev.Timestamp.Format("2006-01-02 15:04"), ev.Action, ev.Task)
				if ev.SectionTitle != "" {
					fmt.Fprintf(&sb, "  [%s]", ev.SectionTitle)
				}
				sb.WriteString("\n")
			}
			return mcp.NewToolResultText(sb.String()), nil

		case "posture":
			events, err := h.RecentPostureEvents(limit)
			if err != nil {
				return toolError(err)
			}
			if len(events) == 0 {
				return mcp.NewToolResultText("No posture events yet."), nil
			}
			var sb strings.Builder
			for _, ev := range events {
				verdict := "ok"
				if !ev.OK {
					verdict = ev.Reason
				}
				fmt.Fprintf(&sb, "%s  %s (tilt %.1f, nod %.1f)\n",
					ev.Timestamp.Format("2006-01-02 15:04"), verdict, ev.TiltDeg, ev.NodDeg)
			}
			return mcp.NewToolResultText(sb.String()), nil

		default:
			return toolError(fmt.Errorf("unknown event kind: %s (expected tasks or posture)", kind))
		}
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
