package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/billingcat/notes/model"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// newMCPServer exposes the notes operations as MCP tools.
func newMCPServer(store *model.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"Notes",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes, newest first. With userId only the notes whose id equals it are returned; the result carries the access flag 'wow'."),
			mcp.WithString("userId",
				mcp.Description("Optional: id filter, compared numerically with note ids"),
			),
		),
		handleListNotes(store),
	)

	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note. It is inserted in front of all existing notes."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
			mcp.WithString("content", mcp.Description("Note body (Markdown)")),
			mcp.WithString("date", mcp.Description("Date, YYYY-MM-DD")),
			mcp.WithString("owner", mcp.Description("Optional: owner email")),
		),
		handleCreateNote(store),
	)

	s.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Replace every note with the given id. Unknown ids are ignored."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
			mcp.WithString("content", mcp.Description("Note body (Markdown)")),
			mcp.WithString("date", mcp.Description("Date, YYYY-MM-DD")),
			mcp.WithString("owner", mcp.Description("Optional: owner email")),
		),
		handleUpdateNote(store),
	)

	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete every note with the given id."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
		),
		handleDeleteNote(store),
	)

	return s
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	f, err := req.RequireFloat("id")
	if err != nil {
		return 0, fmt.Errorf("id is required")
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("id must be an integer")
	}
	return int64(f), nil
}

func noteFromRequest(req mcp.CallToolRequest) (model.Note, error) {
	id, err := requireID(req)
	if err != nil {
		return model.Note{}, err
	}
	title, err := req.RequireString("title")
	if err != nil {
		return model.Note{}, fmt.Errorf("title is required")
	}
	n := model.Note{
		ID:      id,
		Title:   title,
		Content: req.GetString("content", ""),
		Date:    req.GetString("date", ""),
	}
	if owner := req.GetString("owner", ""); owner != "" {
		n.Owner = &owner
	}
	return n, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handleListNotes(store *model.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var filter *string
		if v, ok := req.GetArguments()["userId"]; ok && v != nil {
			s := fmt.Sprint(v)
			filter = &s
		}
		listing, err := store.ListNotes(ctx, filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}
		return jsonResult(listing)
	}
}

func handleCreateNote(store *model.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n, err := noteFromRequest(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		saved, err := store.CreateNote(ctx, n)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create note: %v", err)), nil
		}
		return jsonResult(saved)
	}
}

func handleUpdateNote(store *model.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n, err := noteFromRequest(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		saved, err := store.UpdateNote(ctx, n)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update note: %v", err)), nil
		}
		return jsonResult(saved)
	}
}

func handleDeleteNote(store *model.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		deleted, err := store.DeleteNote(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}
		return jsonResult(map[string]int64{"deletedId": deleted})
	}
}
