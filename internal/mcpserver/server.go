// Package mcpserver exposes the notes and their windows as MCP tools, so
// agents drive the same controller the UI does.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/stickies/internal/apperr"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/notes"
)

const formatURI = "stickies://note-format"

// Windows is the window controller surface the tools drive.
type Windows interface {
	OpenNote(ctx context.Context, path string, pos *models.Position, isNew bool) error
	CreateNewNote(ctx context.Context, pos *models.Position) (string, error)
	DeleteNote(ctx context.Context, path string) error
	IsOpen(path string) bool
}

// Notes reads note content and stores attachments.
type Notes interface {
	Load(p string) (models.LoadedNote, error)
	SaveImage(data []byte, ext string) (notes.Attachment, error)
}

// Lister lists notes the way the list view shows them.
type Lister interface {
	List(query string) ([]models.NoteSummary, error)
}

// Themes toggles the shared theme.
type Themes interface {
	ToggleTheme() (models.Theme, error)
}

// Deps wires a Server.
type Deps struct {
	Windows Windows
	Notes   Notes
	List    Lister
	Themes  Themes
	Logger  *slog.Logger
}

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp     *server.MCPServer
	windows Windows
	notes   Notes
	list    Lister
	themes  Themes
	logger  *slog.Logger
}

// New creates a new MCP server with all tools registered.
func New(d Deps) *Server {
	s := &Server{
		windows: d.Windows,
		notes:   d.Notes,
		list:    d.List,
		themes:  d.Themes,
		logger:  d.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.mcp = server.NewMCPServer(
		"Stickies",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes newest first, optionally filtered by a case-insensitive query on title and content."),
		mcp.WithString("query", mcp.Description("Optional filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the Markdown content of a note."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note file name as returned by list_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("open_note",
		mcp.WithDescription("Open the note's window on screen, or focus it when already open."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note file name")),
	), s.openNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create an empty note and open its window. Returns the new note's path."),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note, closing its window if open."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Note file name")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("toggle_theme",
		mcp.WithDescription("Switch every window between the light and dark theme."),
	), s.toggleTheme)

	s.mcp.AddTool(mcp.NewTool("attach_image",
		mcp.WithDescription("Store an image from a data: URI or http(s) URL in the notes images directory. "+
			"Returns the Markdown snippet to paste into a note."),
		mcp.WithString("url", mcp.Required(), mcp.Description("data:image/...;base64,... or http(s) URL")),
	), s.attachImage)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns how notes are stored. Call this before writing note content."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("How sticky notes are stored and rendered."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// Handler serves the MCP streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("note not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.list.List(req.GetString("query", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(items)
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Load(name)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) openNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verb := "opened"
	if s.windows.IsOpen(name) {
		verb = "focused"
	}
	if err := s.windows.OpenNote(ctx, name, nil, false); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", verb, name)), nil
}

func (s *Server) createNote(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.windows.CreateNewNote(ctx, nil)
	if err != nil {
		return toolError(err), nil
	}
	s.logger.Info("mcp: note created", slog.String("path", path))
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.windows.DeleteNote(ctx, name); err != nil {
		return toolError(err), nil
	}
	s.logger.Info("mcp: note deleted", slog.String("name", name))
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func (s *Server) toggleTheme(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	theme, err := s.themes.ToggleTheme()
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(theme)), nil
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
