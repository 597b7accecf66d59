package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/readmodel"
)

// Workspace defines the per-party operations exposed as tools.
type Workspace interface {
	View() readmodel.View
	Refresh(ctx context.Context) error
	UpdateStatus(ctx context.Context, to status.Status) error

	PostNote(ctx context.Context, text string) (*stream.Entry, error)
	DeleteNote(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, title string) (*chapter.Chapter, error)
	UpdateChapter(ctx context.Context, id string, edit chapter.Edit) error
	SetConsent(ctx context.Context, id string, to chapter.ConsentStatus, note string) error
	AddMilestone(ctx context.Context, chapterID, text, date string) error
	ToggleMilestone(ctx context.Context, chapterID string, milestoneID int64) error
	RemoveMilestone(ctx context.Context, chapterID string, milestoneID int64) error
	ScheduleMilestone(ctx context.Context, chapterID string, milestoneID int64, date string) error
	SetFinished(ctx context.Context, id string, finished bool) error
	DeleteChapter(ctx context.Context, id string, confirmed bool) error

	OpenChapter(id string) error
	CloseChapter()
	ActiveChapter() (chapter.Chapter, bool)
	CalendarURL(id string) (string, error)

	SearchMedia(ctx context.Context, query string) ([]media.Candidate, error)
	AddMedia(ctx context.Context, candidate media.Candidate) error
	ToggleMedia(ctx context.Context, id string) error
	DeleteMedia(ctx context.Context, id string) error
}

// Config contains server configuration.
type Config struct {
	Workspaces    map[party.Role]Workspace
	Resolver      RoleResolver
	AuthEnabled   bool
	DefaultRole   party.Role
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "syncus",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio serves the configured party only.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultRole))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Workspaces)

	return server
}
