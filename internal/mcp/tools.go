package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
)

type toolRegistry struct {
	workspaces map[party.Role]Workspace
}

func (r *toolRegistry) workspace(ctx context.Context) (Workspace, error) {
	ws, ok := r.workspaces[getRole(ctx)]
	if !ok || ws == nil {
		return nil, party.ErrInvalidRole
	}
	return ws, nil
}

// handle adapts a workspace call into a typed tool handler.
func handle[In any](r *toolRegistry, fn func(context.Context, Workspace, In) (any, error)) sdkmcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		ws, err := r.workspace(ctx)
		if err != nil {
			return toolError(err)
		}
		out, err := fn(ctx, ws, in)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(out)
	}
}

func registerTools(server *sdkmcp.Server, workspaces map[party.Role]Workspace) {
	r := &toolRegistry{workspaces: workspaces}

	// Orientation
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_workspace",
		Description: "Get both parties' statuses, all chapters, the decrypted stream and the watchlist as of the last refresh",
	}, handle(r, func(_ context.Context, ws Workspace, _ emptyParams) (any, error) {
		return ws.View(), nil
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "refresh",
		Description: "Re-fetch every collection and return the updated workspace",
	}, handle(r, func(ctx context.Context, ws Workspace, _ emptyParams) (any, error) {
		if err := ws.Refresh(ctx); err != nil {
			return nil, err
		}
		return ws.View(), nil
	}))

	// Status
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_status",
		Description: "Set your own status (STEADY, ALONE or SYNC). Visible to you immediately",
	}, handle(r, func(ctx context.Context, ws Workspace, in SetStatusParams) (any, error) {
		if err := ws.UpdateStatus(ctx, status.Status(in.Status)); err != nil {
			return nil, err
		}
		return ws.View().MyStatus, nil
	}))

	// Stream
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "post_note",
		Description: "Post an encrypted note to the shared stream",
	}, handle(r, func(ctx context.Context, ws Workspace, in PostNoteParams) (any, error) {
		entry, err := ws.PostNote(ctx, in.Text)
		if err != nil {
			return nil, err
		}
		return noteResult{Entry: entry}, nil
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_note",
		Description: "Delete a stream entry",
	}, handle(r, func(ctx context.Context, ws Workspace, in IDParams) (any, error) {
		return ok(ws.DeleteNote(ctx, in.ID))
	}))

	// Chapters
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_chapter",
		Description: "Create a chapter. New chapters start PENDING with no milestones",
	}, handle(r, func(ctx context.Context, ws Workspace, in CreateChapterParams) (any, error) {
		return ws.CreateChapter(ctx, in.Title)
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_chapter",
		Description: "Open a chapter in the detail view and return it with a calendar link",
	}, handle(r, func(_ context.Context, ws Workspace, in IDParams) (any, error) {
		if err := ws.OpenChapter(in.ID); err != nil {
			return nil, err
		}
		return activeDetail(ws)
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_active_chapter",
		Description: "Return the chapter open in the detail view, if any",
	}, handle(r, func(_ context.Context, ws Workspace, _ emptyParams) (any, error) {
		return activeDetail(ws)
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "close_chapter",
		Description: "Close the detail view",
	}, handle(r, func(_ context.Context, ws Workspace, _ emptyParams) (any, error) {
		ws.CloseChapter()
		return okResult{OK: true}, nil
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_chapter",
		Description: "Edit a chapter's title or progress. Routine edits do not post to the stream",
	}, handle(r, func(ctx context.Context, ws Workspace, in UpdateChapterParams) (any, error) {
		return ok(ws.UpdateChapter(ctx, in.ID, chapter.Edit{Title: in.Title, Progress: in.Progress}))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_consent",
		Description: "Record your decision on a chapter: AGREED, or ALTERNATIVE with a note. Posts a SYSTEM entry",
	}, handle(r, func(ctx context.Context, ws Workspace, in SetConsentParams) (any, error) {
		return ok(ws.SetConsent(ctx, in.ID, chapter.ConsentStatus(in.Status), in.Note))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_finished",
		Description: "Archive (finished=true) or reopen a chapter",
	}, handle(r, func(ctx context.Context, ws Workspace, in SetFinishedParams) (any, error) {
		return ok(ws.SetFinished(ctx, in.ID, in.Finished))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_chapter",
		Description: "Permanently delete a chapter. Requires confirm=true and posts a SYSTEM entry",
	}, handle(r, func(ctx context.Context, ws Workspace, in DeleteChapterParams) (any, error) {
		return ok(ws.DeleteChapter(ctx, in.ID, in.Confirm))
	}))

	// Milestones
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_milestone",
		Description: "Append a milestone to a chapter's checklist",
	}, handle(r, func(ctx context.Context, ws Workspace, in AddMilestoneParams) (any, error) {
		return ok(ws.AddMilestone(ctx, in.ChapterID, in.Text, in.Date))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_milestone",
		Description: "Flip a milestone between done and not done",
	}, handle(r, func(ctx context.Context, ws Workspace, in MilestoneParams) (any, error) {
		return ok(ws.ToggleMilestone(ctx, in.ChapterID, in.MilestoneID))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_milestone",
		Description: "Remove a milestone from a chapter",
	}, handle(r, func(ctx context.Context, ws Workspace, in MilestoneParams) (any, error) {
		return ok(ws.RemoveMilestone(ctx, in.ChapterID, in.MilestoneID))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "schedule_milestone",
		Description: "Set or clear a milestone's date",
	}, handle(r, func(ctx context.Context, ws Workspace, in ScheduleMilestoneParams) (any, error) {
		return ok(ws.ScheduleMilestone(ctx, in.ChapterID, in.MilestoneID, in.Date))
	}))

	// Watchlist
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_media",
		Description: "Search the movie catalogue. Queries under 3 characters return nothing",
	}, handle(r, func(ctx context.Context, ws Workspace, in SearchMediaParams) (any, error) {
		found, err := ws.SearchMedia(ctx, in.Query)
		if err != nil {
			return nil, err
		}
		if found == nil {
			found = []media.Candidate{}
		}
		return searchResult{Candidates: found}, nil
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_media",
		Description: "Add a title to the shared watchlist",
	}, handle(r, func(ctx context.Context, ws Workspace, in AddMediaParams) (any, error) {
		return ok(ws.AddMedia(ctx, media.Candidate{
			Title:      in.Title,
			ExternalID: in.ExternalID,
			Poster:     in.Poster,
			Type:       in.Type,
		}))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_media",
		Description: "Flip a watchlist entry between WATCHLIST and WATCHED",
	}, handle(r, func(ctx context.Context, ws Workspace, in IDParams) (any, error) {
		return ok(ws.ToggleMedia(ctx, in.ID))
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_media",
		Description: "Remove a watchlist entry",
	}, handle(r, func(ctx context.Context, ws Workspace, in IDParams) (any, error) {
		return ok(ws.DeleteMedia(ctx, in.ID))
	}))
}

func ok(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func activeDetail(ws Workspace) (any, error) {
	ch, open := ws.ActiveChapter()
	if !open {
		return nil, chapter.ErrChapterNotFound
	}
	link, err := ws.CalendarURL(ch.ID)
	if err != nil {
		return nil, err
	}
	return ChapterDetail{Chapter: ch, CalendarURL: link}, nil
}
