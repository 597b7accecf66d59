package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/mcp"
	"github.com/rpggio/syncus/internal/readmodel"
	"github.com/rpggio/syncus/internal/repository/mocks"
	"github.com/rpggio/syncus/internal/testserver"
)

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args any, out any) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	text := res.Content[0].(*sdkmcp.TextContent).Text
	require.False(t, res.IsError, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out))
	}
}

func callToolError(t *testing.T, session *sdkmcp.ClientSession, name string, args any) mcp.APIError {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.True(t, res.IsError)
	var apiErr mcp.APIError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &apiErr))
	return apiErr
}

// tryTool calls a tool and decodes a successful result into out. It reports
// failure instead of failing the test so it can run inside require.Eventually.
func tryTool(session *sdkmcp.ClientSession, name string, args any, out any) bool {
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil || res.IsError || len(res.Content) == 0 {
		return false
	}
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	if !ok {
		return false
	}
	return out == nil || json.Unmarshal([]byte(text.Text), out) == nil
}

const (
	waitFor = 2 * time.Second
	tick    = 20 * time.Millisecond
)

func TestServer_ListTools(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	session := ts.Connect(t, testserver.PrimaryToken)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"get_workspace", "refresh", "set_status", "post_note", "delete_note",
		"create_chapter", "get_chapter", "get_active_chapter", "close_chapter",
		"update_chapter", "set_consent", "set_finished", "delete_chapter",
		"add_milestone", "toggle_milestone", "remove_milestone", "schedule_milestone",
		"search_media", "add_media", "toggle_media", "delete_media",
	} {
		require.True(t, names[want], want)
	}
}

func TestServer_TokensSelectParty(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	primary := ts.Connect(t, testserver.PrimaryToken)
	partner := ts.Connect(t, testserver.PartnerToken)

	var view readmodel.View
	callTool(t, primary, "get_workspace", map[string]any{}, &view)
	require.Equal(t, party.RolePrimary, view.Identity.Role)
	require.Equal(t, testserver.PrimaryID, view.Identity.MyID)

	callTool(t, partner, "get_workspace", map[string]any{}, &view)
	require.Equal(t, party.RolePartner, view.Identity.Role)
	require.Equal(t, testserver.PrimaryID, view.Identity.PartnerID)
}

func TestServer_RejectsUnknownToken(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	req, err := http.NewRequest(http.MethodPost, ts.URL(), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_StatusRoundTrip(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	primary := ts.Connect(t, testserver.PrimaryToken)
	partner := ts.Connect(t, testserver.PartnerToken)

	callTool(t, primary, "set_status", map[string]any{"status": "SYNC"}, nil)

	require.Eventually(t, func() bool {
		var view readmodel.View
		return tryTool(partner, "get_workspace", map[string]any{}, &view) && view.PartnerStatus.Status == "SYNC"
	}, waitFor, tick)

	apiErr := callToolError(t, primary, "set_status", map[string]any{"status": "ASLEEP"})
	require.Equal(t, "INVALID_STATUS", apiErr.Code)
}

func TestServer_ChapterNegotiation(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})
	primary := ts.Connect(t, testserver.PrimaryToken)
	partner := ts.Connect(t, testserver.PartnerToken)

	var ch chapter.Chapter
	callTool(t, primary, "create_chapter", map[string]any{"title": "Trip Plan"}, &ch)
	require.Equal(t, chapter.ConsentPending, ch.ConsentStatus)

	callTool(t, primary, "add_milestone", map[string]any{"chapter_id": ch.ID, "text": "book flights"}, nil)

	var detail mcp.ChapterDetail
	require.Eventually(t, func() bool {
		return tryTool(primary, "get_chapter", map[string]any{"id": ch.ID}, &detail) && len(detail.Milestones) == 1
	}, waitFor, tick)
	require.Contains(t, detail.CalendarURL, "Status%3A+PENDING")

	apiErr := callToolError(t, partner, "set_consent", map[string]any{"id": ch.ID, "status": "ALTERNATIVE"})
	require.Equal(t, "NOTE_REQUIRED", apiErr.Code)

	callTool(t, partner, "refresh", map[string]any{}, nil)
	callTool(t, partner, "set_consent", map[string]any{"id": ch.ID, "status": "AGREED"}, nil)

	callTool(t, primary, "refresh", map[string]any{}, nil)
	require.Eventually(t, func() bool {
		return tryTool(primary, "get_active_chapter", map[string]any{}, &detail) && detail.ConsentStatus == chapter.ConsentAgreed
	}, waitFor, tick)

	apiErr = callToolError(t, primary, "delete_chapter", map[string]any{"id": ch.ID})
	require.Equal(t, "CONFIRMATION_REQUIRED", apiErr.Code)

	callTool(t, primary, "delete_chapter", map[string]any{"id": ch.ID, "confirm": true}, nil)
	var view readmodel.View
	require.Eventually(t, func() bool {
		return tryTool(primary, "get_workspace", map[string]any{}, &view) && len(view.Stream) == 2 && len(view.Chapters) == 0
	}, waitFor, tick)
	apiErr = callToolError(t, primary, "get_active_chapter", map[string]any{})
	require.Equal(t, "CHAPTER_NOT_FOUND", apiErr.Code)
	require.Equal(t, `Chapter "Trip Plan" terminated`, view.Stream[0].Content)
	require.Equal(t, `Chapter "Trip Plan" marked AGREED`, view.Stream[1].Content)
}

func TestServer_Watchlist(t *testing.T) {
	searcher := &mocks.MediaSearcher{}
	searcher.On("Search", mock.Anything, "heat").Return([]media.Candidate{
		{Title: "Heat", ExternalID: "tt0113277", Poster: "https://img/heat.jpg", Type: "movie"},
	}, nil)
	ts := testserver.New(t, testserver.Options{Searcher: searcher})
	primary := ts.Connect(t, testserver.PrimaryToken)

	var found struct {
		Candidates []media.Candidate `json:"candidates"`
	}
	callTool(t, primary, "search_media", map[string]any{"query": "he"}, &found)
	require.Empty(t, found.Candidates)
	require.NotNil(t, found.Candidates)

	callTool(t, primary, "search_media", map[string]any{"query": "heat"}, &found)
	require.Len(t, found.Candidates, 1)

	c := found.Candidates[0]
	callTool(t, primary, "add_media", map[string]any{
		"title": c.Title, "external_id": c.ExternalID, "poster": c.Poster,
	}, nil)

	var view readmodel.View
	callTool(t, primary, "get_workspace", map[string]any{}, &view)
	require.Len(t, view.Media, 1)
	require.Equal(t, media.StatusWatchlist, view.Media[0].Status)

	callTool(t, primary, "toggle_media", map[string]any{"id": view.Media[0].ID}, nil)
	require.Eventually(t, func() bool {
		return tryTool(primary, "get_workspace", map[string]any{}, &view) && len(view.Media) == 1 && view.Media[0].Status == media.StatusWatched
	}, waitFor, tick)

	apiErr := callToolError(t, primary, "delete_media", map[string]any{"id": "missing"})
	require.Equal(t, "ENTRY_NOT_FOUND", apiErr.Code)
}

func TestServer_StdioServesDefaultRole(t *testing.T) {
	ws := testserver.NewWorkspace(t, testserver.Options{})
	server := mcp.NewServer(mcp.Config{
		Workspaces: map[party.Role]mcp.Workspace{
			party.RolePrimary: ws.Primary,
			party.RolePartner: ws.Partner,
		},
		DefaultRole:   party.RolePartner,
		TransportMode: "stdio",
	})

	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "stdio-test", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	var note struct {
		Entry struct {
			AuthorID string `json:"user_id"`
			Content  string `json:"content"`
		} `json:"entry"`
	}
	callTool(t, session, "post_note", map[string]any{"text": "hello from stdio"}, &note)
	require.Equal(t, testserver.PartnerID, note.Entry.AuthorID)
	require.Equal(t, "hello from stdio", note.Entry.Content)

	resources, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resources.Resources)
}
