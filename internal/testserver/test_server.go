// Package testserver wires a complete two-party workspace over an in-memory
// store for integration tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/crypto"
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/mcp"
	"github.com/rpggio/syncus/internal/store"
	"github.com/rpggio/syncus/internal/transport"
	"github.com/rpggio/syncus/internal/workspace"
)

const (
	PrimaryID = "9b2f6c1e-0a51-4c57-9d0e-6f3a1c2b7e01"
	PartnerID = "4e8d2a90-7c13-4f6b-a5e2-18c9d3b0f402"

	PrimaryToken = "primary-token"
	PartnerToken = "partner-token"

	DefaultSecret = "test-shared-secret"
)

// Directory is the fixed party directory used by test workspaces.
var Directory = party.Directory{PrimaryID: PrimaryID, PartnerID: PartnerID}

// Options customizes a test workspace.
type Options struct {
	// Secret is the shared encryption secret. Empty uses DefaultSecret;
	// set NoSecret to run without one.
	Secret   string
	NoSecret bool
	Previews stream.LinkPreviewer
	Searcher media.Searcher
	// Inactive initializes both controllers without a session.
	Inactive bool
}

// Workspace is both parties' controllers over one shared store.
type Workspace struct {
	DB       *store.DB
	Broker   *changefeed.MemoryBroker
	Cipher   *crypto.Cipher
	Services workspace.Services
	Primary  *workspace.Controller
	Partner  *workspace.Controller

	teardown map[party.Role]func()
}

// NewWorkspace builds a migrated store, a changefeed and both controllers.
// Sessions are torn down when the test ends.
func NewWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	ctx := context.Background()

	broker := changefeed.NewMemoryBroker()
	db, err := store.Open(store.SQLite, ":memory:", store.WithPublisher(broker))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx))

	secret := opts.Secret
	if secret == "" && !opts.NoSecret {
		secret = DefaultSecret
	}
	cipher, err := crypto.New(secret)
	require.NoError(t, err)

	streamSvc := stream.NewService(store.NewStreamRepository(db), cipher, opts.Previews, nil)
	svc := workspace.Services{
		Status:  status.NewService(store.NewStatusRepository(db), nil),
		Chapter: chapter.NewService(store.NewChapterRepository(db), streamSvc, nil),
		Stream:  streamSvc,
		Media:   media.NewService(store.NewMediaRepository(db), opts.Searcher, nil),
	}

	ws := &Workspace{
		DB:       db,
		Broker:   broker,
		Cipher:   cipher,
		Services: svc,
		teardown: make(map[party.Role]func()),
	}
	for _, role := range []party.Role{party.RolePrimary, party.RolePartner} {
		identity, err := party.Resolve(role, Directory)
		require.NoError(t, err)
		ctrl := workspace.NewController(identity, svc, broker, nil)
		stop, err := ctrl.Initialize(ctx, !opts.Inactive)
		require.NoError(t, err)
		ws.teardown[role] = stop
		if role == party.RolePrimary {
			ws.Primary = ctrl
		} else {
			ws.Partner = ctrl
		}
	}

	t.Cleanup(func() {
		ws.Teardown(party.RolePrimary)
		ws.Teardown(party.RolePartner)
		_ = broker.Close()
		_ = db.Close()
	})
	return ws
}

// Teardown ends one party's session.
func (ws *Workspace) Teardown(role party.Role) {
	if stop := ws.teardown[role]; stop != nil {
		stop()
	}
}

// Controller returns the controller for role.
func (ws *Workspace) Controller(role party.Role) *workspace.Controller {
	if role == party.RolePrimary {
		return ws.Primary
	}
	return ws.Partner
}

// TestServer serves a Workspace over the streamable MCP HTTP transport.
type TestServer struct {
	*Workspace
	Server *httptest.Server
}

// New starts an HTTP server with bearer auth for both parties.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	ws := NewWorkspace(t, opts)
	resolver := transport.NewKeyResolver(map[string]party.Role{
		transport.HashToken(PrimaryToken): party.RolePrimary,
		transport.HashToken(PartnerToken): party.RolePartner,
	})

	mcpServer := mcp.NewServer(mcp.Config{
		Workspaces: map[party.Role]mcp.Workspace{
			party.RolePrimary: ws.Primary,
			party.RolePartner: ws.Partner,
		},
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
		Version:       "test",
	})
	handler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	server := httptest.NewServer(transport.NewServer(handler, transport.AuthMiddleware(resolver), nil))
	t.Cleanup(server.Close)

	return &TestServer{Workspace: ws, Server: server}
}

// URL returns the MCP endpoint.
func (ts *TestServer) URL() string {
	return ts.Server.URL + "/mcp"
}

// Connect opens an MCP client session authenticated as token.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "syncus-test-" + strings.ToLower(token),
		Version: "test",
	}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.URL(),
		HTTPClient: &http.Client{Transport: &bearerTransport{token: token}},
	}, nil)
	require.NoError(t, err, fmt.Sprintf("connect as %s", token))
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(req)
}
