package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `syncus is a workspace shared by exactly two parties: a status signal each, a shared encrypted stream of notes, chapters (joint goals) and a watchlist.

Core concepts:
- You act as one party. get_workspace shows my_status and partner_status plus everything both parties wrote.
- Status: STEADY, ALONE or SYNC. Any value may follow any other. set_status is visible to you at once; the partner sees it on their next refresh.
- Chapter: a goal with a title, a 0-100 progress, a milestone checklist and a consent status.
- Consent: PENDING at creation, then AGREED or ALTERNATIVE (ALTERNATIVE needs a note). Each consent change and each deletion posts a SYSTEM entry to the stream; repeating the current decision posts nothing. Progress, milestone and archive edits post nothing.
- Stream notes are encrypted at rest. An entry shown as "⚠️ key missing" or "⚠️ decrypt failed" could not be decrypted with the configured secret.

Workflow:
1) Orient with get_workspace.
2) Mutations refresh the workspace for you; call refresh only to pick up the partner's changes sooner.
3) delete_chapter needs confirm=true and cannot be undone.

Docs:
- syncus://docs/consent
- syncus://docs/stream
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "syncus://docs/consent",
		Name:        "docs_consent",
		Title:       "Chapter consent",
		Description: "How chapter consent, progress and milestones interact.",
		Content: `# Chapter consent

| From | To | Allowed | Stream entry |
|---|---|---|---|
| any | AGREED | always | ` + "`Chapter \"<title>\" marked AGREED`" + ` |
| any | ALTERNATIVE | note must be non-blank | ` + "`Chapter \"<title>\" marked ALTERNATIVE: <note>`" + ` |
| any | PENDING | never | |

- Setting AGREED keeps any earlier alternative note.
- Progress is independent of the checklist. It is seeded from the done ratio at creation and then only changes when someone sets it.
- Milestone ids are unique within a chapter and increase as milestones are added.
- Archiving (set_finished) and reopening are routine edits.
- Deleting posts ` + "`Chapter \"<title>\" terminated`" + ` and needs confirm=true.
`,
	},
	{
		URI:         "syncus://docs/stream",
		Name:        "docs_stream",
		Title:       "Shared stream",
		Description: "Entry types, encryption and link previews.",
		Content: `# Shared stream

- thought: a plain note.
- link: a note containing an http(s) URL. A preview (title, description, image) is attached when the lookup succeeds; a failed lookup never blocks the post.
- SYSTEM: written by the workspace for consent decisions and deletions.

Only note text is encrypted. Titles, previews, chapters and the watchlist are stored in clear.
Posting without a configured secret fails with MISSING_SECRET and nothing is written.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
