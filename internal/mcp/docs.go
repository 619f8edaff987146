package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `ticklink reproduces a polling subscription link against an in-process tick counter.

Core concepts:
- Tick: a counter incremented once per period by the server process.
- Link: runs queries once after a startup delay; turns subscriptions into a stream that re-executes every poll interval.
- Session: one dispatched operation. Every session journals its events (session_started, next, error, complete, unsubscribed).

Tools:
1) execute_operation: run "query Tick { tick }" or "subscription Ticked { ticked }". Subscriptions return "emissions" results.
2) current_tick: read the counter without going through the link.
3) read_cache: inspect the normalized result cache (seeded with ROOT_QUERY.tick = 0).
4) get_recent_activity: inspect session events; filter by the session_id returned from execute_operation.

Docs:
- ticklink://docs/index
- ticklink://docs/schema
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Content     func() string
}

func docResources(schema SchemaPrinter) []docResource {
	return []docResource{
		{
			URI:         "ticklink://docs/index",
			Name:        "docs_index",
			Title:       "ticklink docs index",
			Description: "What the server does and how sessions behave.",
			MIMEType:    "text/markdown",
			Content: func() string {
				return docsIndex
			},
		},
		{
			URI:         "ticklink://docs/schema",
			Name:        "schema",
			Title:       "ticklink schema",
			Description: "The GraphQL schema operations are resolved against, in SDL.",
			MIMEType:    "application/graphql",
			Content: func() string {
				if schema == nil {
					return ""
				}
				return schema.SDL()
			},
		},
	}
}

const docsIndex = `# ticklink: Agent Docs Index

## Session lifecycle

1. ` + "`execute_operation`" + ` dispatches the document. Nothing runs until the startup delay (300ms by default) has elapsed.
2. Queries and mutations execute once, emit one result and complete.
3. Subscriptions emit a first result, then re-execute the same document once per poll interval (1s by default). They never complete on their own; the tool unsubscribes after collecting the requested emissions.
4. Malformed documents and unknown fields fail with ` + "`VALIDATION_ERROR`" + `; resolver failures with ` + "`RESOLUTION_ERROR`" + `. An error always ends the session.

## Limitations

- Only ` + "`Query.tick`" + ` and ` + "`Subscription.ticked`" + ` exist. Arguments, fragments and nested selections are rejected.
- The cache and journal live in SQLite and default to an in-memory database.
`

func registerDocResources(server *sdkmcp.Server, schema SchemaPrinter) {
	for _, doc := range docResources(schema) {
		doc := doc
		content := doc.Content()

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    doc.MIMEType,
			Size:        int64(len(content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: doc.MIMEType,
					Text:     doc.Content(),
				}},
			}, nil
		})
	}
}
