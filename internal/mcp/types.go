package mcp

const (
	defaultEmissions = 1
	maxEmissions     = 10
)

type ExecuteOperationParams struct {
	Query         string         `json:"query" jsonschema:"GraphQL document to run"`
	OperationName string         `json:"operation_name,omitempty" jsonschema:"operation to run when the document holds several"`
	Variables     map[string]any `json:"variables,omitempty" jsonschema:"operation variables"`
	Emissions     int            `json:"emissions,omitempty" jsonschema:"results to collect from a subscription before unsubscribing (default 1, max 10)"`
}

type ExecuteOperationResult struct {
	SessionID string           `json:"session_id"`
	Kind      string           `json:"kind,omitempty"`
	Results   []map[string]any `json:"results"`
	Completed bool             `json:"completed"`
	Error     *APIError        `json:"error,omitempty"`
}

type CurrentTickParams struct{}

type CurrentTickResult struct {
	Tick int64 `json:"tick"`
}

type ReadCacheParams struct{}

type ReadCacheResult struct {
	Snapshot map[string]map[string]any `json:"snapshot"`
}

type GetRecentActivityParams struct {
	SessionID    string `json:"session_id,omitempty" jsonschema:"only entries of this link session"`
	ActivityType string `json:"activity_type,omitempty" jsonschema:"only entries of this type (session_started, next, error, complete, unsubscribed, poll_error)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of entries"`
	Offset       int    `json:"offset,omitempty" jsonschema:"offset for pagination"`
}

type ActivityEntry struct {
	ID            int64  `json:"id"`
	SessionID     string `json:"session_id"`
	OperationName string `json:"operation_name,omitempty"`
	OperationKind string `json:"operation_kind,omitempty"`
	ActivityType  string `json:"type"`
	Summary       string `json:"summary"`
	Details       string `json:"details,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type GetRecentActivityResult struct {
	Entries []ActivityEntry `json:"entries"`
}
