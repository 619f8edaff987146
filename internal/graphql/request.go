// Package graphql holds the operation request type, document parsing and
// classification, and the error taxonomy shared by the engine and the link.
package graphql

import "fmt"

// Request is a single operation submitted for execution. It is treated as
// read-only once created.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Kind classifies an operation by its top-level definition.
type Kind int

const (
	KindQuery Kind = iota + 1
	KindMutation
	KindSubscription
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindMutation:
		return "mutation"
	case KindSubscription:
		return "subscription"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Streaming reports whether operations of this kind produce a stream of results.
func (k Kind) Streaming() bool {
	return k == KindSubscription
}

// Field is a root-level field selection.
type Field struct {
	Name          string
	Alias         string
	Arguments     []string
	HasSelections bool
}

// ResponseKey is the key the field's value is stored under in the result.
func (f Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Operation is the classified form of one operation definition.
type Operation struct {
	Kind   Kind
	Name   string
	Fields []Field
}
