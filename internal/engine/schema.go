package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ganot/ticklink/internal/graphql"
)

// ResolveParams describes the field being resolved.
type ResolveParams struct {
	Field         graphql.Field
	Path          []string
	OperationName string
	Variables     map[string]any
}

// FieldResolver produces the value of one field.
type FieldResolver func(ctx context.Context, p ResolveParams) (any, error)

// FieldDefinition is a field on a root type.
type FieldDefinition struct {
	Type    string
	Resolve FieldResolver
}

// ObjectType is a root operation type with scalar fields only.
type ObjectType struct {
	Name   string
	Fields map[string]FieldDefinition
}

// Schema holds the root operation types. Mutation and Subscription are optional.
type Schema struct {
	Query        *ObjectType
	Mutation     *ObjectType
	Subscription *ObjectType
}

// TickReader exposes the current tick value.
type TickReader interface {
	Current() int64
}

// NewTickSchema builds the schema with Query.tick and Subscription.ticked,
// both resolving to the tick value at the moment of resolution.
func NewTickSchema(ticks TickReader) *Schema {
	current := func(context.Context, ResolveParams) (any, error) {
		return ticks.Current(), nil
	}
	return &Schema{
		Query: &ObjectType{
			Name: "Query",
			Fields: map[string]FieldDefinition{
				"tick": {Type: "Int", Resolve: current},
			},
		},
		Subscription: &ObjectType{
			Name: "Subscription",
			Fields: map[string]FieldDefinition{
				"ticked": {Type: "Int", Resolve: current},
			},
		},
	}
}

// RootType returns the object type that operations of kind k select from.
func (s *Schema) RootType(k graphql.Kind) (*ObjectType, error) {
	var root *ObjectType
	switch k {
	case graphql.KindQuery:
		root = s.Query
	case graphql.KindMutation:
		root = s.Mutation
	case graphql.KindSubscription:
		root = s.Subscription
	}
	if root == nil {
		return nil, graphql.NewValidationError("schema is not configured for %ss", k)
	}
	return root, nil
}

// SDL renders the schema in GraphQL schema definition language.
func (s *Schema) SDL() string {
	var b strings.Builder

	b.WriteString("schema {\n")
	roots := []struct {
		op   string
		root *ObjectType
	}{
		{"query", s.Query},
		{"mutation", s.Mutation},
		{"subscription", s.Subscription},
	}
	for _, r := range roots {
		if r.root != nil {
			fmt.Fprintf(&b, "  %s: %s\n", r.op, r.root.Name)
		}
	}
	b.WriteString("}\n")

	for _, r := range roots {
		if r.root == nil {
			continue
		}
		names := make([]string, 0, len(r.root.Fields))
		for name := range r.root.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(&b, "\ntype %s {\n", r.root.Name)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, r.root.Fields[name].Type)
		}
		b.WriteString("}\n")
	}
	return b.String()
}
