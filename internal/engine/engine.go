// Package engine resolves operation requests against the tick schema.
package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/ganot/ticklink/internal/graphql"
)

// Result is the outcome of one successful resolution. A fresh Result is
// built for every execution and never modified afterwards.
type Result struct {
	Data map[string]any `json:"data"`
}

// Engine executes requests against a schema.
type Engine struct {
	schema *Schema
	parser *graphql.Parser
	logger *slog.Logger
}

// New creates an engine. The parser is shared with the link so documents are
// parsed once.
func New(schema *Schema, parser *graphql.Parser, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{schema: schema, parser: parser, logger: logger}
}

// Schema returns the schema the engine resolves against.
func (e *Engine) Schema() *Schema {
	return e.schema
}

// Execute resolves req against the current state of the schema's resolvers.
// Failures are returned as *graphql.Error; no partial result is produced.
func (e *Engine) Execute(ctx context.Context, req graphql.Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := e.parser.Parse(req.Query)
	if err != nil {
		return nil, err
	}
	op, err := doc.SelectOperation(req.OperationName)
	if err != nil {
		return nil, err
	}
	root, err := e.schema.RootType(op.Kind)
	if err != nil {
		return nil, err
	}
	if err := validateSelection(op, root); err != nil {
		return nil, err
	}

	data := make(map[string]any, len(op.Fields))
	for _, field := range op.Fields {
		key := field.ResponseKey()
		if field.Name == "__typename" {
			data[key] = root.Name
			continue
		}

		params := ResolveParams{
			Field:         field,
			Path:          []string{key},
			OperationName: op.Name,
			Variables:     req.Variables,
		}
		value, err := root.Fields[field.Name].Resolve(ctx, params)
		if err != nil {
			e.logger.Debug("resolver failed", "operation", op.Name, "field", field.Name, "error", err)
			return nil, graphql.NewResolutionError(params.Path, err)
		}
		data[key] = value
	}

	return &Result{Data: data}, nil
}

func validateSelection(op graphql.Operation, root *ObjectType) error {
	if op.Kind == graphql.KindSubscription && len(op.Fields) != 1 {
		if op.Name == "" {
			return graphql.NewValidationError("anonymous subscription must select only one top level field")
		}
		return graphql.NewValidationError("subscription %q must select only one top level field", op.Name)
	}

	for _, field := range op.Fields {
		if field.Name == "__typename" {
			continue
		}
		def, ok := root.Fields[field.Name]
		if !ok {
			return graphql.NewValidationError("cannot query field %q on type %q", field.Name, root.Name)
		}
		if len(field.Arguments) > 0 {
			return graphql.NewValidationError("unknown argument %q on field %q", field.Arguments[0], root.Name+"."+field.Name)
		}
		if field.HasSelections {
			return graphql.NewValidationError("field %q must not have a selection since type %q has no subfields", field.Name, def.Type)
		}
	}
	return nil
}
