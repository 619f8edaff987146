package graphql

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

// Document is a parsed, read-only GraphQL document.
type Document struct {
	Source string
	doc    *ast.Document
}

// Parser parses documents and keeps recently parsed ones keyed by source text.
// It is safe for concurrent use.
type Parser struct {
	cache *lru.Cache
}

// NewParser creates a parser whose document cache holds up to size entries.
func NewParser(size int) (*Parser, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}
	return &Parser{cache: cache}, nil
}

// Parse returns the parsed document for source. Syntax errors are reported as
// validation errors.
func (p *Parser) Parse(source string) (*Document, error) {
	if cached, ok := p.cache.Get(source); ok {
		if doc, ok := cached.(*Document); ok {
			return doc, nil
		}
	}

	parsed, report := astparser.ParseGraphqlDocumentString(source)
	if report.HasErrors() {
		return nil, NewValidationError("syntax error: %s", report.Error())
	}
	if len(parsed.OperationDefinitions) == 0 {
		return nil, NewValidationError("document contains no operations")
	}

	doc := &Document{Source: source, doc: &parsed}
	p.cache.Add(source, doc)
	return doc, nil
}

// Classify parses the request document and classifies its main definition:
// the operation named by OperationName, or the first operation when no name
// is given. The kind is derived from the document on every call.
func (p *Parser) Classify(req Request) (Operation, error) {
	doc, err := p.Parse(req.Query)
	if err != nil {
		return Operation{}, err
	}
	return doc.MainOperation(req.OperationName)
}

// MainOperation returns the named operation, or the first one when name is empty.
func (d *Document) MainOperation(name string) (Operation, error) {
	if name == "" {
		return d.operation(0)
	}
	return d.namedOperation(name)
}

// SelectOperation follows execution rules: an unnamed request is only valid
// when the document holds exactly one operation.
func (d *Document) SelectOperation(name string) (Operation, error) {
	if name != "" {
		return d.namedOperation(name)
	}
	if len(d.doc.OperationDefinitions) > 1 {
		return Operation{}, NewValidationError("must provide operation name if query contains multiple operations")
	}
	return d.operation(0)
}

func (d *Document) namedOperation(name string) (Operation, error) {
	for ref := range d.doc.OperationDefinitions {
		if d.doc.OperationDefinitionNameString(ref) == name {
			return d.operation(ref)
		}
	}
	return Operation{}, NewValidationError("unknown operation named %q", name)
}

func (d *Document) operation(ref int) (Operation, error) {
	def := d.doc.OperationDefinitions[ref]

	kind, err := kindOf(def.OperationType)
	if err != nil {
		return Operation{}, err
	}

	op := Operation{
		Kind: kind,
		Name: d.doc.OperationDefinitionNameString(ref),
	}
	if !def.HasSelections {
		return op, nil
	}

	for _, selRef := range d.doc.SelectionSets[def.SelectionSet].SelectionRefs {
		sel := d.doc.Selections[selRef]
		if sel.Kind != ast.SelectionKindField {
			return Operation{}, NewValidationError("fragments are not supported in %s operations", kind)
		}
		op.Fields = append(op.Fields, d.field(sel.Ref))
	}
	return op, nil
}

func (d *Document) field(ref int) Field {
	f := Field{
		Name:          d.doc.FieldNameString(ref),
		HasSelections: d.doc.Fields[ref].HasSelections,
	}
	if d.doc.FieldAliasIsDefined(ref) {
		f.Alias = d.doc.FieldAliasString(ref)
	}
	if d.doc.Fields[ref].HasArguments {
		for _, argRef := range d.doc.Fields[ref].Arguments.Refs {
			f.Arguments = append(f.Arguments, d.doc.ArgumentNameString(argRef))
		}
	}
	return f
}

func kindOf(t ast.OperationType) (Kind, error) {
	switch t {
	case ast.OperationTypeQuery:
		return KindQuery, nil
	case ast.OperationTypeMutation:
		return KindMutation, nil
	case ast.OperationTypeSubscription:
		return KindSubscription, nil
	default:
		return 0, NewValidationError("unsupported operation type")
	}
}
