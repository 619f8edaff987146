package graphql_test

import (
	"testing"

	"github.com/ganot/ticklink/internal/graphql"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T) *graphql.Parser {
	t.Helper()
	p, err := graphql.NewParser(16)
	require.NoError(t, err)
	return p
}

func TestParser_Classify(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		name  string
		query string
		want  graphql.Kind
	}{
		{"named query", `query Tick { tick }`, graphql.KindQuery},
		{"shorthand query", `{ tick }`, graphql.KindQuery},
		{"subscription", `subscription Ticked { ticked }`, graphql.KindSubscription},
		{"mutation", `mutation Reset { reset }`, graphql.KindMutation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := p.Classify(graphql.Request{Query: tt.query})
			require.NoError(t, err)
			require.Equal(t, tt.want, op.Kind)
		})
	}
}

func TestParser_ClassifyUsesOperationName(t *testing.T) {
	p := newParser(t)
	query := `
		query Tick { tick }
		subscription Ticked { ticked }
	`

	op, err := p.Classify(graphql.Request{Query: query})
	require.NoError(t, err)
	require.Equal(t, graphql.KindQuery, op.Kind)

	op, err = p.Classify(graphql.Request{Query: query, OperationName: "Ticked"})
	require.NoError(t, err)
	require.Equal(t, graphql.KindSubscription, op.Kind)
	require.Equal(t, "Ticked", op.Name)

	_, err = p.Classify(graphql.Request{Query: query, OperationName: "Missing"})
	require.True(t, graphql.IsValidationError(err))
}

func TestParser_Fields(t *testing.T) {
	p := newParser(t)

	op, err := p.Classify(graphql.Request{Query: `query { now: tick tick(at: 1) }`})
	require.NoError(t, err)
	require.Len(t, op.Fields, 2)
	require.Equal(t, "tick", op.Fields[0].Name)
	require.Equal(t, "now", op.Fields[0].ResponseKey())
	require.Equal(t, []string{"at"}, op.Fields[1].Arguments)
}

func TestParser_SyntaxError(t *testing.T) {
	p := newParser(t)

	_, err := p.Parse(`query { tick `)
	require.Error(t, err)
	require.True(t, graphql.IsValidationError(err))
	require.False(t, graphql.IsResolutionError(err))
}

func TestParser_NoOperations(t *testing.T) {
	p := newParser(t)

	_, err := p.Parse(`type Query { tick: Int }`)
	require.True(t, graphql.IsValidationError(err))
}

func TestParser_CachesDocuments(t *testing.T) {
	p := newParser(t)

	first, err := p.Parse(`{ tick }`)
	require.NoError(t, err)
	second, err := p.Parse(`{ tick }`)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestDocument_SelectOperation(t *testing.T) {
	p := newParser(t)
	doc, err := p.Parse(`query A { tick } query B { tick }`)
	require.NoError(t, err)

	_, err = doc.SelectOperation("")
	require.True(t, graphql.IsValidationError(err))

	op, err := doc.SelectOperation("B")
	require.NoError(t, err)
	require.Equal(t, "B", op.Name)
}

func TestParser_FragmentsRejected(t *testing.T) {
	p := newParser(t)

	_, err := p.Classify(graphql.Request{Query: `query { ...F } fragment F on Query { tick }`})
	require.True(t, graphql.IsValidationError(err))
}
