package vectorindex

import (
	"testing"
	"time"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WhereFromFilter_Empty(t *testing.T) {
	assert.Nil(t, whereFromFilter(Filter{}))
}

func Test_WhereFromFilter_KindsOnly(t *testing.T) {
	where := whereFromFilter(Filter{Kinds: []string{"pdf", "markdown"}})
	require.NotNil(t, where)
	assert.Equal(t, chroma.InOperator, where.Operator())
	assert.Equal(t, attrKind, where.Key())
	assert.Equal(t, []string{"pdf", "markdown"}, where.Operand())
}

func Test_WhereFromFilter_OldestOnly(t *testing.T) {
	oldest := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	where := whereFromFilter(Filter{Oldest: oldest})
	require.NotNil(t, where)
	assert.Equal(t, chroma.GreaterThanOrEqualOperator, where.Operator())
	assert.Equal(t, attrModTime, where.Key())
	assert.Equal(t, int(oldest.Unix()), where.Operand())
}

func Test_WhereFromFilter_Combined(t *testing.T) {
	oldest := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	where := whereFromFilter(Filter{Kinds: []string{"notes"}, Oldest: oldest})
	require.NotNil(t, where)
	assert.Equal(t, chroma.AndOperator, where.Operator())

	clauses, ok := where.Operand().([]chroma.WhereClause)
	require.True(t, ok)
	require.Len(t, clauses, 2)
	assert.Equal(t, chroma.InOperator, clauses[0].Operator())
	assert.Equal(t, attrKind, clauses[0].Key())
	assert.Equal(t, chroma.GreaterThanOrEqualOperator, clauses[1].Operator())
	assert.Equal(t, attrModTime, clauses[1].Key())
}
