package tariff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	tbl, err := Load(context.Background(), SourceEmbedded, nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRows()), tbl.Len())

	tbl, err = Load(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRows()), tbl.Len())
}

func TestLoad_PostgresWithoutStore(t *testing.T) {
	_, err := Load(context.Background(), SourcePostgres, nil)
	assert.Error(t, err)
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := Load(context.Background(), "csv", nil)
	assert.Error(t, err)
}

func TestListRowsQuery_InsertionOrder(t *testing.T) {
	q := strings.Join(strings.Fields(listRowsQuery), " ")
	assert.True(t, strings.HasSuffix(q, "ORDER BY id"), q)
	assert.NotContains(t, q, "label,", "label must not act as a sort key")
}
