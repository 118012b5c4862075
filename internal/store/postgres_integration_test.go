//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"rescuelink/internal/db"
	"rescuelink/internal/utils"
	"rescuelink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresBackend(t *testing.T) *PostgresBackend {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	pool, err := db.Connect(context.Background(), &types.Config{DatabaseURL: url})
	if err != nil {
		t.Skipf("Skipping integration test: database not available: %v", err)
	}
	t.Cleanup(pool.Close)

	b := NewPostgresBackend(pool, "test-"+utils.NanoIDSize(8))
	require.NoError(t, b.EnsureSchema(context.Background()))

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM rescuelink.documents WHERE id = $1", b.documentID)
	})

	return b
}

func TestPostgresBackend_RoundTripAndConflict(t *testing.T) {
	ctx := context.Background()
	b := setupPostgresBackend(t)

	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, types.ErrDocumentNotExist)

	doc := types.NewDocument()
	doc.Reports = append(doc.Reports, &types.Report{ID: "r1", Type: "Flood", Status: types.ReportStatusPending, MissionStatus: types.MissionStatusNone})
	require.NoError(t, b.Save(ctx, doc))
	assert.Equal(t, int64(1), doc.Revision)

	a, err := b.Load(ctx)
	require.NoError(t, err)
	c, err := b.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Save(ctx, a))
	assert.ErrorIs(t, b.Save(ctx, c), types.ErrRevisionConflict)
	assert.ErrorIs(t, b.Save(ctx, types.NewDocument()), types.ErrRevisionConflict)

	final, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), final.Revision)
	require.Len(t, final.Reports, 1)
	assert.Equal(t, "Flood", final.Reports[0].Type)
}
