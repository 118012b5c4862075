package seed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/store"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.RecordStore {
	return newStoreAt(filepath.Join(t.TempDir(), "data.json"))
}

func newStoreAt(path string) *store.RecordStore {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return store.NewRecordStore(store.NewFileBackend(path), nil, logger, 1)
}

func TestSeedReports(t *testing.T) {
	rs := newStore(t)
	ctx := context.Background()

	n, err := SeedReports(ctx, rs, lifecycle.NewMachine(true))
	require.NoError(t, err)
	assert.Equal(t, len(demoReports), n)

	doc := rs.Load(ctx)
	require.Len(t, doc.Reports, len(demoReports))
	assert.Equal(t, demoReports[0].ID, doc.Reports[0].ID)

	views := types.Partition(doc.Reports)
	assert.Len(t, views.Pending, 2)
	assert.Len(t, views.Approved, 1)
	assert.Len(t, views.Active, 1)
	assert.Len(t, views.Completed, 1)
	assert.Len(t, views.Rejected, 1)
	require.NotNil(t, views.Rejected[0].RejectionReason)
	assert.Equal(t, "Not an emergency", *views.Rejected[0].RejectionReason)
	assert.True(t, views.Completed[0].AcceptedAt.Before(*views.Completed[0].CompletedAt))

	n, err = SeedReports(ctx, rs, lifecycle.NewMachine(true))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, rs.Load(ctx).Reports, len(demoReports))
}

func TestSeedContactsAndReset(t *testing.T) {
	rs := newStore(t)
	ctx := context.Background()

	n, err := SeedContacts(ctx, rs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = SeedContacts(ctx, rs)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, Reset(ctx, rs))
	doc := rs.Load(ctx)
	assert.Empty(t, doc.Reports)
	assert.Empty(t, doc.Contacts)
}

func TestSeedContacts_SkipsNullEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"reports": [], "contacts": [null]}`), 0o644))
	rs := newStoreAt(path)

	n, err := SeedContacts(context.Background(), rs)
	require.NoError(t, err)
	assert.Equal(t, len(demoContacts), n)
	assert.Len(t, rs.Load(context.Background()).Contacts, len(demoContacts)+1)
}
