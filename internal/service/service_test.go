package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/store"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	path     string
	store    *store.RecordStore
	reports  *ReportService
	contacts *ContactService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "data.json")
	rs := store.NewRecordStore(store.NewFileBackend(path), store.NewLocalLocker(), logger, 3)

	return &fixture{
		path:     path,
		store:    rs,
		reports:  NewReportService(rs, lifecycle.NewMachine(true), logger),
		contacts: NewContactService(rs, logger),
	}
}

func approved() types.ReportPatch {
	s := types.ReportStatusApproved
	return types.ReportPatch{Status: &s}
}

func mission(m types.MissionStatus) types.ReportPatch {
	return types.ReportPatch{MissionStatus: &m}
}

func TestSubmit_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire", Location: "A"})
	require.NoError(t, err)
	second, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Flood", Location: "B"})
	require.NoError(t, err)

	assert.Equal(t, types.ReportStatusPending, second.Status)
	assert.NotEmpty(t, second.ID)

	list := f.reports.List(ctx, types.ReportFilter{})
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestSubmit_UniqueIDs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.reports.Submit(ctx, types.ReportSubmission{Type: fmt.Sprintf("t%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, r := range f.reports.List(ctx, types.ReportFilter{}) {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, seen, 30)
}

func TestSubmit_RegeneratesCollidingID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ids := []string{"same", "same", "other"}
	f.reports.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	_, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
	require.NoError(t, err)
	r, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
	require.NoError(t, err)
	assert.Equal(t, "other", r.ID)
}

func TestTransition_NotFoundLeavesDocumentUnchanged(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
	require.NoError(t, err)

	before, err := os.ReadFile(f.path)
	require.NoError(t, err)

	_, err = f.reports.Transition(ctx, "unknown-id", approved())
	assert.ErrorIs(t, err, types.ErrReportNotFound)

	after, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTransition_NoopDoesNotRewrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
	require.NoError(t, err)

	first, err := f.reports.Transition(ctx, r.ID, approved())
	require.NoError(t, err)
	rev := f.store.Load(ctx).Revision

	again, err := f.reports.Transition(ctx, r.ID, approved())
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, rev, f.store.Load(ctx).Revision)
}

func TestTransition_InvalidLeavesReportUntouched(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
	require.NoError(t, err)

	_, err = f.reports.Transition(ctx, r.ID, mission(types.MissionStatusCompleted))
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	got, err := f.reports.Report(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MissionStatusNone, got.MissionStatus)
}

func TestTransition_FullLifecycleAndViews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ids := make([]string, 5)
	for i := range ids {
		r, err := f.reports.Submit(ctx, types.ReportSubmission{Type: "Fire"})
		require.NoError(t, err)
		ids[i] = r.ID
	}

	rejected := types.ReportStatusRejected
	_, err := f.reports.Transition(ctx, ids[1], types.ReportPatch{Status: &rejected})
	require.NoError(t, err)

	for _, id := range ids[2:] {
		_, err := f.reports.Transition(ctx, id, approved())
		require.NoError(t, err)
	}
	_, err = f.reports.Transition(ctx, ids[3], mission(types.MissionStatusActive))
	require.NoError(t, err)
	_, err = f.reports.Transition(ctx, ids[4], mission(types.MissionStatusActive))
	require.NoError(t, err)
	_, err = f.reports.Transition(ctx, ids[4], mission(types.MissionStatusCompleted))
	require.NoError(t, err)

	v := f.reports.Views(ctx)
	assert.Equal(t, 5, v.Total)
	assert.Len(t, v.Pending, 1)
	assert.Len(t, v.Rejected, 1)
	assert.Len(t, v.Approved, 1)
	assert.Len(t, v.Active, 1)
	assert.Len(t, v.Completed, 1)
	assert.Equal(t, ids[4], v.Completed[0].ID)

	active := types.MissionStatusActive
	list := f.reports.List(ctx, types.ReportFilter{MissionStatus: active})
	require.Len(t, list, 1)
	assert.Equal(t, ids[3], list[0].ID)
}

func TestContacts_AppendOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.contacts.Create(ctx, types.ContactInput{Name: "Ama", Phone: "111", Relation: "Sister"})
	require.NoError(t, err)
	b, err := f.contacts.Create(ctx, types.ContactInput{Name: "Kofi", Phone: "222"})
	require.NoError(t, err)

	assert.False(t, a.IsEmergency)
	assert.NotEqual(t, a.ID, b.ID)

	list := f.contacts.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestContacts_RegeneratesCollidingID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ids := []string{"a", "b", "b", "a", "c"}
	f.contacts.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	_, err := f.contacts.Create(ctx, types.ContactInput{Name: "Ama", Phone: "111"})
	require.NoError(t, err)
	_, err = f.contacts.Create(ctx, types.ContactInput{Name: "Kofi", Phone: "222"})
	require.NoError(t, err)

	c, err := f.contacts.Create(ctx, types.ContactInput{Name: "Esi", Phone: "333"})
	require.NoError(t, err)
	assert.Equal(t, "c", c.ID)

	list := f.contacts.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
}
