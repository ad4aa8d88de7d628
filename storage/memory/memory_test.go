package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
)

func seedCategory(t *testing.T, a *Adapter, userID int64, name string, at time.Time) catalog.Category {
	t.Helper()
	cat := catalog.Category{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: at}
	created, err := a.UpsertCategory(context.Background(), cat)
	require.NoError(t, err)
	require.True(t, created)
	return cat
}

func TestUpsertReportsExisting(t *testing.T) {
	a := New()
	cat := seedCategory(t, a, 1, "Docs", time.Now())

	created, err := a.UpsertCategory(context.Background(), catalog.Category{
		ID: uuid.New(), UserID: 1, Name: "Docs", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, created)

	// Losing the race keeps the original identity.
	found, err := a.FindCategory(context.Background(), 1, "Docs")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, found.ID)
}

func TestAppendRacingDeleteNeverOrphans(t *testing.T) {
	a := New()
	seedCategory(t, a, 1, "Docs", time.Now())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 64; i++ {
			_, err := a.AppendFileRef(ctx, 1, "Docs", catalog.FileDraft{Kind: catalog.KindPhoto, Pointer: "p"})
			errs <- err
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = a.DeleteCategory(ctx, 1, "Docs")
	}()
	wg.Wait()
	close(errs)

	// Every append either landed before the delete or failed with not-found;
	// in neither case does the category reappear.
	for err := range errs {
		if err != nil {
			var notFound *catalog.CategoryNotFoundError
			require.ErrorAs(t, err, &notFound)
		}
	}
	_, err := a.FindCategory(ctx, 1, "Docs")
	var notFound *catalog.CategoryNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListFileRefsReturnsCopy(t *testing.T) {
	a := New()
	seedCategory(t, a, 1, "Docs", time.Now())
	ctx := context.Background()

	_, err := a.AppendFileRef(ctx, 1, "Docs", catalog.FileDraft{Kind: catalog.KindPhoto, Pointer: "p0"})
	require.NoError(t, err)

	refs, err := a.ListFileRefs(ctx, 1, "Docs")
	require.NoError(t, err)
	refs[0].Pointer = "tampered"

	again, err := a.ListFileRefs(ctx, 1, "Docs")
	require.NoError(t, err)
	assert.Equal(t, "p0", again[0].Pointer)
}

func TestListCategoriesOrderedByCreation(t *testing.T) {
	a := New()
	base := time.Now()
	seedCategory(t, a, 1, "Zeta", base)
	seedCategory(t, a, 1, "Alpha", base.Add(time.Second))
	seedCategory(t, a, 1, "Beta", base.Add(time.Second))

	infos, err := a.ListCategories(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "Zeta", infos[0].Name)
	assert.Equal(t, "Alpha", infos[1].Name)
	assert.Equal(t, "Beta", infos[2].Name)
}

func TestCancelledContextRejected(t *testing.T) {
	a := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ListCategories(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
