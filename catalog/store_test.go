package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/storage/memory"
)

const userID int64 = 42

func newStore(t *testing.T, opts ...catalog.StoreOption) *catalog.Store {
	t.Helper()
	return catalog.NewStore(memory.New(), opts...)
}

func TestEnsureCategoryIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.EnsureCategory(ctx, userID, "Receipts", false)
	require.NoError(t, err)

	second, err := store.EnsureCategory(ctx, userID, "Receipts", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	infos, err := store.ListCategories(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestEnsureCategoryStrictRejectsDuplicate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Receipts", false)
	require.NoError(t, err)

	_, err = store.EnsureCategory(ctx, userID, "Receipts", true)
	var dup *catalog.DuplicateCategoryError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "DUPLICATE_CATEGORY", dup.Code())
}

func TestEnsureCategoryTrimsName(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cat, err := store.EnsureCategory(ctx, userID, "  Receipts  ", false)
	require.NoError(t, err)
	assert.Equal(t, "Receipts", cat.Name)

	same, err := store.EnsureCategory(ctx, userID, "Receipts", false)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, same.ID)
}

func TestCategoryNamesAreCaseSensitive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	lower, err := store.EnsureCategory(ctx, userID, "photos", false)
	require.NoError(t, err)
	upper, err := store.EnsureCategory(ctx, userID, "Photos", false)
	require.NoError(t, err)
	assert.NotEqual(t, lower.ID, upper.ID)
}

func TestInvalidNames(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", strings.Repeat("x", catalog.MaxNameLen+1)} {
		_, err := store.EnsureCategory(ctx, userID, raw, false)
		var invalid *catalog.InvalidNameError
		require.ErrorAs(t, err, &invalid, "name %q", raw)
		assert.Equal(t, "INVALID_NAME", invalid.Code())
	}
}

func TestCategoriesAreIsolatedPerUser(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)

	infos, err := store.ListCategories(ctx, userID+1)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Same name for another user is a distinct category.
	_, err = store.EnsureCategory(ctx, userID+1, "Docs", false)
	require.NoError(t, err)
}

func TestAppendAssignsSequentialIndices(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ref, err := store.AppendFile(ctx, userID, "Docs", catalog.FileDraft{
			Kind:    catalog.KindPhoto,
			Pointer: "p",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), ref.Seq)
	}
}

func TestSequenceSurvivesDeleteRecreate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)
	_, err = store.AppendFile(ctx, userID, "Docs", catalog.FileDraft{Kind: catalog.KindPhoto, Pointer: "p"})
	require.NoError(t, err)

	found, err := store.DeleteCategory(ctx, userID, "Docs")
	require.NoError(t, err)
	require.True(t, found)

	// A recreated category starts a fresh sequence.
	_, err = store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)
	ref, err := store.AppendFile(ctx, userID, "Docs", catalog.FileDraft{Kind: catalog.KindPhoto, Pointer: "p"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), ref.Seq)
}

func TestAppendToMissingCategory(t *testing.T) {
	store := newStore(t)

	_, err := store.AppendFile(context.Background(), userID, "Nope", catalog.FileDraft{
		Kind:    catalog.KindPhoto,
		Pointer: "p",
	})
	var notFound *catalog.CategoryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "CATEGORY_NOT_FOUND", notFound.Code())
}

func TestDeleteCascadesFiles(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := store.AppendFile(ctx, userID, "Docs", catalog.FileDraft{Kind: catalog.KindVideo, Pointer: "p"})
		require.NoError(t, err)
	}

	found, err := store.DeleteCategory(ctx, userID, "Docs")
	require.NoError(t, err)
	assert.True(t, found)

	_, err = store.GetPage(ctx, userID, "Docs", 0, catalog.PageSize)
	var notFound *catalog.CategoryNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteMissingCategoryReportsNotFound(t *testing.T) {
	store := newStore(t)

	found, err := store.DeleteCategory(context.Background(), userID, "Nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetPageClampsIndex(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "Docs", false)
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err := store.AppendFile(ctx, userID, "Docs", catalog.FileDraft{Kind: catalog.KindDocument, Pointer: "p"})
		require.NoError(t, err)
	}

	page, err := store.GetPage(ctx, userID, "Docs", 50, catalog.PageSize)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Index)
	assert.Len(t, page.Files, 2)
	assert.Equal(t, 12, page.TotalCount)
}

func TestListCategoriesCountsFiles(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, userID, "A", false)
	require.NoError(t, err)
	_, err = store.EnsureCategory(ctx, userID, "B", false)
	require.NoError(t, err)
	_, err = store.AppendFile(ctx, userID, "B", catalog.FileDraft{Kind: catalog.KindAudio, Pointer: "p"})
	require.NoError(t, err)

	infos, err := store.ListCategories(ctx, userID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	counts := map[string]int{}
	for _, info := range infos {
		// Category fields are promoted on the info value.
		assert.Equal(t, userID, info.UserID)
		assert.NotEqual(t, uuid.Nil, info.ID)
		counts[info.Name] = info.FileCount
	}
	assert.Equal(t, 0, counts["A"])
	assert.Equal(t, 1, counts["B"])
}

// stalledAdapter never answers; only the context deadline ends a call.
type stalledAdapter struct {
	memory.Adapter
}

func (s *stalledAdapter) FindCategory(ctx context.Context, userID int64, name string) (catalog.Category, error) {
	<-ctx.Done()
	return catalog.Category{}, ctx.Err()
}

func TestTimeoutSurfacesAsTimeoutError(t *testing.T) {
	store := catalog.NewStore(&stalledAdapter{}, catalog.WithTimeout(10*time.Millisecond))

	_, err := store.EnsureCategory(context.Background(), userID, "Docs", false)
	var timeout *catalog.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "PERSISTENCE_TIMEOUT", timeout.Code())
	assert.Equal(t, "ensure_category", timeout.Op)
}
