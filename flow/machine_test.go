package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/storage/memory"
)

const testUser int64 = 1001

func newTestMachine(t *testing.T) (*Machine, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(memory.New())
	return NewMachine(store, NewSessions()), store
}

func press(m *Machine, tag ButtonTag, payload string) Response {
	return m.HandleAction(context.Background(), testUser, ButtonPressed{Tag: tag, Payload: payload})
}

func send(m *Machine, text string) Response {
	return m.HandleAction(context.Background(), testUser, TextReceived{Text: text})
}

func sendMedia(m *Machine, pointer string) Response {
	return m.HandleAction(context.Background(), testUser, MediaReceived{
		Kind:    catalog.KindDocument,
		Pointer: pointer,
	})
}

func TestStartResetsAnyState(t *testing.T) {
	m, _ := newTestMachine(t)

	sendMedia(m, "msg-1")
	require.Equal(t, StateAwaitingCategoryChoice, m.Sessions().State(testUser))

	resp := send(m, "/start")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.NotEmpty(t, resp.Text)
	assert.NotEmpty(t, resp.Keyboard)
}

func TestMediaWhileIdleBuffersDraft(t *testing.T) {
	m, _ := newTestMachine(t)

	resp := sendMedia(m, "msg-1")
	require.Equal(t, StateAwaitingCategoryChoice, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "Where should I file this?")

	// The draft survives until a category is chosen.
	resp = press(m, TagCreateNew, "")
	require.Equal(t, StateAwaitingNewCategoryName, m.Sessions().State(testUser))
	assert.NotEmpty(t, resp.Text)

	resp = send(m, "Receipts")
	require.Equal(t, StateUploading, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "1 file(s) saved")
}

func TestUploadBatchFlow(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)

	press(m, TagPickCategory, "Docs")
	require.Equal(t, StateUploading, m.Sessions().State(testUser))

	resp := sendMedia(m, "msg-1")
	assert.Contains(t, resp.Text, "1 file(s) saved")
	assert.True(t, resp.EditInPlace)

	resp = sendMedia(m, "msg-2")
	assert.Contains(t, resp.Text, "2 file(s) saved")

	resp = send(m, "/done")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "2 file(s) stored")

	page, err := store.GetPage(ctx, testUser, "Docs", 0, catalog.PageSize)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestInvalidCategoryNameReprompts(t *testing.T) {
	m, _ := newTestMachine(t)

	sendMedia(m, "msg-1")
	press(m, TagCreateNew, "")

	resp := send(m, "   ")
	assert.Equal(t, StateAwaitingNewCategoryName, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "name")

	// The buffered draft is still flushed once a valid name arrives.
	resp = send(m, "Photos")
	assert.Equal(t, StateUploading, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "1 file(s) saved")
}

func TestBrowsePagination(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := store.AppendFile(ctx, testUser, "Docs", catalog.FileDraft{
			Kind:    catalog.KindDocument,
			Pointer: "msg",
		})
		require.NoError(t, err)
	}

	resp := press(m, TagBrowseCategory, "Docs")
	require.Equal(t, StateBrowsing, m.Sessions().State(testUser))
	require.Len(t, resp.Deliveries, 10)
	assert.Equal(t, "File #1 of 25", resp.Deliveries[0].Caption)
	assert.Equal(t, "File #10 of 25", resp.Deliveries[9].Caption)

	resp = press(m, TagNextPage, "")
	require.Len(t, resp.Deliveries, 10)
	assert.Equal(t, "File #11 of 25", resp.Deliveries[0].Caption)

	resp = press(m, TagNextPage, "")
	require.Len(t, resp.Deliveries, 5)
	assert.Equal(t, "File #25 of 25", resp.Deliveries[4].Caption)

	// Past the last page: clamped, not an error.
	resp = press(m, TagNextPage, "")
	require.Len(t, resp.Deliveries, 5)
	assert.Contains(t, resp.Text, "page 3 of 3")

	resp = press(m, TagPrevPage, "")
	assert.Contains(t, resp.Text, "page 2 of 3")
}

func TestBrowseEmptyCategory(t *testing.T) {
	m, store := newTestMachine(t)

	_, err := store.EnsureCategory(context.Background(), testUser, "Empty", false)
	require.NoError(t, err)

	resp := press(m, TagBrowseCategory, "Empty")
	assert.Empty(t, resp.Deliveries)
	assert.Contains(t, resp.Text, "empty")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)

	send(m, "/delete")
	require.Equal(t, StateAwaitingDeleteConfirmation, m.Sessions().State(testUser))

	resp := press(m, TagDeleteCategory, "Docs")
	assert.Contains(t, resp.Text, "Delete")
	require.Equal(t, StateAwaitingDeleteConfirmation, m.Sessions().State(testUser))

	// Cancel keeps the category.
	press(m, TagCancelDelete, "")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	_, err = store.GetPage(ctx, testUser, "Docs", 0, catalog.PageSize)
	require.NoError(t, err)

	// Confirm removes it.
	send(m, "/delete")
	press(m, TagDeleteCategory, "Docs")
	resp = press(m, TagConfirmDelete, "")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "gone")

	_, err = store.GetPage(ctx, testUser, "Docs", 0, catalog.PageSize)
	var notFound *catalog.CategoryNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUploadToDeletedCategoryResets(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)
	press(m, TagPickCategory, "Docs")
	require.Equal(t, StateUploading, m.Sessions().State(testUser))

	// Category vanishes out from under the session.
	_, err = store.DeleteCategory(ctx, testUser, "Docs")
	require.NoError(t, err)

	resp := sendMedia(m, "msg-1")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "no longer exists")
}

// slowAdapter blocks every call until its context expires.
type slowAdapter struct {
	*memory.Adapter
}

func (s slowAdapter) AppendFileRef(ctx context.Context, userID int64, name string, draft catalog.FileDraft) (catalog.FileRef, error) {
	<-ctx.Done()
	return catalog.FileRef{}, ctx.Err()
}

func TestTimeoutPreservesSessionState(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	store := catalog.NewStore(slowAdapter{mem}, catalog.WithTimeout(10*time.Millisecond))
	m := NewMachine(store, NewSessions())

	_, err := catalog.NewStore(mem).EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)

	press(m, TagPickCategory, "Docs")
	require.Equal(t, StateUploading, m.Sessions().State(testUser))

	resp := sendMedia(m, "msg-1")
	assert.Contains(t, resp.Text, "try again")

	// Still uploading to the same category, pending count untouched.
	assert.Equal(t, StateUploading, m.Sessions().State(testUser))
	sess := m.Sessions().Snapshot(testUser)
	assert.Equal(t, "Docs", sess.ActiveCategory)
	assert.Equal(t, 0, sess.PendingCount)
}

func TestSessionsIsolatedPerUser(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)
	press(m, TagPickCategory, "Docs")

	other := testUser + 1
	m.HandleAction(ctx, other, TextReceived{Text: "/files"})

	assert.Equal(t, StateUploading, m.Sessions().State(testUser))
	assert.Equal(t, StateBrowsing, m.Sessions().State(other))
}

func TestUnknownTextFallsBackToMenu(t *testing.T) {
	m, _ := newTestMachine(t)

	resp := send(m, "hello there")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.NotEmpty(t, resp.Keyboard)
}

func TestHelpKeepsState(t *testing.T) {
	m, store := newTestMachine(t)

	_, err := store.EnsureCategory(context.Background(), testUser, "Docs", false)
	require.NoError(t, err)
	press(m, TagPickCategory, "Docs")

	send(m, "/help")
	assert.Equal(t, StateUploading, m.Sessions().State(testUser))
}

func TestAddFilesFromBrowsing(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)
	_, err = store.AppendFile(ctx, testUser, "Docs", catalog.FileDraft{Kind: catalog.KindPhoto, Pointer: "p"})
	require.NoError(t, err)

	press(m, TagBrowseCategory, "Docs")
	resp := press(m, TagAddFiles, "Docs")
	require.Equal(t, StateUploading, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "Uploading to")

	sendMedia(m, "msg-9")
	page, err := store.GetPage(ctx, testUser, "Docs", 0, catalog.PageSize)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestConfirmDeleteWithoutTarget(t *testing.T) {
	m, _ := newTestMachine(t)

	resp := press(m, TagConfirmDelete, "")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.NotEmpty(t, resp.Keyboard)
}

func TestMediaKindValidation(t *testing.T) {
	m, store := newTestMachine(t)
	ctx := context.Background()

	_, err := store.EnsureCategory(ctx, testUser, "Docs", false)
	require.NoError(t, err)
	press(m, TagPickCategory, "Docs")

	// An unknown kind is stored as a document rather than rejected.
	m.HandleAction(ctx, testUser, MediaReceived{Kind: catalog.FileKind("sticker"), Pointer: "p"})
	refs, err := store.GetPage(ctx, testUser, "Docs", 0, catalog.PageSize)
	require.NoError(t, err)
	require.Len(t, refs.Files, 1)
	assert.Equal(t, catalog.KindDocument, refs.Files[0].Kind)
}

func TestStoreErrorResetsToIdle(t *testing.T) {
	store := catalog.NewStore(failingAdapter{})
	m := NewMachine(store, NewSessions())

	resp := send(m, "/files")
	assert.Equal(t, StateIdle, m.Sessions().State(testUser))
	assert.Contains(t, resp.Text, "Something went wrong")
}

// failingAdapter fails every operation with an opaque backend error.
type failingAdapter struct{}

var errBackend = errors.New("backend unavailable")

func (failingAdapter) FindCategory(context.Context, int64, string) (catalog.Category, error) {
	return catalog.Category{}, errBackend
}

func (failingAdapter) UpsertCategory(context.Context, catalog.Category) (bool, error) {
	return false, errBackend
}

func (failingAdapter) DeleteCategory(context.Context, int64, string) (bool, error) {
	return false, errBackend
}

func (failingAdapter) AppendFileRef(context.Context, int64, string, catalog.FileDraft) (catalog.FileRef, error) {
	return catalog.FileRef{}, errBackend
}

func (failingAdapter) ListFileRefs(context.Context, int64, string) ([]catalog.FileRef, error) {
	return nil, errBackend
}

func (failingAdapter) ListCategories(context.Context, int64) ([]catalog.CategoryInfo, error) {
	return nil, errBackend
}
