package catalog

import "context"

// Adapter is the narrow persistence contract the store depends on. All
// operations are keyed by (user id, category name) with the name treated as
// an opaque unique string per user. Implementations must support concurrent
// calls from independent users without cross-user interference, and
// AppendFileRef must re-validate category existence at write time: an append
// racing a delete either completes before the delete is observed or fails
// with CategoryNotFoundError, never leaving an orphaned file reference.
type Adapter interface {
	// FindCategory returns the category or a CategoryNotFoundError.
	FindCategory(ctx context.Context, userID int64, name string) (Category, error)

	// UpsertCategory creates the category if it does not exist and reports
	// whether it was created.
	UpsertCategory(ctx context.Context, cat Category) (created bool, err error)

	// DeleteCategory removes the category and every file reference it owns.
	// It reports whether a category was found.
	DeleteCategory(ctx context.Context, userID int64, name string) (bool, error)

	// AppendFileRef assigns the next sequence index for the category and
	// persists the draft, returning the stored reference.
	AppendFileRef(ctx context.Context, userID int64, name string, draft FileDraft) (FileRef, error)

	// ListFileRefs returns the category's references ordered by sequence index.
	ListFileRefs(ctx context.Context, userID int64, name string) ([]FileRef, error)

	// ListCategories returns the user's categories ordered by creation time,
	// each with its current file count.
	ListCategories(ctx context.Context, userID int64) ([]CategoryInfo, error)
}
