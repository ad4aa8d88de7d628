package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmdyrbwtat-lang/cloud-bot/core/logger"
)

// MaxNameLen bounds category names after trimming.
const MaxNameLen = 64

const defaultOpTimeout = 5 * time.Second

// Store enforces the category/file invariants on top of a persistence
// adapter: unique case-sensitive names per user, monotonic sequence indices,
// cascading deletes, read-through pagination. Every adapter call carries a
// bounded timeout; a deadline overrun surfaces as a TimeoutError and the
// mutation is treated as not-happened.
type Store struct {
	adapter Adapter
	timeout time.Duration
	now     func() time.Time
}

// StoreOption customises Store construction.
type StoreOption func(*Store)

// WithTimeout overrides the per-operation persistence deadline.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore wraps the given adapter.
func NewStore(adapter Adapter, opts ...StoreOption) *Store {
	s := &Store{
		adapter: adapter,
		timeout: defaultOpTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateName trims the raw name and checks the length bounds.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &InvalidNameError{Name: raw, Reason: "empty after trimming"}
	}
	if len(name) > MaxNameLen {
		return "", &InvalidNameError{Name: name, Reason: "exceeds maximum length"}
	}
	return name, nil
}

// EnsureCategory returns the existing category for (user, name) or creates
// one. The call is idempotent: ensuring the same name twice yields the same
// category identity. With strict set, an existing category surfaces as a
// DuplicateCategoryError instead.
func (s *Store) EnsureCategory(ctx context.Context, userID int64, rawName string, strict bool) (Category, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return Category{}, err
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	existing, err := s.adapter.FindCategory(opCtx, userID, name)
	switch {
	case err == nil:
		if strict {
			return Category{}, &DuplicateCategoryError{UserID: userID, Name: name}
		}
		return existing, nil
	case isNotFound(err):
		// fall through to create
	default:
		return Category{}, s.wrapOpErr("ensure_category", err)
	}

	cat := Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	created, err := s.adapter.UpsertCategory(opCtx, cat)
	if err != nil {
		return Category{}, s.wrapOpErr("ensure_category", err)
	}
	if !created {
		// Lost a create race with another session; re-read the winner.
		existing, err = s.adapter.FindCategory(opCtx, userID, name)
		if err != nil {
			return Category{}, s.wrapOpErr("ensure_category", err)
		}
		if strict {
			return Category{}, &DuplicateCategoryError{UserID: userID, Name: name}
		}
		return existing, nil
	}

	logger.Info(ctx, "catalog", "category.created",
		slog.Int64("user_id", userID),
		slog.String("category", name),
	)
	return cat, nil
}

// ListCategories returns the user's categories in creation order with file
// counts. A fresh call re-reads persisted state.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]CategoryInfo, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	infos, err := s.adapter.ListCategories(opCtx, userID)
	if err != nil {
		return nil, s.wrapOpErr("list_categories", err)
	}
	return infos, nil
}

// DeleteCategory removes the category and cascades deletion of its file
// references. It reports whether a category was found. This is the only
// destructive operation; adapters guarantee atomicity against concurrent
// appends for the same (user, category).
func (s *Store) DeleteCategory(ctx context.Context, userID int64, rawName string) (bool, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return false, err
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	found, err := s.adapter.DeleteCategory(opCtx, userID, name)
	if err != nil {
		return false, s.wrapOpErr("delete_category", err)
	}
	if found {
		logger.Info(ctx, "catalog", "category.deleted",
			slog.Int64("user_id", userID),
			slog.String("category", name),
		)
	}
	return found, nil
}

// AppendFile persists the draft under the category, assigning the next
// sequence index. It fails with CategoryNotFoundError if the category was
// deleted concurrently; the adapter re-validates existence at write time.
func (s *Store) AppendFile(ctx context.Context, userID int64, rawName string, draft FileDraft) (FileRef, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return FileRef{}, err
	}
	if !draft.Kind.Valid() {
		draft.Kind = KindDocument
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	ref, err := s.adapter.AppendFileRef(opCtx, userID, name, draft)
	if err != nil {
		return FileRef{}, s.wrapOpErr("append_file", err)
	}

	logger.Debug(ctx, "catalog", "file.appended",
		slog.Int64("user_id", userID),
		slog.String("category", name),
		slog.Int64("seq", ref.Seq),
		slog.String("kind", string(ref.Kind)),
	)
	return ref, nil
}

// GetPage returns one zero-based page of the category's files together with
// the total count and navigation flags. An out-of-range index clamps to the
// nearest valid page. Totals are read through on every call.
func (s *Store) GetPage(ctx context.Context, userID int64, rawName string, pageIndex, pageSize int) (Page, error) {
	name, err := ValidateName(rawName)
	if err != nil {
		return Page{}, err
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	refs, err := s.adapter.ListFileRefs(opCtx, userID, name)
	if err != nil {
		return Page{}, s.wrapOpErr("get_page", err)
	}
	return BuildPage(refs, pageIndex, pageSize), nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) wrapOpErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return err
}

func isNotFound(err error) bool {
	var nf *CategoryNotFoundError
	return errors.As(err, &nf)
}
