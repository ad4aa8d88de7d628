// Package memory implements the catalog persistence contract in process
// memory. It backs the "memory" storage backend for local development and is
// the adapter the domain tests run against.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
)

type record struct {
	cat     catalog.Category
	nextSeq int64
	files   []catalog.FileRef
}

// Adapter keeps each user's categories under a single lock, which gives the
// same append-vs-delete atomicity the durable backends provide.
type Adapter struct {
	mu    sync.RWMutex
	users map[int64]map[string]*record
}

// New returns an empty in-memory adapter.
func New() *Adapter {
	return &Adapter{users: make(map[int64]map[string]*record)}
}

// FindCategory implements catalog.Adapter.
func (a *Adapter) FindCategory(ctx context.Context, userID int64, name string) (catalog.Category, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Category{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if rec, ok := a.users[userID][name]; ok {
		return rec.cat, nil
	}
	return catalog.Category{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
}

// UpsertCategory implements catalog.Adapter.
func (a *Adapter) UpsertCategory(ctx context.Context, cat catalog.Category) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cats, ok := a.users[cat.UserID]
	if !ok {
		cats = make(map[string]*record)
		a.users[cat.UserID] = cats
	}
	if _, exists := cats[cat.Name]; exists {
		return false, nil
	}
	cats[cat.Name] = &record{cat: cat}
	return true, nil
}

// DeleteCategory implements catalog.Adapter. Removing the record drops its
// file references with it.
func (a *Adapter) DeleteCategory(ctx context.Context, userID int64, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cats := a.users[userID]
	if _, ok := cats[name]; !ok {
		return false, nil
	}
	delete(cats, name)
	return true, nil
}

// AppendFileRef implements catalog.Adapter. Existence is re-checked under the
// write lock, so an append racing a delete fails cleanly instead of
// recreating the category.
func (a *Adapter) AppendFileRef(ctx context.Context, userID int64, name string, draft catalog.FileDraft) (catalog.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return catalog.FileRef{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.users[userID][name]
	if !ok {
		return catalog.FileRef{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}

	ref := catalog.FileRef{
		Seq:         rec.nextSeq,
		Kind:        draft.Kind,
		Pointer:     draft.Pointer,
		DisplayName: draft.DisplayName,
		AddedAt:     time.Now().UTC(),
	}
	rec.nextSeq++
	rec.files = append(rec.files, ref)
	return ref, nil
}

// ListFileRefs implements catalog.Adapter.
func (a *Adapter) ListFileRefs(ctx context.Context, userID int64, name string) ([]catalog.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.users[userID][name]
	if !ok {
		return nil, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	out := make([]catalog.FileRef, len(rec.files))
	copy(out, rec.files)
	return out, nil
}

// ListCategories implements catalog.Adapter, ordered by creation time.
func (a *Adapter) ListCategories(ctx context.Context, userID int64) ([]catalog.CategoryInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	cats := a.users[userID]
	infos := make([]catalog.CategoryInfo, 0, len(cats))
	for _, rec := range cats {
		infos = append(infos, catalog.CategoryInfo{
			Category:  rec.cat,
			FileCount: len(rec.files),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		x, y := infos[i].Category, infos[j].Category
		if x.CreatedAt.Equal(y.CreatedAt) {
			return x.Name < y.Name
		}
		return x.CreatedAt.Before(y.CreatedAt)
	})
	return infos, nil
}
