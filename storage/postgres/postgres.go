// Package postgres implements the catalog persistence contract on PostgreSQL.
// Categories live in their own table with a unique (user_id, name) key; file
// references cascade-delete with the owning category, so a delete can never
// leave orphans.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
)

// Adapter stores categories and file references in PostgreSQL via sqlx.
type Adapter struct {
	db *sqlx.DB
}

// NewAdapter wraps an established connection pool.
func NewAdapter(db *sqlx.DB) *Adapter {
	return &Adapter{db: db}
}

// FindCategory implements catalog.Adapter.
func (a *Adapter) FindCategory(ctx context.Context, userID int64, name string) (catalog.Category, error) {
	var cat catalog.Category
	err := a.db.GetContext(ctx, &cat,
		`SELECT id, user_id, name, created_at
		   FROM categories
		  WHERE user_id = $1 AND name = $2`,
		userID, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("pg find category: %w", err)
	}
	return cat, nil
}

// UpsertCategory implements catalog.Adapter. ON CONFLICT DO NOTHING keeps the
// call idempotent under create races; created reports whether this call won.
func (a *Adapter) UpsertCategory(ctx context.Context, cat catalog.Category) (bool, error) {
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, created_at, next_seq)
		 VALUES ($1, $2, $3, $4, 0)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		cat.ID, cat.UserID, cat.Name, cat.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("pg upsert category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pg upsert category: %w", err)
	}
	return n > 0, nil
}

// DeleteCategory implements catalog.Adapter. The file_refs FK is declared
// ON DELETE CASCADE, which makes the cascade atomic with the delete.
func (a *Adapter) DeleteCategory(ctx context.Context, userID int64, name string) (bool, error) {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = $1 AND name = $2`,
		userID, name,
	)
	if err != nil {
		return false, fmt.Errorf("pg delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pg delete category: %w", err)
	}
	return n > 0, nil
}

// AppendFileRef implements catalog.Adapter. The sequence bump and the insert
// run as one statement: the CTE updates next_seq only if the category still
// exists, so an append racing a delete returns no row instead of recreating
// anything.
func (a *Adapter) AppendFileRef(ctx context.Context, userID int64, name string, draft catalog.FileDraft) (catalog.FileRef, error) {
	var ref catalog.FileRef
	err := a.db.GetContext(ctx, &ref,
		`WITH bumped AS (
		     UPDATE categories
		        SET next_seq = next_seq + 1
		      WHERE user_id = $1 AND name = $2
		  RETURNING id, next_seq - 1 AS seq
		 )
		 INSERT INTO file_refs (category_id, seq, kind, pointer, display_name, added_at)
		 SELECT bumped.id, bumped.seq, $3, $4, $5, now()
		   FROM bumped
		 RETURNING seq, kind, pointer, display_name, added_at`,
		userID, name, string(draft.Kind), draft.Pointer, draft.DisplayName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.FileRef{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	if err != nil {
		return catalog.FileRef{}, fmt.Errorf("pg append file: %w", err)
	}
	return ref, nil
}

// ListFileRefs implements catalog.Adapter, ordered by the explicit seq field.
func (a *Adapter) ListFileRefs(ctx context.Context, userID int64, name string) ([]catalog.FileRef, error) {
	if _, err := a.FindCategory(ctx, userID, name); err != nil {
		return nil, err
	}

	refs := []catalog.FileRef{}
	err := a.db.SelectContext(ctx, &refs,
		`SELECT f.seq, f.kind, f.pointer, f.display_name, f.added_at
		   FROM file_refs f
		   JOIN categories c ON c.id = f.category_id
		  WHERE c.user_id = $1 AND c.name = $2
		  ORDER BY f.seq`,
		userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("pg list files: %w", err)
	}
	return refs, nil
}

// ListCategories implements catalog.Adapter, ordered by creation time.
func (a *Adapter) ListCategories(ctx context.Context, userID int64) ([]catalog.CategoryInfo, error) {
	rows := []struct {
		catalog.Category
		FileCount int `db:"file_count"`
	}{}
	err := a.db.SelectContext(ctx, &rows,
		`SELECT c.id, c.user_id, c.name, c.created_at,
		        COUNT(f.seq) AS file_count
		   FROM categories c
		   LEFT JOIN file_refs f ON f.category_id = c.id
		  WHERE c.user_id = $1
		  GROUP BY c.id, c.user_id, c.name, c.created_at
		  ORDER BY c.created_at, c.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("pg list categories: %w", err)
	}

	infos := make([]catalog.CategoryInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, catalog.CategoryInfo{Category: row.Category, FileCount: row.FileCount})
	}
	return infos, nil
}
