package catalog

import "fmt"

// InvalidNameError reports a category name that is empty after trimming or
// longer than MaxNameLen. User-correctable: the flow re-prompts.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid category name %q: %s", e.Name, e.Reason)
}

// Code identifies the error class in handler summary logs.
func (e *InvalidNameError) Code() string { return "INVALID_NAME" }

// CategoryNotFoundError reports a stale category reference, typically an
// append racing a delete from another client session.
type CategoryNotFoundError struct {
	UserID int64
	Name   string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %q not found for user %d", e.Name, e.UserID)
}

func (e *CategoryNotFoundError) Code() string { return "CATEGORY_NOT_FOUND" }

// DuplicateCategoryError is surfaced only by strict-create ensure calls;
// the idempotent path merges silently.
type DuplicateCategoryError struct {
	UserID int64
	Name   string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("category %q already exists for user %d", e.Name, e.UserID)
}

func (e *DuplicateCategoryError) Code() string { return "DUPLICATE_CATEGORY" }

// TimeoutError wraps a persistence call that exceeded its bounded deadline.
// The mutation is treated as not-happened and the session keeps its
// pre-action state.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("persistence timeout during %s: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Code() string { return "PERSISTENCE_TIMEOUT" }
