package flow

import "github.com/mmdyrbwtat-lang/cloud-bot/catalog"

// State identifies what the bot expects from the user next.
type State string

const (
	// StateIdle is the initial and terminal state: no pending operation.
	StateIdle State = "idle"
	// StateAwaitingCategoryChoice means a buffered upload is waiting for the
	// user to pick or create a category.
	StateAwaitingCategoryChoice State = "awaiting_category_choice"
	// StateAwaitingNewCategoryName means the next text message names a new
	// category.
	StateAwaitingNewCategoryName State = "awaiting_new_category_name"
	// StateUploading means an active category is set and every inbound media
	// item is appended immediately.
	StateUploading State = "uploading"
	// StateBrowsing means a pagination cursor may be set; non-navigation
	// input is reinterpreted as a new command.
	StateBrowsing State = "browsing"
	// StateAwaitingDeleteConfirmation means a destructive delete is pending
	// explicit confirmation.
	StateAwaitingDeleteConfirmation State = "awaiting_delete_confirmation"
)

// Cursor tracks the browse position: which category and which zero-based page.
type Cursor struct {
	Category string
	Page     int
}

// Session is the per-user conversation state. It is ephemeral: created on
// first interaction, reset on /start or any terminal transition, never
// persisted across restarts.
type Session struct {
	State          State
	ActiveCategory string
	PendingCount   int
	PendingDraft   *catalog.FileDraft
	Cursor         *Cursor
	DeleteTarget   string
}

// Reset returns the session to the initial idle state, dropping all
// transient data.
func (s *Session) Reset() {
	*s = Session{State: StateIdle}
}
