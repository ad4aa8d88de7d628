package flow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/logger"
)

// Machine is the session state machine: the single entry point the transport
// calls for every inbound action. It resolves the user's current state,
// dispatches to the category store, and produces a response descriptor. All
// store errors are recovered here into a user-visible message plus a reset
// to a safe state; nothing propagates into the transport as a fault, and one
// user's error never touches another user's session.
type Machine struct {
	store    *catalog.Store
	sessions *Sessions
}

// NewMachine wires the machine to its store and session registry.
func NewMachine(store *catalog.Store, sessions *Sessions) *Machine {
	return &Machine{store: store, sessions: sessions}
}

// Sessions exposes the registry for transport-side routing decisions.
func (m *Machine) Sessions() *Sessions {
	return m.sessions
}

// HandleAction processes one inbound action for the user and returns the
// response descriptor the transport should render. The session is read as a
// value and committed back only on the paths that decided a new state, so a
// timed-out persistence call leaves the pre-action state untouched.
func (m *Machine) HandleAction(ctx context.Context, userID int64, action Action) Response {
	sess := m.sessions.Snapshot(userID)
	before := sess.State

	var resp Response
	switch act := action.(type) {
	case MediaReceived:
		resp = m.onMedia(ctx, userID, &sess, act)
	case TextReceived:
		resp = m.onText(ctx, userID, &sess, act)
	case ButtonPressed:
		resp = m.onButton(ctx, userID, &sess, act)
	default:
		sess.Reset()
		resp = m.menuScreen()
	}

	m.sessions.Commit(userID, sess)

	if before != sess.State {
		logger.Debug(ctx, "flow", "state.transition",
			slog.Int64("user_id", userID),
			slog.String("from", string(before)),
			slog.String("to", string(sess.State)),
		)
	}
	return resp
}

// onMedia handles inbound media for every state.
func (m *Machine) onMedia(ctx context.Context, userID int64, sess *Session, act MediaReceived) Response {
	draft := catalog.FileDraft{
		Kind:        act.Kind,
		Pointer:     act.Pointer,
		DisplayName: act.DisplayName,
	}

	if sess.State == StateUploading {
		if _, err := m.store.AppendFile(ctx, userID, sess.ActiveCategory, draft); err != nil {
			return m.recover(ctx, userID, sess, err)
		}
		sess.PendingCount++
		return m.uploadProgressScreen(sess.ActiveCategory, sess.PendingCount)
	}

	// Any other state: buffer the draft and ask where to file it. For
	// browsing this is the "reinterpreted as a new command" path.
	sess.PendingDraft = &draft
	sess.State = StateAwaitingCategoryChoice
	sess.Cursor = nil

	infos, err := m.store.ListCategories(ctx, userID)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	return m.chooseCategoryScreen(infos, true)
}

// onText handles commands and free text.
func (m *Machine) onText(ctx context.Context, userID int64, sess *Session, act TextReceived) Response {
	switch act.Text {
	case "/start":
		// Explicit reset always wins over whatever state was active.
		sess.Reset()
		return m.welcomeScreen()
	case "/menu":
		sess.Reset()
		return m.menuScreen()
	case "/help":
		return m.helpScreen()
	case "/files":
		return m.enterBrowsing(ctx, userID, sess)
	case "/categories":
		return m.enterCategoryChoice(ctx, userID, sess)
	case "/delete":
		return m.enterDelete(ctx, userID, sess)
	case "/done":
		return m.finishBatch(sess)
	}

	if sess.State == StateAwaitingNewCategoryName {
		return m.createCategory(ctx, userID, sess, act.Text)
	}

	// Unrecognized text for the current state falls back to the menu.
	sess.Reset()
	return m.menuScreen()
}

// onButton handles decoded inline-button presses.
func (m *Machine) onButton(ctx context.Context, userID int64, sess *Session, act ButtonPressed) Response {
	switch act.Tag {
	case TagNoop:
		return Response{}
	case TagMenu:
		sess.Reset()
		resp := m.menuScreen()
		resp.EditInPlace = true
		return resp
	case TagHelp:
		resp := m.helpScreen()
		resp.EditInPlace = true
		return resp
	case TagCategories:
		return m.enterCategoryChoice(ctx, userID, sess)
	case TagBrowseList:
		return m.enterBrowsing(ctx, userID, sess)
	case TagDeleteList:
		return m.enterDelete(ctx, userID, sess)
	case TagCreateNew:
		sess.State = StateAwaitingNewCategoryName
		return m.askCategoryNameScreen()
	case TagPickCategory:
		return m.pickCategory(ctx, userID, sess, act.Payload)
	case TagBrowseCategory:
		return m.openPage(ctx, userID, sess, act.Payload, 0)
	case TagPrevPage, TagNextPage:
		return m.turnPage(ctx, userID, sess, act.Tag)
	case TagAddFiles:
		return m.addFiles(sess, act.Payload)
	case TagDone:
		return m.finishBatch(sess)
	case TagDeleteCategory:
		sess.State = StateAwaitingDeleteConfirmation
		sess.DeleteTarget = act.Payload
		return m.confirmDeleteScreen(act.Payload)
	case TagConfirmDelete:
		return m.confirmDelete(ctx, userID, sess)
	case TagCancelDelete:
		sess.Reset()
		resp := m.menuScreen()
		resp.EditInPlace = true
		return resp
	}

	// Unrecognized button for the current state falls back to idle.
	sess.Reset()
	return m.menuScreen()
}

func (m *Machine) enterCategoryChoice(ctx context.Context, userID int64, sess *Session) Response {
	infos, err := m.store.ListCategories(ctx, userID)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	sess.State = StateAwaitingCategoryChoice
	sess.Cursor = nil
	return m.chooseCategoryScreen(infos, sess.PendingDraft != nil)
}

func (m *Machine) enterBrowsing(ctx context.Context, userID int64, sess *Session) Response {
	infos, err := m.store.ListCategories(ctx, userID)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	sess.State = StateBrowsing
	sess.Cursor = nil
	return m.browseListScreen(infos)
}

func (m *Machine) enterDelete(ctx context.Context, userID int64, sess *Session) Response {
	infos, err := m.store.ListCategories(ctx, userID)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	sess.State = StateAwaitingDeleteConfirmation
	sess.DeleteTarget = ""
	return m.deleteListScreen(infos)
}

// pickCategory resolves "pick existing category": the category becomes the
// active upload target and a buffered draft, if any, is flushed.
func (m *Machine) pickCategory(ctx context.Context, userID int64, sess *Session, name string) Response {
	cat, err := m.store.EnsureCategory(ctx, userID, name, false)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	return m.startUploading(ctx, userID, sess, cat.Name)
}

// createCategory resolves the AWAITING_NEW_CATEGORY_NAME text entry.
func (m *Machine) createCategory(ctx context.Context, userID int64, sess *Session, rawName string) Response {
	cat, err := m.store.EnsureCategory(ctx, userID, rawName, false)
	if err != nil {
		var invalid *catalog.InvalidNameError
		if errors.As(err, &invalid) {
			// User-correctable: re-prompt without leaving the state.
			return m.invalidNameScreen()
		}
		return m.recover(ctx, userID, sess, err)
	}
	return m.startUploading(ctx, userID, sess, cat.Name)
}

func (m *Machine) startUploading(ctx context.Context, userID int64, sess *Session, name string) Response {
	flushed := false
	if sess.PendingDraft != nil {
		if _, err := m.store.AppendFile(ctx, userID, name, *sess.PendingDraft); err != nil {
			return m.recover(ctx, userID, sess, err)
		}
		sess.PendingDraft = nil
		sess.PendingCount++
		flushed = true
	}

	sess.State = StateUploading
	sess.ActiveCategory = name
	sess.Cursor = nil

	if flushed {
		return m.uploadProgressScreen(name, sess.PendingCount)
	}
	return m.uploadReadyScreen(name)
}

func (m *Machine) openPage(ctx context.Context, userID int64, sess *Session, name string, index int) Response {
	page, err := m.store.GetPage(ctx, userID, name, index, catalog.PageSize)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	sess.State = StateBrowsing
	sess.Cursor = &Cursor{Category: name, Page: page.Index}
	sess.PendingCount = 0
	sess.ActiveCategory = ""
	return m.pageScreen(name, page)
}

// turnPage moves the cursor one page and re-reads state; totals are never
// cached across navigation steps, so the clamp reported by the store is
// authoritative.
func (m *Machine) turnPage(ctx context.Context, userID int64, sess *Session, tag ButtonTag) Response {
	if sess.State != StateBrowsing || sess.Cursor == nil {
		sess.Reset()
		return m.menuScreen()
	}
	index := sess.Cursor.Page
	if tag == TagNextPage {
		index++
	} else {
		index--
	}
	return m.openPage(ctx, userID, sess, sess.Cursor.Category, index)
}

func (m *Machine) addFiles(sess *Session, payload string) Response {
	name := payload
	if name == "" && sess.Cursor != nil {
		name = sess.Cursor.Category
	}
	if name == "" {
		sess.Reset()
		return m.menuScreen()
	}
	sess.State = StateUploading
	sess.ActiveCategory = name
	sess.PendingCount = 0
	sess.Cursor = nil
	resp := m.uploadReadyScreen(name)
	resp.EditInPlace = true
	return resp
}

func (m *Machine) finishBatch(sess *Session) Response {
	count := sess.PendingCount
	category := sess.ActiveCategory
	sess.Reset()
	resp := m.doneScreen(category, count)
	resp.EditInPlace = true
	return resp
}

func (m *Machine) confirmDelete(ctx context.Context, userID int64, sess *Session) Response {
	target := sess.DeleteTarget
	if target == "" {
		sess.Reset()
		return m.menuScreen()
	}
	found, err := m.store.DeleteCategory(ctx, userID, target)
	if err != nil {
		return m.recover(ctx, userID, sess, err)
	}
	sess.Reset()
	return m.deletedScreen(target, found)
}

// recover converts a store error into a user-visible message and a safe
// state. Timeouts preserve the pre-action state (the snapshot the caller is
// still holding); everything else resets to idle.
func (m *Machine) recover(ctx context.Context, userID int64, sess *Session, err error) Response {
	var timeout *catalog.TimeoutError
	if errors.As(err, &timeout) {
		logger.Warn(ctx, "flow", "action.timeout",
			slog.Int64("user_id", userID),
			slog.String("op", timeout.Op),
		)
		*sess = m.sessions.Snapshot(userID)
		return m.timeoutScreen()
	}

	var notFound *catalog.CategoryNotFoundError
	if errors.As(err, &notFound) {
		logger.Info(ctx, "flow", "action.category_gone",
			slog.Int64("user_id", userID),
			slog.String("category", notFound.Name),
		)
		sess.Reset()
		return m.categoryGoneScreen(notFound.Name)
	}

	logger.Error(ctx, "flow", "action.failed",
		slog.Int64("user_id", userID),
		slog.String("err", err.Error()),
	)
	sess.Reset()
	return m.errorScreen()
}
