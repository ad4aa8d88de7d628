package flow

import "github.com/mmdyrbwtat-lang/cloud-bot/catalog"

// Action is the closed set of inbound user actions. The transport decodes
// raw updates (messages, commands, callback data) into exactly one variant
// before calling the machine; the core never pattern-matches on raw strings.
type Action interface {
	isAction()
}

// MediaReceived carries one inbound media item. Pointer is the opaque
// transport identifier used to re-deliver the original bytes later.
type MediaReceived struct {
	Kind        catalog.FileKind
	Pointer     string
	DisplayName string
}

// TextReceived carries a plain text message, including slash commands.
type TextReceived struct {
	Text string
}

// ButtonPressed carries a decoded inline-button press. Payload is set only
// for tags that reference a category by name.
type ButtonPressed struct {
	Tag     ButtonTag
	Payload string
}

func (MediaReceived) isAction() {}
func (TextReceived) isAction()  {}
func (ButtonPressed) isAction() {}

// ButtonTag enumerates every inline button the bot renders.
type ButtonTag string

const (
	// TagMenu returns to the main menu.
	TagMenu ButtonTag = "menu"
	// TagHelp shows the help screen.
	TagHelp ButtonTag = "help"
	// TagCategories opens the pick-or-create category screen.
	TagCategories ButtonTag = "categories"
	// TagBrowseList opens the browse screen listing categories with counts.
	TagBrowseList ButtonTag = "browse_list"
	// TagDeleteList opens the delete-category screen.
	TagDeleteList ButtonTag = "delete_list"
	// TagPickCategory selects an existing category as the upload target.
	// Payload: category name.
	TagPickCategory ButtonTag = "cat_pick"
	// TagCreateNew asks for a new category name.
	TagCreateNew ButtonTag = "cat_new"
	// TagBrowseCategory opens page 0 of a category. Payload: category name.
	TagBrowseCategory ButtonTag = "cat_browse"
	// TagPrevPage and TagNextPage navigate the current browse cursor.
	TagPrevPage ButtonTag = "page_prev"
	TagNextPage ButtonTag = "page_next"
	// TagAddFiles switches from browsing to uploading into the cursor's
	// category.
	TagAddFiles ButtonTag = "add_files"
	// TagDone finishes the current upload batch.
	TagDone ButtonTag = "done"
	// TagDeleteCategory asks for confirmation before deleting.
	// Payload: category name.
	TagDeleteCategory ButtonTag = "cat_delete"
	// TagConfirmDelete and TagCancelDelete resolve a pending delete.
	TagConfirmDelete ButtonTag = "delete_confirm"
	TagCancelDelete  ButtonTag = "delete_cancel"
	// TagNoop is rendered for inert buttons such as the page indicator.
	TagNoop ButtonTag = "noop"
)
