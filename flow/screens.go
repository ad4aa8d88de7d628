package flow

import (
	"fmt"
	"strings"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/format"
)

// Screen builders compose the response descriptors for every state. Texts are
// MarkdownV1; user-supplied category names are escaped before interpolation.

func (m *Machine) welcomeScreen() Response {
	return Response{
		Text: "👋 *Welcome to your cloud archive!*\n\n" +
			"Send me any file, photo or video and I will store it for you, " +
			"sorted into categories you define.\n\n" +
			"Use the buttons below or just send a file to get started.",
		Keyboard: m.menuKeyboard(),
	}
}

func (m *Machine) menuScreen() Response {
	return Response{
		Text:     "📂 *Main menu*\n\nWhat would you like to do?",
		Keyboard: m.menuKeyboard(),
	}
}

func (m *Machine) helpScreen() Response {
	return Response{
		Text: "ℹ️ *How this works*\n\n" +
			"• Send any file and pick a category for it\n" +
			"• /files — browse what you stored\n" +
			"• /categories — pick or create a category, then upload\n" +
			"• /delete — remove a category and its files\n" +
			"• /done — finish the current upload batch\n" +
			"• /menu — back to the main menu",
		Keyboard: [][]Button{Row(Button{Label: "⬅️ Menu", Tag: TagMenu})},
	}
}

func (m *Machine) menuKeyboard() [][]Button {
	return [][]Button{
		Row(
			Button{Label: "🗂 My files", Tag: TagBrowseList},
			Button{Label: "📁 Categories", Tag: TagCategories},
		),
		Row(
			Button{Label: "🗑 Delete category", Tag: TagDeleteList},
			Button{Label: "ℹ️ Help", Tag: TagHelp},
		),
	}
}

// chooseCategoryScreen renders the pick-or-create list. pending toggles the
// caption between "where to file the upload" and plain category management.
func (m *Machine) chooseCategoryScreen(infos []catalog.CategoryInfo, pending bool) Response {
	text := "📁 *Pick a category* or create a new one."
	if pending {
		text = "📥 Got it! *Where should I file this?*"
	}

	rows := make([][]Button, 0, len(infos)+2)
	for _, info := range infos {
		rows = append(rows, Row(Button{
			Label:   fmt.Sprintf("%s (%d)", info.Name, info.FileCount),
			Tag:     TagPickCategory,
			Payload: info.Name,
		}))
	}
	rows = append(rows,
		Row(Button{Label: "➕ New category", Tag: TagCreateNew}),
		Row(Button{Label: "⬅️ Menu", Tag: TagMenu}),
	)
	return Response{Text: text, Keyboard: rows}
}

func (m *Machine) browseListScreen(infos []catalog.CategoryInfo) Response {
	if len(infos) == 0 {
		return Response{
			Text: "🗂 You have no categories yet.\n\n" +
				"Send me a file and I will help you create one.",
			Keyboard: [][]Button{Row(Button{Label: "⬅️ Menu", Tag: TagMenu})},
		}
	}

	rows := make([][]Button, 0, len(infos)+1)
	for _, info := range infos {
		rows = append(rows, Row(Button{
			Label:   fmt.Sprintf("%s — %d file(s)", info.Name, info.FileCount),
			Tag:     TagBrowseCategory,
			Payload: info.Name,
		}))
	}
	rows = append(rows, Row(Button{Label: "⬅️ Menu", Tag: TagMenu}))
	return Response{
		Text:     "🗂 *Your categories.* Tap one to view its files.",
		Keyboard: rows,
	}
}

func (m *Machine) deleteListScreen(infos []catalog.CategoryInfo) Response {
	if len(infos) == 0 {
		return Response{
			Text:     "🗑 Nothing to delete: you have no categories.",
			Keyboard: [][]Button{Row(Button{Label: "⬅️ Menu", Tag: TagMenu})},
		}
	}

	rows := make([][]Button, 0, len(infos)+1)
	for _, info := range infos {
		rows = append(rows, Row(Button{
			Label:   fmt.Sprintf("🗑 %s (%d)", info.Name, info.FileCount),
			Tag:     TagDeleteCategory,
			Payload: info.Name,
		}))
	}
	rows = append(rows, Row(Button{Label: "⬅️ Menu", Tag: TagMenu}))
	return Response{
		Text:     "🗑 *Pick a category to delete.* Its files go with it.",
		Keyboard: rows,
	}
}

func (m *Machine) confirmDeleteScreen(name string) Response {
	return Response{
		Text: fmt.Sprintf(
			"⚠️ Delete *%s* and every file in it?\n\nThis cannot be undone.",
			format.Escape(name),
		),
		Keyboard: [][]Button{Row(
			Button{Label: "✅ Yes, delete", Tag: TagConfirmDelete},
			Button{Label: "❌ Cancel", Tag: TagCancelDelete},
		)},
		EditInPlace: true,
	}
}

func (m *Machine) deletedScreen(name string, found bool) Response {
	text := fmt.Sprintf("🗑 Category *%s* is gone, along with its files.", format.Escape(name))
	if !found {
		text = fmt.Sprintf("Category *%s* was already gone.", format.Escape(name))
	}
	return Response{
		Text:        text,
		Keyboard:    m.menuKeyboard(),
		EditInPlace: true,
	}
}

func (m *Machine) askCategoryNameScreen() Response {
	return Response{
		Text: "✏️ Send me a name for the new category " +
			fmt.Sprintf("(up to %d characters).", catalog.MaxNameLen),
		EditInPlace: true,
	}
}

func (m *Machine) invalidNameScreen() Response {
	return Response{
		Text: "🚫 That name will not work: it must be non-empty and at most " +
			fmt.Sprintf("%d characters. Try another one.", catalog.MaxNameLen),
	}
}

func (m *Machine) uploadReadyScreen(name string) Response {
	return Response{
		Text: fmt.Sprintf(
			"📤 Uploading to *%s*.\n\nSend files one by one; press Done when finished.",
			format.Escape(name),
		),
		Keyboard: m.uploadKeyboard(),
	}
}

func (m *Machine) uploadProgressScreen(name string, count int) Response {
	return Response{
		Text: fmt.Sprintf(
			"✅ %d file(s) saved to *%s*. Keep them coming or press Done.",
			count, format.Escape(name),
		),
		Keyboard:    m.uploadKeyboard(),
		EditInPlace: true,
	}
}

func (m *Machine) uploadKeyboard() [][]Button {
	return [][]Button{Row(
		Button{Label: "✅ Done", Tag: TagDone},
		Button{Label: "⬅️ Menu", Tag: TagMenu},
	)}
}

func (m *Machine) doneScreen(category string, count int) Response {
	if count == 0 || category == "" {
		return m.menuScreen()
	}
	return Response{
		Text: fmt.Sprintf(
			"🎉 Done! %d file(s) stored in *%s*.",
			count, format.Escape(category),
		),
		Keyboard: m.menuKeyboard(),
	}
}

// pageScreen renders one browse page: the stored files re-delivered with
// positional captions, then a navigation message.
func (m *Machine) pageScreen(name string, page catalog.Page) Response {
	if page.TotalCount == 0 {
		return Response{
			Text: fmt.Sprintf("📭 *%s* is empty. Add some files?", format.Escape(name)),
			Keyboard: [][]Button{
				Row(Button{Label: "📤 Add files", Tag: TagAddFiles, Payload: name}),
				Row(Button{Label: "⬅️ Back", Tag: TagBrowseList}),
			},
		}
	}

	deliveries := make([]Delivery, 0, len(page.Files))
	for i, ref := range page.Files {
		deliveries = append(deliveries, Delivery{
			Pointer: ref.Pointer,
			Caption: fmt.Sprintf("File #%d of %d", page.Index*catalog.PageSize+i+1, page.TotalCount),
		})
	}

	pages := catalog.PageCount(page.TotalCount, catalog.PageSize)
	nav := Row()
	if page.HasPrev {
		nav = append(nav, Button{Label: "⬅️", Tag: TagPrevPage})
	}
	nav = append(nav, Button{
		Label: fmt.Sprintf("%d/%d", page.Index+1, pages),
		Tag:   TagNoop,
	})
	if page.HasNext {
		nav = append(nav, Button{Label: "➡️", Tag: TagNextPage})
	}

	rows := [][]Button{nav}
	rows = append(rows,
		Row(Button{Label: "📤 Add files", Tag: TagAddFiles, Payload: name}),
		Row(Button{Label: "⬅️ Back", Tag: TagBrowseList}),
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗂 *%s* — %d file(s), page %d of %d.\n",
		format.Escape(name), page.TotalCount, page.Index+1, pages)
	for i, ref := range page.Files {
		fmt.Fprintf(&sb, "\n%d. %s", page.Index*catalog.PageSize+i+1, format.Escape(ref.Label()))
	}

	return Response{
		Text:       sb.String(),
		Keyboard:   rows,
		Deliveries: deliveries,
	}
}

func (m *Machine) timeoutScreen() Response {
	return Response{
		Text: "⏳ The storage took too long to respond. Nothing was changed; please try again.",
	}
}

func (m *Machine) categoryGoneScreen(name string) Response {
	return Response{
		Text: fmt.Sprintf(
			"🤔 Category *%s* no longer exists. Back to the menu.",
			format.Escape(name),
		),
		Keyboard: m.menuKeyboard(),
	}
}

func (m *Machine) errorScreen() Response {
	return Response{
		Text:     "😵 Something went wrong on my side. Back to the menu.",
		Keyboard: m.menuKeyboard(),
	}
}
