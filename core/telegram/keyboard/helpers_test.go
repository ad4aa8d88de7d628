package keyboard

import "testing"

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Unique: "a", Data: "1"}, {Text: "B", Unique: "b"}},
		[]InlineBtn{{Text: "C", Unique: "c", Data: "3"}},
	)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("row sizes = %d,%d", len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[1]))
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "A" || first.Unique != "a" || first.Data != "1" {
		t.Errorf("first button = %+v", first)
	}
	if markup.InlineKeyboard[0][1].Data != "" {
		t.Errorf("empty payload should stay empty, got %q", markup.InlineKeyboard[0][1].Data)
	}
}
