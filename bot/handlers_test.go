package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/flow"
)

func TestClassifyMedia(t *testing.T) {
	cases := []struct {
		name string
		msg  *tele.Message
		kind catalog.FileKind
		file string
	}{
		{"photo", &tele.Message{Photo: &tele.Photo{}}, catalog.KindPhoto, ""},
		{"video", &tele.Message{Video: &tele.Video{FileName: "clip.mp4"}}, catalog.KindVideo, "clip.mp4"},
		{"document", &tele.Message{Document: &tele.Document{FileName: "cv.pdf"}}, catalog.KindDocument, "cv.pdf"},
		{"audio", &tele.Message{Audio: &tele.Audio{FileName: "song.mp3"}}, catalog.KindAudio, "song.mp3"},
		{"voice", &tele.Message{Voice: &tele.Voice{}}, catalog.KindVoice, ""},
		{
			// Telegram sets both on GIFs; animation wins.
			"animation",
			&tele.Message{Animation: &tele.Animation{FileName: "fun.gif"}, Document: &tele.Document{FileName: "fun.gif"}},
			catalog.KindAnimation,
			"fun.gif",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, file := classifyMedia(tc.msg)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.file, file)
		})
	}
}

func TestMarkupForEncodesTagsAndPayloads(t *testing.T) {
	resp := flow.Response{
		Keyboard: [][]flow.Button{
			flow.Row(
				flow.Button{Label: "Docs (3)", Tag: flow.TagPickCategory, Payload: "Docs"},
			),
			flow.Row(
				flow.Button{Label: "Menu", Tag: flow.TagMenu},
			),
		},
	}

	markup := markupFor(resp)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)

	pick := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Docs (3)", pick.Text)
	assert.Equal(t, string(flow.TagPickCategory), pick.Unique)
	assert.Equal(t, "Docs", pick.Data)

	menu := markup.InlineKeyboard[1][0]
	assert.Equal(t, string(flow.TagMenu), menu.Unique)
	assert.Empty(t, menu.Data)
}

func TestMarkupForEmptyKeyboard(t *testing.T) {
	assert.Nil(t, markupFor(flow.Response{Text: "hi"}))
}
