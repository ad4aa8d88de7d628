package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		unique  string
		payload string
	}{
		{"unique only", "\fcat_pick", "cat_pick", ""},
		{"unique and payload", "\fcat_pick|Docs", "cat_pick", "Docs"},
		{"payload keeps pipes", "\fcat_pick|a|b", "cat_pick", "a|b"},
		{"payload with spaces", "\fcat_pick|My Photos", "cat_pick", "My Photos"},
		{"no prefix", "cat_pick|Docs", "cat_pick", "Docs"},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if unique != tc.unique || payload != tc.payload {
				t.Errorf("parse %q = (%q, %q), want (%q, %q)",
					tc.data, unique, payload, tc.unique, tc.payload)
			}
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Errorf("nil callback = (%q, %q), want empty", unique, payload)
	}
}
