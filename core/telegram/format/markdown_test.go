package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a_b", `a\_b`},
		{"*bold*", `\*bold\*`},
		{"[link]", `\[link]`},
		{"back`tick", "back\\`tick"},
		{`c:\dir`, `c:\\dir`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, MarkdownV1)
		if err != nil {
			t.Fatalf("escape %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("escape %q = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("a.b-c!(d)", MarkdownV2)
	if err != nil {
		t.Fatal(err)
	}
	want := `a\.b\-c\!\(d\)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEscapeMarkdownUnsupportedVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
