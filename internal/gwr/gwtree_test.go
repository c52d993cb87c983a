package gwr

import "testing"

func TestParseTreeBasics(t *testing.T) {
	root, err := parseTree(`<a x="1"><b>hello</b><c/><b>again</b></a>`)
	if err != nil {
		t.Fatalf("parseTree: %v", err)
	}
	if root.name != "a" {
		t.Errorf("root name = %q, want a", root.name)
	}
	if root.attrs["x"] != "1" {
		t.Errorf("root attr x = %q, want 1", root.attrs["x"])
	}
	if got := root.childText("b"); got != "hello" {
		t.Errorf("first b text = %q, want hello", got)
	}
	if got := len(root.childAll("b")); got != 2 {
		t.Errorf("childAll(b) = %d elements, want 2", got)
	}
	if root.child("c").hasChildren() {
		t.Error("empty element should have no children")
	}
	if root.child("missing") != nil {
		t.Error("missing child should be nil")
	}
}

func TestParseTreeNilSafeNavigation(t *testing.T) {
	root, err := parseTree(`<a></a>`)
	if err != nil {
		t.Fatalf("parseTree: %v", err)
	}
	// Chained lookups through absent elements must not panic.
	if got := root.child("x").child("y").childText("z"); got != "" {
		t.Errorf("navigation through missing elements = %q, want empty", got)
	}
}

func TestParseTreeRejectsEmptyInput(t *testing.T) {
	for _, body := range []string{"", "   ", "just text"} {
		if _, err := parseTree(body); err == nil {
			t.Errorf("parseTree(%q) should fail", body)
		}
	}
}

func TestParseTreeWhitespaceText(t *testing.T) {
	root, err := parseTree("<a>\n  <b>\n    padded\n  </b>\n</a>")
	if err != nil {
		t.Fatalf("parseTree: %v", err)
	}
	if got := root.childText("b"); got != "padded" {
		t.Errorf("childText should trim whitespace, got %q", got)
	}
}
