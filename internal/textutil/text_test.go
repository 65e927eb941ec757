package textutil

import "testing"

func TestNormalizeComposes(t *testing.T) {
	decomposed := "\u0438\u0306\r\nok"
	if got := Normalize(decomposed); got != "\u0439\nok" {
		t.Fatalf("Normalize() = %q", got)
	}
}

func TestSnippetEscapesNewlines(t *testing.T) {
	if got := Snippet(" hi\nthere\t! ", 0); got != `hi\nthere\t!` {
		t.Fatalf("Snippet() = %q", got)
	}
	if got := Snippet("привет мир", 6); got != "привет..." {
		t.Fatalf("Snippet() limit = %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \n\t") || IsBlank(" a ") {
		t.Fatal("unexpected IsBlank results")
	}
}
