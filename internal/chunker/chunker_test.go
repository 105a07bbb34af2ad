package chunker_test

import (
	"strings"
	"testing"

	"github.com/valpere/shapetran/internal/chunker"
)

func TestTruncate_ShortText(t *testing.T) {
	text := "Hello, world!"
	got, cut := chunker.Truncate(text, 100)
	if cut {
		t.Error("expected no cut for short text")
	}
	if got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestTruncate_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	got, cut := chunker.Truncate(text, 0)
	if cut || got != text {
		t.Error("expected text unchanged when maxChars=0")
	}
}

func TestTruncate_ExactLength(t *testing.T) {
	text := "12345"
	got, cut := chunker.Truncate(text, 5)
	if cut || got != text {
		t.Errorf("expected %q unchanged, got %q (cut=%v)", text, got, cut)
	}
}

func TestTruncate_SentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence is longer and gets cut."
	got, cut := chunker.Truncate(text, 30)
	if !cut {
		t.Fatal("expected a cut")
	}
	if got != "First sentence here." {
		t.Errorf("expected cut after first sentence, got %q", got)
	}
}

func TestTruncate_DecimalNotASentenceEnd(t *testing.T) {
	text := "Pi is about 3.14159 and more words follow"
	got, _ := chunker.Truncate(text, 16)
	if got != "Pi is about" {
		t.Errorf("expected cut at word boundary, got %q", got)
	}
}

func TestTruncate_CJKSentenceBoundary(t *testing.T) {
	text := "第一句话。第二句话比较长会被截断"
	got, cut := chunker.Truncate(text, 8)
	if !cut {
		t.Fatal("expected a cut")
	}
	if got != "第一句话。" {
		t.Errorf("expected cut after 。, got %q", got)
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	got, _ := chunker.Truncate(text, 13)
	if got != "alpha beta" {
		t.Errorf("expected %q, got %q", "alpha beta", got)
	}
}

func TestTruncate_HardCut(t *testing.T) {
	text := strings.Repeat("x", 50)
	got, cut := chunker.Truncate(text, 10)
	if !cut {
		t.Fatal("expected a cut")
	}
	if got != strings.Repeat("x", 10) {
		t.Errorf("expected 10 x's, got %q", got)
	}
}

func TestTruncate_NeverExceedsLimit(t *testing.T) {
	inputs := []string{
		strings.Repeat("Привет мир. ", 40),
		strings.Repeat("你好世界。", 40),
		strings.Repeat("a", 1000),
		"short",
	}
	for _, in := range inputs {
		for _, max := range []int{1, 7, 50, 333} {
			got, _ := chunker.Truncate(in, max)
			if n := len([]rune(got)); n > max {
				t.Errorf("Truncate(len=%d, %d) returned %d runes", len([]rune(in)), max, n)
			}
		}
	}
}
