package formatter_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/valpere/shapetran/internal/formatter"
)

func TestExtract_Empty(t *testing.T) {
	flat, meta := formatter.Extract("")
	if flat != "" {
		t.Errorf("expected empty flattened text, got %q", flat)
	}
	if len(meta.OriginalLines) != 0 || len(meta.ParagraphBreaks) != 0 {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
}

func TestExtract_Flatten(t *testing.T) {
	input := "  Hello world.  \n\n\tSecond line\n   \nThird"
	flat, meta := formatter.Extract(input)

	if flat != "Hello world. Second line Third" {
		t.Errorf("unexpected flattened text %q", flat)
	}
	if len(meta.OriginalLines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(meta.OriginalLines))
	}
	if len(meta.LeadingIndent) != 5 || len(meta.TrailingSpace) != 5 {
		t.Fatalf("per-line slices out of step: %d indents, %d trailing", len(meta.LeadingIndent), len(meta.TrailingSpace))
	}
	if meta.LeadingIndent[0] != "  " || meta.TrailingSpace[0] != "  " {
		t.Errorf("line 0 whitespace: indent %q trailing %q", meta.LeadingIndent[0], meta.TrailingSpace[0])
	}
	if meta.LeadingIndent[2] != "\t" {
		t.Errorf("line 2 indent: expected tab, got %q", meta.LeadingIndent[2])
	}
	if !reflect.DeepEqual(meta.ParagraphBreaks, []int{1, 3}) {
		t.Errorf("expected breaks [1 3], got %v", meta.ParagraphBreaks)
	}
	if meta.OriginalLines[0] != "  Hello world.  " {
		t.Errorf("original line not stored literally: %q", meta.OriginalLines[0])
	}
	if meta.ContentLines() != 3 {
		t.Errorf("expected 3 content lines, got %d", meta.ContentLines())
	}
}

func TestExtract_Idempotent(t *testing.T) {
	input := "Title\n\n    body text, indented.\n  - item\n"
	flat1, meta1 := formatter.Extract(input)
	flat2, meta2 := formatter.Extract(input)

	if flat1 != flat2 {
		t.Errorf("flattened text differs: %q vs %q", flat1, flat2)
	}
	if !reflect.DeepEqual(meta1, meta2) {
		t.Errorf("metadata differs:\n%+v\n%+v", meta1, meta2)
	}
}

func TestRestore_Scenarios(t *testing.T) {
	f := formatter.New()

	tests := []struct {
		name       string
		original   string
		translated string
		expected   string
		tier       formatter.Tier
	}{
		{
			name:       "sentence split on full-width stop",
			original:   "Hello world.\nHow are you?",
			translated: "你好世界。你今天怎么样？",
			expected:   "你好世界。\n你今天怎么样？",
			tier:       formatter.TierSentence,
		},
		{
			name:       "paragraph break kept",
			original:   "Line1\n\nLine2",
			translated: "Ligne1. Ligne2.",
			expected:   "Ligne1.\n\nLigne2.",
			tier:       formatter.TierSentence,
		},
		{
			name:       "paragraph break kept with short translation",
			original:   "Line1\n\nLine2",
			translated: "onlyone",
			expected:   "onlyone\n\nLine2",
			tier:       formatter.TierWords,
		},
		{
			name:       "indent kept",
			original:   "   indented line",
			translated: "строка с отступом",
			expected:   "   строка с отступом",
			tier:       formatter.TierSentence,
		},
		{
			name:       "word buckets when no punctuation",
			original:   "a\nb\nc",
			translated: "one two three four five six",
			expected:   "one two\nthree four\nfive six",
			tier:       formatter.TierWords,
		},
		{
			name:       "word buckets drop the remainder",
			original:   "a\nb\nc",
			translated: "one two three four five six seven",
			expected:   "one two\nthree four\nfive six",
			tier:       formatter.TierWords,
		},
		{
			name:       "clause split",
			original:   "first\nsecond\nthird",
			translated: "A, B; C.",
			expected:   "A,\nB;\nC.",
			tier:       formatter.TierClause,
		},
		{
			name:       "surplus sentences dropped",
			original:   "only line",
			translated: "One. Two. Three.",
			expected:   "One.",
			tier:       formatter.TierSentence,
		},
		{
			name:       "chunks exhausted fall back to labels and passthrough",
			original:   "Intro\n  Error: overflow\nSource: journal\nplain tail",
			translated: "引言",
			expected:   "引言\n  错误: overflow\n来源: journal\nplain tail",
			tier:       formatter.TierWords,
		},
		{
			name:       "text that is only punctuation",
			original:   "x\ny",
			translated: "...",
			expected:   ".\n.",
			tier:       formatter.TierSentence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, meta := formatter.Extract(tt.original)
			got, tier := f.RestoreWithTier(tt.translated, meta)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
			if tier != tt.tier {
				t.Errorf("expected tier %s, got %s", tt.tier, tier)
			}
		})
	}
}

func TestRestore_EmptyTranslation(t *testing.T) {
	f := formatter.New()
	original := "Error: overflow\n\n    Original: the text\nuntouched line"
	_, meta := formatter.Extract(original)

	got := f.Restore("", meta)
	expected := "错误: overflow\n\n    原件: the text\nuntouched line"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestRestore_EmptyMetadata(t *testing.T) {
	f := formatter.New()
	if got := f.Restore("something", formatter.Metadata{}); got != "" {
		t.Errorf("expected empty output for empty metadata, got %q", got)
	}
}

func TestRestore_DoesNotMutateMetadata(t *testing.T) {
	f := formatter.New()
	_, meta := formatter.Extract("  one\n\ntwo")
	snapshot := formatter.Metadata{
		OriginalLines:   append([]string(nil), meta.OriginalLines...),
		LeadingIndent:   append([]string(nil), meta.LeadingIndent...),
		TrailingSpace:   append([]string(nil), meta.TrailingSpace...),
		ParagraphBreaks: append([]int(nil), meta.ParagraphBreaks...),
	}

	first := f.Restore("uno. dos.", meta)
	second := f.Restore("uno. dos.", meta)

	if first != second {
		t.Errorf("restoring twice gave different results: %q vs %q", first, second)
	}
	if !reflect.DeepEqual(meta, snapshot) {
		t.Errorf("metadata changed by Restore:\n%+v\n%+v", meta, snapshot)
	}
}

func TestRestore_MultiLineAnswer(t *testing.T) {
	f := formatter.New()
	tests := []struct {
		name       string
		original   string
		translated string
		expected   string
	}{
		{
			name:       "wrapped answer for one line",
			original:   "one line",
			translated: "Hello\nWorld",
			expected:   "Hello World",
		},
		{
			name:       "blank line stays in place",
			original:   "x\n\ny",
			translated: "A, B\nC.",
			expected:   "A,\n\nB C.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, meta := formatter.Extract(tt.original)
			if got := f.Restore(tt.translated, meta); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRestore_ManyBlankLines(t *testing.T) {
	original := "first" + strings.Repeat("\n", 50000) + "last"
	_, meta := formatter.Extract(original)

	got := formatter.New().Restore("Erste. Letzte.", meta)
	lines := strings.Split(got, "\n")
	if len(lines) != 50001 {
		t.Fatalf("expected 50001 lines, got %d", len(lines))
	}
	if lines[0] != "Erste." || lines[len(lines)-1] != "Letzte." {
		t.Errorf("unexpected first/last lines %q, %q", lines[0], lines[len(lines)-1])
	}
}

func TestRestore_CustomLabels(t *testing.T) {
	f := formatter.New(formatter.WithLabels(formatter.Labels{
		{Source: "Error:", Target: "Ошибка:"},
		{Source: "Note:", Target: ""},
	}))
	_, meta := formatter.Extract("Error: x\nNote: y")

	got := f.Restore("", meta)
	if got != "Ошибка: x\nNote: y" {
		t.Errorf("unexpected output %q", got)
	}
}

// Structural guarantees checked over a spread of inputs and backend outputs.
func TestRestore_ShapeInvariants(t *testing.T) {
	originals := []string{
		"",
		"single",
		"Hello world.\nHow are you?",
		"Line1\n\nLine2",
		"   indented line",
		"\n\n",
		"  a\n\t\tb\n\n   \n c, d; e.\n",
		"Error: overflow\nSource: x\nOriginal: y",
		strings.Repeat("word ", 200),
		"...\n!!!\n???",
	}
	translations := []string{
		"",
		"   ",
		"no punctuation at all here",
		"One. Two. Three. Four. Five. Six. Seven.",
		"甲，乙；丙。丁。",
		"....",
		strings.Repeat("很长的句子 ", 300),
		"a\nb",
		"A, B\nC.",
		"First line.\r\n\r\nSecond line.\n",
	}

	f := formatter.New()
	for _, original := range originals {
		_, meta := formatter.Extract(original)
		for _, translated := range translations {
			got := f.Restore(translated, meta)

			want := strings.Split(original, "\n")
			gotLines := strings.Split(got, "\n")
			if len(gotLines) != len(want) {
				t.Errorf("line count: original %q, translated %q: want %d, got %d", original, translated, len(want), len(gotLines))
				continue
			}

			for i := range want {
				wantBlank := strings.TrimSpace(want[i]) == ""
				gotBlank := strings.TrimSpace(gotLines[i]) == ""
				if wantBlank != gotBlank {
					t.Errorf("blank mismatch at line %d: original %q, restored %q", i, want[i], gotLines[i])
					continue
				}
				if wantBlank {
					continue
				}
				wantIndent := want[i][:len(want[i])-len(strings.TrimLeft(want[i], " \t"))]
				if !strings.HasPrefix(gotLines[i], wantIndent) || strings.TrimLeft(gotLines[i], " \t") != gotLines[i][len(wantIndent):] {
					t.Errorf("indent mismatch at line %d: original %q, restored %q", i, want[i], gotLines[i])
				}
			}
		}
	}
}
