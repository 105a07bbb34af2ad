// Package formatter keeps the visual shape of a document across a
// translation round trip. Extract flattens multi-line text into a single
// line for the backend and records the line structure; Restore cuts the
// backend's undifferentiated output back into one chunk per original
// content line and re-applies blank lines and indentation.
package formatter

import (
	"strings"
	"unicode"
)

// Metadata is the structure captured by Extract. It is never modified
// after Extract returns, so one value can be restored any number of times.
type Metadata struct {
	OriginalLines   []string
	LeadingIndent   []string
	TrailingSpace   []string
	ParagraphBreaks []int
}

// ContentLines returns the number of non-blank original lines.
func (m Metadata) ContentLines() int {
	return len(m.OriginalLines) - len(m.ParagraphBreaks)
}

// Extract splits text into lines, records per-line whitespace and blank
// line positions, and returns the flattened text: every non-blank line
// trimmed and joined with a single space.
func Extract(text string) (string, Metadata) {
	var meta Metadata
	if text == "" {
		return "", meta
	}

	lines := strings.Split(text, "\n")
	meta.OriginalLines = make([]string, len(lines))
	meta.LeadingIndent = make([]string, len(lines))
	meta.TrailingSpace = make([]string, len(lines))

	content := make([]string, 0, len(lines))
	for i, line := range lines {
		meta.OriginalLines[i] = line

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// A whitespace-only line is all indent; keep it on one side only.
			meta.LeadingIndent[i] = line
			meta.ParagraphBreaks = append(meta.ParagraphBreaks, i)
			continue
		}

		meta.LeadingIndent[i] = line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
		meta.TrailingSpace[i] = line[len(strings.TrimRightFunc(line, unicode.IsSpace)):]
		content = append(content, trimmed)
	}

	return strings.Join(content, " "), meta
}

// Formatter restores translated text into the shape recorded by Extract.
// The zero value is not usable; call New.
type Formatter struct {
	labels Labels
}

type Option func(*Formatter)

// WithLabels replaces the structural label table used for lines that
// receive no translated chunk.
func WithLabels(labels Labels) Option {
	return func(f *Formatter) {
		f.labels = labels
	}
}

// New returns a Formatter using DefaultLabels unless overridden.
func New(opts ...Option) *Formatter {
	f := &Formatter{labels: DefaultLabels}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Restore returns translated re-shaped to meta. The result always has
// exactly len(meta.OriginalLines) lines with blank lines in the original
// positions.
func (f *Formatter) Restore(translated string, meta Metadata) string {
	out, _ := f.RestoreWithTier(translated, meta)
	return out
}

// RestoreWithTier is Restore that also reports which segmentation tier
// produced the chunks.
func (f *Formatter) RestoreWithTier(translated string, meta Metadata) (string, Tier) {
	if len(meta.OriginalLines) == 0 {
		return "", TierNone
	}

	chunks, tier := Segment(translated, meta.ContentLines())

	blank := make([]bool, len(meta.OriginalLines))
	for _, b := range meta.ParagraphBreaks {
		if b >= 0 && b < len(blank) {
			blank[b] = true
		}
	}

	out := make([]string, 0, len(meta.OriginalLines))
	next := 0
	for i, line := range meta.OriginalLines {
		switch {
		case blank[i]:
			out = append(out, "")
		case next < len(chunks):
			out = append(out, meta.LeadingIndent[i]+chunks[next])
			next++
		default:
			out = append(out, f.fallback(line, meta.LeadingIndent[i]))
		}
	}

	return strings.Join(out, "\n"), tier
}

// fallback handles a content line left without a translated chunk: a line
// opening with a known label gets the label swapped, anything else is
// passed through untouched.
func (f *Formatter) fallback(line, indent string) string {
	translated, ok := f.labels.Apply(strings.TrimSpace(line))
	if ok && strings.TrimSpace(translated) != "" {
		return indent + translated
	}
	return line
}
