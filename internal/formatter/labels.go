package formatter

import "strings"

// Label maps a line-opening token such as "Error:" to a fixed translation.
type Label struct {
	Source string
	Target string
}

// Labels is checked in order; the first matching prefix wins.
type Labels []Label

// DefaultLabels translates the citation-note labels into Chinese.
var DefaultLabels = Labels{
	{Source: "Error:", Target: "错误:"},
	{Source: "Source:", Target: "来源:"},
	{Source: "Original:", Target: "原件:"},
}

// Apply replaces the label at the start of line, leaving the rest of the
// line as it is. It reports false when line opens with no known label.
func (l Labels) Apply(line string) (string, bool) {
	for _, label := range l {
		if label.Source == "" || label.Target == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, label.Source); ok {
			return label.Target + rest, true
		}
	}
	return line, false
}

// Merge returns l with entries from override taking precedence for the
// same source token. Tokens only present in override are appended.
func (l Labels) Merge(override Labels) Labels {
	merged := make(Labels, 0, len(l)+len(override))
	seen := make(map[string]bool, len(override))
	for _, o := range override {
		seen[o.Source] = true
	}
	merged = append(merged, override...)
	for _, label := range l {
		if !seen[label.Source] {
			merged = append(merged, label)
		}
	}
	return merged
}
