// Package postprocess strips generation artifacts from backend output
// before it is cut back into lines.
//
// Seq2seq models leave special tokens and sometimes repeat their task
// directive; chat models add reasoning blocks, preambles and quotes. Any
// of these would end up as a stray chunk on the first restored line.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes artifacts from text in five phases and returns the
// trimmed result:
//  1. Special token removal
//  2. Thinking / reasoning block removal
//  3. Directive echo removal
//  4. Instruction echo removal (prompt leakage)
//  5. Quote wrapping removal
func Clean(text string) string {
	text = removeSpecialTokens(text)
	text = removeThinkingBlocks(text)
	text = StripDirective(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: special tokens ---

// specialTokenRe matches tokenizer control tokens that survive decoding
// when special tokens are not skipped.
var specialTokenRe = regexp.MustCompile(`</?s>|<pad>|<unk>|<extra_id_\d+>`)

func removeSpecialTokens(text string) string {
	return specialTokenRe.ReplaceAllString(text, "")
}

// --- Phase 2: thinking blocks ---

// Go's RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (generation was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 3: directive echo ---

// directiveEchoRe matches a repeated "translate to <code>:" task prefix.
var directiveEchoRe = regexp.MustCompile(`(?i)^\s*translate to [a-z]{2,3}(?:-[a-z0-9]+)*\s*:\s*`)

// StripDirective removes a "translate to <code>: " prefix that a backend
// echoed at the start of its output. Text without the prefix is returned
// unchanged.
func StripDirective(text string) string {
	if loc := directiveEchoRe.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	return text
}

// --- Phase 4: instruction echoes ---

// Each pattern is anchored to the start and requires a colon so that
// ordinary sentences beginning with these words survive.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [translated] translation:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:refined |polished |translated )?(?:translation|text)\s*:`),
	// "[The] [translation|translated text]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:refined |polished )?(?:translation|translated text)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] translation:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:refined |polished |translated )?(?:translation|text)\s*:`),
	// "翻译：" / "译文:" emitted by models answering in Chinese
	regexp.MustCompile(`^(?:翻译|译文)\s*[:：]`),
	// "Перевод:"
	regexp.MustCompile(`(?i)^перевод\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 5: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the
// entire text is wrapped in them. Supported pairs:
//
//	"…"  '…'  «…»  “…”  ‘…’  「…」
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') ||
		(first == '「' && last == '」') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
