package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markers that upstream generation leaks into the response text.
const (
	instructionEndMarker = "[/INST]"
	transcriptEndMarker  = "#Transcript End"
	badCloseToken        = "[ / JSONObjects]"
)

// Rule is a single named repair step. Apply must be total: it accepts any
// string, including empty, and returns a repaired string without failing.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules is the ordered repair pipeline applied by [Normalize]. It is
// exported so each heuristic can be exercised in isolation.
var Rules = []Rule{
	{"stripMarkup", stripMarkup},
	{"dropInstructionEcho", dropInstructionEcho},
	{"keepFromFirstBracket", keepFromFirstBracket},
	{"recoverMissingOpen", recoverMissingOpen},
	{"collapseNewlines", collapseNewlines},
	{"dropCommaQuote", dropCommaQuote},
	{"neutralizeQuotes", neutralizeQuotes},
	{"stripFences", stripFences},
	{"dropBadCloseToken", dropBadCloseToken},
	{"insertMissingCommas", insertMissingCommas},
	{"dropAfterTranscriptEnd", dropAfterTranscriptEnd},
	{"closeBracket", closeBracket},
}

// Normalize runs the full repair pipeline over a raw generation. It never
// fails; the result is the pipeline's best effort and may still be rejected
// by strict parsing downstream.
func Normalize(raw string) string {
	s := raw
	for _, rule := range Rules {
		s = rule.Apply(s)
	}
	return s
}

var (
	closingTagRe     = regexp.MustCompile(`</[A-Za-z][A-Za-z0-9]*\s*>`)
	markdownEscapeRe = regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+\\-.!>|~=])")
)

// stripMarkup converts HTML-wrapped generations to plain markdown text so
// the remaining rules see the payload instead of the markup. The converter
// escapes markdown punctuation in text content, which the JSON payload
// needs raw, so those escapes are undone afterwards. Conversion failures
// keep the original text; any code fences the conversion emits are removed
// later by stripFences.
func stripMarkup(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "<") || !closingTagRe.MatchString(trimmed) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(trimmed)
	if err != nil {
		return s
	}
	return markdownEscapeRe.ReplaceAllString(markdown, "$1")
}

// dropInstructionEcho trims the text and keeps only what follows the last
// instruction-termination marker, discarding echoed prompt content.
func dropInstructionEcho(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, instructionEndMarker); idx >= 0 {
		s = s[idx+len(instructionEndMarker):]
	}
	return s
}

// keepFromFirstBracket discards any preamble before the first '['. Text
// without a bracket is left for recoverMissingOpen to deal with.
func keepFromFirstBracket(s string) string {
	if idx := strings.Index(s, "["); idx >= 0 {
		return s[idx:]
	}
	return s
}

// recoverMissingOpen handles text that still lacks a leading '['. A colon
// suggests a `"label": [...]` wrapper, so everything up to the first colon
// is dropped; otherwise an opening bracket is synthesized.
func recoverMissingOpen(s string) string {
	if strings.HasPrefix(s, "[") {
		return s
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return "[" + s
}

func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// dropCommaQuote removes the stray double quote in `,"` sequences, a
// corruption where key quoting merges with the preceding separator.
func dropCommaQuote(s string) string {
	return strings.ReplaceAll(s, `,"`, ",")
}

var bareWordRe = regexp.MustCompile(`"([\w-]+)"`)

// neutralizeQuotes rewrites double quotes around bare-word tokens to single
// quotes, defusing stray quotes embedded inside string values. The keys
// "query" and "summary" are always preserved, as is any quoted token that
// sits in a syntactically valid key or value position, so well-formed
// single-word values survive the rule.
func neutralizeQuotes(s string) string {
	matches := bareWordRe.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		word := s[start+1 : end-1]
		b.WriteString(s[last:start])
		if word == "query" || word == "summary" || structural(s, start, end) {
			b.WriteString(s[start:end])
		} else {
			b.WriteString("'" + word + "'")
		}
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

// structural reports whether the quoted token spanning [start, end) occupies
// a key or value slot of the surrounding array/object syntax. Tokens that do
// are valid JSON strings and must keep their double quotes.
func structural(s string, start, end int) bool {
	before := lastNonSpace(s[:start])
	switch before {
	case '{', '[', ',', ':':
	default:
		return false
	}
	after := firstNonSpace(s[end:])
	switch after {
	case ':', ',', '}', ']':
		return true
	}
	return false
}

func lastNonSpace(s string) byte {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func firstNonSpace(s string) byte {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

// stripFences removes code-fence markers (language-tagged first, so the tag
// goes with its fence) and replaces literal apostrophes and mis-encoded
// curly-quote byte sequences with spaces.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "'", " ")
	s = strings.ReplaceAll(s, "â€˜", " ")
	s = strings.ReplaceAll(s, "â€œ", " ")
	return s
}

func dropBadCloseToken(s string) string {
	return strings.ReplaceAll(s, badCloseToken, " ")
}

var adjacentObjectsRe = regexp.MustCompile(`\}(\s*)\{`)

// insertMissingCommas repairs missing array-element separators: a closing
// brace followed (ignoring whitespace) by an opening brace gains a comma.
func insertMissingCommas(s string) string {
	return adjacentObjectsRe.ReplaceAllString(s, "},${1}{")
}

// dropAfterTranscriptEnd truncates at the last transcript-end marker,
// discarding the marker and whatever trails it.
func dropAfterTranscriptEnd(s string) string {
	if idx := strings.LastIndex(s, transcriptEndMarker); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// closeBracket discards trailing garbage after the logical end of the
// array. Text with no ']' at all is left unchanged; the strict parse will
// reject it and the record counts as unparsed.
func closeBracket(s string) string {
	if strings.HasSuffix(s, "]") {
		return s
	}
	if idx := strings.LastIndex(s, "]"); idx >= 0 {
		return s[:idx+1]
	}
	return s
}
