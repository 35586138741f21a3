package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Character thresholds for paragraph extraction. Lengths are in runes.
const (
	noiseMaxLen      = 20  // shorter candidates are treated as header/footer noise
	headingMaxLen    = 100 // structured-heading length ceiling
	proseSplitMinLen = 200 // prose shorter than this is never sub-split
	subParagraphLen  = 300 // accumulated sentence length that triggers a sub-paragraph flush
)

var (
	reBlankLines    = regexp.MustCompile(`\n\s*\n`)
	rePageHeader    = regexp.MustCompile(`(?i)^\s*Page\s+\d+`)
	reBullet        = regexp.MustCompile(`^\s*[•·\-\*]\s+`)
	reNumberedItem  = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	reHeadingShape  = regexp.MustCompile(`^[A-Z][^.]*$`)
	reAlignedGap    = regexp.MustCompile(`\s{3,}`)
	reIdentifier    = regexp.MustCompile(`\d+\.\d+|\d{1,2}/\d{1,2}/\d{4}|[A-Z]{2,}-\d+`)
	reEnumCue       = regexp.MustCompile(`(?i)\b(including|such as|for example|e\.g\.|i\.e\.)\s*:?\s*$`)
	reContinuation  = regexp.MustCompile(`(?i)^\s*(however|therefore|furthermore|additionally|moreover)`)
	reTrailingDigit = regexp.MustCompile(`\d+\s*$`)
	reUnitOpening   = regexp.MustCompile(`(?i)^\s*(days?|months?|years?|hours?|minutes?|%|percent)`)
)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// extractParagraphs splits filtered page text into an ordered sequence of
// paragraph-like units: blank-line split, second-pass noise discard,
// structured units kept atomic, long prose sub-split on sentence boundaries.
func extractParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = filterHeadersFooters(text)

	rough := reBlankLines.Split(text, -1)

	var paragraphs []string
	for _, para := range rough {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if isHeaderFooter(para) {
			continue
		}
		if isStructuredContent(para) {
			paragraphs = append(paragraphs, para)
			continue
		}
		paragraphs = append(paragraphs, splitOnNaturalBoundaries(para)...)
	}

	out := paragraphs[:0]
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// isHeaderFooter catches boilerplate embedded mid-text that line-level
// filtering missed. Check order encodes priority; predicates overlap.
func isHeaderFooter(text string) bool {
	if runeLen(text) < noiseMaxLen {
		return true
	}
	if strings.Contains(text, "Phone:") && strings.Contains(text, "Email:") && runeLen(text) > 100 {
		return true
	}
	if rePageHeader.MatchString(text) {
		return true
	}
	if len(strings.Fields(text)) < 3 {
		return true
	}
	return false
}

// isStructuredContent identifies units that must stay atomic regardless of
// length: list items, headings, tabular alignment, and identifier-bearing
// lines (decimal references, D/M/YYYY dates, CODE-123 patterns).
func isStructuredContent(text string) bool {
	if reBullet.MatchString(text) || reNumberedItem.MatchString(text) {
		return true
	}
	if runeLen(text) < headingMaxLen && strings.Count(text, "\n") <= 2 {
		trimmed := strings.TrimSpace(text)
		if isAllUpper(trimmed) || reHeadingShape.MatchString(trimmed) {
			return true
		}
	}
	if strings.Contains(text, "\t") || reAlignedGap.MatchString(text) {
		return true
	}
	if reIdentifier.MatchString(text) {
		return true
	}
	return false
}

// isAllUpper reports whether s contains at least one letter and no lowercase.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// splitOnNaturalBoundaries re-accumulates sentences into sub-paragraphs,
// flushing once the accumulation passes subParagraphLen unless flushing there
// would create a bad break.
func splitOnNaturalBoundaries(text string) []string {
	if runeLen(text) < proseSplitMinLen {
		return []string{text}
	}

	sentences := splitSentences(text, true)

	var paragraphs []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		paraText := strings.Join(current, " ")

		next := ""
		if i+1 < len(sentences) {
			next = sentences[i+1]
		}
		if runeLen(paraText) > subParagraphLen && !wouldCreateBadBreak(sentence, next) {
			paragraphs = append(paragraphs, paraText)
			current = nil
		}
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return paragraphs
}

// wouldCreateBadBreak reports whether splitting after current would separate
// semantically dependent clauses: enumerations left dangling, continuation
// adverbs orphaned, or numbers cut off from their units.
func wouldCreateBadBreak(current, next string) bool {
	if reEnumCue.MatchString(current) {
		return true
	}
	if next != "" && reContinuation.MatchString(next) {
		return true
	}
	if reTrailingDigit.MatchString(current) && next != "" && reUnitOpening.MatchString(next) {
		return true
	}
	return false
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace. When requireUpper is set the whitespace must be followed by a
// capital letter, which suppresses splits after abbreviations mid-sentence.
// The punctuation stays with the preceding sentence; the whitespace is
// dropped.
func splitSentences(text string, requireUpper bool) []string {
	runes := []rune(text)
	var out []string
	start := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == '.' || r == '!' || r == '?' {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j > i+1 && j < len(runes) && (!requireUpper || unicode.IsUpper(runes[j])) {
				out = append(out, string(runes[start:i+1]))
				start = j
				i = j
				continue
			}
		}
		i++
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}
