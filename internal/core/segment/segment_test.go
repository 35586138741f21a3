package segment

import (
	"fmt"
	"strings"
	"testing"
)

// wordTokenizer treats every whitespace-separated word as one token. It is
// deterministic and round-trips word sequences, which makes chunk budgets
// exactly checkable in tests. panicOnCount forces a failure in the
// paragraph-aware path (Count) while leaving Encode/Decode intact, so the
// fixed-window fallback still works.
type wordTokenizer struct {
	ids          map[string]int
	words        []string
	panicOnCount string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: map[string]int{}}
}

func (w *wordTokenizer) Count(text string) int {
	if w.panicOnCount != "" && strings.Contains(text, w.panicOnCount) {
		panic("tokenizer failure injected for test")
	}
	return len(strings.Fields(text))
}

func (w *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	toks := make([]int, 0, len(fields))
	for _, f := range fields {
		id, ok := w.ids[f]
		if !ok {
			id = len(w.words)
			w.ids[f] = id
			w.words = append(w.words, f)
		}
		toks = append(toks, id)
	}
	return toks
}

func (w *wordTokenizer) Decode(tokens []int) string {
	out := make([]string, 0, len(tokens))
	for _, id := range tokens {
		out = append(out, w.words[id])
	}
	return strings.Join(out, " ")
}

var wordPool = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
	"golf", "hotel", "india", "juliet", "kilo", "lima",
}

// makeParagraph builds an n-word prose paragraph, short enough to avoid
// sentence-level sub-splitting and shaped to dodge the structured-content
// classifiers.
func makeParagraph(seq, n int) string {
	words := make([]string, 0, n)
	words = append(words, fmt.Sprintf("Opening%d", seq))
	for i := 1; i < n; i++ {
		words = append(words, wordPool[(seq+i)%len(wordPool)])
	}
	return strings.Join(words, " ")
}

func makePage(paragraphs ...string) string {
	return strings.Join(paragraphs, "\n\n")
}

func checkMonotonicIndices(t *testing.T, chunks []Chunk) {
	t.Helper()
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.ChunkIndex)
		}
	}
}

func checkBudget(t *testing.T, tok Tokenizer, chunks []Chunk, target int) {
	t.Helper()
	for i, c := range chunks {
		if c.Type == TypeForceSplit {
			continue
		}
		if n := tok.Count(c.Text); n > target {
			t.Errorf("chunk %d (%s): %d tokens exceeds budget %d", i, c.Type, n, target)
		}
	}
}

func checkNonDegenerate(t *testing.T, chunks []Chunk) {
	t.Helper()
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("chunk %d: empty or whitespace-only text", i)
		}
	}
}

func TestChunkPages_SinglePageSingleChunk(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	pages := []string{makePage(makeParagraph(0, 50))}
	chunks := s.ChunkPages(pages, Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.PageStart != 1 || c.PageEnd != 1 {
		t.Errorf("expected page range 1-1, got %d-%d", c.PageStart, c.PageEnd)
	}
	if c.ChunkIndex != 0 {
		t.Errorf("expected index 0, got %d", c.ChunkIndex)
	}
	if c.Type != TypeNormal {
		t.Errorf("expected type %s, got %s", TypeNormal, c.Type)
	}
}

func TestChunkPages_UniformProseWithOverlap(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// 84 paragraphs x 30 tokens = 2520 tokens of uniform prose.
	paragraphs := make([]string, 84)
	for i := range paragraphs {
		paragraphs[i] = makeParagraph(i, 30)
	}
	pages := []string{makePage(paragraphs...)}

	opts := Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50}
	chunks := s.ChunkPages(pages, opts)

	if len(chunks) < 3 || len(chunks) > 5 {
		t.Fatalf("expected 3-5 chunks, got %d", len(chunks))
	}
	checkMonotonicIndices(t, chunks)
	checkBudget(t, tok, chunks, opts.TargetTokens)
	checkNonDegenerate(t, chunks)

	for _, c := range chunks {
		if c.Type != TypeNormal {
			t.Errorf("chunk %d: expected type normal, got %s", c.ChunkIndex, c.Type)
		}
	}

	// Each chunk after the first begins with trailing content carried over
	// from its predecessor.
	for i := 1; i < len(chunks); i++ {
		firstPara, _, _ := strings.Cut(chunks[i].Text, "\n\n")
		if !strings.Contains(chunks[i-1].Text, firstPara) {
			t.Errorf("chunk %d does not start with overlap from chunk %d", i, i-1)
		}
	}
}

func TestChunkPages_UnsplittableParagraphForceSplit(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// One 2000-token paragraph with no sentence punctuation.
	words := make([]string, 2000)
	for i := range words {
		words[i] = wordPool[i%len(wordPool)]
	}
	words[0] = "Monolith"
	pages := []string{strings.Join(words, " ")}

	opts := Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50}
	chunks := s.ChunkPages(pages, opts)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	checkMonotonicIndices(t, chunks)
	for i, c := range chunks {
		if c.Type != TypeForceSplit {
			t.Fatalf("chunk %d: expected type force_split, got %s", i, c.Type)
		}
		n := tok.Count(c.Text)
		if i < len(chunks)-1 && n != opts.TargetTokens {
			t.Errorf("chunk %d: expected exactly %d tokens, got %d", i, opts.TargetTokens, n)
		}
		if i == len(chunks)-1 && n != 400 {
			t.Errorf("final chunk: expected 400 remainder tokens, got %d", n)
		}
	}
}

func TestChunkPages_CrossPageStitch(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	var pageA, pageB []string
	for i := 0; i < 15; i++ {
		pageA = append(pageA, makeParagraph(i, 30))
		pageB = append(pageB, makeParagraph(100+i, 30))
	}
	pages := []string{makePage(pageA...), makePage(pageB...)}

	opts := Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50, StitchPages: true}
	chunks := s.ChunkPages(pages, opts)

	checkMonotonicIndices(t, chunks)
	checkNonDegenerate(t, chunks)

	var stitches []Chunk
	for _, c := range chunks {
		if c.Type == TypeCrossPageStitch {
			stitches = append(stitches, c)
		}
	}
	if len(stitches) != 1 {
		t.Fatalf("expected exactly 1 stitch chunk, got %d", len(stitches))
	}
	st := stitches[0]
	if st.PageStart != 1 || st.PageEnd != 2 {
		t.Errorf("expected stitch page range 1-2, got %d-%d", st.PageStart, st.PageEnd)
	}
	if !strings.Contains(st.Text, PageBoundaryMarker) {
		t.Errorf("stitch chunk missing boundary marker")
	}
	// Stitch chunks are appended after all primary chunks.
	if st.ChunkIndex != len(chunks)-1 {
		t.Errorf("expected stitch chunk last at index %d, got %d", len(chunks)-1, st.ChunkIndex)
	}
}

func TestChunkPages_StitchIsAdditive(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	var pageA, pageB []string
	for i := 0; i < 15; i++ {
		pageA = append(pageA, makeParagraph(i, 30))
		pageB = append(pageB, makeParagraph(100+i, 30))
	}
	pages := []string{makePage(pageA...), makePage(pageB...)}

	base := Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50}
	without := s.ChunkPages(pages, base)

	withStitch := base
	withStitch.StitchPages = true
	with := s.ChunkPages(pages, withStitch)

	if len(with) <= len(without) {
		t.Fatalf("expected stitching to add chunks: %d vs %d", len(with), len(without))
	}
	for i := range without {
		if with[i] != without[i] {
			t.Errorf("primary chunk %d changed when stitching enabled", i)
		}
	}
}

func TestChunkPages_WhitespacePageSkipped(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	pages := []string{"   \n\t  \n ", makePage(makeParagraph(0, 50))}
	chunks := s.ChunkPages(pages, Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageStart != 2 {
		t.Errorf("expected chunk attributed to page 2, got %d", chunks[0].PageStart)
	}
	checkMonotonicIndices(t, chunks)
}

func TestChunkPages_InvalidInput(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	if got := s.ChunkPages(nil, Options{TargetTokens: 800}); len(got) != 0 {
		t.Errorf("empty page sequence: expected 0 chunks, got %d", len(got))
	}
	pages := []string{makePage(makeParagraph(0, 50))}
	if got := s.ChunkPages(pages, Options{TargetTokens: 0}); len(got) != 0 {
		t.Errorf("zero budget: expected 0 chunks, got %d", len(got))
	}
	if got := s.ChunkPages(pages, Options{TargetTokens: -5}); len(got) != 0 {
		t.Errorf("negative budget: expected 0 chunks, got %d", len(got))
	}
}

func TestChunkPages_Idempotent(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	var paragraphs []string
	for i := 0; i < 40; i++ {
		paragraphs = append(paragraphs, makeParagraph(i, 30))
	}
	pages := []string{makePage(paragraphs[:20]...), makePage(paragraphs[20:]...)}
	opts := Options{TargetTokens: 400, Overlap: 80, MinChunkTokens: 50, StitchPages: true}

	first := s.ChunkPages(pages, opts)
	second := s.ChunkPages(pages, opts)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs across runs", i)
		}
	}
}

func TestChunkPages_FallbackOnPageFailure(t *testing.T) {
	tok := newWordTokenizer()
	tok.panicOnCount = "Poisoned"
	s := NewSegmenter(tok)

	pages := []string{
		makePage("Poisoned "+makeParagraph(0, 49)),
		makePage(makeParagraph(1, 50)),
	}
	chunks := s.ChunkPages(pages, Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks (fallback + normal), got %d", len(chunks))
	}
	checkMonotonicIndices(t, chunks)
	if chunks[0].PageStart != 1 {
		t.Errorf("fallback chunk: expected page 1, got %d", chunks[0].PageStart)
	}
	if !strings.Contains(chunks[0].Text, "Poisoned") {
		t.Errorf("fallback chunk lost page content")
	}
	if chunks[1].PageStart != 2 {
		t.Errorf("expected second chunk on page 2, got %d", chunks[1].PageStart)
	}
}

func TestChunkPages_StitchFailureDegrades(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	var pageA, pageB []string
	for i := 0; i < 15; i++ {
		pageA = append(pageA, makeParagraph(i, 30))
		pageB = append(pageB, makeParagraph(100+i, 30))
	}
	pages := []string{makePage(pageA...), makePage(pageB...)}
	opts := Options{TargetTokens: 800, Overlap: 150, MinChunkTokens: 50, StitchPages: true}

	primary := s.ChunkPages(pages, opts)

	// Poison Count after primary chunking is reproduced: run a segmenter
	// whose tokenizer fails on the stitch text's marker.
	poisoned := newWordTokenizer()
	poisoned.panicOnCount = PageBoundaryMarker
	s2 := NewSegmenter(poisoned)
	degraded := s2.ChunkPages(pages, opts)

	var stitchCount int
	for _, c := range degraded {
		if c.Type == TypeCrossPageStitch {
			stitchCount++
		}
	}
	if stitchCount != 0 {
		t.Errorf("expected stitching to degrade to zero stitch chunks, got %d", stitchCount)
	}
	var primaryCount int
	for _, c := range primary {
		if c.Type != TypeCrossPageStitch {
			primaryCount++
		}
	}
	if len(degraded) != primaryCount {
		t.Errorf("primary chunks affected by stitch failure: %d vs %d", len(degraded), primaryCount)
	}
}

func TestChunkPages_OversizedParagraphSentenceSplit(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// A bullet item is kept atomic by classification, so 40 sentences of 10
	// words make a 400+ token unit that must go through the sentence-level
	// degradation rather than the paragraph accumulator.
	var sentences []string
	for i := 0; i < 40; i++ {
		words := make([]string, 10)
		words[0] = fmt.Sprintf("Sentence%d", i)
		for j := 1; j < 10; j++ {
			words[j] = wordPool[(i+j)%len(wordPool)]
		}
		sentences = append(sentences, strings.Join(words, " ")+".")
	}
	pages := []string{"• " + strings.Join(sentences, " ")}

	opts := Options{TargetTokens: 120, Overlap: 0, MinChunkTokens: 10}
	chunks := s.ChunkPages(pages, opts)

	if len(chunks) < 3 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	checkMonotonicIndices(t, chunks)
	checkBudget(t, tok, chunks, opts.TargetTokens)
	sawOversized := false
	for _, c := range chunks {
		switch c.Type {
		case TypeOversizedSplit:
			sawOversized = true
		case TypeForceSplit:
			t.Errorf("chunk %d: force split should not trigger when sentences fit the budget", c.ChunkIndex)
		}
	}
	if !sawOversized {
		t.Errorf("expected oversized_split chunks from the atomic bullet paragraph")
	}
}

func TestCarryOverlap_PartialParagraphTail(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	big := makeParagraph(0, 60)
	small := makeParagraph(1, 30)

	carry := s.carryOverlap([]string{big, small}, 50)

	if len(carry) != 2 {
		t.Fatalf("expected whole small paragraph plus partial tail, got %d entries", len(carry))
	}
	if !strings.HasPrefix(carry[0], ellipsisMarker) {
		t.Errorf("expected partial fragment to carry ellipsis marker, got %q", carry[0])
	}
	if carry[1] != small {
		t.Errorf("expected last paragraph carried whole")
	}
	total := 0
	for _, p := range carry {
		total += tok.Count(p)
	}
	if total > 50 {
		t.Errorf("carry exceeds overlap budget: %d tokens", total)
	}
}

func TestCarryOverlap_NoPartialWhenWellFilled(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// Last paragraph fills 45 of 50 tokens: above the fill ratio, so no
	// partial fragment gets added.
	carry := s.carryOverlap([]string{makeParagraph(0, 60), makeParagraph(1, 45)}, 50)

	if len(carry) != 1 {
		t.Fatalf("expected single whole paragraph, got %d entries", len(carry))
	}
	if strings.HasPrefix(carry[0], ellipsisMarker) {
		t.Errorf("unexpected partial fragment")
	}
}

func TestChunkPages_TrailingShortChunkDropped(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// 95 tokens fill the first chunk; the 10-token remainder flushes below
	// the minimum and is discarded rather than emitted as a sliver.
	lead := makeParagraph(1, 95)
	tail := makeParagraph(2, 10)
	pages := []string{makePage(lead, tail)}
	chunks := s.ChunkPages(pages, Options{TargetTokens: 100, Overlap: 0, MinChunkTokens: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected trailing short chunk to be dropped, got %d chunks", len(chunks))
	}
	if chunks[0].Text != lead {
		t.Errorf("surviving chunk should hold the lead paragraph only, got %q", chunks[0].Text)
	}
	checkMonotonicIndices(t, chunks)
}

func TestChunkPages_ShortOnlyChunkKept(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)

	// A page whose entire content is below the minimum still yields a chunk.
	pages := []string{makePage(makeParagraph(2, 10))}
	chunks := s.ChunkPages(pages, Options{TargetTokens: 100, Overlap: 0, MinChunkTokens: 50})

	if len(chunks) != 1 {
		t.Fatalf("expected short-only page to keep its chunk, got %d chunks", len(chunks))
	}
	if tok.Count(chunks[0].Text) != 10 {
		t.Errorf("expected the 10-token paragraph kept whole, got %d tokens", tok.Count(chunks[0].Text))
	}
}
