package segment

import (
	"strings"
	"testing"
)

func TestStitch_ShortPagesPassedWhole(t *testing.T) {
	s := NewSegmenter(newWordTokenizer())
	p1 := makeParagraph(1, 120)
	p2 := makeParagraph(2, 120)

	chunks := s.stitchPages([]string{p1, p2}, 1200, 0)
	if len(chunks) != 1 {
		t.Fatalf("stitch chunks = %d, want 1", len(chunks))
	}
	want := p1 + "\n\n" + PageBoundaryMarker + "\n\n" + p2
	if chunks[0].Text != want {
		t.Errorf("pages under the side budget should be stitched whole, got %q", chunks[0].Text)
	}
	if chunks[0].PageStart != 1 || chunks[0].PageEnd != 2 {
		t.Errorf("page span = %d-%d, want 1-2", chunks[0].PageStart, chunks[0].PageEnd)
	}
	if chunks[0].Type != TypeCrossPageStitch {
		t.Errorf("type = %q, want %q", chunks[0].Type, TypeCrossPageStitch)
	}
}

func TestStitch_ThinPairDiscarded(t *testing.T) {
	s := NewSegmenter(newWordTokenizer())
	thin1 := makeParagraph(1, 40)
	thin2 := makeParagraph(2, 40)
	full := makeParagraph(3, 120)

	chunks := s.stitchPages([]string{thin1, thin2, full}, 1200, 7)
	if len(chunks) != 1 {
		t.Fatalf("stitch chunks = %d, want 1 (thin pair dropped)", len(chunks))
	}
	if chunks[0].PageStart != 2 || chunks[0].PageEnd != 3 {
		t.Errorf("surviving stitch spans pages %d-%d, want 2-3", chunks[0].PageStart, chunks[0].PageEnd)
	}
	if chunks[0].ChunkIndex != 7 {
		t.Errorf("chunk index = %d, want startIdx 7", chunks[0].ChunkIndex)
	}
}

func TestStitch_BlankPageBreaksPairing(t *testing.T) {
	s := NewSegmenter(newWordTokenizer())
	p1 := makeParagraph(1, 150)
	p2 := makeParagraph(2, 150)

	chunks := s.stitchPages([]string{p1, "   \n\t  ", p2}, 1200, 0)
	if len(chunks) != 0 {
		t.Fatalf("stitch chunks = %d, want 0 across a blank page", len(chunks))
	}
}

func TestStitch_LongPagesCutAtSideBudget(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)
	p1 := makeParagraph(1, 500)
	p2 := makeParagraph(2, 500)

	chunks := s.stitchPages([]string{p1, p2}, 1200, 0)
	if len(chunks) != 1 {
		t.Fatalf("stitch chunks = %d, want 1", len(chunks))
	}
	text := chunks[0].Text
	parts := strings.Split(text, "\n\n"+PageBoundaryMarker+"\n\n")
	if len(parts) != 2 {
		t.Fatalf("stitch text missing boundary marker: %q", text)
	}
	tail, head := parts[0], parts[1]
	if !strings.HasSuffix(p1, tail) {
		t.Errorf("tail side is not a suffix of page 1")
	}
	if !strings.HasPrefix(p2, head) {
		t.Errorf("head side is not a prefix of page 2")
	}
	// Side budget is min(200, target/4); word trimming removes at most one
	// token per side.
	if n := tok.Count(tail); n > 200 {
		t.Errorf("tail tokens = %d, want <= 200", n)
	}
	if n := tok.Count(head); n > 200 {
		t.Errorf("head tokens = %d, want <= 200", n)
	}
}

func TestStitch_SideBudgetScalesWithSmallTarget(t *testing.T) {
	tok := newWordTokenizer()
	s := NewSegmenter(tok)
	p1 := makeParagraph(1, 300)
	p2 := makeParagraph(2, 300)

	// target 400 gives a 100-token side budget, under the 200 cap.
	chunks := s.stitchPages([]string{p1, p2}, 400, 0)
	if len(chunks) != 1 {
		t.Fatalf("stitch chunks = %d, want 1", len(chunks))
	}
	parts := strings.Split(chunks[0].Text, "\n\n"+PageBoundaryMarker+"\n\n")
	if len(parts) != 2 {
		t.Fatalf("stitch text missing boundary marker")
	}
	if n := tok.Count(parts[0]); n > 100 {
		t.Errorf("tail tokens = %d, want <= 100", n)
	}
	if n := tok.Count(parts[1]); n > 100 {
		t.Errorf("head tokens = %d, want <= 100", n)
	}
}
