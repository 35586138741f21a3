package segment

import (
	"strings"

	"policy-chat/config"
	"policy-chat/pkg/logger"
)

// PageBoundaryMarker separates the two sides of a cross-page stitch chunk.
const PageBoundaryMarker = "--- PAGE BOUNDARY ---"

const (
	// stitchSideTokens caps how many tokens each side of a stitch takes.
	stitchSideTokens = 200
	// minStitchTokens is the floor below which a stitch is discarded as too
	// thin to justify an extra index entry.
	minStitchTokens = 100
)

// stitchPagesSafe degrades any stitching failure to "no stitch chunks";
// primary chunks are unaffected.
func (s *Segmenter) stitchPagesSafe(pages []string, targetTokens, startIdx int) (out []Chunk) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{
				"panic": r,
			}).Warnf("%v: cross-page stitching failed, skipping stitch chunks", config.ModuleSegment)
			out = nil
		}
	}()
	return s.stitchPages(pages, targetTokens, startIdx)
}

// stitchPages emits one auxiliary chunk per adjacent non-empty page pair:
// the tail of page i joined with the head of page i+1 around an explicit
// boundary marker. The overlap with adjacent primary chunks is intentional
// redundancy for retrieval recall.
func (s *Segmenter) stitchPages(pages []string, targetTokens, startIdx int) []Chunk {
	sideBudget := targetTokens / 4
	if sideBudget > stitchSideTokens {
		sideBudget = stitchSideTokens
	}

	var chunks []Chunk
	idx := startIdx
	for i := 0; i < len(pages)-1; i++ {
		current := strings.TrimSpace(pages[i])
		next := strings.TrimSpace(pages[i+1])
		if current == "" || next == "" {
			continue
		}

		tail := s.pageTail(current, sideBudget)
		head := s.pageHead(next, sideBudget)

		text := tail + "\n\n" + PageBoundaryMarker + "\n\n" + head
		if s.tok.Count(text) < minStitchTokens {
			continue
		}

		chunks = append(chunks, Chunk{
			PageStart:  i + 1,
			PageEnd:    i + 2,
			ChunkIndex: idx,
			Text:       text,
			Type:       TypeCrossPageStitch,
		})
		idx++
	}
	return chunks
}

// pageTail takes the trailing n tokens of a page, dropping a leading partial
// word left by mid-word token cuts.
func (s *Segmenter) pageTail(pageText string, n int) string {
	toks := s.tok.Encode(pageText)
	if len(toks) <= n {
		return pageText
	}
	tail := s.tok.Decode(toks[len(toks)-n:])
	if cut := strings.IndexByte(tail, ' '); cut >= 0 {
		tail = tail[cut+1:]
	}
	return tail
}

// pageHead takes the leading n tokens of a page, dropping a trailing partial
// word.
func (s *Segmenter) pageHead(pageText string, n int) string {
	toks := s.tok.Encode(pageText)
	if len(toks) <= n {
		return pageText
	}
	head := s.tok.Decode(toks[:n])
	if cut := strings.LastIndexByte(head, ' '); cut >= 0 {
		head = head[:cut]
	}
	return head
}
