package segment

import "strings"

// overlapFillRatio is the fill fraction of the overlap budget below which a
// partial paragraph tail is pulled in to top the carry-over up. Tunable; the
// value matters less than having some floor at all.
const overlapFillRatio = 0.7

// ellipsisMarker prefixes a truncated partial paragraph in an overlap
// carry-over.
const ellipsisMarker = "..."

// chunkPage greedily accumulates paragraphs into chunks under the token
// budget. Oversized paragraphs are routed to the degradation chain; on a
// budget-exceeding flush, trailing context is carried into the next chunk.
func (s *Segmenter) chunkPage(pageText string, pageNum int, opts Options, startIdx int) []Chunk {
	paragraphs := extractParagraphs(pageText)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []Chunk
	var current []string
	currentTokens := 0
	idx := startIdx

	flush := func() {
		chunks = append(chunks, Chunk{
			PageStart:  pageNum,
			PageEnd:    pageNum,
			ChunkIndex: idx,
			Text:       strings.Join(current, "\n\n"),
			Type:       TypeNormal,
		})
		idx++
	}

	for _, para := range paragraphs {
		paraTokens := s.tok.Count(para)

		// A paragraph over budget on its own: flush what we have, then
		// degrade the paragraph separately.
		if paraTokens > opts.TargetTokens {
			if len(current) > 0 {
				flush()
				current = nil
				currentTokens = 0
			}
			oversized := s.splitOversized(para, pageNum, opts.TargetTokens, idx)
			chunks = append(chunks, oversized...)
			idx += len(oversized)
			continue
		}

		if currentTokens+paraTokens > opts.TargetTokens && len(current) > 0 {
			flush()
			current = s.carryOverlap(current, opts.Overlap)
			currentTokens = 0
			for _, p := range current {
				currentTokens += s.tok.Count(p)
			}
			// The carry must leave room for the incoming paragraph, or a
			// trailing flush could exceed the budget.
			for len(current) > 0 && currentTokens+paraTokens > opts.TargetTokens {
				currentTokens -= s.tok.Count(current[0])
				current = current[1:]
			}
		}

		current = append(current, para)
		currentTokens += paraTokens
	}

	if len(current) > 0 {
		text := strings.Join(current, "\n\n")
		// Keep a short trailing chunk when it is all the page produced; a
		// page must never be dropped purely for being short.
		if s.tok.Count(text) >= opts.MinChunkTokens || len(chunks) == 0 {
			flush()
		}
	}

	return chunks
}

// carryOverlap walks the just-flushed paragraphs in reverse, taking whole
// paragraphs while they fit the overlap budget. If the carry is still under
// overlapFillRatio of the budget when the next paragraph would overflow it,
// the tail token slice of that paragraph is decoded to exactly fill the
// remainder, marked with a leading ellipsis. At most one partial fragment per
// carry-over.
func (s *Segmenter) carryOverlap(paragraphs []string, overlapTokens int) []string {
	if len(paragraphs) == 0 {
		return nil
	}

	var carry []string
	total := 0
	for i := len(paragraphs) - 1; i >= 0; i-- {
		para := paragraphs[i]
		paraTokens := s.tok.Count(para)
		if total+paraTokens <= overlapTokens {
			carry = append([]string{para}, carry...)
			total += paraTokens
			continue
		}
		if float64(total) < float64(overlapTokens)*overlapFillRatio {
			remaining := overlapTokens - total
			toks := s.tok.Encode(para)
			if len(toks) > remaining && remaining > 0 {
				partial := s.tok.Decode(toks[len(toks)-remaining:])
				carry = append([]string{ellipsisMarker + partial}, carry...)
			}
		}
		break
	}
	return carry
}
