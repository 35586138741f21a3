package segment

import "strings"

// splitOversized degrades a paragraph that alone exceeds the budget. First
// level: accumulate sentences into sub-chunks under the budget. Second level:
// any single sentence still over budget is force-split into fixed token
// windows. Each level only runs on units the previous one could not fit.
func (s *Segmenter) splitOversized(paragraph string, pageNum, targetTokens, startIdx int) []Chunk {
	sentences := splitSentences(paragraph, false)

	var chunks []Chunk
	var current []string
	currentTokens := 0
	idx := startIdx

	flush := func() {
		chunks = append(chunks, Chunk{
			PageStart:  pageNum,
			PageEnd:    pageNum,
			ChunkIndex: idx,
			Text:       strings.Join(current, " "),
			Type:       TypeOversizedSplit,
		})
		idx++
	}

	for _, sentence := range sentences {
		sentenceTokens := s.tok.Count(sentence)

		if sentenceTokens > targetTokens {
			if len(current) > 0 {
				flush()
				current = nil
				currentTokens = 0
			}
			forced := s.forceSplit(sentence, pageNum, targetTokens, idx)
			chunks = append(chunks, forced...)
			idx += len(forced)
			continue
		}

		if currentTokens+sentenceTokens > targetTokens && len(current) > 0 {
			flush()
			current = nil
			currentTokens = 0
		}

		current = append(current, sentence)
		currentTokens += sentenceTokens
	}

	if len(current) > 0 {
		flush()
	}

	return chunks
}

// forceSplit is the terminal fallback: consecutive fixed-size token windows,
// no overlap. It prioritizes budget compliance over continuity and cannot
// fail. The final window carries the remainder.
func (s *Segmenter) forceSplit(text string, pageNum, targetTokens, startIdx int) []Chunk {
	toks := s.tok.Encode(text)

	var chunks []Chunk
	idx := startIdx
	for i := 0; i < len(toks); i += targetTokens {
		end := i + targetTokens
		if end > len(toks) {
			end = len(toks)
		}
		chunks = append(chunks, Chunk{
			PageStart:  pageNum,
			PageEnd:    pageNum,
			ChunkIndex: idx,
			Text:       s.tok.Decode(toks[i:end]),
			Type:       TypeForceSplit,
		})
		idx++
	}
	return chunks
}
