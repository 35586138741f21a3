package segment

import (
	"strings"

	"policy-chat/config"
	"policy-chat/pkg/logger"
)

// Segmenter splits page-delimited document text into bounded-size,
// paragraph-aware chunks. The pipeline per page is: header/footer filter,
// paragraph extraction, greedy token-budgeted accumulation with overlap
// carry-over, and recursive degradation for oversized units. An optional
// final pass stitches adjacent page boundaries.
type Segmenter struct {
	tok Tokenizer
}

func NewSegmenter(tok Tokenizer) *Segmenter {
	return &Segmenter{tok: tok}
}

// ChunkPages is the sole entry point. It never fails: invalid input yields an
// empty sequence, and per-page or stitching errors degrade to the fixed
// window fallback or to no stitch chunks. Chunk indices are assigned
// sequentially across the whole document; stitch chunks continue the counter
// after all primary chunks.
func (s *Segmenter) ChunkPages(pages []string, opts Options) []Chunk {
	chunks := []Chunk{}
	if opts.TargetTokens <= 0 || len(pages) == 0 {
		return chunks
	}

	idx := 0
	for i, pageText := range pages {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pageChunks := s.chunkPageSafe(pageText, i+1, opts, idx)
		chunks = append(chunks, pageChunks...)
		idx += len(pageChunks)
	}

	if opts.StitchPages && len(pages) > 1 {
		chunks = append(chunks, s.stitchPagesSafe(pages, opts.TargetTokens, idx)...)
	}
	return chunks
}

// chunkPageSafe isolates one page: a panic in the paragraph-aware path
// degrades that page to the fixed-window fallback instead of aborting the
// document.
func (s *Segmenter) chunkPageSafe(pageText string, pageNum int, opts Options, startIdx int) (out []Chunk) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{
				"page":  pageNum,
				"panic": r,
			}).Warnf("%v: paragraph-aware chunking failed, using fixed-window fallback", config.ModuleSegment)
			out = s.simpleChunkPage(pageText, pageNum, opts.TargetTokens, opts.Overlap, startIdx)
		}
	}()
	return s.chunkPage(pageText, pageNum, opts, startIdx)
}

// simpleChunkPage is the structure-blind fallback: fixed token windows with
// an overlap-sized step. It cannot fail, so every non-empty page yields at
// least one chunk.
func (s *Segmenter) simpleChunkPage(pageText string, pageNum, targetTokens, overlap, startIdx int) []Chunk {
	toks := s.tok.Encode(pageText)
	if len(toks) == 0 {
		return nil
	}

	step := targetTokens - overlap
	if step < 1 {
		step = 1
	}

	var chunks []Chunk
	idx := startIdx
	for i := 0; i < len(toks); i += step {
		end := i + targetTokens
		if end > len(toks) {
			end = len(toks)
		}
		chunks = append(chunks, Chunk{
			PageStart:  pageNum,
			PageEnd:    pageNum,
			ChunkIndex: idx,
			Text:       s.tok.Decode(toks[i:end]),
			Type:       TypeNormal,
		})
		idx++
	}
	return chunks
}
