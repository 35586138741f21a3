package segment

// ChunkType labels which pipeline stage produced a chunk.
type ChunkType string

const (
	// TypeNormal is a chunk built from whole paragraphs under the token budget.
	TypeNormal ChunkType = "normal"
	// TypeOversizedSplit is a sentence-accumulated piece of a paragraph that
	// alone exceeded the budget.
	TypeOversizedSplit ChunkType = "oversized_split"
	// TypeForceSplit is a fixed-size token window cut from a sentence that no
	// natural boundary could shrink under the budget.
	TypeForceSplit ChunkType = "force_split"
	// TypeCrossPageStitch joins the tail of one page with the head of the next.
	TypeCrossPageStitch ChunkType = "cross_page_stitch"
)

// Chunk is the sole durable output of the segmentation engine. It is created
// once by exactly one pipeline stage and never mutated afterwards.
type Chunk struct {
	PageStart  int       `json:"page_start"`
	PageEnd    int       `json:"page_end"`
	ChunkIndex int       `json:"chunk_idx"`
	Text       string    `json:"text"`
	Type       ChunkType `json:"type"`
}

// Options configures one segmentation run.
type Options struct {
	// TargetTokens is the chunk size budget. Every chunk except force_split
	// remainders of indivisible token runs stays at or under it.
	TargetTokens int
	// Overlap is how many tokens of trailing context carry into the next
	// chunk on the same page.
	Overlap int
	// MinChunkTokens is the minimum viable size for a page's trailing chunk;
	// a page's only chunk is kept regardless.
	MinChunkTokens int
	// StitchPages enables the cross-page stitching pass.
	StitchPages bool
}
