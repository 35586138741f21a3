package ingest

import (
	"strings"
	"testing"

	"policy-chat/internal/core/segment"
)

// fieldsTokenizer counts whitespace-separated words, enough to make token
// accounting in chunk records deterministic.
type fieldsTokenizer struct{}

func (fieldsTokenizer) Count(text string) int { return len(strings.Fields(text)) }
func (fieldsTokenizer) Encode(text string) []int {
	return make([]int, len(strings.Fields(text)))
}
func (fieldsTokenizer) Decode(tokens []int) string { return "" }

func TestBuildChunkRecords(t *testing.T) {
	chunks := []segment.Chunk{
		{PageStart: 1, PageEnd: 1, ChunkIndex: 0, Text: "Leave accrues monthly at standard rates.", Type: segment.TypeNormal},
		{PageStart: 1, PageEnd: 2, ChunkIndex: 1, Text: "End of page one.\n\nStart of page two.", Type: segment.TypeCrossPageStitch},
	}
	milvusIDs := []int64{(7 << 20) + 0, (7 << 20) + 1}

	records := buildChunkRecords(7, fieldsTokenizer{}, chunks, milvusIDs, "chunks")
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.DocumentID != 7 || first.ChunkIndex != 0 || first.PageStart != 1 || first.PageEnd != 1 {
		t.Errorf("first record identity = %+v", first)
	}
	if first.ChunkType != string(segment.TypeNormal) {
		t.Errorf("chunk type = %q", first.ChunkType)
	}
	if first.TokenCount == nil || *first.TokenCount != 6 {
		t.Errorf("token count = %v, want 6", first.TokenCount)
	}
	if first.ContentHash == "" || len(first.ContentHash) != 64 {
		t.Errorf("content hash = %q, want 64 hex chars", first.ContentHash)
	}
	if first.MilvusID != milvusIDs[0] || first.MilvusCollection != "chunks" {
		t.Errorf("milvus linkage = %d/%q", first.MilvusID, first.MilvusCollection)
	}

	second := records[1]
	if second.PageEnd != 2 || second.ChunkType != string(segment.TypeCrossPageStitch) {
		t.Errorf("second record = %+v", second)
	}
	if second.ContentPreview == nil || strings.Contains(*second.ContentPreview, "\n") {
		t.Errorf("preview should be single-line, got %v", second.ContentPreview)
	}
}

func TestBuildContentPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Notice periods are thirty days.",
			max:  512,
			want: "Notice periods are thirty days.",
		},
		{
			name: "whitespace collapsed",
			in:   "First line\n\nsecond\tline   with   gaps",
			max:  512,
			want: "First line second line with gaps",
		},
		{
			name: "bom and control runes stripped",
			in:   "\uFEFFclean\x00 text\x07 here",
			max:  512,
			want: "clean text here",
		},
		{
			name: "truncated by runes",
			in:   strings.Repeat("héllo ", 200),
			max:  10,
			want: "héllo héll",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildContentPreview(tt.in, tt.max); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
