package query

// Request is one /ask call.
type Request struct {
	Question  string  `json:"question"`
	DocIDs    []int64 `json:"doc_ids"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
	SessionID string  `json:"session_id"`
}

// Source is a retrieved chunk that grounded the answer.
type Source struct {
	DocID     int64   `json:"doc_id"`
	PageStart int32   `json:"page_start"`
	PageEnd   int32   `json:"page_end"`
	ChunkType string  `json:"chunk_type"`
	Score     float32 `json:"score"`
	Snippet   string  `json:"snippet"`
}

// Usage reports token spend for one answered question.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

type Response struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id"`
	Usage     Usage    `json:"usage"`
	LatencyMS int64    `json:"latency_ms"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
