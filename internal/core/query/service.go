package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"policy-chat/config"
	"policy-chat/internal/core/retriever"
	"policy-chat/internal/database"
	"policy-chat/internal/database/model"
	"policy-chat/pkg/logger"
)

// noAnswer is returned when retrieval finds nothing above the threshold.
const noAnswer = "I don't know."

// snippetMaxChars caps how much of a chunk goes into the prompt and the
// persisted context rows.
const snippetMaxChars = 1200

// Run executes the query flow: embed, search, threshold filter, prompt with
// session history, LLM call, then metrics and persistence.
func Run(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, errors.New("question is empty")
	}
	if req.TopK <= 0 || req.TopK > 64 {
		req.TopK = config.Cfg.Query.TopK
	}
	if req.Threshold <= 0 {
		req.Threshold = config.Cfg.Query.Threshold
	}
	sessionID := EnsureSession(req.SessionID)
	start := time.Now()

	embedCtx, cancelEmbed := context.WithTimeout(ctx, 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, question)
	if err != nil {
		logger.Error(err, "%v: embed question failed", config.ModuleQuery)
		return Response{}, err
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, 2*time.Second)
	defer cancelSearch()
	hits, err := retriever.SearchMilvus(searchCtx, vec, req.TopK, retriever.Filters{DocIDs: req.DocIDs})
	if err != nil {
		logger.Error(err, "%v: search milvus failed", config.ModuleQuery)
		return Response{}, err
	}

	sources := make([]Source, 0, len(hits))
	for _, h := range hits {
		if float64(h.Score) < req.Threshold {
			continue
		}
		sources = append(sources, Source{
			DocID:     h.DocID,
			PageStart: h.PageStart,
			PageEnd:   h.PageEnd,
			ChunkType: h.ChunkType,
			Score:     h.Score,
			Snippet:   makeSnippet(h),
		})
	}

	if len(sources) == 0 {
		latency := time.Since(start).Milliseconds()
		recordQuery(Usage{}, latency)
		appendExchange(sessionID, question, noAnswer)
		if err := persistMessages(sessionID, question, noAnswer, nil); err != nil {
			logger.Error(err, "%v: persist messages failed", config.ModuleQuery)
		}
		return Response{Answer: noAnswer, Sources: []Source{}, SessionID: sessionID, LatencyMS: latency}, nil
	}

	sysMsg, userMsg := buildPrompt(question, sources)
	llmCtx, cancelLLM := context.WithTimeout(ctx, 30*time.Second)
	defer cancelLLM()
	answer, usage, err := callLLM(llmCtx, sessionID, sysMsg, userMsg)
	if err != nil {
		logger.Error(err, "%v: call llm failed", config.ModuleQuery)
		return Response{}, err
	}

	latency := time.Since(start).Milliseconds()
	recordQuery(usage, latency)
	appendExchange(sessionID, question, answer)
	if err := persistMessages(sessionID, question, answer, sources); err != nil {
		logger.Error(err, "%v: persist messages failed", config.ModuleQuery)
	}
	return Response{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
		Usage:     usage,
		LatencyMS: latency,
	}, nil
}

func makeSnippet(h retriever.Hit) string {
	text := strings.TrimSpace(strings.ReplaceAll(h.Content, "\x00", ""))
	if len(text) > snippetMaxChars {
		text = text[:snippetMaxChars]
	}
	if h.PageEnd > h.PageStart {
		return fmt.Sprintf("(pages %d-%d) %s", h.PageStart, h.PageEnd, text)
	}
	return fmt.Sprintf("(page %d) %s", h.PageStart, text)
}

func buildPrompt(question string, sources []Source) (systemMsg, userMsg string) {
	var b strings.Builder
	b.WriteString("You are an assistant answering questions about uploaded policy documents. ")
	b.WriteString("Answer only from the context excerpts below and cite page numbers. ")
	b.WriteString("If the excerpts do not contain the answer, reply exactly: \"I don't know.\"\n\n")
	b.WriteString("Context:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] (doc_id=%d) %s\n\n", i+1, s.DocID, s.Snippet)
	}
	systemMsg = b.String()
	userMsg = question
	return
}

func callLLM(ctx context.Context, sessionID, promptSystem, promptUser string) (string, Usage, error) {
	client := openai.NewClient(option.WithAPIKey(config.Cfg.OpenAI.Key))

	messages := []chatMessage{{Role: "system", Content: promptSystem}}
	messages = append(messages, history(sessionID)...)
	messages = append(messages, chatMessage{Role: "user", Content: promptUser})

	req := chatRequest{
		Model:       config.Cfg.OpenAI.Model,
		Temperature: 0.1,
		MaxTokens:   1000,
		Messages:    messages,
	}
	var out chatResponse
	if err := client.Post(ctx, "/chat/completions", req, &out); err != nil {
		return "", Usage{}, err
	}
	if out.Error != nil {
		return "", Usage{}, errors.New(out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", Usage{}, errors.New("no choices returned")
	}
	usage := Usage{
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
		CostUSD:          chatCost(out.Usage.PromptTokens, out.Usage.CompletionTokens),
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), usage, nil
}

func persistMessages(sessionID, question, answer string, sources []Source) error {
	db, err := database.GetDB()
	if err != nil {
		return err
	}
	now := time.Now()
	rows := []model.Message{
		{SessionID: sessionID, Role: "user", Content: question, CreatedAt: &now},
		{SessionID: sessionID, Role: "assistant", Content: answer, CreatedAt: &now},
	}
	for _, s := range sources {
		docID := s.DocID
		rows = append(rows, model.Message{
			SessionID:  sessionID,
			Role:       "context",
			Content:    s.Snippet,
			DocumentID: &docID,
			CreatedAt:  &now,
		})
	}
	return db.Create(&rows).Error
}
