package ingest

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"policy-chat/config"
	"policy-chat/pkg/logger"
)

// embedBatchSize is the maximum number of inputs per embeddings request.
const embedBatchSize = 100

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// EmbedTexts embeds chunk texts in batches and returns one vector per input,
// in input order.
func EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	key := config.Cfg.OpenAI.Key
	if key == "" {
		return nil, errors.New("missing openai key")
	}

	var all [][]float32
	for i := 0; i < len(inputs); i += embedBatchSize {
		j := i + embedBatchSize
		if j > len(inputs) {
			j = len(inputs)
		}
		batch := inputs[i:j]
		logger.WithFields(map[string]interface{}{
			"model":       config.Cfg.OpenAI.EmbeddingModel,
			"batch_start": i,
			"batch_size":  len(batch),
		}).Info("openai: embedding batch start")

		vectors, err := embedBatch(ctx, key, batch)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"model":       config.Cfg.OpenAI.EmbeddingModel,
				"batch_start": i,
				"error":       err,
			}).Errorf("openai: embedding batch failed")
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, errors.New("embedding count does not match input count")
		}
		all = append(all, vectors...)
	}
	return all, nil
}

func embedBatch(ctx context.Context, apiKey string, batch []string) ([][]float32, error) {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	reqBody := embeddingRequest{Model: config.Cfg.OpenAI.EmbeddingModel, Input: batch}
	var out embeddingResponse
	if err := client.Post(ctx, "/embeddings", reqBody, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	vectors := make([][]float32, len(out.Data))
	for i := range out.Data {
		src := out.Data[i].Embedding
		vec := make([]float32, len(src))
		for k := range src {
			vec[k] = float32(src[k])
		}
		vectors[i] = vec
	}
	return vectors, nil
}
