package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"

	"debate-video-pipeline/application/ports/outbound"
	"debate-video-pipeline/config"
	"debate-video-pipeline/domain"
)

const doneSignal = "[DONE]"
const maxStreamRetries = 3

// Arguments shorter than this are treated as malformed so the fallback chain
// advances instead of voicing a fragment.
const minArgumentLength = 20

type chatRequest struct {
	Stream      bool          `json:"stream"`
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunkBody struct {
	Choices []chatChunkChoice `json:"choices"`
}

type chatChunkChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type lmStudioArgumentGenerator struct {
	logger outbound.LoggerPort
	cfg    *config.ArgumentConfig
}

// NewLMStudioArgumentGenerator builds the remote argument client. The
// chat-completions response is consumed as an SSE token stream and aggregated
// into the full argument text.
func NewLMStudioArgumentGenerator(logger outbound.LoggerPort, cfg *config.ArgumentConfig) outbound.ArgumentGeneratorPort {
	return &lmStudioArgumentGenerator{
		logger: logger,
		cfg:    cfg,
	}
}

func (g *lmStudioArgumentGenerator) Name() string {
	return "lmstudio"
}

func (g *lmStudioArgumentGenerator) Generate(ctx context.Context, req outbound.GenerateArgumentRequest) (string, error) {
	newCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	httpReq, err := g.createRequest(newCtx, req)
	if err != nil {
		g.logger.Error(err, "failed to create argument stream request")
		return "", err
	}

	stream, err := eventsource.SubscribeWithRequest("", httpReq)
	if err != nil {
		return "", domain.NewError(domain.TransientNetworkKind, err)
	}
	defer stream.Close()

	var builder strings.Builder
	retryCount := 0

	for {
		select {
		case <-newCtx.Done():
			return "", domain.NewError(domain.TimeoutKind, newCtx.Err())
		case ev := <-stream.Events:
			if ev.Data() == doneSignal {
				return g.finish(builder.String())
			}
			token, err := g.extractToken(ev)
			if err != nil {
				return "", err
			}
			builder.WriteString(token)
			retryCount = 0
		case err := <-stream.Errors:
			if err == io.EOF {
				return g.finish(builder.String())
			}
			if retryCount < maxStreamRetries {
				g.logger.WarnWithFields("argument stream error, retrying", map[string]interface{}{
					"retry_count": retryCount,
					"error":       err.Error(),
				})
				retryCount++
				continue
			}
			return "", domain.NewError(domain.TransientNetworkKind, err)
		}
	}
}

func (g *lmStudioArgumentGenerator) finish(content string) (string, error) {
	content = strings.TrimSpace(content)
	if len(content) < minArgumentLength {
		return "", domain.Errorf(domain.ValidationKind, "argument service returned %d characters", len(content))
	}
	return content, nil
}

func (g *lmStudioArgumentGenerator) extractToken(event eventsource.Event) (string, error) {
	var chunk chatChunkBody
	if err := json.Unmarshal([]byte(event.Data()), &chunk); err != nil {
		return "", domain.NewError(domain.ValidationKind, err)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

func (g *lmStudioArgumentGenerator) createRequest(ctx context.Context, req outbound.GenerateArgumentRequest) (*http.Request, error) {
	stance := "FOR"
	if req.Side == domain.SideCon {
		stance = "AGAINST"
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Debate Topic: %s\n\n", req.Topic)
	fmt.Fprintf(&prompt, "You are arguing %s this statement.\n\n", stance)
	if len(req.Transcript) > 0 {
		prompt.WriteString("The debate so far:\n")
		for _, entry := range req.Transcript {
			fmt.Fprintf(&prompt, "%s: %s\n", sideLabel(entry.Side), entry.Text)
		}
		prompt.WriteString("\nRebut the strongest opposing point above.\n\n")
	}
	prompt.WriteString("Provide a compelling 2-3 sentence argument. Be specific and persuasive. Keep under 150 words.\n\nYour argument:")

	body := chatRequest{
		Stream: true,
		Model:  g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a skilled debater. Provide clear, concise arguments."},
			{Role: "user", Content: prompt.String()},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ApiUrl, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	if g.cfg.ApiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.ApiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}
