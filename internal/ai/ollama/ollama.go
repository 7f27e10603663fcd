package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/moveassist/internal/ai"
	"github.com/vbonduro/moveassist/internal/imaging"
)

type OllamaAssistant struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaAssistant(host, model string, timeout time.Duration) *OllamaAssistant {
	return &OllamaAssistant{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *OllamaAssistant) Tag(ctx context.Context, photoDataURL string) ([]string, error) {
	_, data, err := imaging.DecodeDataURL(photoDataURL)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	text, err := a.generate(ctx, ai.TaggingPrompt, []string{base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return nil, err
	}
	return ai.ParseTags(text), nil
}

func (a *OllamaAssistant) SuggestRoom(ctx context.Context, description string) (string, error) {
	text, err := a.generate(ctx, ai.RoomPrompt(description), nil)
	if err != nil {
		return "", err
	}
	return ai.ParseRoom(text), nil
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// generate runs one non-streaming completion against /api/generate.
func (a *OllamaAssistant) generate(ctx context.Context, prompt string, images []string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: a.model, Prompt: prompt, Images: images})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Response, nil
}
