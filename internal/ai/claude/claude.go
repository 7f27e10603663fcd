package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/moveassist/internal/ai"
	"github.com/vbonduro/moveassist/internal/imaging"
)

// maxTokens bounds both answers; a tag list for one box is a few dozen tokens.
const maxTokens = 1024

type ClaudeAssistant struct {
	client *anthropic.Client
	model  string
}

type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at a different Messages API root.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func NewClaudeAssistant(apiKey, model string, opts ...Option) *ClaudeAssistant {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: o.timeout}),
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(o.baseURL))
	}

	return &ClaudeAssistant{
		client: anthropic.NewClient(apiKey, clientOpts...),
		model:  model,
	}
}

func (a *ClaudeAssistant) Tag(ctx context.Context, photoDataURL string) ([]string, error) {
	mimeType, data, err := imaging.DecodeDataURL(photoDataURL)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	text, err := a.send(ctx, []anthropic.MessageContent{
		anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
			anthropic.MessagesContentSourceTypeBase64,
			normaliseMIME(mimeType),
			base64.StdEncoding.EncodeToString(data),
		)),
		anthropic.NewTextMessageContent(ai.TaggingPrompt),
	})
	if err != nil {
		return nil, err
	}
	return ai.ParseTags(text), nil
}

func (a *ClaudeAssistant) SuggestRoom(ctx context.Context, description string) (string, error) {
	text, err := a.send(ctx, []anthropic.MessageContent{
		anthropic.NewTextMessageContent(ai.RoomPrompt(description)),
	})
	if err != nil {
		return "", err
	}
	return ai.ParseRoom(text), nil
}

func (a *ClaudeAssistant) send(ctx context.Context, content []anthropic.MessageContent) (string, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			return blk.GetText(), nil
		}
	}
	return "", fmt.Errorf("claude returned no text content")
}

// normaliseMIME maps MIME types to the values the Anthropic API accepts.
// Unknown types are coerced to jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
