package ai

import "context"

// TaggingPrompt asks a vision model for the items visible in a box photo.
const TaggingPrompt = `You are an expert moving assistant. Your job is to identify and tag the individual items within a moving box based on a photo.

Based on the image, generate a list of item tags.
Respond with a JSON array of strings and nothing else.
Example: ["books", "picture frames", "lamp"]`

// roomPromptTemplate is completed with the item description by RoomPrompt.
const roomPromptTemplate = `You are an AI assistant that suggests the most appropriate room in a house for a box of items, given a description of the items.

Suggest a single room, and nothing else. For example: "kitchen" or "bedroom 2".

Items: `

// Tagger returns item tags for a photo supplied as a base64 data URI.
type Tagger interface {
	Tag(ctx context.Context, photoDataURL string) ([]string, error)
}

// Suggester returns a single room name for a free-text item description.
type Suggester interface {
	SuggestRoom(ctx context.Context, description string) (string, error)
}

// Assistant is a backend that can do both.
type Assistant interface {
	Tagger
	Suggester
}

func RoomPrompt(description string) string {
	return roomPromptTemplate + description
}
