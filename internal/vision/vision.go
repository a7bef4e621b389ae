// Package vision defines the VisionModelClient contract the engine uses to
// ask questions about a screenshot, plus an HTTP-backed implementation
// built on the project's fluent request client.
package vision

import (
	"context"
	"strconv"
	"time"
)

// Reply is a single vision-model answer.
type Reply struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	Duration     time.Duration
}

// Client sends a screenshot plus a text prompt to a vision model and
// returns its raw textual reply. Callers are responsible for parsing Text
// against the protocol package's mini-language.
type Client interface {
	Send(ctx context.Context, png []byte, systemPrompt, userPrompt string) (*Reply, error)
}

// ModelError wraps a failure returned by the vision model endpoint itself
// (as opposed to a transport-level error), e.g. a 4xx rejecting the image.
type ModelError struct {
	StatusCode int
	Body       string
}

func (e *ModelError) Error() string {
	return "vision model error (status " + strconv.Itoa(e.StatusCode) + "): " + e.Body
}
