package api

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

const generateMaxTokens = 4096

// Generate performs a single-turn text completion: system instructions plus
// one user prompt, returning the concatenated text content. Every failure is
// a *CollaboratorError; the caller decides whether that aborts the run or
// stays loop-local.
func (c *Client) Generate(ctx context.Context, system, prompt string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := c.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: generateMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify("generate", ctx, err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	text := collectText(resp)
	if text == "" {
		return "", &CollaboratorError{Kind: KindModel, Op: "generate", Err: errors.New("response contained no text content")}
	}
	return text, nil
}

// collectText concatenates the text blocks of a response.
func collectText(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}
	return text
}

// classify maps an SDK error to a CollaboratorError kind. Deadline expiry is
// reported as a timeout whether it surfaced from the context or the transport.
func classify(op string, ctx context.Context, err error) *CollaboratorError {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CollaboratorError{Kind: kind, Op: op, Err: err}
}
