package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

const visionMaxTokens = 2048

// ValidateVision sends instructions plus one or more images to the vision
// model and returns the raw response text for the validation parser. Image
// paths are read and inlined as base64 blocks; an unreadable image is a
// transport failure (the caller maps it to a loop-local rejection).
func (c *Client) ValidateVision(ctx context.Context, instructions string, imagePaths []string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(imagePaths)+1)
	for _, path := range imagePaths {
		block, err := imageBlock(path)
		if err != nil {
			return "", &CollaboratorError{Kind: KindTransport, Op: "vision", Err: err}
		}
		blocks = append(blocks, block)
	}
	blocks = append(blocks, anthropic.NewTextBlock(instructions))

	resp, err := c.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.visionModel,
		MaxTokens: visionMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", classify("vision", ctx, err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	text := collectText(resp)
	if text == "" {
		return "", &CollaboratorError{Kind: KindModel, Op: "vision", Err: errors.New("response contained no text content")}
	}
	return text, nil
}

// imageBlock reads an image file and wraps it as a base64 content block.
func imageBlock(path string) (anthropic.ContentBlockParamUnion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("read image %s: %w", path, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return anthropic.NewImageBlockBase64(mediaType(path), encoded), nil
}

func mediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
