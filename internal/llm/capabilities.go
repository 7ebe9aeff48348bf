package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docintel/internal/agent"
)

var (
	_ agent.Summarizer        = (*ClaudeClient)(nil)
	_ agent.QuestionAnswerer  = (*ClaudeClient)(nil)
	_ agent.EntityRecognizer  = (*ClaudeClient)(nil)
	_ agent.FormulaRecognizer = (*ClaudeClient)(nil)
)

func textBlock(s string) []contentBlock {
	return []contentBlock{{Type: "text", Text: s}}
}

// Summarize asks for a summary of text within the given word bounds.
func (c *ClaudeClient) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = 150
	}
	// Roughly two tokens per word leaves room for longer words.
	out, err := c.complete(ctx, OpSummary, "", textBlock(buildSummaryPrompt(text, minWords, maxWords)), maxWords*2+64)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Answer asks question against passage.
func (c *ClaudeClient) Answer(ctx context.Context, question, passage string) (string, error) {
	out, err := c.complete(ctx, OpAnswer, qaPrompt, textBlock(buildQAPrompt(question, passage)), 256)
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Entities returns the named entities in text.
func (c *ClaudeClient) Entities(ctx context.Context, text string) ([]agent.Entity, error) {
	out, err := c.complete(ctx, OpEntities, "", textBlock(buildNERPrompt(text)), 4096)
	if err != nil {
		return nil, fmt.Errorf("entities: %w", err)
	}
	out = stripCodeBlock(out)

	var ents []agent.Entity
	if err := json.Unmarshal([]byte(out), &ents); err != nil {
		return nil, fmt.Errorf("parse entities json: %w (raw: %s)", err, truncate(out, 200))
	}
	return ents, nil
}

// RecognizeFormula sends the image as a base64 block and returns LaTeX markup.
func (c *ClaudeClient) RecognizeFormula(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mediaType, err := imageMediaType(imagePath)
	if err != nil {
		return "", err
	}

	content := []contentBlock{
		{Type: "image", Source: &imageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(data),
		}},
		{Type: "text", Text: formulaPrompt},
	}
	out, err := c.complete(ctx, OpFormula, "", content, 1024)
	if err != nil {
		return "", fmt.Errorf("recognize formula: %w", err)
	}
	out = stripCodeBlock(out)
	out = strings.TrimSpace(strings.Trim(strings.TrimSpace(out), "$"))
	return out, nil
}

func imageMediaType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}
}
