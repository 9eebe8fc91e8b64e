// Package caption produces a one-line scene description and a follow-up
// question for an image using a Gemini vision model.
package caption

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/errs"
)

const describePrompt = "Describe this image in one sentence."

// Result is a caption and the question derived from it.
type Result struct {
	Text     string
	Question string
}

// Captioner describes images.
type Captioner interface {
	Caption(ctx context.Context, img image.Image) (*Result, error)
}

// Gemini is a Captioner backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGemini connects to the Gemini API. An empty API key yields
// errs.ErrProviderUnavailable so callers can run without captions.
func NewGemini(ctx context.Context, cfg config.CaptionConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("caption: GEMINI_API_KEY is empty: %w", errs.ErrProviderUnavailable)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("caption: %v: %w", err, errs.ErrProviderUnavailable)
	}
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(100)
	return &Gemini{client: client, model: model, name: cfg.Model}, nil
}

// Name returns the model name.
func (g *Gemini) Name() string { return g.name }

// Caption sends img as PNG with a short describe prompt.
func (g *Gemini) Caption(ctx context.Context, img image.Image) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.ImageData("png", buf.Bytes()), genai.Text(describePrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}
	return &Result{Text: text, Question: Question(text)}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Question wraps a caption in the intake follow-up question.
func Question(caption string) string {
	return fmt.Sprintf("What would you like to do with this space? (%s)", caption)
}

// responseText joins the text parts of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			return s
		}
	}
	return ""
}
