package caption

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/errs"
)

func TestNewGemini_NoKey(t *testing.T) {
	_, err := NewGemini(context.Background(), config.CaptionConfig{Model: "gemini-1.5-flash"})
	if !errors.Is(err, errs.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestQuestion(t *testing.T) {
	got := Question("a bright kitchen with a window")
	want := "What would you like to do with this space? (a bright kitchen with a window)"
	if got != want {
		t.Errorf("Question = %q, want %q", got, want)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}, ""},
		{"joins text parts", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{
					genai.Text("A living room "),
					genai.Blob{MIMEType: "image/png"},
					genai.Text("with a sofa.\n"),
				}},
			}},
		}, "A living room with a sofa."},
		{"skips empty candidate", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("A bedroom.")}}},
			},
		}, "A bedroom."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText = %q, want %q", got, tt.want)
			}
		})
	}
}
