package detection

import (
	"context"
	"image"
)

// Kind names a class of detection provider.
type Kind string

const (
	KindBlueprint Kind = "blueprint"
	KindGeneral   Kind = "general"
	KindOpenVocab Kind = "openvocab"
)

// Provider detects objects in an image. The prompt is only meaningful to
// open-vocabulary providers; others ignore it.
type Provider interface {
	Name() string
	Detect(ctx context.Context, img image.Image, prompt string) ([]Instance, error)
}

// Factory acquires a Provider, typically by probing a model service.
type Factory func(ctx context.Context) (Provider, error)
